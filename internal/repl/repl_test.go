package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/notexe/studydash/internal/config"
	"github.com/notexe/studydash/internal/dashboard"
	"github.com/notexe/studydash/internal/model"
	"github.com/notexe/studydash/internal/motivation"
	"github.com/notexe/studydash/internal/pomodoro"
	"github.com/notexe/studydash/internal/store"
	"github.com/notexe/studydash/internal/ui"
)

var now = time.Date(2024, time.May, 8, 9, 0, 0, 0, time.UTC)

type idleTicker struct{ c chan time.Time }

func (t idleTicker) C() <-chan time.Time { return t.c }
func (idleTicker) Stop()                 {}

type harness struct {
	repl  *REPL
	store *store.Store
	out   *bytes.Buffer
	ctx   context.Context
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()

	clock := func() time.Time { return now }
	st, err := store.NewStore(":memory:", store.WithClock(clock))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	user := &model.User{ID: "user-1", Name: "Ada"}
	cfg := &config.Config{
		Pomodoro: pomodoro.DefaultConfig(),
		Notifier: config.NotifierConfig{Window: 15},
	}
	r := New(Deps{
		Config:     cfg,
		Store:      st,
		Dashboard:  dashboard.NewService(st, user, dashboard.WithClock(clock), dashboard.WithLocation(time.UTC), dashboard.WithLogger(logger)),
		Motivation: motivation.New(motivation.WithSeed(1)),
		Formatter:  ui.NewFormatter(false, ui.WithLocation(time.UTC), ui.WithClock(clock)),
		Logger:     logger,
		TimerOptions: []pomodoro.Option{pomodoro.WithTicker(func(time.Duration) pomodoro.Ticker {
			return idleTicker{c: make(chan time.Time)}
		})},
	})
	out := &bytes.Buffer{}
	r.setOutput(out)
	r.in = strings.NewReader(input)

	ctx, cancel := context.WithCancel(context.Background())
	go r.timer.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-r.timer.Done()
	})
	return &harness{repl: r, store: st, out: out, ctx: ctx}
}

func (h *harness) run(t *testing.T, line string) string {
	t.Helper()
	h.out.Reset()
	_, cmd, args := h.repl.parseCommand(line)
	if err := h.repl.handleCommand(h.ctx, cmd, args); err != nil {
		t.Fatalf("%s: error = %v", line, err)
	}
	return h.out.String()
}

func (h *harness) fail(t *testing.T, line string) error {
	t.Helper()
	_, cmd, args := h.repl.parseCommand(line)
	err := h.repl.handleCommand(h.ctx, cmd, args)
	if err == nil {
		t.Fatalf("%s: expected an error", line)
	}
	return err
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	r := &REPL{}
	ok, cmd, args := r.parseCommand("/ADD  Read chapter 4 ")
	if !ok || cmd != "/add" || args != "Read chapter 4" {
		t.Fatalf("parseCommand() = %v %q %q", ok, cmd, args)
	}
	if ok, _, _ := r.parseCommand("plain text"); ok {
		t.Fatal("plain text parsed as a command")
	}
}

func TestParseDue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"today", time.Date(2024, time.May, 8, 23, 59, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2024, time.May, 9, 23, 59, 0, 0, time.UTC)},
		{"+3d", time.Date(2024, time.May, 11, 23, 59, 0, 0, time.UTC)},
		{"2024-06-01", time.Date(2024, time.June, 1, 23, 59, 0, 0, time.UTC)},
		{"2024-06-01T14:30", time.Date(2024, time.June, 1, 14, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseDue(tt.in, now)
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("parseDue(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	for _, bad := range []string{"soon", "+xd", "2024-13-01"} {
		if _, err := parseDue(bad, now); err == nil {
			t.Errorf("parseDue(%q) accepted", bad)
		}
	}
}

func TestMatchID(t *testing.T) {
	t.Parallel()

	ids := []string{"abc123", "abd456", "xyz"}
	if id, err := matchID("task", "abc", ids); err != nil || id != "abc123" {
		t.Fatalf("matchID(abc) = %q, %v", id, err)
	}
	if id, err := matchID("task", "xyz", ids); err != nil || id != "xyz" {
		t.Fatalf("matchID(xyz) = %q, %v", id, err)
	}
	for _, ref := range []string{"ab", "q", ""} {
		if _, err := matchID("task", ref, ids); err == nil {
			t.Errorf("matchID(%q) accepted", ref)
		}
	}
}

func TestTaskCommands(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "1\n")

	out := h.run(t, "/add Essay draft due:today p:high c:English")
	if !strings.Contains(out, "Essay draft (high) #English due Wed May 8 23:59") {
		t.Fatalf("add output = %q", out)
	}
	h.run(t, "/add Read chapter 4")

	tasks, _ := h.store.ListTasks(h.ctx, "user-1", store.TaskFilter{})
	var essay model.Task
	for _, task := range tasks {
		if task.Title == "Essay draft" {
			essay = task
		}
	}

	out = h.run(t, "/edit "+essay.ID[:8]+" due:none p:low")
	if !strings.Contains(out, "Essay draft (low)") || strings.Contains(out, "due") {
		t.Fatalf("edit output = %q", out)
	}

	// Menu input "1" picks the first open task.
	out = h.run(t, "/done")
	if !strings.Contains(out, "You completed") {
		t.Fatalf("done output = %q", out)
	}
	if out = h.run(t, "/tasks done"); strings.Count(out, "[x]") != 1 {
		t.Fatalf("/tasks done = %q", out)
	}

	ns, _ := h.store.ListNotifications(h.ctx, "user-1", store.NotificationFilter{})
	if len(ns) != 1 || !strings.HasPrefix(ns[0].Message, "Great job!") {
		t.Fatalf("notifications = %+v", ns)
	}

	h.run(t, "/del "+essay.ID)
	if out = h.run(t, "/tasks all"); strings.Contains(out, "Essay") {
		t.Fatalf("deleted task still listed: %q", out)
	}

	if err := h.fail(t, "/add p:urgent Something"); !strings.Contains(err.Error(), "invalid priority") {
		t.Fatalf("bad priority error = %v", err)
	}
	h.fail(t, "/add due:today")
	h.fail(t, "/undo nope")
}

func TestPomodoroCommands(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "")

	if out := h.run(t, "/pomo"); !strings.Contains(out, "Focus  25:00  paused") {
		t.Fatalf("/pomo = %q", out)
	}
	if out := h.run(t, "/pomo start"); !strings.Contains(out, "running") {
		t.Fatalf("/pomo start = %q", out)
	}
	if out := h.run(t, "/pomo set 50 10"); !strings.Contains(out, "50/10/15") || !strings.Contains(out, "next phase") {
		t.Fatalf("/pomo set = %q", out)
	}
	if out := h.run(t, "/pomo skip"); !strings.Contains(out, "Time for a short break (10:00)") {
		t.Fatalf("/pomo skip = %q", out)
	}
	if out := h.run(t, "/pomo reset"); !strings.Contains(out, "Focus  50:00  paused") || !strings.Contains(out, "Cycles: 1") {
		t.Fatalf("/pomo reset = %q", out)
	}
	h.fail(t, "/pomo set 0 5")
	h.fail(t, "/pomo launch")
}

func TestNotesAndEvents(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "")

	if out := h.run(t, `/note add Cells c:Bio | # Cells\n- nucleus`); !strings.Contains(out, `Note "Cells" saved`) {
		t.Fatalf("note add = %q", out)
	}
	if out := h.run(t, "/notes"); !strings.Contains(out, "Cells #Bio") || !strings.Contains(out, "Categories: Bio") {
		t.Fatalf("/notes = %q", out)
	}
	if out := h.run(t, "/notes ?nucleus"); !strings.Contains(out, "Cells") {
		t.Fatalf("/notes search = %q", out)
	}
	notes, _ := h.store.ListNotes(h.ctx, "user-1", store.NoteFilter{})
	if out := h.run(t, "/note "+notes[0].ID[:6]); !strings.Contains(out, "- nucleus") {
		t.Fatalf("/note show = %q", out)
	}
	h.run(t, "/note remind "+notes[0].ID)

	if out := h.run(t, "/event add Lab report at:2024-05-09T14:00 len:90 c:school"); !strings.Contains(out, "Thu May 9 14:00–15:30  Lab report #school") {
		t.Fatalf("event add = %q", out)
	}
	h.run(t, "/event add Trip at:2024-06-20")
	if out := h.run(t, "/events"); !strings.Contains(out, "Lab report") || strings.Contains(out, "Trip") {
		t.Fatalf("/events = %q", out)
	}
	if out := h.run(t, "/events 60"); !strings.Contains(out, "Trip") {
		t.Fatalf("/events 60 = %q", out)
	}
	h.fail(t, "/event add Nameless")

	if out := h.run(t, "/inbox"); !strings.Contains(out, `Reminder for note: "Cells"`) {
		t.Fatalf("/inbox = %q", out)
	}
}

func TestInboxCommands(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "")
	soon := now.Add(10 * time.Minute)
	if _, err := h.store.CreateTask(h.ctx, "user-1", store.NewTask{Title: "Quiz", DueDate: &soon}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if out := h.run(t, "/check"); !strings.Contains(out, `"Quiz" is due in 15 minutes`) {
		t.Fatalf("/check = %q", out)
	}
	if out := h.run(t, "/check"); !strings.Contains(out, "Nothing due soon") {
		t.Fatalf("second /check = %q", out)
	}

	ns, _ := h.store.ListNotifications(h.ctx, "user-1", store.NotificationFilter{})
	h.run(t, "/read "+ns[0].ID[:8])
	if out := h.run(t, "/inbox"); !strings.Contains(out, "No notifications") {
		t.Fatalf("/inbox after read = %q", out)
	}
	if out := h.run(t, "/inbox read quiz"); !strings.Contains(out, "Task Due Soon") {
		t.Fatalf("/inbox read = %q", out)
	}
	if out := h.run(t, "/read all"); !strings.Contains(out, "Marked 0") {
		t.Fatalf("/read all = %q", out)
	}
	h.run(t, "/dismiss "+ns[0].ID)
	if out := h.run(t, "/inbox all"); !strings.Contains(out, "No notifications") {
		t.Fatalf("/inbox all = %q", out)
	}
}

func TestDashboardAndMisc(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "")
	if out := h.run(t, "/dash"); !strings.Contains(out, "Good morning, Ada!") {
		t.Fatalf("/dash = %q", out)
	}
	if out := h.run(t, "/help"); !strings.Contains(out, "/pomo start|pause|reset|skip") {
		t.Fatalf("/help = %q", out)
	}
	if out := h.run(t, "/quote"); strings.TrimSpace(out) == "" {
		t.Fatal("/quote printed nothing")
	}
	if err := h.fail(t, "/quit"); !errors.Is(err, errQuit) {
		t.Fatalf("/quit error = %v", err)
	}
	if err := h.fail(t, "/bogus"); !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("/bogus error = %v", err)
	}
}
