package dashboard

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/notexe/studydash/internal/model"
	"github.com/notexe/studydash/internal/motivation"
	"github.com/notexe/studydash/internal/notify"
	"github.com/notexe/studydash/internal/pomodoro"
	"github.com/notexe/studydash/internal/store"
)

var (
	user    = &model.User{ID: "user-1", Name: "Ada"}
	now     = time.Date(2024, time.May, 8, 15, 0, 0, 0, time.UTC) // Wednesday
	errDown = errors.New("database is locked")
)

// flakyStore fails the listed sources and delegates the rest.
type flakyStore struct {
	*store.Store
	fail map[string]bool
}

func (f *flakyStore) ListTasks(ctx context.Context, userID string, filter store.TaskFilter) ([]model.Task, error) {
	src := SourceTasks
	if filter.Limit > 0 {
		src = SourceUpcoming
	}
	if f.fail[src] {
		return nil, errDown
	}
	return f.Store.ListTasks(ctx, userID, filter)
}

func (f *flakyStore) ListStudySessions(ctx context.Context, userID string, since *time.Time) ([]model.StudySession, error) {
	if f.fail[SourceSessions] {
		return nil, errDown
	}
	return f.Store.ListStudySessions(ctx, userID, since)
}

func (f *flakyStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	if f.fail[SourceNotifications] {
		return 0, errDown
	}
	return f.Store.UnreadCount(ctx, userID)
}

type fixedMotivator struct{ streak int }

func (m *fixedMotivator) Message(_ context.Context, streak int) motivation.Message {
	m.streak = streak
	return motivation.Message{Text: "keep going"}
}

func newService(t *testing.T, fail map[string]bool, opts ...Option) (*Service, *store.Store, *bytes.Buffer) {
	t.Helper()
	st, err := store.NewStore(":memory:", store.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	var logs bytes.Buffer
	opts = append([]Option{
		WithClock(func() time.Time { return now }),
		WithLocation(time.UTC),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	}, opts...)
	return NewService(&flakyStore{Store: st, fail: fail}, user, opts...), st, &logs
}

func seed(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	today := now.Add(2 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)
	for _, in := range []store.NewTask{
		{Title: "Essay", DueDate: &today, Category: "English"},
		{Title: "Problem set", DueDate: &tomorrow, Category: "Math"},
		{Title: "Read", Category: "English"},
	} {
		if _, err := st.CreateTask(ctx, user.ID, in); err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
	}
	for d := 0; d < 3; d++ {
		start := now.AddDate(0, 0, -d).Add(-time.Hour)
		mins := 30.0
		if _, err := st.CreateStudySession(ctx, user.ID, store.NewStudySession{StartTime: start, Duration: &mins}); err != nil {
			t.Fatalf("CreateStudySession() error = %v", err)
		}
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	m := &fixedMotivator{}
	svc, st, _ := newService(t, nil, WithMotivator(m))
	seed(t, st)

	sum := svc.Summary(context.Background())
	if len(sum.Errors) != 0 {
		t.Fatalf("Errors = %v", sum.Errors)
	}
	if sum.Streak != 3 || m.streak != 3 || sum.Motivation.Text != "keep going" {
		t.Fatalf("streak = %d, motivator saw %d, motivation %+v", sum.Streak, m.streak, sum.Motivation)
	}
	if sum.WeeklyProgress != 3 || sum.FocusToday != 30 {
		t.Fatalf("weekly = %d, focus = %v", sum.WeeklyProgress, sum.FocusToday)
	}
	if sum.Due.DueToday != 1 || sum.Due.Upcoming != 1 {
		t.Fatalf("due = %+v", sum.Due)
	}
	if len(sum.Upcoming) != 2 || sum.Upcoming[0].Title != "Essay" {
		t.Fatalf("upcoming = %+v", sum.Upcoming)
	}
	if len(sum.Activities) != 3 || len(sum.Breakdown) != 2 || sum.Breakdown[0].Value != 2 {
		t.Fatalf("activities = %d, breakdown = %+v", len(sum.Activities), sum.Breakdown)
	}
}

func TestSummaryDegradesOnFetchErrors(t *testing.T) {
	t.Parallel()

	svc, st, logs := newService(t, map[string]bool{SourceSessions: true, SourceNotifications: true})
	seed(t, st)

	sum := svc.Summary(context.Background())
	if len(sum.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2", sum.Errors)
	}
	for _, fe := range sum.Errors {
		if !errors.Is(fe, errDown) {
			t.Fatalf("error %v does not wrap the cause", fe)
		}
	}
	if sum.Errors[0].Source != SourceSessions || sum.Errors[1].Source != SourceNotifications {
		t.Fatalf("sources = %s, %s", sum.Errors[0].Source, sum.Errors[1].Source)
	}
	if sum.Streak != 0 || sum.FocusToday != 0 || sum.Unread != 0 {
		t.Fatalf("degraded summary = %+v", sum.Summary)
	}
	if sum.Due.DueToday != 1 {
		t.Fatalf("tasks should still load, due = %+v", sum.Due)
	}
	if strings.Count(logs.String(), "fetch failed") != 2 {
		t.Fatalf("logs = %s", logs.String())
	}
}

func TestSummaryAllSourcesDown(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t, map[string]bool{
		SourceTasks: true, SourceSessions: true, SourceUpcoming: true, SourceNotifications: true,
	})
	sum := svc.Summary(context.Background())
	if len(sum.Errors) != 4 {
		t.Fatalf("Errors = %v", sum.Errors)
	}
	if len(sum.Breakdown) != 0 || len(sum.Productivity) != 7 || sum.Today.Total != 0 {
		t.Fatalf("summary = %+v", sum.Summary)
	}
}

func TestCompleteTaskNotifies(t *testing.T) {
	t.Parallel()

	svc, st, _ := newService(t, nil)
	ctx := context.Background()
	task, err := st.CreateTask(ctx, user.ID, store.NewTask{Title: "Essay"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	done, err := svc.CompleteTask(ctx, task.ID)
	if err != nil || !done.Completed() {
		t.Fatalf("CompleteTask() = %+v, %v", done, err)
	}
	ns, err := st.ListNotifications(ctx, user.ID, store.NotificationFilter{})
	if err != nil || len(ns) != 1 || ns[0].Title != notify.TitleTaskCompleted {
		t.Fatalf("notifications = %+v, %v", ns, err)
	}

	if _, err := svc.CompleteTask(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("CompleteTask(missing) error = %v", err)
	}
}

func TestRecordFocus(t *testing.T) {
	t.Parallel()

	svc, st, _ := newService(t, nil)
	ctx := context.Background()

	transitions := []pomodoro.Transition{
		{From: pomodoro.PhaseWork, To: pomodoro.PhaseBreak, Elapsed: 25 * time.Minute},
		{From: pomodoro.PhaseWork, To: pomodoro.PhaseBreak, Elapsed: 10 * time.Minute, Skipped: true},
		{From: pomodoro.PhaseWork, To: pomodoro.PhaseBreak, Skipped: true},
		{From: pomodoro.PhaseBreak, To: pomodoro.PhaseWork, Elapsed: 5 * time.Minute},
	}
	for _, tr := range transitions {
		if err := svc.RecordFocus(ctx, tr); err != nil {
			t.Fatalf("RecordFocus(%+v) error = %v", tr, err)
		}
	}

	sessions, err := st.ListStudySessions(ctx, user.ID, nil)
	if err != nil || len(sessions) != 2 {
		t.Fatalf("sessions = %+v, %v", sessions, err)
	}
	total := 0.0
	for _, s := range sessions {
		total += *s.Duration
	}
	if total != 35 {
		t.Fatalf("total minutes = %v, want 35", total)
	}

	ns, err := st.ListNotifications(ctx, user.ID, store.NotificationFilter{})
	if err != nil || len(ns) != 1 || ns[0].Type != model.NotificationPomodoro {
		t.Fatalf("notifications = %+v, %v", ns, err)
	}
	if !strings.Contains(ns[0].Message, "25 minute") {
		t.Fatalf("message = %q", ns[0].Message)
	}

	svc.TransitionHook()(pomodoro.Transition{From: pomodoro.PhaseWork, Elapsed: time.Minute})
	svc.Close()
	if sessions, _ := st.ListStudySessions(ctx, user.ID, nil); len(sessions) != 3 {
		t.Fatalf("hook did not record, sessions = %d", len(sessions))
	}
}

// heldStore blocks session writes until release is closed.
type heldStore struct {
	*store.Store
	release chan struct{}
}

func (h *heldStore) CreateStudySession(ctx context.Context, userID string, in store.NewStudySession) (*model.StudySession, error) {
	<-h.release
	return h.Store.CreateStudySession(ctx, userID, in)
}

func TestTransitionHookDoesNotWaitOnStore(t *testing.T) {
	t.Parallel()

	st, err := store.NewStore(":memory:", store.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	held := &heldStore{Store: st, release: make(chan struct{})}
	svc := NewService(held, user, WithClock(func() time.Time { return now }),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	hook := svc.TransitionHook()

	returned := make(chan struct{})
	go func() {
		hook(pomodoro.Transition{From: pomodoro.PhaseWork, To: pomodoro.PhaseBreak, Elapsed: 25 * time.Minute})
		hook(pomodoro.Transition{From: pomodoro.PhaseWork, To: pomodoro.PhaseBreak, Elapsed: 5 * time.Minute, Skipped: true})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("hook blocked on the store")
	}

	close(held.release)
	svc.Close()

	sessions, err := st.ListStudySessions(context.Background(), user.ID, nil)
	if err != nil || len(sessions) != 2 {
		t.Fatalf("sessions = %+v, %v", sessions, err)
	}
	for _, s := range sessions {
		if s.EndTime == nil || !s.EndTime.Equal(now) {
			t.Fatalf("end time = %v, want %v", s.EndTime, now)
		}
	}

	// Closed services drop further transitions.
	hook(pomodoro.Transition{From: pomodoro.PhaseWork, Elapsed: time.Minute})
	if sessions, _ := st.ListStudySessions(context.Background(), user.ID, nil); len(sessions) != 2 {
		t.Fatalf("sessions after close = %d", len(sessions))
	}
}
