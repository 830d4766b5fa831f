package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/notexe/studydash/internal/model"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)}
	s, err := NewStore(":memory:", WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func ptr[T any](v T) *T { return &v }

func TestNewStoreOnDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dash.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()
	if _, err := s.CreateTask(ctx, alice, NewTask{Title: "persist"}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	s.Close()

	s, err = NewStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	tasks, err := s.ListTasks(ctx, alice, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "persist" {
		t.Fatalf("tasks after reopen = %+v", tasks)
	}
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	s, clock := newTestStore(t)
	ctx := context.Background()
	due := time.Date(2024, time.March, 20, 17, 0, 0, 0, time.UTC)

	task, err := s.CreateTask(ctx, alice, NewTask{Title: "  Essay  ", DueDate: &due, Category: "English"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.Title != "Essay" || task.Priority != model.PriorityMedium || task.Status != model.StatusIncomplete {
		t.Fatalf("created task = %+v", task)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Fatalf("DueDate = %v, want %v", task.DueDate, due)
	}

	updated, err := s.UpdateTask(ctx, alice, task.ID, TaskUpdate{Priority: ptr(model.Priority("high")), Category: ptr("Writing")})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Priority != model.PriorityHigh || updated.Category != "Writing" {
		t.Fatalf("updated task = %+v", updated)
	}

	clock.Advance(time.Hour)
	done, err := s.CompleteTask(ctx, alice, task.ID)
	if err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}
	if !done.Completed() || done.CompletedAt == nil || !done.CompletedAt.Equal(clock.Now()) {
		t.Fatalf("completed task = %+v", done)
	}

	reopened, err := s.SetTaskStatus(ctx, alice, task.ID, model.StatusIncomplete)
	if err != nil {
		t.Fatalf("SetTaskStatus() error = %v", err)
	}
	if reopened.Completed() || reopened.CompletedAt != nil {
		t.Fatalf("reopened task = %+v", reopened)
	}

	clock.Advance(time.Minute)
	if err := s.DeleteTask(ctx, alice, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := s.GetTask(ctx, alice, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTask() after delete error = %v, want ErrNotFound", err)
	}

	acts, err := s.ListActivities(ctx, alice, 5)
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}
	var actions []string
	for _, a := range acts {
		actions = append(actions, a.Action)
	}
	want := []string{model.ActionDeleted, model.ActionCompleted, model.ActionCreated}
	if len(actions) != len(want) {
		t.Fatalf("activities = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] || acts[i].TaskTitle != "Essay" {
			t.Fatalf("activities = %v, want %v", actions, want)
		}
	}
}

func TestTaskValidation(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID string
		in     NewTask
	}{
		{name: "missing user", userID: "", in: NewTask{Title: "x"}},
		{name: "blank title", userID: alice, in: NewTask{Title: "   "}},
		{name: "bad priority", userID: alice, in: NewTask{Title: "x", Priority: "urgent"}},
	}
	for _, tt := range tests {
		if _, err := s.CreateTask(ctx, tt.userID, tt.in); !errors.Is(err, ErrInvalidArgs) {
			t.Fatalf("%s: error = %v, want ErrInvalidArgs", tt.name, err)
		}
	}

	if _, err := s.SetTaskStatus(ctx, alice, "nope", "archived"); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("SetTaskStatus(archived) error = %v", err)
	}
	if _, err := s.UpdateTask(ctx, alice, "missing", TaskUpdate{Title: ptr("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateTask(missing) error = %v", err)
	}
}

func TestListTasksFilters(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	day := func(d int) *time.Time {
		v := time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC)
		return &v
	}

	for _, in := range []NewTask{
		{Title: "later", DueDate: day(25)},
		{Title: "no due"},
		{Title: "soon", DueDate: day(15)},
		{Title: "sooner", DueDate: day(14)},
		{Title: "done", DueDate: day(13)},
	} {
		task, err := s.CreateTask(ctx, alice, in)
		if err != nil {
			t.Fatalf("CreateTask(%q) error = %v", in.Title, err)
		}
		if in.Title == "done" {
			if _, err := s.CompleteTask(ctx, alice, task.ID); err != nil {
				t.Fatalf("CompleteTask() error = %v", err)
			}
		}
	}
	if _, err := s.CreateTask(ctx, bob, NewTask{Title: "bob's", DueDate: day(14)}); err != nil {
		t.Fatalf("CreateTask(bob) error = %v", err)
	}

	titles := func(f TaskFilter) []string {
		t.Helper()
		tasks, err := s.ListTasks(ctx, alice, f)
		if err != nil {
			t.Fatalf("ListTasks(%+v) error = %v", f, err)
		}
		var out []string
		for _, task := range tasks {
			out = append(out, task.Title)
		}
		return out
	}
	equal := func(got, want []string) bool {
		if len(got) != len(want) {
			return false
		}
		for i := range got {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}

	if got, want := titles(TaskFilter{}), []string{"done", "sooner", "soon", "later", "no due"}; !equal(got, want) {
		t.Fatalf("all = %v, want %v", got, want)
	}
	upcoming := TaskFilter{Status: model.StatusIncomplete, HasDueDate: true, Limit: 3}
	if got, want := titles(upcoming), []string{"sooner", "soon", "later"}; !equal(got, want) {
		t.Fatalf("upcoming = %v, want %v", got, want)
	}
	window := TaskFilter{DueFrom: day(14), DueTo: day(15)}
	if got, want := titles(window), []string{"sooner", "soon"}; !equal(got, want) {
		t.Fatalf("window = %v, want %v", got, want)
	}
}

func TestUserScoping(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, alice, NewTask{Title: "private"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	note, err := s.CreateNote(ctx, alice, NewNote{Title: "diary"})
	if err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}

	if _, err := s.GetTask(ctx, bob, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("bob GetTask() error = %v", err)
	}
	if err := s.DeleteTask(ctx, bob, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("bob DeleteTask() error = %v", err)
	}
	if err := s.DeleteNote(ctx, bob, note.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("bob DeleteNote() error = %v", err)
	}
	tasks, err := s.ListTasks(ctx, bob, TaskFilter{})
	if err != nil || len(tasks) != 0 {
		t.Fatalf("bob ListTasks() = %v, %v", tasks, err)
	}
}

func TestStudySessions(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, time.March, 14, 8, 0, 0, 0, time.UTC)
	end := start.Add(25 * time.Minute)

	if _, err := s.CreateStudySession(ctx, alice, NewStudySession{StartTime: start, EndTime: &end, Duration: ptr(25.0)}); err != nil {
		t.Fatalf("CreateStudySession() error = %v", err)
	}
	if _, err := s.CreateStudySession(ctx, alice, NewStudySession{StartTime: start.Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("CreateStudySession() error = %v", err)
	}
	if _, err := s.CreateStudySession(ctx, alice, NewStudySession{StartTime: start, EndTime: ptr(start.Add(-time.Minute))}); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("backwards session error = %v", err)
	}
	if _, err := s.CreateStudySession(ctx, alice, NewStudySession{StartTime: start, Duration: ptr(-1.0)}); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("negative duration error = %v", err)
	}

	all, err := s.ListStudySessions(ctx, alice, nil)
	if err != nil {
		t.Fatalf("ListStudySessions() error = %v", err)
	}
	if len(all) != 2 || all[0].Duration != nil || all[0].EndTime != nil {
		t.Fatalf("sessions = %+v", all)
	}
	last := all[1]
	if *last.Duration != 25 || !last.EndTime.Equal(end) || !last.StartTime.Equal(start) {
		t.Fatalf("session = %+v", last)
	}

	since := start.Add(-time.Hour)
	recent, err := s.ListStudySessions(ctx, alice, &since)
	if err != nil || len(recent) != 1 {
		t.Fatalf("ListStudySessions(since) = %v, %v", recent, err)
	}
}

func TestEvents(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	e, err := s.CreateEvent(ctx, alice, NewEvent{Title: "Exam", StartDate: start})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if e.Category != model.DefaultEventCategory || e.Color != model.DefaultEventColor ||
		e.ReminderTime != model.DefaultReminderMinutes || !e.EndDate.Equal(start) {
		t.Fatalf("defaults not applied: %+v", e)
	}

	if _, err := s.CreateEvent(ctx, alice, NewEvent{Title: "Later", StartDate: start.AddDate(0, 0, 10)}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if _, err := s.CreateEvent(ctx, alice, NewEvent{Title: "Bad", StartDate: start, EndDate: start.Add(-time.Hour)}); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("backwards event error = %v", err)
	}

	from, to := start.Add(-time.Hour), start.AddDate(0, 0, 7)
	events, err := s.ListEvents(ctx, alice, &from, &to)
	if err != nil || len(events) != 1 || events[0].ID != e.ID {
		t.Fatalf("ListEvents(window) = %+v, %v", events, err)
	}

	updated, err := s.UpdateEvent(ctx, alice, e.ID, EventUpdate{EndDate: ptr(start.Add(2 * time.Hour)), IsAllDay: ptr(true), Color: ptr("red")})
	if err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}
	if !updated.IsAllDay || updated.Color != "red" || !updated.EndDate.Equal(start.Add(2*time.Hour)) {
		t.Fatalf("updated event = %+v", updated)
	}
	if _, err := s.UpdateEvent(ctx, alice, e.ID, EventUpdate{StartDate: ptr(start.Add(3 * time.Hour))}); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("start after end error = %v", err)
	}

	if err := s.DeleteEvent(ctx, alice, e.ID); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}
	if err := s.DeleteEvent(ctx, alice, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteEvent() error = %v", err)
	}
}

func TestNotes(t *testing.T) {
	t.Parallel()

	s, clock := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateNote(ctx, alice, NewNote{Title: "Calculus", Content: "# Limits\n100% of it", Category: "Math"})
	if err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}
	clock.Advance(time.Minute)
	if _, err := s.CreateNote(ctx, alice, NewNote{Title: "Poems", Content: "roses", Category: "English"}); err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}

	notes, err := s.ListNotes(ctx, alice, NoteFilter{})
	if err != nil || len(notes) != 2 || notes[0].Title != "Poems" {
		t.Fatalf("ListNotes() = %+v, %v", notes, err)
	}
	if notes[1].Color != model.DefaultNoteColor {
		t.Fatalf("Color = %q", notes[1].Color)
	}

	byCategory, err := s.ListNotes(ctx, alice, NoteFilter{Category: "Math"})
	if err != nil || len(byCategory) != 1 || byCategory[0].ID != first.ID {
		t.Fatalf("ListNotes(category) = %+v, %v", byCategory, err)
	}
	bySearch, err := s.ListNotes(ctx, alice, NoteFilter{Search: "100%"})
	if err != nil || len(bySearch) != 1 || bySearch[0].ID != first.ID {
		t.Fatalf("ListNotes(search) = %+v, %v", bySearch, err)
	}

	clock.Advance(time.Minute)
	updated, err := s.UpdateNote(ctx, alice, first.ID, NoteUpdate{Content: ptr("# Derivatives")})
	if err != nil {
		t.Fatalf("UpdateNote() error = %v", err)
	}
	if updated.Content != "# Derivatives" || !updated.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updated note = %+v", updated)
	}

	cats, err := s.NoteCategories(ctx, alice)
	if err != nil || len(cats) != 2 || cats[0] != "English" {
		t.Fatalf("NoteCategories() = %v, %v", cats, err)
	}
}

func TestNotifications(t *testing.T) {
	t.Parallel()

	s, clock := newTestStore(t)
	ctx := context.Background()

	create := func(typ model.NotificationType, title, related string) *model.Notification {
		t.Helper()
		n, err := s.CreateNotification(ctx, alice, NewNotification{Type: typ, Title: title, Message: title + " body", RelatedID: related})
		if err != nil {
			t.Fatalf("CreateNotification() error = %v", err)
		}
		clock.Advance(time.Second)
		return n
	}

	first := create(model.NotificationTask, "Task Due Soon", "t1")
	create(model.NotificationType("weird"), "Welcome", "")
	create(model.NotificationPomodoro, "Pomodoro Complete", "")

	if first.ActionURL != model.NotificationDashboardURL {
		t.Fatalf("ActionURL = %q", first.ActionURL)
	}

	all, err := s.ListNotifications(ctx, alice, NotificationFilter{Read: ReadAll})
	if err != nil || len(all) != 3 || all[0].Title != "Pomodoro Complete" {
		t.Fatalf("ListNotifications() = %+v, %v", all, err)
	}
	if all[1].Type != model.NotificationSystem {
		t.Fatalf("unknown type stored as %q", all[1].Type)
	}

	exists, err := s.NotificationExists(ctx, alice, model.NotificationTask, "t1", "Task Due Soon")
	if err != nil || !exists {
		t.Fatalf("NotificationExists() = %v, %v", exists, err)
	}
	exists, err = s.NotificationExists(ctx, alice, model.NotificationTask, "t2", "Task Due Soon")
	if err != nil || exists {
		t.Fatalf("NotificationExists(other) = %v, %v", exists, err)
	}

	if err := s.MarkNotificationRead(ctx, alice, first.ID); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}
	if n, err := s.UnreadCount(ctx, alice); err != nil || n != 2 {
		t.Fatalf("UnreadCount() = %d, %v", n, err)
	}

	read, _ := s.ListNotifications(ctx, alice, NotificationFilter{Read: ReadOnly})
	if len(read) != 1 || read[0].ID != first.ID || !read[0].IsRead {
		t.Fatalf("read notifications = %+v", read)
	}
	search, _ := s.ListNotifications(ctx, alice, NotificationFilter{Search: "welcome"})
	if len(search) != 1 {
		t.Fatalf("search results = %+v", search)
	}

	changed, err := s.MarkAllNotificationsRead(ctx, alice)
	if err != nil || changed != 2 {
		t.Fatalf("MarkAllNotificationsRead() = %d, %v", changed, err)
	}
	unread, _ := s.ListNotifications(ctx, alice, NotificationFilter{Read: ReadUnread})
	if len(unread) != 0 {
		t.Fatalf("unread after mark all = %+v", unread)
	}

	if err := s.DeleteNotification(ctx, alice, first.ID); err != nil {
		t.Fatalf("DeleteNotification() error = %v", err)
	}
	if _, err := s.GetNotification(ctx, alice, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetNotification() after delete error = %v", err)
	}
}

func TestParseReadFilter(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]ReadFilter{
		"unread": ReadUnread,
		" READ ": ReadOnly,
		"all":    ReadAll,
		"":       ReadAll,
		"bogus":  ReadAll,
	} {
		if got := ParseReadFilter(in); got != want {
			t.Fatalf("ParseReadFilter(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCorruptTimestamp(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, alice, NewTask{Title: "broken"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE tasks SET created_at = 'yesterday' WHERE id = ?`, task.ID); err != nil {
		t.Fatalf("corrupt task: %v", err)
	}
	if _, err := s.ListTasks(ctx, alice, TaskFilter{}); err == nil {
		t.Fatal("ListTasks() with corrupt created_at returned no error")
	}
	if _, err := s.GetTask(ctx, alice, task.ID); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTask() error = %v, want parse error", err)
	}

	if _, err := s.CreateStudySession(ctx, alice, NewStudySession{StartTime: time.Now()}); err != nil {
		t.Fatalf("CreateStudySession() error = %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE study_sessions SET end_time = '25 minutes later' WHERE user_id = ?`, alice); err != nil {
		t.Fatalf("corrupt session: %v", err)
	}
	if _, err := s.ListStudySessions(ctx, alice, nil); err == nil {
		t.Fatal("ListStudySessions() with corrupt end_time returned no error")
	}
}
