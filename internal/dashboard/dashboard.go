// Package dashboard fetches one user's records, feeds them to the
// aggregation engine and records completed focus sessions.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/notexe/studydash/internal/model"
	"github.com/notexe/studydash/internal/motivation"
	"github.com/notexe/studydash/internal/notify"
	"github.com/notexe/studydash/internal/pomodoro"
	"github.com/notexe/studydash/internal/stats"
	"github.com/notexe/studydash/internal/store"
)

const (
	recentActivityLimit = 5
	upcomingTaskLimit   = 3
	hookTimeout         = 5 * time.Second
	focusQueueSize      = 16
)

// Fetch sources named in DataFetchError.
const (
	SourceTasks         = "tasks"
	SourceSessions      = "study_sessions"
	SourceActivities    = "activities"
	SourceUpcoming      = "upcoming_tasks"
	SourceNotifications = "notifications"
)

// Store is the part of the record store the dashboard reads and writes.
type Store interface {
	ListTasks(ctx context.Context, userID string, f store.TaskFilter) ([]model.Task, error)
	ListStudySessions(ctx context.Context, userID string, since *time.Time) ([]model.StudySession, error)
	ListActivities(ctx context.Context, userID string, limit int) ([]model.Activity, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	CreateStudySession(ctx context.Context, userID string, in store.NewStudySession) (*model.StudySession, error)
	CreateNotification(ctx context.Context, userID string, in store.NewNotification) (*model.Notification, error)
	CompleteTask(ctx context.Context, userID, id string) (*model.Task, error)
}

// Motivator produces the motivation line for a streak.
type Motivator interface {
	Message(ctx context.Context, streak int) motivation.Message
}

// DataFetchError reports one collection that could not be loaded.
type DataFetchError struct {
	Source string
	Err    error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Source, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// Summary is everything the dashboard view shows.
type Summary struct {
	stats.Summary
	User       *model.User        `json:"user"`
	Now        time.Time          `json:"now"`
	Upcoming   []model.Task       `json:"upcoming"`
	Activities []model.Activity   `json:"activities"`
	Unread     int                `json:"unread"`
	Motivation motivation.Message `json:"motivation"`
	Errors     []*DataFetchError  `json:"-"`
}

// Service builds dashboard summaries for a single user.
type Service struct {
	store     Store
	user      *model.User
	loc       *time.Location
	now       func() time.Time
	motivator Motivator
	logger    *slog.Logger

	focusOnce sync.Once
	focusMu   sync.Mutex
	focusQ    chan focusEvent
	focusDone chan struct{}
	closed    bool
}

// focusEvent is a transition stamped with the time the phase ended.
type focusEvent struct {
	tr  pomodoro.Transition
	end time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the zone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMotivator sets the source of the motivation line.
func WithMotivator(m Motivator) Option {
	return func(s *Service) { s.motivator = m }
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a dashboard service for user backed by st.
func NewService(st Store, user *model.User, opts ...Option) *Service {
	s := &Service{
		store:  st,
		user:   user,
		loc:    time.Local,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "dashboard")
	return s
}

// User returns the user the service acts for.
func (s *Service) User() *model.User { return s.user }

// Location returns the zone used for calendar days.
func (s *Service) Location() *time.Location { return s.loc }

// Now returns the current time in the service's zone.
func (s *Service) Now() time.Time { return s.now().In(s.loc) }

// Summary fetches a fresh snapshot and derives every widget. Fetch
// failures are logged, the collection is treated as empty and the failure
// is listed in Summary.Errors.
func (s *Service) Summary(ctx context.Context) Summary {
	now := s.Now()
	uid := s.user.ID
	out := Summary{User: s.user, Now: now}

	fail := func(source string, err error) {
		fe := &DataFetchError{Source: source, Err: err}
		s.logger.Error("fetch failed", "source", source, "error", err)
		out.Errors = append(out.Errors, fe)
	}

	tasks, err := s.store.ListTasks(ctx, uid, store.TaskFilter{})
	if err != nil {
		fail(SourceTasks, err)
		tasks = nil
	}
	sessions, err := s.store.ListStudySessions(ctx, uid, nil)
	if err != nil {
		fail(SourceSessions, err)
		sessions = nil
	}
	if out.Activities, err = s.store.ListActivities(ctx, uid, recentActivityLimit); err != nil {
		fail(SourceActivities, err)
		out.Activities = nil
	}
	upcoming := store.TaskFilter{Status: model.StatusIncomplete, HasDueDate: true, Limit: upcomingTaskLimit}
	if out.Upcoming, err = s.store.ListTasks(ctx, uid, upcoming); err != nil {
		fail(SourceUpcoming, err)
		out.Upcoming = nil
	}
	if out.Unread, err = s.store.UnreadCount(ctx, uid); err != nil {
		fail(SourceNotifications, err)
		out.Unread = 0
	}

	out.Summary = stats.Summarize(stats.Input{Tasks: tasks, Sessions: sessions, Now: now})
	if s.motivator != nil {
		out.Motivation = s.motivator.Message(ctx, out.Streak)
	}
	return out
}

// CompleteTask marks a task done and leaves a completion notification.
// A failed notification is logged, not returned.
func (s *Service) CompleteTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.store.CompleteTask(ctx, s.user.ID, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.CreateNotification(ctx, s.user.ID, notify.TaskCompleted(*task)); err != nil {
		s.logger.Warn("completion notification failed", "task", task.ID, "error", err)
	}
	return task, nil
}

// RecordFocus stores a finished or skipped work phase as a study session
// ending now. A phase that ran to zero also gets a pomodoro notification.
func (s *Service) RecordFocus(ctx context.Context, tr pomodoro.Transition) error {
	return s.recordFocus(ctx, tr, s.now())
}

func (s *Service) recordFocus(ctx context.Context, tr pomodoro.Transition, end time.Time) error {
	if tr.From != pomodoro.PhaseWork || tr.Elapsed <= 0 {
		return nil
	}

	start := end.Add(-tr.Elapsed)
	minutes := tr.Elapsed.Minutes()
	if _, err := s.store.CreateStudySession(ctx, s.user.ID, store.NewStudySession{
		StartTime: start,
		EndTime:   &end,
		Duration:  &minutes,
	}); err != nil {
		return fmt.Errorf("failed to record focus session: %w", err)
	}
	s.logger.Info("focus session recorded", "minutes", minutes, "skipped", tr.Skipped)

	if tr.Skipped {
		return nil
	}
	if _, err := s.store.CreateNotification(ctx, s.user.ID, notify.PomodoroComplete(minutes)); err != nil {
		return fmt.Errorf("failed to create pomodoro notification: %w", err)
	}
	return nil
}

// TransitionHook adapts RecordFocus for pomodoro.WithOnTransition. The hook
// only queues the transition; a background worker does the write so the
// timer goroutine never waits on the store. Work phases are dropped with a
// warning when the queue is full or the service is closed.
func (s *Service) TransitionHook() func(pomodoro.Transition) {
	s.focusOnce.Do(s.startFocusWorker)
	return func(tr pomodoro.Transition) {
		if tr.From != pomodoro.PhaseWork || tr.Elapsed <= 0 {
			return
		}
		ev := focusEvent{tr: tr, end: s.now()}

		s.focusMu.Lock()
		defer s.focusMu.Unlock()
		if s.closed {
			s.logger.Warn("focus session dropped, service closed", "elapsed", tr.Elapsed)
			return
		}
		select {
		case s.focusQ <- ev:
		default:
			s.logger.Warn("focus session dropped, queue full", "elapsed", tr.Elapsed)
		}
	}
}

func (s *Service) startFocusWorker() {
	s.focusMu.Lock()
	defer s.focusMu.Unlock()
	if s.closed {
		return
	}
	q, done := make(chan focusEvent, focusQueueSize), make(chan struct{})
	s.focusQ, s.focusDone = q, done
	go func() {
		defer close(done)
		for ev := range q {
			ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
			if err := s.recordFocus(ctx, ev.tr, ev.end); err != nil {
				s.logger.Error("recording focus failed", "error", err)
			}
			cancel()
		}
	}()
}

// Close stops accepting transitions and waits until queued focus sessions
// are written.
func (s *Service) Close() {
	s.focusMu.Lock()
	if s.closed {
		s.focusMu.Unlock()
		return
	}
	s.closed = true
	started := s.focusQ != nil
	if started {
		close(s.focusQ)
	}
	s.focusMu.Unlock()

	if started {
		<-s.focusDone
	}
}
