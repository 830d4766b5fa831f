// Package scheduler runs the periodic deadline check and delivers what it
// finds.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/notexe/studydash/internal/notify"
)

// Sender delivers a formatted batch of notifications.
type Sender interface {
	SendMessage(ctx context.Context, text string) error
}

// Scheduler runs deadline checks on an interval and pushes new
// notifications to the sender, if any.
type Scheduler struct {
	store    notify.Store
	sender   Sender
	userID   string
	interval time.Duration
	window   time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Scheduler)

// WithSender enables delivery. Without one, notifications are only stored.
func WithSender(s Sender) Option {
	return func(sc *Scheduler) { sc.sender = s }
}

func WithClock(now func() time.Time) Option {
	return func(sc *Scheduler) { sc.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(sc *Scheduler) { sc.logger = l }
}

// New creates a Scheduler for one user.
func New(st notify.Store, userID string, interval, window time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    st,
		userID:   userID,
		interval: interval,
		window:   window,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "scheduler")
	return s
}

// Run blocks and checks immediately, then on every interval.
// It exits when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	s.logger.Info("started", "interval", s.interval, "window", s.window, "delivery", s.sender != nil)

	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one deadline check and returns how many notifications it
// created. Failures are logged.
func (s *Scheduler) Tick(ctx context.Context) int {
	s.logger.Debug("checking deadlines")

	created, err := notify.CheckUpcomingDeadlines(ctx, s.store, s.userID, s.now(), s.window)
	if err != nil {
		s.logger.Error("deadline check failed", "error", err)
	}
	if len(created) == 0 {
		s.logger.Debug("nothing due")
		return 0
	}
	s.logger.Info("notifications created", "count", len(created))

	if s.sender == nil {
		return len(created)
	}
	if err := s.sender.SendMessage(ctx, notify.FormatHTML(created)); err != nil {
		s.logger.Error("delivery failed", "error", err)
		return len(created)
	}
	s.logger.Info("notifications delivered", "count", len(created))
	return len(created)
}
