package notify

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/notexe/studydash/internal/model"
	"github.com/notexe/studydash/internal/store"
)

// DefaultWindow is how far ahead deadlines are announced.
const DefaultWindow = 15 * time.Minute

// Store is the subset of the record store the deadline check needs.
type Store interface {
	ListTasks(ctx context.Context, userID string, f store.TaskFilter) ([]model.Task, error)
	ListEvents(ctx context.Context, userID string, from, to *time.Time) ([]model.Event, error)
	NotificationExists(ctx context.Context, userID string, typ model.NotificationType, relatedID, title string) (bool, error)
	CreateNotification(ctx context.Context, userID string, in store.NewNotification) (*model.Notification, error)
}

// CheckUpcomingDeadlines creates notifications for incomplete tasks due
// within window of now, events starting within it, events that started in
// the previous window and incomplete tasks already past due. A notification
// with the same type, related record and title is never created twice.
// It returns the notifications created by this call.
func CheckUpcomingDeadlines(ctx context.Context, s Store, userID string, now time.Time, window time.Duration) ([]model.Notification, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	until := now.Add(window)
	minutes := int(math.Round(window.Minutes()))

	var pending []store.NewNotification

	due, err := s.ListTasks(ctx, userID, store.TaskFilter{Status: model.StatusIncomplete, DueFrom: &now, DueTo: &until})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks due soon: %w", err)
	}
	for _, t := range due {
		pending = append(pending, TaskDueSoon(t, minutes))
	}

	overdueTo := now.Add(-time.Millisecond)
	overdue, err := s.ListTasks(ctx, userID, store.TaskFilter{Status: model.StatusIncomplete, HasDueDate: true, DueTo: &overdueTo})
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}
	for _, t := range overdue {
		pending = append(pending, TaskOverdue(t))
	}

	upcoming, err := s.ListEvents(ctx, userID, &now, &until)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	for _, e := range upcoming {
		pending = append(pending, EventReminder(e))
	}

	since := now.Add(-window)
	started, err := s.ListEvents(ctx, userID, &since, &overdueTo)
	if err != nil {
		return nil, fmt.Errorf("failed to list started events: %w", err)
	}
	for _, e := range started {
		pending = append(pending, EventStarting(e))
	}

	var created []model.Notification
	for _, n := range pending {
		exists, err := s.NotificationExists(ctx, userID, n.Type, n.RelatedID, n.Title)
		if err != nil {
			return created, fmt.Errorf("failed to check notification: %w", err)
		}
		if exists {
			continue
		}
		got, err := s.CreateNotification(ctx, userID, n)
		if err != nil {
			return created, fmt.Errorf("failed to create notification: %w", err)
		}
		created = append(created, *got)
	}
	return created, nil
}
