package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/notexe/studydash/internal/model"
)

const notificationColumns = `id, user_id, type, title, message, related_id, action_url, is_read, created_at`

// ReadFilter selects notifications by read state.
type ReadFilter string

const (
	ReadAll    ReadFilter = "all"
	ReadUnread ReadFilter = "unread"
	ReadOnly   ReadFilter = "read"
)

// ParseReadFilter accepts all, unread or read; anything else is all.
func ParseReadFilter(s string) ReadFilter {
	switch f := ReadFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case ReadUnread, ReadOnly:
		return f
	default:
		return ReadAll
	}
}

// NewNotification holds the fields for a notification. An empty ActionURL
// points at the dashboard.
type NewNotification struct {
	Type      model.NotificationType
	Title     string
	Message   string
	RelatedID string
	ActionURL string
}

// NotificationFilter narrows ListNotifications. Search matches title or
// message.
type NotificationFilter struct {
	Read   ReadFilter
	Search string
	Limit  int
}

// CreateNotification inserts a notification.
func (s *Store) CreateNotification(ctx context.Context, userID string, in NewNotification) (*model.Notification, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: notification title is required", ErrInvalidArgs)
	}

	n := model.Notification{
		ID:        newID(),
		UserID:    userID,
		Type:      model.ParseNotificationType(string(in.Type)),
		Title:     title,
		Message:   in.Message,
		RelatedID: in.RelatedID,
		ActionURL: orDefault(in.ActionURL, model.NotificationDashboardURL),
		CreatedAt: s.timestamp(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedID, n.ActionURL,
		boolToInt(n.IsRead), formatTime(n.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}
	return &n, nil
}

// ListNotifications returns notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string, f NotificationFilter) ([]model.Notification, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []any{userID}
	switch f.Read {
	case ReadUnread:
		query += ` AND is_read = 0`
	case ReadOnly:
		query += ` AND is_read = 1`
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		query += ` AND (title LIKE ? ESCAPE '\' OR message LIKE ? ESCAPE '\')`
		p := likePattern(q)
		args = append(args, p, p)
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// NotificationExists reports whether the user already has a notification
// with the same type, related record and title.
func (s *Store) NotificationExists(ctx context.Context, userID string, typ model.NotificationType, relatedID, title string) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = ? AND type = ? AND related_id = ? AND title = ?
	`, userID, typ, relatedID, title).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up notification: %w", err)
	}
	return n > 0, nil
}

// GetNotification returns a single notification owned by userID.
func (s *Store) GetNotification(ctx context.Context, userID, id string) (*model.Notification, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE user_id = ? AND id = ?`, userID, id)

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// MarkNotificationRead flags one notification as read.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return checkAffected(result, "notification", id)
}

// MarkAllNotificationsRead flags every unread notification as read and
// returns how many changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	result, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

// DeleteNotification removes a notification.
func (s *Store) DeleteNotification(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return checkAffected(result, "notification", id)
}

// UnreadCount returns the number of unread notifications.
func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0
	`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func scanNotification(row rowScanner) (*model.Notification, error) {
	var n model.Notification
	var isRead int
	var createdAt string

	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.RelatedID,
		&n.ActionURL, &isRead, &createdAt); err != nil {
		return nil, err
	}

	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	n.IsRead = isRead != 0
	n.CreatedAt = created
	return &n, nil
}
