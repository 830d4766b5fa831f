package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notexe/studydash/internal/model"
)

const eventColumns = `id, user_id, title, description, start_date, end_date, category, color, reminder_time, is_all_day, created_at`

// NewEvent holds the fields for a calendar entry. Empty Category, Color
// and a zero ReminderTime take the model defaults; a zero EndDate means
// the event ends when it starts.
type NewEvent struct {
	Title        string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	Category     string
	Color        string
	ReminderTime int
	IsAllDay     bool
}

// EventUpdate holds optional fields for a partial update.
type EventUpdate struct {
	Title        *string
	Description  *string
	StartDate    *time.Time
	EndDate      *time.Time
	Category     *string
	Color        *string
	ReminderTime *int
	IsAllDay     *bool
}

// CreateEvent inserts a calendar event.
func (s *Store) CreateEvent(ctx context.Context, userID string, in NewEvent) (*model.Event, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: event title is required", ErrInvalidArgs)
	}
	if in.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: event start date is required", ErrInvalidArgs)
	}
	end := in.EndDate
	if end.IsZero() {
		end = in.StartDate
	}
	if end.Before(in.StartDate) {
		return nil, fmt.Errorf("%w: event ends before it starts", ErrInvalidArgs)
	}
	if in.ReminderTime < 0 {
		return nil, fmt.Errorf("%w: negative reminder time", ErrInvalidArgs)
	}

	e := model.Event{
		ID:           newID(),
		UserID:       userID,
		Title:        title,
		Description:  in.Description,
		StartDate:    in.StartDate.UTC().Truncate(time.Millisecond),
		EndDate:      end.UTC().Truncate(time.Millisecond),
		Category:     orDefault(in.Category, model.DefaultEventCategory),
		Color:        orDefault(in.Color, model.DefaultEventColor),
		ReminderTime: in.ReminderTime,
		IsAllDay:     in.IsAllDay,
		CreatedAt:    s.timestamp(),
	}
	if e.ReminderTime == 0 {
		e.ReminderTime = model.DefaultReminderMinutes
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.Title, e.Description, formatTime(e.StartDate), formatTime(e.EndDate),
		e.Category, e.Color, e.ReminderTime, boolToInt(e.IsAllDay), formatTime(e.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return &e, nil
}

// ListEvents returns events starting in [from, to], ordered by start.
// Nil bounds are open.
func (s *Store) ListEvents(ctx context.Context, userID string, from, to *time.Time) ([]model.Event, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = ?`
	args := []any{userID}
	if from != nil {
		query += ` AND start_date >= ?`
		args = append(args, formatTime(*from))
	}
	if to != nil {
		query += ` AND start_date <= ?`
		args = append(args, formatTime(*to))
	}
	query += ` ORDER BY start_date ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetEvent returns a single event owned by userID.
func (s *Store) GetEvent(ctx context.Context, userID, id string) (*model.Event, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE user_id = ? AND id = ?`, userID, id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// UpdateEvent applies partial updates to an event.
func (s *Store) UpdateEvent(ctx context.Context, userID, id string, u EventUpdate) (*model.Event, error) {
	current, err := s.GetEvent(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	start, end := current.StartDate, current.EndDate
	var b setBuilder
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: event title is required", ErrInvalidArgs)
		}
		b.add("title", title)
	}
	if u.Description != nil {
		b.add("description", *u.Description)
	}
	if u.StartDate != nil {
		start = *u.StartDate
		b.add("start_date", formatTime(start))
	}
	if u.EndDate != nil {
		end = *u.EndDate
		b.add("end_date", formatTime(end))
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: event ends before it starts", ErrInvalidArgs)
	}
	if u.Category != nil {
		b.add("category", orDefault(*u.Category, model.DefaultEventCategory))
	}
	if u.Color != nil {
		b.add("color", orDefault(*u.Color, model.DefaultEventColor))
	}
	if u.ReminderTime != nil {
		if *u.ReminderTime < 0 {
			return nil, fmt.Errorf("%w: negative reminder time", ErrInvalidArgs)
		}
		b.add("reminder_time", *u.ReminderTime)
	}
	if u.IsAllDay != nil {
		b.add("is_all_day", boolToInt(*u.IsAllDay))
	}

	if b.empty() {
		return current, nil
	}

	args := append(b.args, userID, id)
	result, err := s.db.ExecContext(ctx, `UPDATE events SET `+b.sql()+` WHERE user_id = ? AND id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	if err := checkAffected(result, "event", id); err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, userID, id)
}

// DeleteEvent removes an event.
func (s *Store) DeleteEvent(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return checkAffected(result, "event", id)
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	var start, end, createdAt string
	var allDay int

	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &start, &end,
		&e.Category, &e.Color, &e.ReminderTime, &allDay, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if e.StartDate, err = parseTime(start); err != nil {
		return nil, err
	}
	if e.EndDate, err = parseTime(end); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	e.IsAllDay = allDay != 0
	return &e, nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
