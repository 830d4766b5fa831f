package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/notexe/studydash/internal/model"
)

// NewStudySession holds a finished or in-progress focus interval.
// Duration is in minutes.
type NewStudySession struct {
	StartTime time.Time
	EndTime   *time.Time
	Duration  *float64
}

// CreateStudySession records a study session.
func (s *Store) CreateStudySession(ctx context.Context, userID string, in NewStudySession) (*model.StudySession, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if in.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: session start time is required", ErrInvalidArgs)
	}
	if in.EndTime != nil && in.EndTime.Before(in.StartTime) {
		return nil, fmt.Errorf("%w: session ends before it starts", ErrInvalidArgs)
	}
	if in.Duration != nil && *in.Duration < 0 {
		return nil, fmt.Errorf("%w: negative session duration", ErrInvalidArgs)
	}

	sess := model.StudySession{
		ID:        newID(),
		UserID:    userID,
		StartTime: in.StartTime.UTC().Truncate(time.Millisecond),
		Duration:  in.Duration,
	}
	if in.EndTime != nil {
		end := in.EndTime.UTC().Truncate(time.Millisecond)
		sess.EndTime = &end
	}

	var duration sql.NullFloat64
	if sess.Duration != nil {
		duration = sql.NullFloat64{Float64: *sess.Duration, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO study_sessions (id, user_id, start_time, end_time, duration)
		VALUES (?, ?, ?, ?, ?)
	`, sess.ID, sess.UserID, formatTime(sess.StartTime), formatNullTime(sess.EndTime), duration)
	if err != nil {
		return nil, fmt.Errorf("failed to insert study session: %w", err)
	}
	return &sess, nil
}

// ListStudySessions returns sessions ordered by start time. A nil since
// returns the full history, which the streak needs.
func (s *Store) ListStudySessions(ctx context.Context, userID string, since *time.Time) ([]model.StudySession, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, start_time, end_time, duration FROM study_sessions WHERE user_id = ?`
	args := []any{userID}
	if since != nil {
		query += ` AND start_time >= ?`
		args = append(args, formatTime(*since))
	}
	query += ` ORDER BY start_time ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list study sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.StudySession
	for rows.Next() {
		var sess model.StudySession
		var start string
		var end sql.NullString
		var duration sql.NullFloat64

		if err := rows.Scan(&sess.ID, &sess.UserID, &start, &end, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		if sess.StartTime, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		if sess.EndTime, err = parseNullTime(end); err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		if duration.Valid {
			d := duration.Float64
			sess.Duration = &d
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
