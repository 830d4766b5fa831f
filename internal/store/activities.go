package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/notexe/studydash/internal/model"
)

// ListActivities returns the most recent activities, newest first.
func (s *Store) ListActivities(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, action, task_title, created_at FROM activities
		WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var out []model.Activity
	for rows.Next() {
		var a model.Activity
		var createdAt string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.TaskTitle, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) recordActivity(ctx context.Context, tx *sql.Tx, userID, action, title string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO activities (id, user_id, action, task_title, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, newID(), userID, action, title, formatTime(s.timestamp()))
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}
