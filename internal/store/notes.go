package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/notexe/studydash/internal/model"
)

const noteColumns = `id, user_id, title, content, category, color, created_at, updated_at`

// NewNote holds the fields for a note. Content is markdown.
type NewNote struct {
	Title    string
	Content  string
	Category string
	Color    string
}

// NoteFilter narrows ListNotes. Search matches title or content.
type NoteFilter struct {
	Category string
	Search   string
}

// NoteUpdate holds optional fields for a partial update.
type NoteUpdate struct {
	Title    *string
	Content  *string
	Category *string
	Color    *string
}

// CreateNote inserts a note.
func (s *Store) CreateNote(ctx context.Context, userID string, in NewNote) (*model.Note, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: note title is required", ErrInvalidArgs)
	}

	now := s.timestamp()
	n := model.Note{
		ID:        newID(),
		UserID:    userID,
		Title:     title,
		Content:   in.Content,
		Category:  strings.TrimSpace(in.Category),
		Color:     orDefault(in.Color, model.DefaultNoteColor),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Title, n.Content, n.Category, n.Color, formatTime(n.CreatedAt), formatTime(n.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}
	return &n, nil
}

// ListNotes returns notes, most recently updated first.
func (s *Store) ListNotes(ctx context.Context, userID string, f NoteFilter) ([]model.Note, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ?`
	args := []any{userID}
	if c := strings.TrimSpace(f.Category); c != "" {
		query += ` AND category = ?`
		args = append(args, c)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		query += ` AND (title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`
		p := likePattern(q)
		args = append(args, p, p)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// GetNote returns a single note owned by userID.
func (s *Store) GetNote(ctx context.Context, userID, id string) (*model.Note, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND id = ?`, userID, id)

	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return n, nil
}

// UpdateNote applies partial updates and bumps UpdatedAt.
func (s *Store) UpdateNote(ctx context.Context, userID, id string, u NoteUpdate) (*model.Note, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var b setBuilder
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: note title is required", ErrInvalidArgs)
		}
		b.add("title", title)
	}
	if u.Content != nil {
		b.add("content", *u.Content)
	}
	if u.Category != nil {
		b.add("category", strings.TrimSpace(*u.Category))
	}
	if u.Color != nil {
		b.add("color", orDefault(*u.Color, model.DefaultNoteColor))
	}

	if b.empty() {
		return s.GetNote(ctx, userID, id)
	}
	b.add("updated_at", formatTime(s.timestamp()))

	args := append(b.args, userID, id)
	result, err := s.db.ExecContext(ctx, `UPDATE notes SET `+b.sql()+` WHERE user_id = ? AND id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	if err := checkAffected(result, "note", id); err != nil {
		return nil, err
	}
	return s.GetNote(ctx, userID, id)
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return checkAffected(result, "note", id)
}

// NoteCategories returns the distinct non-empty categories in use.
func (s *Store) NoteCategories(ctx context.Context, userID string) ([]string, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM notes WHERE user_id = ? AND category != '' ORDER BY category
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list note categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan note category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanNote(row rowScanner) (*model.Note, error) {
	var n model.Note
	var createdAt, updatedAt string

	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category, &n.Color,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}
