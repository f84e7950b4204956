package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// PostgresStore is the only path to the notes table. Every method takes
// the owner id as a mandatory argument and filters on it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const noteColumns = `id, user_id, title, content, created_at, updated_at`

func scanNote(scanner interface{ Scan(...any) error }) (Note, error) {
	var (
		note    Note
		content []byte
	)
	if err := scanner.Scan(&note.ID, &note.OwnerID, &note.Title, &content, &note.CreatedAt, &note.UpdatedAt); err != nil {
		return Note{}, err
	}
	if content != nil {
		note.Content = json.RawMessage(content)
	}
	return note, nil
}

// CreateNote inserts a note for ownerID and returns the stored row.
func (s *PostgresStore) CreateNote(ctx context.Context, ownerID, title string, content json.RawMessage) (Note, error) {
	const op = "store.CreateNote"
	if strings.TrimSpace(ownerID) == "" {
		return Note{}, ErrOwnerRequired
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO notes (id, user_id, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+noteColumns,
		uuid.NewString(), ownerID, title, jsonParam(content),
	)
	note, err := scanNote(row)
	if err != nil {
		return Note{}, persistenceError(op, err)
	}
	return note, nil
}

// GetNote returns the note only when both id and owner match.
func (s *PostgresStore) GetNote(ctx context.Context, noteID, ownerID string) (Note, error) {
	const op = "store.GetNote"
	if strings.TrimSpace(ownerID) == "" {
		return Note{}, ErrOwnerRequired
	}
	if !validNoteID(noteID) {
		return Note{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE id = $1 AND user_id = $2
	`, noteID, ownerID)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	if err != nil {
		return Note{}, persistenceError(op, err)
	}
	return note, nil
}

// ListNotes returns every note of ownerID in creation order. Presentation
// order is the caller's concern.
func (s *PostgresStore) ListNotes(ctx context.Context, ownerID string) ([]Note, error) {
	const op = "store.ListNotes"
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerID)
	if err != nil {
		return nil, persistenceError(op, err)
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, persistenceError(op, err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError(op, err)
	}
	return notes, nil
}

// UpdateNote replaces title and content of a note owned by ownerID and
// refreshes updated_at. Zero matching rows yields ErrNotFound.
func (s *PostgresStore) UpdateNote(ctx context.Context, noteID, ownerID, title string, content json.RawMessage) (Note, error) {
	const op = "store.UpdateNote"
	if strings.TrimSpace(ownerID) == "" {
		return Note{}, ErrOwnerRequired
	}
	if !validNoteID(noteID) {
		return Note{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE notes
		SET title = $3, content = $4, updated_at = GREATEST(NOW(), updated_at)
		WHERE id = $1 AND user_id = $2
		RETURNING `+noteColumns,
		noteID, ownerID, title, jsonParam(content),
	)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	if err != nil {
		return Note{}, persistenceError(op, err)
	}
	return note, nil
}

// DeleteNote removes a note owned by ownerID and reports whether a row was
// removed.
func (s *PostgresStore) DeleteNote(ctx context.Context, noteID, ownerID string) (bool, error) {
	const op = "store.DeleteNote"
	if strings.TrimSpace(ownerID) == "" {
		return false, ErrOwnerRequired
	}
	if !validNoteID(noteID) {
		return false, nil
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, noteID, ownerID)
	if err != nil {
		return false, persistenceError(op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, persistenceError(op, err)
	}
	return affected > 0, nil
}

func validNoteID(noteID string) bool {
	_, err := uuid.Parse(noteID)
	return err == nil
}

// jsonParam maps empty or literal-null content to SQL NULL.
func jsonParam(content json.RawMessage) any {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return string(trimmed)
}
