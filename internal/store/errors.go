package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no row matches both the note id and the
	// owner. A note owned by someone else is reported the same way.
	ErrNotFound = errors.New("note not found")
	// ErrOwnerRequired is returned when an operation is called without an
	// owner id.
	ErrOwnerRequired = errors.New("owner id is required")
)

// PersistenceError reports a store failure outside the caller's control.
// Code holds the Postgres SQLSTATE when the server rejected the statement.
type PersistenceError struct {
	Op   string
	Code string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: sqlstate %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	perr := &PersistenceError{Op: op, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		perr.Code = pgErr.Code
	}
	return perr
}

// IsConstraintViolation reports whether err is a Postgres integrity
// constraint violation (SQLSTATE class 23).
func IsConstraintViolation(err error) bool {
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		return false
	}
	return len(perr.Code) == 5 && perr.Code[:2] == "23"
}
