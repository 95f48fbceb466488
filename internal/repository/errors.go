package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Storage-level sentinel errors. Services translate these into domain errors;
// nothing above this package inspects SQLSTATEs or error strings.
var (
	ErrNotFound          = errors.New("record not found")
	ErrUniqueViolation   = errors.New("unique constraint violation")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// uniqueViolationCode is PostgreSQL SQLSTATE 23505.
const uniqueViolationCode = "23505"

// classify maps driver errors onto the repository sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%w (%s): %w", ErrUniqueViolation, pgErr.ConstraintName, err)
	}

	return err
}
