package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repositories translate
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsDuplicateConstraintError checks for a unique violation on the named
// constraint. An empty name matches any unique constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == CodeUniqueViolation &&
		(constraintName == "" || pgErr.ConstraintName == constraintName)
}

// IsForeignKeyViolation reports a reference to a row that does not exist
func IsForeignKeyViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == CodeForeignKeyViolation
}

// IsCheckViolation reports a failed CHECK constraint, optionally by name
func IsCheckViolation(err error, constraintName string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == CodeCheckViolation &&
		(constraintName == "" || pgErr.ConstraintName == constraintName)
}

// IsNoRows reports an empty single-row query
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
