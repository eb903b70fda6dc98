package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintHelpers(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "organizations_name_key"})
	fk := &pgconn.PgError{Code: CodeForeignKeyViolation, ConstraintName: "user_interests_tag_id_fkey"}
	check := &pgconn.PgError{Code: CodeCheckViolation, ConstraintName: "events_one_host"}

	assert.True(t, IsDuplicateConstraintError(dup, "organizations_name_key"))
	assert.True(t, IsDuplicateConstraintError(dup, ""))
	assert.False(t, IsDuplicateConstraintError(dup, "users_email_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("plain"), ""))

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(dup))

	assert.True(t, IsCheckViolation(check, "events_one_host"))
	assert.False(t, IsCheckViolation(check, "other"))

	assert.True(t, IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(dup))
}
