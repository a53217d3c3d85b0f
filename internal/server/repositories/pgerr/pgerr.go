// Package pgerr maps PostgreSQL errors onto the repository sentinels.
package pgerr

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophidentity/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsForeignKeyViolation reports whether err carries SQLSTATE 23503.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

// Constraint returns the violated constraint name, if any.
func Constraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == code
}

// Wrap turns a storage error into the error returned by repositories:
// sql.ErrNoRows becomes common.ErrorNotFound, unique and foreign key
// violations are tagged with common.ErrorAlreadyExists / common.ErrorNotFound
// while keeping the driver error in the chain, everything else is wrapped
// as "db error". A nil err stays nil.
func Wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case IsUniqueViolation(err):
		return fmt.Errorf("db error: %w: %w", common.ErrorAlreadyExists, err)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("db error: %w: %w", common.ErrorNotFound, err)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
