package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	foreignKeyViolationCode = "23503"
	uniqueViolationCode     = "23505"
)

// UniqueViolation reports whether err is a Postgres unique_violation and, if
// so, which constraint fired.
func UniqueViolation(err error) (string, bool) {
	return violation(err, uniqueViolationCode)
}

// ForeignKeyViolation reports whether err is a Postgres foreign_key_violation
// and, if so, which constraint fired.
func ForeignKeyViolation(err error) (string, bool) {
	return violation(err, foreignKeyViolationCode)
}

func violation(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}
