// Package common defines shared constants and sentinel errors used across
// fintrack server layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Account errors.
	ErrUsernameTaken        = errors.New("username already taken")
	ErrEmailTaken           = errors.New("email already in use")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidIdentityClaim = errors.New("invalid identity claim")

	// Item errors. Absence and foreign ownership are deliberately the same value.
	ErrNotFoundOrNotOwned = errors.New("not found or not owned")

	// Recommendation engine errors.
	ErrRemoteServiceUnavailable = errors.New("remote service unavailable")
)

// ConstraintError is returned by repositories when an insert or update trips
// a uniqueness constraint. It matches ErrorAlreadyExists.
type ConstraintError struct {
	Constraint string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%v: %s", ErrorAlreadyExists, e.Constraint)
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrorAlreadyExists
}

// ValidationError describes a rejected input field. It matches ErrorValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}
