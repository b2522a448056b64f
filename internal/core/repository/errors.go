package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConstraint is returned when a write violates a foreign key or other
	// integrity constraint.
	ErrConstraint = errors.New("constraint violation")
)
