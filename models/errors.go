package models

import "errors"

var (
	// ErrNotFound is returned by stores when no document matches.
	ErrNotFound = errors.New("not found")
	// ErrStatusConflict is returned when a conditional status transition
	// finds the debate in a state it may not leave.
	ErrStatusConflict = errors.New("status conflict")
	// ErrDuplicate is returned when a unique field (slug, email) is taken.
	ErrDuplicate = errors.New("duplicate")
)
