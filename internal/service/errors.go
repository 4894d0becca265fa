package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a referenced entity is absent
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned on an invariant violation, e.g. converting
	// an already-converted lead or editing a lead-synced invoice
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when credentials or tokens are rejected
	ErrUnauthorized = errors.New("unauthorized")
)
