package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Field-level details are carried by *ValidationError, which wraps it.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyUserID is returned when an entity references the nil UUID as owner.
	ErrEmptyUserID = errors.New("user ID cannot be empty")

	// ErrEmptyHashedPassword is returned when a persisted user has no hash.
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)
