package types

import "errors"

var (
	// ErrNotFound is returned when no participant matches the requested code.
	ErrNotFound = errors.New("participant not found")

	// ErrUnknownStep is returned when a mark or unmark call references a step
	// id outside the session's plan (for session 2, outside the group-filtered
	// plan).
	ErrUnknownStep = errors.New("unknown step id for this session")

	// ErrValidation is returned when required registration fields are missing
	// or a field carries an invalid value.
	ErrValidation = errors.New("validation failed")
)
