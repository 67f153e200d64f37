package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed input to a mutating call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorruptState indicates persisted cart state could not be parsed.
	// The cart store recovers from it locally by substituting an empty cart.
	ErrCorruptState = errors.New("corrupt persisted state")
)
