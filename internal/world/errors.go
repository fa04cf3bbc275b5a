package world

import "errors"

var (
	// ErrInvalidLayer is returned for writes below the lowest layer.
	ErrInvalidLayer = errors.New("world: layer out of range")
	// ErrSaveFailed is returned when house state could not be persisted
	// within the retry budget.
	ErrSaveFailed = errors.New("world: house save failed")
)
