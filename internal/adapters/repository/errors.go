package repository

import "errors"

// Sentinel kinds for record store errors.
var (
	ErrNotFound     = errors.New("participant not found")
	ErrConflict     = errors.New("participant name already taken")
	ErrInvalidName  = errors.New("participant name must not be empty")
	ErrInvalidDelta = errors.New("score delta out of range")
	ErrClosed       = errors.New("store closed")
)
