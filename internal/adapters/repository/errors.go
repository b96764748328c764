package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound  = errors.New("evaluation not found")
	ErrInvalidID = errors.New("invalid evaluation id")
)
