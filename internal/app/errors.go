package app

import "errors"

// ErrNotFound and related errors describe the failure kinds the session engine distinguishes.
var (
	ErrNotFound           = errors.New("not found")
	ErrStore              = errors.New("store failure")
	ErrEditor             = errors.New("editor failure")
	ErrInvariantViolation = errors.New("invariant violation")
)
