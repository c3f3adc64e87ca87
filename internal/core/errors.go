package core

import "errors"

// Contract violations surface as explicit errors; runtime degradation
// (provider failures, unknown sessions, empty input) never does.
var (
	ErrEmptySessionID    = errors.New("session id must not be empty")
	ErrInvalidLimit      = errors.New("max exchanges must not be negative")
	ErrInvalidImportance = errors.New("importance must be within [0, 1]")
)
