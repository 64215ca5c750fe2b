package view

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnknownReaction  = errors.New("unknown reaction type")
	ErrNoPost           = errors.New("no post loaded")
	// ErrSessionUnavailable means the API could not say who the caller is.
	ErrSessionUnavailable = errors.New("session unavailable")
)
