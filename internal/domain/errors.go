package domain

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionNotReady   = errors.New("session not ready")
	ErrWarmupFailed      = errors.New("session warm-up failed")
	ErrTransport         = errors.New("completion transport failure")
	ErrTruncatedResponse = errors.New("completion response truncated")
	ErrEmptyResponse     = errors.New("completion response empty")
	ErrRosterNotFound    = errors.New("roster not found")
	ErrSecretNotFound    = errors.New("secret not found")
)
