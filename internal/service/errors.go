package service

import "errors"

var (
	// ErrValidation is returned for bad input shape or range at creation;
	// the caller must correct the input, nothing is retried
	ErrValidation = errors.New("validation failed")

	// ErrAuthFailed is returned for bad credentials or an inactive
	// account. It is deliberately generic so callers cannot tell which
	// field was wrong.
	ErrAuthFailed = errors.New("authentication failed")
)
