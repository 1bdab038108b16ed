package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidPlayState      = errors.New("invalid play state")
	ErrMissingIdentity       = errors.New("missing play identity")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
