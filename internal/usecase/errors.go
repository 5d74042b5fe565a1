package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrNotManual is returned when a remove targets an auto-discovered
	// entry; those can only be hidden.
	ErrNotManual = errors.New("entry is not manual")
)
