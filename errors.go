package maxcover

import "errors"

var (
	// ErrInvalidK is returned when a solve request carries a negative
	// site budget.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrInvalidRadius is returned when a solve request carries a
	// non-positive coverage radius.
	ErrInvalidRadius = errors.New("radius must be positive")

	// ErrNoExactSolver is returned by exact-only solves when no exact
	// solver backend is configured.
	ErrNoExactSolver = errors.New("no exact solver configured")
)
