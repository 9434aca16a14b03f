package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotApplicable      = errors.New("not applicable")
	ErrDegenerateSolution = errors.New("degenerate solution")
	ErrSourceUnavailable  = errors.New("dataset source unavailable")
)
