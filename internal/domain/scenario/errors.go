package scenario

import "errors"

// Sentinel kinds for projection errors.
var (
	ErrUnknownRating = errors.New("unknown performance rating")
	ErrInvalidLevel  = errors.New("level outside configured bounds")
	ErrInvalidYears  = errors.New("projection horizon must be positive")
)
