package allocation

import "errors"

// Sentinel kinds for allocation errors.
var (
	ErrInvalidBudget = errors.New("budget constraint percent must be positive")
	ErrInvalidPool   = errors.New("max direct reports must be positive")
)
