package strategy

import "errors"

// Sentinel kinds for strategy simulation errors.
var (
	ErrInvalidBudget = errors.New("budget constraint must be positive")
	ErrInvalidSplits = errors.New("gradual split ratios must be positive and sum to one")
	ErrNoPayroll     = errors.New("total payroll must be positive")
)
