package forecast

import "errors"

// Sentinel kinds for forecasting errors. These allow errors.Is from callers.
var (
	ErrInvalidYears      = errors.New("years must be positive")
	ErrNonPositiveSalary = errors.New("salary must be positive")
	ErrInvalidConfidence = errors.New("confidence level must be in (0,1)")
	ErrInvalidRate       = errors.New("growth rate must be positive")
	ErrTargetNotAbove    = errors.New("target must exceed current value")
)
