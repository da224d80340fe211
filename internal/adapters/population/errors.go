package population

import "errors"

// Sentinel kinds for generator configuration errors.
var (
	ErrInvalidSize         = errors.New("population size must be positive")
	ErrInvalidDistribution = errors.New("level distribution must sum to one")
	ErrInvalidGenderGap    = errors.New("gender pay gap percent must be in [0, 50]")
	ErrInvalidFloorPolicy  = errors.New("unknown salary floor policy")
)
