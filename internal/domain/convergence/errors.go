package convergence

import "errors"

// Sentinel kinds for convergence analysis errors.
var (
	ErrInsufficientPopulation = errors.New("peer group has no members")
	ErrEmptyPopulation        = errors.New("population snapshot is empty")
)
