// Package model contains domain records passed between the engine's layers.
package model

import (
	"fmt"
)

// PerformanceRating is one tier of the fixed five-tier review scale.
type PerformanceRating string

// The five-tier scale, lowest to highest.
const (
	RatingNotMet         PerformanceRating = "Not met"
	RatingPartiallyMet   PerformanceRating = "Partially met"
	RatingAchieving      PerformanceRating = "Achieving"
	RatingHighPerforming PerformanceRating = "High Performing"
	RatingExceeding      PerformanceRating = "Exceeding"
)

// Ratings lists the scale in ascending order.
func Ratings() []PerformanceRating {
	return []PerformanceRating{
		RatingNotMet,
		RatingPartiallyMet,
		RatingAchieving,
		RatingHighPerforming,
		RatingExceeding,
	}
}

// Valid reports whether r is one of the five tiers.
func (r PerformanceRating) Valid() bool {
	switch r {
	case RatingNotMet, RatingPartiallyMet, RatingAchieving, RatingHighPerforming, RatingExceeding:
		return true
	}
	return false
}

// Next returns the tier one step above r. The top tier returns itself.
func (r PerformanceRating) Next() PerformanceRating {
	ratings := Ratings()
	for i, cur := range ratings {
		if cur == r {
			if i == len(ratings)-1 {
				return cur
			}
			return ratings[i+1]
		}
	}
	return r
}

// HighPerformer reports whether r sits in the top two tiers.
func (r PerformanceRating) HighPerformer() bool {
	return r == RatingHighPerforming || r == RatingExceeding
}

// Level bounds for the organization.
const (
	MinLevel = 1
	MaxLevel = 6
)

// Employee is a read-only population record. The engine never mutates the
// snapshot it is given; all analysis outputs are derived records keyed by
// employee ID.
type Employee struct {
	ID                string            `json:"id"`
	Level             int               `json:"level"`
	Salary            float64           `json:"salary"`
	Gender            string            `json:"gender"`
	PerformanceRating PerformanceRating `json:"performance_rating"`
	TenureYears       int               `json:"tenure_years"`
	ManagerID         string            `json:"manager_id,omitempty"`
}

// Validate checks the record invariants. The returned error names the
// failing employee so callers can report per-record failures without
// aborting the batch.
func (e Employee) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("employee with empty id")
	}
	if e.Salary <= 0 {
		return fmt.Errorf("employee %s: non-positive salary %.2f", e.ID, e.Salary)
	}
	if e.Level < MinLevel || e.Level > MaxLevel {
		return fmt.Errorf("employee %s: level %d outside [%d,%d]", e.ID, e.Level, MinLevel, MaxLevel)
	}
	if !e.PerformanceRating.Valid() {
		return fmt.Errorf("employee %s: unknown performance rating %q", e.ID, e.PerformanceRating)
	}
	if e.TenureYears < 0 {
		return fmt.Errorf("employee %s: negative tenure %d", e.ID, e.TenureYears)
	}
	return nil
}
