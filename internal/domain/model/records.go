package model

import "fmt"

// GroupKey identifies a peer group: employees at the same level, optionally
// split by gender.
type GroupKey struct {
	Level  int    `json:"level"`
	Gender string `json:"gender,omitempty"`
}

func (k GroupKey) String() string {
	if k.Gender == "" {
		return fmt.Sprintf("L%d", k.Level)
	}
	return fmt.Sprintf("L%d/%s", k.Level, k.Gender)
}

// PeerGroup is the comparison cohort for one group key. Computed once per
// analysis run from the population snapshot and never mutated afterwards.
type PeerGroup struct {
	Key          GroupKey `json:"key"`
	MedianSalary float64  `json:"median_salary"`
	MemberCount  int      `json:"member_count"`
}

// ConvergenceRecord captures the convergence outlook for one below-median
// employee. Divergent means the employee's salary curve never crosses the
// drifting median under natural growth.
type ConvergenceRecord struct {
	EmployeeID           string  `json:"employee_id"`
	GapAmount            float64 `json:"gap_amount"`
	GapPercent           float64 `json:"gap_percent"`
	NaturalYearsToMedian float64 `json:"natural_years_to_median"`
	Divergent            bool    `json:"divergent"`
	// InterventionYearsToMedian is always zero: a one-time adjustment closes
	// the gap immediately. Kept to contrast against natural convergence in
	// reporting.
	InterventionYearsToMedian float64 `json:"intervention_years_to_median"`
	InterventionRequired      bool    `json:"intervention_required"`
}

// Classification is the outcome of comparing one employee against their
// peer-group median.
type Classification struct {
	BelowMedian bool    `json:"below_median"`
	GapAmount   float64 `json:"gap_amount"`
	GapPercent  float64 `json:"gap_percent"`
}

// RecordFailure reports one employee record rejected by validation. Failed
// records are omitted from all aggregates; the batch continues.
type RecordFailure struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}
