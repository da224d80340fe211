// Package convergence computes peer-group medians, classifies employees
// against them, and solves the two-curve convergence timeline: an
// employee's compounding salary against the drifting peer-group median.
package convergence

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/equilift/internal/domain/model"
)

// Default analysis constants.
const (
	defaultThresholdYears   = 5
	defaultMedianGrowthRate = 0.035 // market inflation + 1pp median drift
)

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithByGender splits peer groups by gender in addition to level.
func WithByGender(byGender bool) Option {
	return func(a *Analyzer) {
		a.byGender = byGender
	}
}

// WithThresholdYears sets the convergence horizon beyond which an employee
// is flagged for intervention.
func WithThresholdYears(years int) Option {
	return func(a *Analyzer) {
		if years > 0 {
			a.thresholdYears = years
		}
	}
}

// WithMedianGrowthRate sets the annual drift rate of peer-group medians.
func WithMedianGrowthRate(rate float64) Option {
	return func(a *Analyzer) {
		a.medianGrowthRate = rate
	}
}

// Analyzer classifies a population snapshot against its peer-group medians.
type Analyzer struct {
	byGender         bool
	thresholdYears   int
	medianGrowthRate float64
}

// New creates an Analyzer with default thresholds.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		thresholdYears:   defaultThresholdYears,
		medianGrowthRate: defaultMedianGrowthRate,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MedianGrowthRate returns the configured annual median drift.
func (a *Analyzer) MedianGrowthRate() float64 {
	return a.medianGrowthRate
}

func (a *Analyzer) keyFor(e model.Employee) model.GroupKey {
	k := model.GroupKey{Level: e.Level}
	if a.byGender {
		k.Gender = e.Gender
	}
	return k
}

// BuildPeerGroups partitions the population by group key and computes the
// median salary per partition. Ordering is deterministic: members are
// stable-sorted by salary, ties by employee ID.
func (a *Analyzer) BuildPeerGroups(population []model.Employee) (map[model.GroupKey]model.PeerGroup, error) {
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}

	members := make(map[model.GroupKey][]model.Employee)
	for _, e := range population {
		k := a.keyFor(e)
		members[k] = append(members[k], e)
	}

	groups := make(map[model.GroupKey]model.PeerGroup, len(members))
	for k, emps := range members {
		sort.SliceStable(emps, func(i, j int) bool {
			if emps[i].Salary != emps[j].Salary {
				return emps[i].Salary < emps[j].Salary
			}
			return emps[i].ID < emps[j].ID
		})
		groups[k] = model.PeerGroup{
			Key:          k,
			MedianSalary: medianSalary(emps),
			MemberCount:  len(emps),
		}
	}
	return groups, nil
}

// medianSalary expects members sorted by salary. Even-sized groups take the
// mean of the two middle values.
func medianSalary(sorted []model.Employee) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2].Salary
	}
	return (sorted[n/2-1].Salary + sorted[n/2].Salary) / 2
}

// Classify compares one employee against their peer-group median.
// gap_percent is (median - salary) / median; an employee exactly at the
// median has gap zero and is not below.
func (a *Analyzer) Classify(e model.Employee, groups map[model.GroupKey]model.PeerGroup) (model.Classification, error) {
	g, ok := groups[a.keyFor(e)]
	if !ok || g.MemberCount == 0 {
		return model.Classification{}, fmt.Errorf("group %s: %w", a.keyFor(e), ErrInsufficientPopulation)
	}

	gap := g.MedianSalary - e.Salary
	if gap <= 0 {
		return model.Classification{}, nil
	}
	return model.Classification{
		BelowMedian: true,
		GapAmount:   gap,
		GapPercent:  gap / g.MedianSalary,
	}, nil
}

// AnalyzeConvergence solves S0*(1+re)^t = M0*(1+rm)^t for a below-median
// employee:
//
//	t* = ln(M0/S0) / ln((1+re)/(1+rm))
//
// When the employee grows no faster than the median the curves never cross
// and the record is marked divergent. A finite t* beyond the configured
// threshold also flags the employee for intervention. A one-time adjustment
// closes the gap immediately, so the intervention timeline is always zero.
func (a *Analyzer) AnalyzeConvergence(
	e model.Employee,
	groups map[model.GroupKey]model.PeerGroup,
	employeeGrowthRate float64,
) (model.ConvergenceRecord, error) {
	cls, err := a.Classify(e, groups)
	if err != nil {
		return model.ConvergenceRecord{}, err
	}

	rec := model.ConvergenceRecord{
		EmployeeID: e.ID,
		GapAmount:  cls.GapAmount,
		GapPercent: cls.GapPercent,
	}
	if !cls.BelowMedian {
		return rec, nil
	}

	g := groups[a.keyFor(e)]
	if employeeGrowthRate <= a.medianGrowthRate {
		rec.Divergent = true
		rec.InterventionRequired = true
		return rec, nil
	}

	t := math.Log(g.MedianSalary/e.Salary) /
		math.Log((1+employeeGrowthRate)/(1+a.medianGrowthRate))
	rec.NaturalYearsToMedian = t
	rec.InterventionRequired = t > float64(a.thresholdYears)
	return rec, nil
}
