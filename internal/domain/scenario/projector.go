// Package scenario builds per-employee multi-year salary paths under named
// performance scenarios. The projector is a pure function of one employee's
// record and a static uplift table, so projections are safe to run in
// parallel across the population.
package scenario

import (
	"fmt"
	"math"

	"github.com/okian/equilift/internal/domain/forecast"
	"github.com/okian/equilift/internal/domain/model"
)

// Name identifies one of the three fixed scenarios.
type Name string

const (
	Conservative Name = "conservative"
	Realistic    Name = "realistic"
	Optimistic   Name = "optimistic"
)

// Names lists the scenarios in declaration order.
func Names() []Name {
	return []Name{Conservative, Realistic, Optimistic}
}

// Default scenario adjustment constants.
const (
	defaultConservativeMargin     = 0.005
	defaultImprovementProbability = 0.3
)

// Projection is one scenario's year-by-year result. Path has years+1
// entries; Path[0] is the current salary.
type Projection struct {
	Scenario      Name      `json:"scenario"`
	Path          []float64 `json:"path"`
	FinalSalary   float64   `json:"final_salary"`
	CAGR          float64   `json:"cagr"`
	TotalIncrease float64   `json:"total_increase"`
}

// Option applies a configuration option to the Projector.
type Option func(*Projector)

// WithTable replaces the uplift table.
func WithTable(t Table) Option {
	return func(p *Projector) {
		if len(t) > 0 {
			p.table = t
		}
	}
}

// WithConservativeMargin sets the margin subtracted from the performance
// component in the conservative scenario.
func WithConservativeMargin(margin float64) Option {
	return func(p *Projector) {
		if margin >= 0 {
			p.conservativeMargin = margin
		}
	}
}

// WithImprovementProbability sets the probability weight applied to a
// one-tier rating improvement in the optimistic scenario.
func WithImprovementProbability(prob float64) Option {
	return func(p *Projector) {
		if prob >= 0 && prob <= 1 {
			p.improvementProbability = prob
		}
	}
}

// Projector derives annual uplift rates from the table and compounds them
// into salary paths.
type Projector struct {
	table                  Table
	conservativeMargin     float64
	improvementProbability float64
}

// New creates a Projector with the default table and adjustments.
func New(opts ...Option) *Projector {
	p := &Projector{
		table:                  DefaultTable(),
		conservativeMargin:     defaultConservativeMargin,
		improvementProbability: defaultImprovementProbability,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AnnualRate returns the annual uplift rate for the employee under the given
// scenario: baseline + adjusted performance component + level-band bonus.
func (p *Projector) AnnualRate(e model.Employee, s Name) (float64, error) {
	comps, ok := p.table[e.PerformanceRating]
	if !ok {
		return 0, fmt.Errorf("rating %q: %w", e.PerformanceRating, ErrUnknownRating)
	}
	band, ok := BandForLevel(e.Level)
	if !ok {
		return 0, fmt.Errorf("level %d: %w", e.Level, ErrInvalidLevel)
	}

	perf := comps.Performance
	switch s {
	case Conservative:
		perf = math.Max(0, perf-p.conservativeMargin)
	case Optimistic:
		if next, ok := p.table[e.PerformanceRating.Next()]; ok {
			perf += p.improvementProbability * (next.Performance - perf)
		}
	case Realistic:
		// performance component as-is
	}

	return comps.Baseline + perf + comps.Bands[band], nil
}

// Project returns the three scenario projections for one employee over the
// given horizon.
func (p *Projector) Project(e model.Employee, years int) (map[Name]Projection, error) {
	if years <= 0 {
		return nil, fmt.Errorf("horizon %d: %w", years, ErrInvalidYears)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	out := make(map[Name]Projection, len(Names()))
	for _, s := range Names() {
		rate, err := p.AnnualRate(e, s)
		if err != nil {
			return nil, err
		}

		path := make([]float64, years+1)
		path[0] = e.Salary
		for y := 1; y <= years; y++ {
			path[y] = path[y-1] * (1 + rate)
		}

		final := path[years]
		cagr, err := forecast.CAGR(e.Salary, final, years)
		if err != nil {
			return nil, err
		}

		out[s] = Projection{
			Scenario:      s,
			Path:          path,
			FinalSalary:   final,
			CAGR:          cagr,
			TotalIncrease: final - e.Salary,
		}
	}
	return out, nil
}
