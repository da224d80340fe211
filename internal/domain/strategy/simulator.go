// Package strategy costs the fixed set of remediation strategies against a
// classified population and selects the cheapest feasible one. The strategy
// set is a closed enumeration; selection depends on exhaustive matching, so
// adding a strategy means extending Names and the cost switch together.
package strategy

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/equilift/internal/domain/model"
)

// Name identifies one remediation strategy.
type Name string

const (
	Immediate    Name = "immediate"
	Gradual3Year Name = "gradual_3_year"
	Gradual5Year Name = "gradual_5_year"
	Targeted     Name = "targeted"
)

// Names lists the strategies in declaration order, which is also the final
// selection tie-break.
func Names() []Name {
	return []Name{Immediate, Gradual3Year, Gradual5Year, Targeted}
}

// Default simulation constants.
const (
	defaultBudgetConstraint     = 0.005
	defaultTargetGapPercent     = 0.0
	defaultMaxYears             = 5
	defaultMaterialityThreshold = 0.05

	costTolerance = 1e-9
)

// DefaultGradualSplits returns the front-loaded year-split ratios for the
// gradual strategies, keyed by horizon. Ratios order cohorts largest-gap
// first and sum to one.
func DefaultGradualSplits() map[int][]float64 {
	return map[int][]float64{
		3: {0.50, 0.30, 0.20},
		5: {0.35, 0.25, 0.20, 0.12, 0.08},
	}
}

// YearCost is one year's slice of a strategy's cash flow.
type YearCost struct {
	Year              int     `json:"year"`
	Cost              float64 `json:"cost"`
	EmployeesAffected int     `json:"employees_affected"`
}

// Result is the immutable costing of one strategy.
type Result struct {
	Strategy              Name       `json:"strategy"`
	TotalCost             float64    `json:"total_cost"`
	AffectedEmployeeCount int        `json:"affected_employee_count"`
	YearByYear            []YearCost `json:"year_by_year_breakdown"`
	YearsUsed             int        `json:"years_used"`
	PercentOfPayroll      float64    `json:"percent_of_payroll"`
	MeetsTarget           bool       `json:"meets_target"`
	WithinBudget          bool       `json:"within_budget"`
}

// Comparison holds every evaluated strategy plus the selected one. When no
// strategy meets both the target and the budget the lowest-cost option is
// selected and Infeasible is set; the simulator never errors on infeasibility.
type Comparison struct {
	Results    []Result `json:"results"`
	Selected   Name     `json:"selected"`
	Infeasible bool     `json:"infeasible"`
}

// SelectedResult returns the costing of the selected strategy.
func (c *Comparison) SelectedResult() Result {
	for _, r := range c.Results {
		if r.Strategy == c.Selected {
			return r
		}
	}
	return Result{}
}

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithBudgetConstraint sets the budget cap as a fraction of total payroll.
func WithBudgetConstraint(fraction float64) Option {
	return func(s *Simulator) {
		s.budgetConstraint = fraction
	}
}

// WithTargetGapPercent sets the residual population gap, as a fraction of
// payroll, that a strategy must reach to meet the target.
func WithTargetGapPercent(fraction float64) Option {
	return func(s *Simulator) {
		if fraction >= 0 {
			s.targetGapPercent = fraction
		}
	}
}

// WithMaxYears sets the horizon within which the target must be met.
func WithMaxYears(years int) Option {
	return func(s *Simulator) {
		if years > 0 {
			s.maxYears = years
		}
	}
}

// WithMaterialityThreshold sets the minimum gap percent for targeted
// eligibility.
func WithMaterialityThreshold(fraction float64) Option {
	return func(s *Simulator) {
		if fraction >= 0 {
			s.materialityThreshold = fraction
		}
	}
}

// WithGradualSplits replaces the year-split ratios for gradual strategies.
func WithGradualSplits(splits map[int][]float64) Option {
	return func(s *Simulator) {
		if len(splits) > 0 {
			s.gradualSplits = splits
		}
	}
}

// Simulator evaluates every strategy against one classified population.
type Simulator struct {
	budgetConstraint     float64
	targetGapPercent     float64
	maxYears             int
	materialityThreshold float64
	gradualSplits        map[int][]float64
}

// New creates a Simulator with default constraints.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		budgetConstraint:     defaultBudgetConstraint,
		targetGapPercent:     defaultTargetGapPercent,
		maxYears:             defaultMaxYears,
		materialityThreshold: defaultMaterialityThreshold,
		gradualSplits:        DefaultGradualSplits(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) validate(totalPayroll float64) error {
	if s.budgetConstraint <= 0 {
		return fmt.Errorf("budget constraint %v: %w", s.budgetConstraint, ErrInvalidBudget)
	}
	if totalPayroll <= 0 {
		return fmt.Errorf("payroll %v: %w", totalPayroll, ErrNoPayroll)
	}
	for horizon, ratios := range s.gradualSplits {
		sum := 0.0
		for _, r := range ratios {
			if r <= 0 {
				return fmt.Errorf("horizon %d: %w", horizon, ErrInvalidSplits)
			}
			sum += r
		}
		if len(ratios) != horizon || math.Abs(sum-1) > 1e-6 {
			return fmt.Errorf("horizon %d: %w", horizon, ErrInvalidSplits)
		}
	}
	return nil
}

// Simulate costs every strategy against the below-median records and selects
// the cheapest one that meets the target within budget. Ties break by fewer
// years used, then declaration order.
func (s *Simulator) Simulate(records []model.ConvergenceRecord, totalPayroll float64) (*Comparison, error) {
	if err := s.validate(totalPayroll); err != nil {
		return nil, err
	}

	eligible := make([]model.ConvergenceRecord, 0, len(records))
	totalGap := 0.0
	for _, r := range records {
		if r.GapAmount > 0 {
			eligible = append(eligible, r)
			totalGap += r.GapAmount
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].GapAmount != eligible[j].GapAmount {
			return eligible[i].GapAmount > eligible[j].GapAmount
		}
		return eligible[i].EmployeeID < eligible[j].EmployeeID
	})

	cmp := &Comparison{Results: make([]Result, 0, len(Names()))}
	for _, name := range Names() {
		var res Result
		switch name {
		case Immediate:
			res = s.immediate(eligible)
		case Gradual3Year:
			res = s.gradual(name, eligible, 3)
		case Gradual5Year:
			res = s.gradual(name, eligible, 5)
		case Targeted:
			res = s.targeted(eligible)
		}
		s.judge(&res, totalGap, totalPayroll)
		cmp.Results = append(cmp.Results, res)
	}

	cmp.Selected, cmp.Infeasible = s.selectBest(cmp.Results)
	return cmp, nil
}

// judge fills the derived feasibility fields of one costing.
func (s *Simulator) judge(res *Result, totalGap, totalPayroll float64) {
	res.PercentOfPayroll = res.TotalCost / totalPayroll
	res.WithinBudget = res.PercentOfPayroll <= s.budgetConstraint+costTolerance

	residual := math.Max(0, totalGap-res.TotalCost)
	res.MeetsTarget = residual/totalPayroll <= s.targetGapPercent+costTolerance &&
		res.YearsUsed <= s.maxYears
}

func (s *Simulator) selectBest(results []Result) (Name, bool) {
	best := -1
	for i, r := range results {
		if !r.MeetsTarget || !r.WithinBudget {
			continue
		}
		if best < 0 || better(r, results[best]) {
			best = i
		}
	}
	if best >= 0 {
		return results[best].Strategy, false
	}

	// Nothing feasible: fall back to the cheapest option and let the caller
	// decide, rather than silently succeeding or erroring out.
	for i := range results {
		if best < 0 || results[i].TotalCost < results[best].TotalCost-costTolerance {
			best = i
		}
	}
	return results[best].Strategy, true
}

// better reports whether a should be selected over b: smaller cost, then
// fewer years used. Equal on both means b wins by declaration order.
func better(a, b Result) bool {
	if math.Abs(a.TotalCost-b.TotalCost) > costTolerance {
		return a.TotalCost < b.TotalCost
	}
	return a.YearsUsed < b.YearsUsed
}

// immediate closes the full gap for every eligible employee in year one.
func (s *Simulator) immediate(eligible []model.ConvergenceRecord) Result {
	total := 0.0
	for _, r := range eligible {
		total += r.GapAmount
	}
	res := Result{
		Strategy:              Immediate,
		TotalCost:             total,
		AffectedEmployeeCount: len(eligible),
	}
	if len(eligible) > 0 {
		res.YearByYear = []YearCost{{Year: 1, Cost: total, EmployeesAffected: len(eligible)}}
		res.YearsUsed = 1
	}
	return res
}

// gradual spreads the same total cost across the horizon: employees are
// already ordered by descending gap, so front-loaded split ratios assign the
// largest-gap cohort to year one. Cohort sizes follow the cumulative ratios.
func (s *Simulator) gradual(name Name, eligible []model.ConvergenceRecord, horizon int) Result {
	ratios, ok := s.gradualSplits[horizon]
	if !ok {
		return Result{Strategy: name}
	}

	res := Result{Strategy: name, AffectedEmployeeCount: len(eligible)}
	n := len(eligible)
	start, cum := 0, 0.0
	for year := 1; year <= horizon; year++ {
		cum += ratios[year-1]
		end := int(math.Round(cum * float64(n)))
		if year == horizon {
			end = n
		}
		if end < start {
			end = start
		}

		cost := 0.0
		for _, r := range eligible[start:end] {
			cost += r.GapAmount
		}
		res.YearByYear = append(res.YearByYear, YearCost{
			Year:              year,
			Cost:              cost,
			EmployeesAffected: end - start,
		})
		res.TotalCost += cost
		if end > start {
			res.YearsUsed = year
		}
		start = end
	}
	return res
}

// targeted restricts eligibility to gaps above the materiality threshold.
func (s *Simulator) targeted(eligible []model.ConvergenceRecord) Result {
	res := Result{Strategy: Targeted}
	for _, r := range eligible {
		if r.GapPercent > s.materialityThreshold {
			res.TotalCost += r.GapAmount
			res.AffectedEmployeeCount++
		}
	}
	if res.AffectedEmployeeCount > 0 {
		res.YearByYear = []YearCost{{
			Year:              1,
			Cost:              res.TotalCost,
			EmployeesAffected: res.AffectedEmployeeCount,
		}}
		res.YearsUsed = 1
	}
	return res
}
