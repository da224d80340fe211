// Package allocation runs the manager-scoped budget pass: each manager gets
// a hard cap derived from their team payroll, pool members are tiered by
// urgency, and uplifts are granted greedily until the cap drains. Every
// recommendation ends in a terminal state; nothing is silently dropped.
package allocation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/okian/equilift/internal/domain/convergence"
	"github.com/okian/equilift/internal/domain/model"
)

// Default allocation constants.
const (
	defaultMaxDirectReports  = 6
	defaultBudgetPercent     = 0.005
	defaultMeritUpliftPct    = 0.05
	defaultRetrimTolerance   = 1e-9
	defaultMaxRetrimAttempts = 3
)

// ManagerResult is the allocation outcome for one manager's pool. NoAction
// marks pools with zero payroll or no eligible members; it is a result, not
// an error.
type ManagerResult struct {
	Budget          model.ManagerBudget    `json:"budget"`
	Recommendations []model.Recommendation `json:"recommendations"`
	NoAction        bool                   `json:"no_action"`
}

// KPIs are the population-level equity indicators recomputed after uplifts
// are applied.
type KPIs struct {
	GenderGapPercent   float64 `json:"gender_gap_percent"`
	BelowMedianPercent float64 `json:"below_median_percent"`
}

// Result is the full allocation output: per-manager budgets, the flattened
// recommendation list, and the post-allocation KPIs.
type Result struct {
	Managers          []ManagerResult        `json:"managers"`
	Recommendations   []model.Recommendation `json:"recommendations"`
	AcceptedCount     int                    `json:"accepted_count"`
	TrimmedCount      int                    `json:"trimmed_count"`
	StagedCount       int                    `json:"staged_count"`
	TotalCap          float64                `json:"total_cap"`
	AllocatedBudget   float64                `json:"allocated_budget"`
	BudgetUtilization float64                `json:"budget_utilization"`
	Retrimmed         bool                   `json:"retrimmed"`
	UpdatedKPIs       KPIs                   `json:"updated_kpis"`
}

// Option applies a configuration option to the Allocator.
type Option func(*Allocator)

// WithMaxDirectReports caps the pool size considered per manager.
func WithMaxDirectReports(n int) Option {
	return func(a *Allocator) {
		a.maxDirectReports = n
	}
}

// WithBudgetPercent sets the per-manager cap as a fraction of team payroll.
func WithBudgetPercent(fraction float64) Option {
	return func(a *Allocator) {
		a.budgetPercent = fraction
	}
}

// WithMeritUpliftPercent sets the merit request, as a fraction of salary,
// for high performers already at or above their median.
func WithMeritUpliftPercent(fraction float64) Option {
	return func(a *Allocator) {
		if fraction >= 0 {
			a.meritUpliftPct = fraction
		}
	}
}

// Allocator distributes capped manager budgets across tiered pools.
type Allocator struct {
	maxDirectReports int
	budgetPercent    float64
	meritUpliftPct   float64
}

// New creates an Allocator with default policy limits.
func New(opts ...Option) *Allocator {
	a := &Allocator{
		maxDirectReports: defaultMaxDirectReports,
		budgetPercent:    defaultBudgetPercent,
		meritUpliftPct:   defaultMeritUpliftPct,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// member pairs one pool employee with its classification and tier.
type member struct {
	emp  model.Employee
	cls  model.Classification
	tier model.PriorityTier
}

// Allocate runs the budget pass over the population. Classification reuses
// the analyzer's peer groups so tiers match the convergence report. Manager
// pools are independent and allocated concurrently; assembly is sorted so
// the result is deterministic regardless of scheduling.
func (a *Allocator) Allocate(population []model.Employee, analyzer *convergence.Analyzer) (*Result, error) {
	if a.budgetPercent <= 0 {
		return nil, fmt.Errorf("budget percent %v: %w", a.budgetPercent, ErrInvalidBudget)
	}
	if a.maxDirectReports <= 0 {
		return nil, fmt.Errorf("max direct reports %d: %w", a.maxDirectReports, ErrInvalidPool)
	}

	valid := make([]model.Employee, 0, len(population))
	for _, e := range population {
		if e.Validate() == nil {
			valid = append(valid, e)
		}
	}

	groups, err := analyzer.BuildPeerGroups(valid)
	if err != nil {
		return nil, err
	}

	teams := make(map[string][]member)
	for _, e := range valid {
		cls, err := analyzer.Classify(e, groups)
		if err != nil {
			continue
		}
		teams[e.ManagerID] = append(teams[e.ManagerID], member{
			emp:  e,
			cls:  cls,
			tier: tierFor(e, cls),
		})
	}

	managerIDs := make([]string, 0, len(teams))
	for id := range teams {
		managerIDs = append(managerIDs, id)
	}
	sort.Strings(managerIDs)

	results := make(map[string]ManagerResult, len(teams))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range managerIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			mr := a.allocatePool(id, teams[id], 1.0)
			mu.Lock()
			results[id] = mr
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	res := assemble(results, managerIDs)

	// Fail-safe: when the aggregate spend still exceeds the overall budget
	// constraint, re-run the trim pass with proportionally stricter caps.
	if a.overAggregate(res, valid) {
		scale := a.aggregateScale(res, valid)
		for attempt := 0; attempt < defaultMaxRetrimAttempts; attempt++ {
			for _, id := range managerIDs {
				results[id] = a.allocatePool(id, teams[id], scale)
			}
			res = assemble(results, managerIDs)
			res.Retrimmed = true
			if !a.overAggregate(res, valid) {
				break
			}
			scale *= 0.9
		}
	}

	res.UpdatedKPIs = a.recomputeKPIs(valid, res.Recommendations, analyzer)
	return res, nil
}

// tierFor classifies one employee by urgency. Below-median high performers
// come first, then retention of high performers, then below-median members.
func tierFor(e model.Employee, cls model.Classification) model.PriorityTier {
	high := e.PerformanceRating.HighPerformer()
	switch {
	case cls.BelowMedian && high:
		return model.TierUrgent
	case high:
		return model.TierMonitor
	case cls.BelowMedian:
		return model.TierRecognition
	default:
		return model.TierNone
	}
}

// allocatePool runs the greedy pass for one manager. capScale below 1
// tightens the cap during the fail-safe re-trim; it never raises it.
func (a *Allocator) allocatePool(managerID string, team []member, capScale float64) ManagerResult {
	// Pool selection: the largest gaps win the capped slots, ties by
	// ascending employee ID so reruns are stable.
	sorted := make([]member, len(team))
	copy(sorted, team)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].cls.GapAmount != sorted[j].cls.GapAmount {
			return sorted[i].cls.GapAmount > sorted[j].cls.GapAmount
		}
		return sorted[i].emp.ID < sorted[j].emp.ID
	})

	pool := sorted
	var overflow []member
	if len(sorted) > a.maxDirectReports {
		pool = sorted[:a.maxDirectReports]
		overflow = sorted[a.maxDirectReports:]
	}

	// The cap is funded by the considered pool's payroll, not the whole
	// team's, so oversized teams do not inflate their own budget.
	teamPayroll := 0.0
	for _, m := range pool {
		teamPayroll += m.emp.Salary
	}

	budget := model.ManagerBudget{
		ManagerID:   managerID,
		TeamPayroll: teamPayroll,
		Cap:         teamPayroll * a.budgetPercent * capScale,
		PoolSize:    len(pool),
	}
	for _, m := range pool {
		budget.ConsideredIDs = append(budget.ConsideredIDs, m.emp.ID)
	}
	sort.Strings(budget.ConsideredIDs)

	eligible := 0
	for _, m := range pool {
		if m.tier != model.TierNone {
			eligible++
		}
	}
	if teamPayroll <= 0 || eligible == 0 {
		budget.Remaining = budget.Cap
		return ManagerResult{Budget: budget, NoAction: true}
	}

	recs := make([]model.Recommendation, 0, len(pool)+len(overflow))
	remaining := budget.Cap

	for _, tier := range []model.PriorityTier{model.TierUrgent, model.TierMonitor, model.TierRecognition} {
		members := membersInTier(pool, tier)
		if remaining <= 0 {
			// Cap drained before this tier was reached: stage for the
			// next cycle instead of recording zero-value trims.
			for _, m := range members {
				recs = append(recs, a.newRecommendation(m, model.StateStaged, 0))
			}
			continue
		}
		for _, m := range members {
			requested := a.requestFor(m)
			proposed := requested
			if proposed > remaining {
				proposed = remaining
			}
			remaining -= proposed

			state := model.StateAccepted
			if proposed < requested-defaultRetrimTolerance {
				state = model.StateTrimmed
			}
			recs = append(recs, a.newRecommendation(m, state, proposed))
		}
	}

	// Non-NONE members squeezed out of the capped pool carry over untouched.
	for _, m := range overflow {
		if m.tier != model.TierNone {
			recs = append(recs, a.newRecommendation(m, model.StateStaged, 0))
		}
	}

	budget.Spent = budget.Cap - remaining
	budget.Remaining = remaining
	return ManagerResult{Budget: budget, Recommendations: recs}
}

// requestFor returns the uplift a member asks for before capping: the full
// gap for below-median members, a flat merit fraction for retention cases.
func (a *Allocator) requestFor(m member) float64 {
	if m.cls.BelowMedian {
		return m.cls.GapAmount
	}
	return m.emp.Salary * a.meritUpliftPct
}

func (a *Allocator) newRecommendation(m member, terminal model.RecommendationState, proposed float64) model.Recommendation {
	return model.Recommendation{
		EmployeeID:      m.emp.ID,
		ManagerID:       m.emp.ManagerID,
		CurrentSalary:   m.emp.Salary,
		RequestedUplift: a.requestFor(m),
		ProposedUplift:  proposed,
		PriorityTier:    m.tier,
		Rationale: model.Rationale{
			BelowMedian:   m.cls.BelowMedian,
			HighPerformer: m.emp.PerformanceRating.HighPerformer(),
		},
		State: terminal,
	}
}

func membersInTier(pool []member, tier model.PriorityTier) []member {
	var out []member
	for _, m := range pool {
		if m.tier == tier {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		gi, gj := out[i].cls.GapAmount, out[j].cls.GapAmount
		if gi != gj {
			return gi > gj
		}
		return out[i].emp.ID < out[j].emp.ID
	})
	return out
}

// assemble flattens per-manager results in manager ID order and totals the
// budget counters.
func assemble(results map[string]ManagerResult, managerIDs []string) *Result {
	res := &Result{Managers: make([]ManagerResult, 0, len(managerIDs))}
	for _, id := range managerIDs {
		mr := results[id]
		res.Managers = append(res.Managers, mr)
		res.TotalCap += mr.Budget.Cap
		res.AllocatedBudget += mr.Budget.Spent
		res.Recommendations = append(res.Recommendations, mr.Recommendations...)
	}

	sort.SliceStable(res.Recommendations, func(i, j int) bool {
		return res.Recommendations[i].EmployeeID < res.Recommendations[j].EmployeeID
	})
	for _, rec := range res.Recommendations {
		switch rec.State {
		case model.StateAccepted:
			res.AcceptedCount++
		case model.StateTrimmed:
			res.TrimmedCount++
		case model.StateStaged:
			res.StagedCount++
		}
	}
	if res.TotalCap > 0 {
		res.BudgetUtilization = res.AllocatedBudget / res.TotalCap
	}
	return res
}

// overAggregate reports whether the total spend breaches the overall budget
// constraint applied to the whole payroll.
func (a *Allocator) overAggregate(res *Result, population []model.Employee) bool {
	payroll := 0.0
	for _, e := range population {
		payroll += e.Salary
	}
	if payroll <= 0 {
		return false
	}
	return res.AllocatedBudget > payroll*a.budgetPercent+defaultRetrimTolerance
}

func (a *Allocator) aggregateScale(res *Result, population []model.Employee) float64 {
	payroll := 0.0
	for _, e := range population {
		payroll += e.Salary
	}
	if res.AllocatedBudget <= 0 {
		return 1.0
	}
	return payroll * a.budgetPercent / res.AllocatedBudget
}

// recomputeKPIs applies the granted uplifts to a copy of the population and
// re-derives the equity indicators against fresh peer groups.
func (a *Allocator) recomputeKPIs(population []model.Employee, recs []model.Recommendation, analyzer *convergence.Analyzer) KPIs {
	uplifts := make(map[string]float64, len(recs))
	for _, rec := range recs {
		if rec.State == model.StateAccepted || rec.State == model.StateTrimmed {
			uplifts[rec.EmployeeID] += rec.ProposedUplift
		}
	}

	updated := make([]model.Employee, len(population))
	copy(updated, population)
	for i := range updated {
		updated[i].Salary += uplifts[updated[i].ID]
	}

	kpis := KPIs{GenderGapPercent: convergence.GenderGapPercent(updated)}

	groups, err := analyzer.BuildPeerGroups(updated)
	if err != nil {
		return kpis
	}
	below := 0
	for _, e := range updated {
		cls, err := analyzer.Classify(e, groups)
		if err == nil && cls.BelowMedian {
			below++
		}
	}
	if len(updated) > 0 {
		kpis.BelowMedianPercent = float64(below) / float64(len(updated)) * 100
	}
	return kpis
}
