package model

// PriorityTier orders recommendations within a manager's capped budget.
type PriorityTier int

// Allocation order: URGENT first, NONE never funded.
const (
	TierNone PriorityTier = iota
	TierRecognition
	TierMonitor
	TierUrgent
)

func (t PriorityTier) String() string {
	switch t {
	case TierUrgent:
		return "URGENT"
	case TierMonitor:
		return "MONITOR"
	case TierRecognition:
		return "RECOGNITION"
	default:
		return "NONE"
	}
}

// RecommendationState is the lifecycle state of a recommendation.
// PENDING -> EVALUATED -> {ACCEPTED | TRIMMED | STAGED}; terminal states
// are immutable.
type RecommendationState int

const (
	StatePending RecommendationState = iota
	StateEvaluated
	StateAccepted
	StateTrimmed
	StateStaged
)

func (s RecommendationState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateEvaluated:
		return "EVALUATED"
	case StateAccepted:
		return "ACCEPTED"
	case StateTrimmed:
		return "TRIMMED"
	case StateStaged:
		return "STAGED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether s is a terminal state.
func (s RecommendationState) Terminal() bool {
	return s == StateAccepted || s == StateTrimmed || s == StateStaged
}

// Rationale carries the flags that placed a recommendation in its tier.
type Rationale struct {
	BelowMedian   bool `json:"below_median"`
	HighPerformer bool `json:"high_performer"`
}

// Recommendation is one proposed uplift for one employee. Created PENDING by
// the allocator's prioritization pass; the budget pass moves it to a
// terminal state.
type Recommendation struct {
	EmployeeID      string              `json:"employee_id"`
	ManagerID       string              `json:"manager_id"`
	CurrentSalary   float64             `json:"current_salary"`
	RequestedUplift float64             `json:"requested_uplift"`
	ProposedUplift  float64             `json:"proposed_uplift"`
	PriorityTier    PriorityTier        `json:"priority_tier"`
	Rationale       Rationale           `json:"rationale"`
	State           RecommendationState `json:"state"`
}

// ManagerBudget tracks one manager's cap during an allocation pass. Created
// at the start of the pass, mutated only by the allocator, discarded after
// the run.
type ManagerBudget struct {
	ManagerID     string   `json:"manager_id"`
	TeamPayroll   float64  `json:"team_payroll"`
	Cap           float64  `json:"cap"`
	Spent         float64  `json:"spent"`
	Remaining     float64  `json:"remaining"`
	PoolSize      int      `json:"pool_size"`
	ConsideredIDs []string `json:"considered_ids"`
}
