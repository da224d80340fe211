// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults, Load to layer sources.
// - Validation is fail-closed: a bad value aborts the run at startup instead
//   of silently defaulting.
// - External errors must be wrapped via this package's sentinel kinds.
package config

import "runtime"

// UpliftRates overrides one performance rating's annual uplift components:
// a baseline, a performance component, and per-band bonuses keyed by band
// name (competent, advanced, expert).
type UpliftRates struct {
	Baseline    float64            `koanf:"baseline"`
	Performance float64            `koanf:"performance"`
	Bands       map[string]float64 `koanf:"bands"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// PopulationSize sets how many synthetic employees to generate when no
	// external population is supplied.
	PopulationSize int `koanf:"population_size"`

	// Seed makes the synthetic population reproducible.
	Seed int64 `koanf:"seed"`

	// GenderPayGapPercent injects a target gap into the generated
	// population, in percent.
	GenderPayGapPercent float64 `koanf:"gender_pay_gap_percent"`

	// LevelDistribution is the population share per level, index 0 being
	// level 1. Must sum to one.
	LevelDistribution []float64 `koanf:"level_distribution"`

	// FloorPolicy controls salary clamping in the generator: highest or
	// lowest.
	FloorPolicy string `koanf:"floor_policy"`

	// ByGender splits peer groups by gender in addition to level.
	ByGender bool `koanf:"by_gender"`

	// WorkerCount sets the number of projection workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxDirectReports caps the pool considered per manager.
	MaxDirectReports int `koanf:"max_direct_reports"`

	// BudgetConstraintPercent is the budget cap as a fraction of payroll,
	// applied both per manager and in aggregate.
	BudgetConstraintPercent float64 `koanf:"budget_constraint_percent"`

	// TargetGapPercent is the residual population gap, as a fraction of
	// payroll, that a remediation strategy must reach.
	TargetGapPercent float64 `koanf:"target_gap_percent"`

	// MaxYears is the horizon for projections and strategy feasibility.
	MaxYears int `koanf:"max_years"`

	// ConvergenceThresholdYears flags employees whose natural convergence
	// takes longer than this.
	ConvergenceThresholdYears int `koanf:"convergence_threshold_years"`

	// ConfidenceLevel is the two-sided confidence for projection intervals,
	// in (0, 1).
	ConfidenceLevel float64 `koanf:"confidence_level"`

	// ConfidenceSpread is the relative spread fed into the interval.
	ConfidenceSpread float64 `koanf:"confidence_spread"`

	// MedianGrowthRate is the assumed annual drift of peer-group medians.
	MedianGrowthRate float64 `koanf:"median_growth_rate"`

	// ConservativeMargin is subtracted from the performance component in
	// the conservative scenario.
	ConservativeMargin float64 `koanf:"conservative_margin"`

	// ImprovementProbability weights a one-tier rating improvement in the
	// optimistic scenario.
	ImprovementProbability float64 `koanf:"improvement_probability"`

	// MaterialityThreshold is the minimum gap percent for the targeted
	// strategy.
	MaterialityThreshold float64 `koanf:"materiality_threshold"`

	// MeritUpliftPercent is the retention request, as a fraction of salary,
	// for high performers at or above their median.
	MeritUpliftPercent float64 `koanf:"merit_uplift_percent"`

	// GradualSplits are the front-loaded year-split ratios per gradual
	// horizon. Each horizon's ratios must sum to one.
	GradualSplits map[int][]float64 `koanf:"gradual_splits"`

	// UpliftTable overrides the built-in uplift table, keyed by performance
	// rating. An empty map keeps the defaults. An override must cover every
	// rating on the scale.
	UpliftTable map[string]UpliftRates `koanf:"uplift_table"`
}

// New creates a Config with engine defaults.
func New() *Config {
	return &Config{
		LogLevel:                  "info",
		PopulationSize:            1000,
		Seed:                      42,
		GenderPayGapPercent:       15.8,
		LevelDistribution:         []float64{0.25, 0.25, 0.20, 0.15, 0.10, 0.05},
		FloorPolicy:               "highest",
		ByGender:                  false,
		WorkerCount:               runtime.NumCPU() * 4,
		MaxDirectReports:          6,
		BudgetConstraintPercent:   0.005,
		TargetGapPercent:          0.0,
		MaxYears:                  5,
		ConvergenceThresholdYears: 5,
		ConfidenceLevel:           0.95,
		ConfidenceSpread:          0.05,
		MedianGrowthRate:          0.035,
		ConservativeMargin:        0.005,
		ImprovementProbability:    0.3,
		MaterialityThreshold:      0.05,
		MeritUpliftPercent:        0.05,
		GradualSplits: map[int][]float64{
			3: {0.50, 0.30, 0.20},
			5: {0.35, 0.25, 0.20, 0.12, 0.08},
		},
	}
}
