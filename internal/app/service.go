// Package service wires the analysis pipeline together: population intake,
// scenario projection, median-convergence classification, strategy
// simulation, and the manager budget pass. One Run is one deterministic
// batch; the service holds no mutable state between runs.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/equilift/internal/adapters/population"
	"github.com/okian/equilift/internal/adapters/workers"
	"github.com/okian/equilift/internal/config"
	"github.com/okian/equilift/internal/domain/allocation"
	"github.com/okian/equilift/internal/domain/convergence"
	"github.com/okian/equilift/internal/domain/forecast"
	"github.com/okian/equilift/internal/domain/model"
	"github.com/okian/equilift/internal/domain/scenario"
	"github.com/okian/equilift/internal/domain/strategy"
	"github.com/okian/equilift/pkg/logger"
	"github.com/okian/equilift/pkg/metrics"
)

// PopulationSource supplies the employee snapshot for one run.
type PopulationSource interface {
	Generate() ([]model.Employee, error)
}

// EmployeeProjection bundles one employee's scenario paths with the
// confidence interval around the realistic final salary.
type EmployeeProjection struct {
	EmployeeID  string                                `json:"employee_id"`
	Projections map[scenario.Name]scenario.Projection `json:"projections"`
	FinalLower  float64                               `json:"final_lower"`
	FinalUpper  float64                               `json:"final_upper"`
}

// Result is the full output of one analysis run.
type Result struct {
	RunID       string               `json:"run_id"`
	StartedAt   time.Time            `json:"started_at"`
	Duration    time.Duration        `json:"duration"`
	Convergence *convergence.Report  `json:"convergence"`
	Projections []EmployeeProjection `json:"projections"`
	Strategies  *strategy.Comparison `json:"strategies"`
	Allocation  *allocation.Result   `json:"allocation"`
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPopulationSource replaces the synthetic generator, e.g. with a data
// loader.
func WithPopulationSource(src PopulationSource) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service runs the full equity analysis pipeline.
type Service struct {
	cfg *config.Config

	source    PopulationSource
	pool      *workers.Pool
	projector *scenario.Projector
	analyzer  *convergence.Analyzer
	simulator *strategy.Simulator
	allocator *allocation.Allocator

	logger logger.Logger
}

// New builds a Service from validated configuration. Components share the
// same policy parameters so classification, strategy costing, and
// allocation agree with each other.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	projectorOpts := []scenario.Option{
		scenario.WithConservativeMargin(cfg.ConservativeMargin),
		scenario.WithImprovementProbability(cfg.ImprovementProbability),
	}
	if len(cfg.UpliftTable) > 0 {
		projectorOpts = append(projectorOpts, scenario.WithTable(upliftTable(cfg.UpliftTable)))
	}

	floorPolicy := population.FloorPolicy(cfg.FloorPolicy)
	s := &Service{
		cfg: cfg,
		source: population.New(
			population.WithSize(cfg.PopulationSize),
			population.WithSeed(cfg.Seed),
			population.WithLevelDistribution(cfg.LevelDistribution),
			population.WithGenderPayGapPercent(cfg.GenderPayGapPercent),
			population.WithFloorPolicy(floorPolicy),
		),
		pool:      workers.New(workers.WithSize(cfg.WorkerCount)),
		projector: scenario.New(projectorOpts...),
		analyzer: convergence.New(
			convergence.WithByGender(cfg.ByGender),
			convergence.WithThresholdYears(cfg.ConvergenceThresholdYears),
			convergence.WithMedianGrowthRate(cfg.MedianGrowthRate),
		),
		simulator: strategy.New(
			strategy.WithBudgetConstraint(cfg.BudgetConstraintPercent),
			strategy.WithTargetGapPercent(cfg.TargetGapPercent),
			strategy.WithMaxYears(cfg.MaxYears),
			strategy.WithMaterialityThreshold(cfg.MaterialityThreshold),
			strategy.WithGradualSplits(cfg.GradualSplits),
		),
		allocator: allocation.New(
			allocation.WithMaxDirectReports(cfg.MaxDirectReports),
			allocation.WithBudgetPercent(cfg.BudgetConstraintPercent),
			allocation.WithMeritUpliftPercent(cfg.MeritUpliftPercent),
		),
		logger: logger.Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateWorkerCount(s.pool.Size())
	return s, nil
}

// upliftTable converts the configured override into the projector's table.
func upliftTable(override map[string]config.UpliftRates) scenario.Table {
	table := make(scenario.Table, len(override))
	for rating, rates := range override {
		bands := make(map[scenario.Band]float64, len(rates.Bands))
		for band, bonus := range rates.Bands {
			bands[scenario.Band(band)] = bonus
		}
		table[model.PerformanceRating(rating)] = scenario.RateComponents{
			Baseline:    rates.Baseline,
			Performance: rates.Performance,
			Bands:       bands,
		}
	}
	return table
}

// Run executes one batch analysis. Per-employee phases fan out across the
// worker pool; aggregation phases are sequential barriers.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: start,
	}
	log := s.logger.Named("run")
	log.Info(ctx, "starting analysis run",
		logger.String("run_id", res.RunID),
		logger.Int("workers", s.pool.Size()))

	pop, err := s.phaseGenerate(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordEmployeesAnalyzed(len(pop))

	res.Projections = s.phaseProject(ctx, pop)

	res.Convergence, err = s.phaseClassify(ctx, pop)
	if err != nil {
		return nil, err
	}

	res.Strategies, err = s.phaseSimulate(ctx, res.Convergence)
	if err != nil {
		return nil, err
	}

	res.Allocation, err = s.phaseAllocate(ctx, pop)
	if err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	metrics.RecordRun(res.Duration.Seconds())
	log.Info(ctx, "analysis run complete",
		logger.String("run_id", res.RunID),
		logger.Int("below_median", res.Convergence.BelowMedianCount),
		logger.String("selected_strategy", string(res.Strategies.Selected)),
		logger.Float64("allocated_budget", res.Allocation.AllocatedBudget),
		logger.Any("duration", res.Duration))
	return res, nil
}

func (s *Service) phaseGenerate(ctx context.Context) ([]model.Employee, error) {
	defer phaseTimer("generate")()

	pop, err := s.source.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating population: %w", err)
	}
	s.logger.Debug(ctx, "population ready", logger.Int("size", len(pop)))
	return pop, nil
}

func (s *Service) phaseProject(ctx context.Context, pop []model.Employee) []EmployeeProjection {
	defer phaseTimer("project")()

	projections, failures := workers.Map(ctx, s.pool, pop,
		func(_ context.Context, e model.Employee) (EmployeeProjection, error) {
			paths, err := s.projector.Project(e, s.cfg.MaxYears)
			if err != nil {
				return EmployeeProjection{}, err
			}

			realistic := paths[scenario.Realistic]
			lower, upper, err := forecast.ConfidenceInterval(
				realistic.FinalSalary, s.cfg.ConfidenceLevel, s.cfg.ConfidenceSpread)
			if err != nil {
				return EmployeeProjection{}, err
			}

			return EmployeeProjection{
				EmployeeID:  e.ID,
				Projections: paths,
				FinalLower:  lower,
				FinalUpper:  upper,
			}, nil
		})

	if len(failures) > 0 {
		metrics.RecordFailedRecords(len(failures))
		s.logger.Warn(ctx, "projection failures", logger.Int("count", len(failures)))
	}
	return projections
}

func (s *Service) phaseClassify(ctx context.Context, pop []model.Employee) (*convergence.Report, error) {
	defer phaseTimer("classify")()

	report, err := s.analyzer.Analyze(pop, func(e model.Employee) (float64, error) {
		return s.projector.AnnualRate(e, scenario.Realistic)
	})
	if err != nil {
		return nil, fmt.Errorf("classifying population: %w", err)
	}

	metrics.UpdatePeerGroupCount(len(report.PeerGroups))
	metrics.UpdateBelowMedianPercent(report.BelowMedianPercent)
	metrics.UpdateGenderGapPercent(report.GenderGapPercent)
	metrics.UpdateTotalGapAmount(report.TotalGapAmount)
	if report.FailedCount > 0 {
		metrics.RecordFailedRecords(report.FailedCount)
	}
	s.logger.Debug(ctx, "classification done",
		logger.Int("peer_groups", len(report.PeerGroups)),
		logger.Int("below_median", report.BelowMedianCount),
		logger.Float64("total_gap", report.TotalGapAmount))
	return report, nil
}

func (s *Service) phaseSimulate(ctx context.Context, report *convergence.Report) (*strategy.Comparison, error) {
	defer phaseTimer("simulate")()

	cmp, err := s.simulator.Simulate(report.Records, report.TotalPayroll)
	if err != nil {
		return nil, fmt.Errorf("simulating strategies: %w", err)
	}

	for _, r := range cmp.Results {
		metrics.UpdateStrategyCost(string(r.Strategy), r.TotalCost)
	}
	if cmp.Infeasible {
		metrics.RecordInfeasibleRun()
		s.logger.Warn(ctx, "no feasible strategy, returning lowest cost",
			logger.String("selected", string(cmp.Selected)))
	}
	return cmp, nil
}

func (s *Service) phaseAllocate(ctx context.Context, pop []model.Employee) (*allocation.Result, error) {
	defer phaseTimer("allocate")()

	alloc, err := s.allocator.Allocate(pop, s.analyzer)
	if err != nil {
		return nil, fmt.Errorf("allocating budgets: %w", err)
	}

	for _, rec := range alloc.Recommendations {
		metrics.RecordRecommendation(rec.State.String())
	}
	metrics.UpdateAllocatedBudget(alloc.AllocatedBudget)
	metrics.UpdateBudgetUtilization(alloc.BudgetUtilization)
	s.logger.Debug(ctx, "allocation done",
		logger.Int("accepted", alloc.AcceptedCount),
		logger.Int("trimmed", alloc.TrimmedCount),
		logger.Int("staged", alloc.StagedCount))
	return alloc, nil
}

func phaseTimer(phase string) func() {
	start := time.Now()
	return func() {
		metrics.RecordPhaseDuration(phase, time.Since(start).Seconds())
	}
}
