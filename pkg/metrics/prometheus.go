// Package metrics provides Prometheus metrics for the equity engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Run-level metrics
	runsTotal       prometheus.Counter
	runDuration     prometheus.Histogram
	employeesTotal  prometheus.Counter
	failedRecords   prometheus.Counter
	peerGroupCount  prometheus.Gauge
	workerCount     prometheus.Gauge

	// Equity metrics - population state at the end of a run
	belowMedianPercent prometheus.Gauge
	genderGapPercent   prometheus.Gauge
	totalGapAmount     prometheus.Gauge

	// Phase latency
	phaseDuration *prometheus.HistogramVec

	// Strategy metrics
	strategyCost     *prometheus.GaugeVec
	infeasibleRuns   prometheus.Counter

	// Allocation metrics
	recommendations   *prometheus.CounterVec
	allocatedBudget   prometheus.Gauge
	budgetUtilization prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "equilift",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of analysis runs completed",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Histogram of end-to-end analysis run duration in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.employeesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "employees_analyzed_total",
		Help:      "Total number of employee records analyzed across runs",
	})

	m.failedRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "failed_records_total",
		Help:      "Total number of employee records rejected by validation",
	})

	m.peerGroupCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "peer_groups",
		Help:      "Number of peer groups built in the last run",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "workers",
		Help:      "Number of workers in the projection pool",
	})

	m.belowMedianPercent = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "below_median_percent",
		Help:      "Percentage of employees below their peer-group median after the last run",
	})

	m.genderGapPercent = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gender_gap_percent",
		Help:      "Population-level gender pay gap percentage after the last run",
	})

	m.totalGapAmount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_gap_amount",
		Help:      "Sum of below-median salary gaps identified in the last run",
	})

	m.phaseDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "phase_duration_seconds",
		Help:      "Histogram of per-phase duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"phase"})

	m.strategyCost = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "strategy_cost",
		Help:      "Total cost of each evaluated remediation strategy in the last run",
	}, []string{"strategy"})

	m.infeasibleRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "infeasible_runs_total",
		Help:      "Runs where no strategy met both the target and the budget",
	})

	m.recommendations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_total",
		Help:      "Recommendations produced by the allocator, by terminal state",
	}, []string{"state"})

	m.allocatedBudget = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocated_budget",
		Help:      "Total uplift allocated across managers in the last run",
	})

	m.budgetUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "budget_utilization",
		Help:      "Allocated budget as a fraction of the aggregate manager caps",
	})
}

// Registry returns the registry all engine metrics are registered on, for
// callers that embed the engine and expose their own /metrics endpoint.
func Registry() *prometheus.Registry {
	return customRegistry
}

// Package-level record helpers operating on the global manager.

func RecordRun(seconds float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.runsTotal.Inc()
	globalManager.runDuration.Observe(seconds)
}

func RecordEmployeesAnalyzed(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.employeesTotal.Add(float64(n))
}

func RecordFailedRecords(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.failedRecords.Add(float64(n))
}

func UpdatePeerGroupCount(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.peerGroupCount.Set(float64(n))
}

func UpdateWorkerCount(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.workerCount.Set(float64(n))
}

func UpdateBelowMedianPercent(pct float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.belowMedianPercent.Set(pct)
}

func UpdateGenderGapPercent(pct float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.genderGapPercent.Set(pct)
}

func UpdateTotalGapAmount(amount float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.totalGapAmount.Set(amount)
}

func RecordPhaseDuration(phase string, seconds float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.phaseDuration.WithLabelValues(phase).Observe(seconds)
}

func UpdateStrategyCost(strategy string, cost float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.strategyCost.WithLabelValues(strategy).Set(cost)
}

func RecordInfeasibleRun() {
	if !globalManager.enabled {
		return
	}
	globalManager.infeasibleRuns.Inc()
}

func RecordRecommendation(state string) {
	if !globalManager.enabled {
		return
	}
	globalManager.recommendations.WithLabelValues(state).Inc()
}

func UpdateAllocatedBudget(amount float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.allocatedBudget.Set(amount)
}

func UpdateBudgetUtilization(fraction float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.budgetUtilization.Set(fraction)
}
