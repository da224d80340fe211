package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/equilift/internal/domain/model"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if EQUILIFT_CONFIG is set
//  3. env (prefix EQUILIFT_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("EQUILIFT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: EQUILIFT_MAX_YEARS, EQUILIFT_SEED, ...
	// Map env keys like EQUILIFT_MAX_YEARS -> max_years (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("EQUILIFT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "equilift_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails closed on any out-of-range parameter.
func (c *Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("%w: population_size must be positive, got %d", ErrInvalidConfig, c.PopulationSize)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.MaxDirectReports <= 0 {
		return fmt.Errorf("%w: max_direct_reports must be positive, got %d", ErrInvalidConfig, c.MaxDirectReports)
	}
	if c.BudgetConstraintPercent <= 0 {
		return fmt.Errorf("%w: budget_constraint_percent must be positive, got %v", ErrInvalidConfig, c.BudgetConstraintPercent)
	}
	if c.TargetGapPercent < 0 {
		return fmt.Errorf("%w: target_gap_percent must not be negative, got %v", ErrInvalidConfig, c.TargetGapPercent)
	}
	if c.MaxYears <= 0 {
		return fmt.Errorf("%w: max_years must be positive, got %d", ErrInvalidConfig, c.MaxYears)
	}
	if c.ConvergenceThresholdYears <= 0 {
		return fmt.Errorf("%w: convergence_threshold_years must be positive, got %d", ErrInvalidConfig, c.ConvergenceThresholdYears)
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return fmt.Errorf("%w: confidence_level must be in (0, 1), got %v", ErrInvalidConfig, c.ConfidenceLevel)
	}
	if c.ConfidenceSpread < 0 {
		return fmt.Errorf("%w: confidence_spread must not be negative, got %v", ErrInvalidConfig, c.ConfidenceSpread)
	}
	if c.ConservativeMargin < 0 {
		return fmt.Errorf("%w: conservative_margin must not be negative, got %v", ErrInvalidConfig, c.ConservativeMargin)
	}
	if c.ImprovementProbability < 0 || c.ImprovementProbability > 1 {
		return fmt.Errorf("%w: improvement_probability must be in [0, 1], got %v", ErrInvalidConfig, c.ImprovementProbability)
	}
	if c.MaterialityThreshold < 0 {
		return fmt.Errorf("%w: materiality_threshold must not be negative, got %v", ErrInvalidConfig, c.MaterialityThreshold)
	}
	if c.MeritUpliftPercent < 0 {
		return fmt.Errorf("%w: merit_uplift_percent must not be negative, got %v", ErrInvalidConfig, c.MeritUpliftPercent)
	}
	for horizon, ratios := range c.GradualSplits {
		if len(ratios) != horizon {
			return fmt.Errorf("%w: gradual_splits[%d] needs %d ratios, got %d", ErrInvalidConfig, horizon, horizon, len(ratios))
		}
		sum := 0.0
		for _, r := range ratios {
			if r <= 0 {
				return fmt.Errorf("%w: gradual_splits[%d] ratios must be positive", ErrInvalidConfig, horizon)
			}
			sum += r
		}
		if math.Abs(sum-1) > 1e-6 {
			return fmt.Errorf("%w: gradual_splits[%d] ratios sum to %v, want 1", ErrInvalidConfig, horizon, sum)
		}
	}
	if len(c.UpliftTable) > 0 {
		for _, rating := range model.Ratings() {
			if _, ok := c.UpliftTable[string(rating)]; !ok {
				return fmt.Errorf("%w: uplift_table missing rating %q", ErrInvalidConfig, rating)
			}
		}
		for rating, rates := range c.UpliftTable {
			if !model.PerformanceRating(rating).Valid() {
				return fmt.Errorf("%w: uplift_table has unknown rating %q", ErrInvalidConfig, rating)
			}
			if rates.Baseline < 0 || rates.Performance < 0 {
				return fmt.Errorf("%w: uplift_table[%q] rates must not be negative", ErrInvalidConfig, rating)
			}
			for band, bonus := range rates.Bands {
				if bonus < 0 {
					return fmt.Errorf("%w: uplift_table[%q] band %q bonus must not be negative", ErrInvalidConfig, rating, band)
				}
			}
		}
	}
	return nil
}
