// Package population generates deterministic synthetic employee snapshots:
// levels follow a pyramid distribution, salaries cluster around per-level
// median targets, and an optional gender pay gap is injected so the equity
// pipeline has something to find. The same seed always yields the same
// population.
package population

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/okian/equilift/internal/domain/model"
)

// FloorPolicy controls how far below a level's salary band the pay-gap
// injection may push a salary.
type FloorPolicy string

const (
	// FloorHighest clamps every salary back into the level's band.
	FloorHighest FloorPolicy = "highest"
	// FloorLowest keeps the band's ceiling but lets injected gaps undercut
	// the band minimum, which produces deeper below-median outliers.
	FloorLowest FloorPolicy = "lowest"
)

// Band is one level's salary range with its median target.
type Band struct {
	Min          float64 `json:"min" koanf:"min"`
	Max          float64 `json:"max" koanf:"max"`
	MedianTarget float64 `json:"median_target" koanf:"median_target"`
}

// DefaultBands returns the per-level salary bands. Levels 4-6 share the
// senior band.
func DefaultBands() map[int]Band {
	senior := Band{Min: 76592, Max: 103624, MedianTarget: 90108}
	return map[int]Band{
		1: {Min: 28000, Max: 35000, MedianTarget: 30000},
		2: {Min: 45000, Max: 72000, MedianTarget: 60000},
		3: {Min: 72000, Max: 95000, MedianTarget: 83939},
		4: senior,
		5: senior,
		6: senior,
	}
}

// DefaultLevelDistribution returns the share of the population at each
// level, index 0 being level 1.
func DefaultLevelDistribution() []float64 {
	return []float64{0.25, 0.25, 0.20, 0.15, 0.10, 0.05}
}

// Default generation constants.
const (
	defaultSize      = 1000
	defaultSeed      = 42
	defaultMaleShare = 0.65
	maxTenureYears   = 5

	// Split of an injected pay gap: males drift up by this share of the
	// gap factor, females down by the remainder.
	maleGapShare   = 0.6
	femaleGapShare = 0.4

	// rootManagerID anchors the top of the synthetic hierarchy.
	rootManagerID = "board"
)

// ratingWeights are cumulative per rating, ordered as model.Ratings().
// Senior levels skew toward the upper tiers.
var (
	coreRatingWeights   = []float64{0.05, 0.10, 0.60, 0.20, 0.05} //nolint:gochecknoglobals
	seniorRatingWeights = []float64{0.02, 0.08, 0.50, 0.30, 0.10} //nolint:gochecknoglobals
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSize sets the population size.
func WithSize(n int) Option {
	return func(g *Generator) {
		g.size = n
	}
}

// WithSeed sets the deterministic seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithLevelDistribution replaces the per-level population shares.
func WithLevelDistribution(dist []float64) Option {
	return func(g *Generator) {
		if len(dist) > 0 {
			g.levelDist = dist
		}
	}
}

// WithGenderPayGapPercent injects a target gender pay gap, in percent.
func WithGenderPayGapPercent(percent float64) Option {
	return func(g *Generator) {
		g.genderGapPct = percent
	}
}

// WithBands replaces the per-level salary bands.
func WithBands(bands map[int]Band) Option {
	return func(g *Generator) {
		if len(bands) > 0 {
			g.bands = bands
		}
	}
}

// WithFloorPolicy sets how salaries are clamped against their band.
func WithFloorPolicy(policy FloorPolicy) Option {
	return func(g *Generator) {
		g.floorPolicy = policy
	}
}

// Generator produces seeded synthetic populations.
type Generator struct {
	size         int
	seed         int64
	levelDist    []float64
	genderGapPct float64
	bands        map[int]Band
	floorPolicy  FloorPolicy
}

// New creates a Generator with realistic defaults.
func New(opts ...Option) *Generator {
	g := &Generator{
		size:        defaultSize,
		seed:        defaultSeed,
		levelDist:   DefaultLevelDistribution(),
		bands:       DefaultBands(),
		floorPolicy: FloorHighest,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) validate() error {
	if g.size <= 0 {
		return fmt.Errorf("size %d: %w", g.size, ErrInvalidSize)
	}
	sum := 0.0
	for _, share := range g.levelDist {
		sum += share
	}
	if len(g.levelDist) != model.MaxLevel || math.Abs(sum-1) > 1e-3 {
		return fmt.Errorf("distribution %v: %w", g.levelDist, ErrInvalidDistribution)
	}
	if g.genderGapPct < 0 || g.genderGapPct > 50 {
		return fmt.Errorf("gap %v%%: %w", g.genderGapPct, ErrInvalidGenderGap)
	}
	if g.floorPolicy != FloorHighest && g.floorPolicy != FloorLowest {
		return fmt.Errorf("policy %q: %w", g.floorPolicy, ErrInvalidFloorPolicy)
	}
	return nil
}

// Generate builds the population snapshot. Output order is by descending
// level then employee ID; the manager hierarchy is assembled level by level
// so every employee below the top reports to someone one level up.
func (g *Generator) Generate() ([]model.Employee, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // deterministic synthetic data

	employees := make([]model.Employee, 0, g.size)
	for i := 0; i < g.size; i++ {
		level := g.pickLevel(rng)
		gender := "Female"
		if rng.Float64() < defaultMaleShare {
			gender = "Male"
		}

		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("generating employee id: %w", err)
		}

		employees = append(employees, model.Employee{
			ID:                id.String(),
			Level:             level,
			Salary:            g.salaryFor(rng, level, gender),
			Gender:            gender,
			PerformanceRating: pickRating(rng, level),
			TenureYears:       rng.Intn(maxTenureYears + 1),
		})
	}

	g.assignManagers(employees)

	sort.SliceStable(employees, func(i, j int) bool {
		if employees[i].Level != employees[j].Level {
			return employees[i].Level > employees[j].Level
		}
		return employees[i].ID < employees[j].ID
	})
	return employees, nil
}

func (g *Generator) pickLevel(rng *rand.Rand) int {
	r := rng.Float64()
	cum := 0.0
	for i, share := range g.levelDist {
		cum += share
		if r < cum {
			return i + 1
		}
	}
	return model.MaxLevel
}

// salaryFor draws around the band's median target and then applies the
// configured gap injection. The normal spread matches a sixth of the band
// width so most draws land inside it before clamping.
func (g *Generator) salaryFor(rng *rand.Rand, level int, gender string) float64 {
	band := g.bands[level]
	salary := rng.NormFloat64()*(band.Max-band.Min)/6 + band.MedianTarget

	if g.genderGapPct > 0 {
		factor := g.genderGapPct / 100
		if gender == "Male" {
			salary *= 1 + factor*maleGapShare
		} else {
			salary *= 1 - factor*femaleGapShare
		}
	}

	if salary > band.Max {
		salary = band.Max
	}
	if g.floorPolicy == FloorHighest && salary < band.Min {
		salary = band.Min
	}
	if salary <= 0 {
		salary = band.Min
	}
	return math.Round(salary*100) / 100
}

func pickRating(rng *rand.Rand, level int) model.PerformanceRating {
	weights := coreRatingWeights
	if level >= 4 {
		weights = seniorRatingWeights
	}

	r := rng.Float64()
	cum := 0.0
	ratings := model.Ratings()
	for i, w := range weights {
		cum += w
		if r < cum {
			return ratings[i]
		}
	}
	return ratings[len(ratings)-1]
}

// assignManagers wires a synthetic hierarchy: each employee reports to a
// round-robin pick from the nearest populated level above, and the top
// level reports to the board.
func (g *Generator) assignManagers(employees []model.Employee) {
	byLevel := make(map[int][]int)
	for i, e := range employees {
		byLevel[e.Level] = append(byLevel[e.Level], i)
	}

	next := make(map[int]int)
	for i := range employees {
		managers := managersAbove(byLevel, employees[i].Level)
		if len(managers) == 0 {
			employees[i].ManagerID = rootManagerID
			continue
		}
		pick := managers[next[employees[i].Level]%len(managers)]
		next[employees[i].Level]++
		employees[i].ManagerID = employees[pick].ID
	}
}

func managersAbove(byLevel map[int][]int, level int) []int {
	for l := level + 1; l <= model.MaxLevel; l++ {
		if len(byLevel[l]) > 0 {
			return byLevel[l]
		}
	}
	return nil
}
