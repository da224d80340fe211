package scenario

import "github.com/okian/equilift/internal/domain/model"

// Band groups organization levels into uplift bands. Levels 1 and 4 are
// competent, 2 and 5 advanced, 3 and 6 expert.
type Band string

const (
	BandCompetent Band = "competent"
	BandAdvanced  Band = "advanced"
	BandExpert    Band = "expert"
)

// BandForLevel maps a level to its uplift band.
func BandForLevel(level int) (Band, bool) {
	switch level {
	case 1, 4:
		return BandCompetent, true
	case 2, 5:
		return BandAdvanced, true
	case 3, 6:
		return BandExpert, true
	}
	return "", false
}

// RateComponents are the additive parts of one rating's annual uplift:
// a baseline everyone receives, a performance-based component, and a bonus
// per level band.
type RateComponents struct {
	Baseline    float64          `json:"baseline" koanf:"baseline"`
	Performance float64          `json:"performance" koanf:"performance"`
	Bands       map[Band]float64 `json:"bands" koanf:"bands"`
}

// Table maps each performance rating to its uplift components.
type Table map[model.PerformanceRating]RateComponents

// DefaultTable returns the standard uplift table. Rates are annual
// fractions; the total uplift for an employee is
// baseline + performance + band bonus.
func DefaultTable() Table {
	noBonus := map[Band]float64{BandCompetent: 0.0, BandAdvanced: 0.0075, BandExpert: 0.01}
	stdBonus := map[Band]float64{BandCompetent: 0.005, BandAdvanced: 0.0075, BandExpert: 0.01}

	return Table{
		model.RatingNotMet:         {Baseline: 0.0125, Performance: 0.0, Bands: noBonus},
		model.RatingPartiallyMet:   {Baseline: 0.0125, Performance: 0.0, Bands: noBonus},
		model.RatingAchieving:      {Baseline: 0.0125, Performance: 0.0125, Bands: stdBonus},
		model.RatingHighPerforming: {Baseline: 0.0125, Performance: 0.0225, Bands: stdBonus},
		model.RatingExceeding:      {Baseline: 0.0125, Performance: 0.030, Bands: stdBonus},
	}
}
