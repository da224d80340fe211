package convergence

import (
	"sort"

	"github.com/okian/equilift/internal/domain/model"
)

// GrowthRateFunc supplies the expected annual growth rate for one employee,
// typically the realistic scenario rate from the projector.
type GrowthRateFunc func(model.Employee) (float64, error)

// Report is the full classification output for one analysis run.
type Report struct {
	PeerGroups         []model.PeerGroup         `json:"peer_groups"`
	Records            []model.ConvergenceRecord `json:"records"`
	TotalEmployees     int                       `json:"total_employees"`
	BelowMedianCount   int                       `json:"below_median_count"`
	BelowMedianPercent float64                   `json:"below_median_percent"`
	TotalGapAmount     float64                   `json:"total_gap_amount"`
	TotalPayroll       float64                   `json:"total_payroll"`
	GenderGapPercent   float64                   `json:"gender_gap_percent"`
	Failures           []model.RecordFailure     `json:"failures,omitempty"`
	FailedCount        int                       `json:"failed_count"`
}

// Analyze runs the full classification pass: validate records, build peer
// groups, classify every valid employee, and solve convergence for the
// below-median ones. Validation failures are reported per record and
// excluded from all aggregates; they never abort the batch.
func (a *Analyzer) Analyze(population []model.Employee, growthRate GrowthRateFunc) (*Report, error) {
	report := &Report{TotalEmployees: len(population)}

	valid := make([]model.Employee, 0, len(population))
	seen := make(map[string]struct{}, len(population))
	for _, e := range population {
		if err := e.Validate(); err != nil {
			report.Failures = append(report.Failures, model.RecordFailure{
				EmployeeID: e.ID,
				Reason:     err.Error(),
			})
			continue
		}
		if _, dup := seen[e.ID]; dup {
			report.Failures = append(report.Failures, model.RecordFailure{
				EmployeeID: e.ID,
				Reason:     "duplicate employee id",
			})
			continue
		}
		seen[e.ID] = struct{}{}
		valid = append(valid, e)
	}
	report.FailedCount = len(report.Failures)

	groups, err := a.BuildPeerGroups(valid)
	if err != nil {
		return nil, err
	}

	for _, g := range groups {
		report.PeerGroups = append(report.PeerGroups, g)
	}
	sort.Slice(report.PeerGroups, func(i, j int) bool {
		ki, kj := report.PeerGroups[i].Key, report.PeerGroups[j].Key
		if ki.Level != kj.Level {
			return ki.Level < kj.Level
		}
		return ki.Gender < kj.Gender
	})

	for _, e := range valid {
		report.TotalPayroll += e.Salary

		rate, err := growthRate(e)
		if err != nil {
			report.Failures = append(report.Failures, model.RecordFailure{
				EmployeeID: e.ID,
				Reason:     err.Error(),
			})
			report.FailedCount++
			continue
		}

		rec, err := a.AnalyzeConvergence(e, groups, rate)
		if err != nil {
			report.Failures = append(report.Failures, model.RecordFailure{
				EmployeeID: e.ID,
				Reason:     err.Error(),
			})
			report.FailedCount++
			continue
		}

		if rec.GapAmount > 0 {
			report.Records = append(report.Records, rec)
			report.BelowMedianCount++
			report.TotalGapAmount += rec.GapAmount
		}
	}

	sort.Slice(report.Records, func(i, j int) bool {
		return report.Records[i].EmployeeID < report.Records[j].EmployeeID
	})

	analyzed := len(valid)
	if analyzed > 0 {
		report.BelowMedianPercent = float64(report.BelowMedianCount) / float64(analyzed) * 100
	}
	report.GenderGapPercent = GenderGapPercent(valid)

	return report, nil
}

// GenderGapPercent returns the population-level gender pay gap as a
// percentage of the male median: (maleMedian - femaleMedian) / maleMedian.
// Populations missing either gender report zero.
func GenderGapPercent(population []model.Employee) float64 {
	var male, female []float64
	for _, e := range population {
		switch e.Gender {
		case "Male":
			male = append(male, e.Salary)
		case "Female":
			female = append(female, e.Salary)
		}
	}
	if len(male) == 0 || len(female) == 0 {
		return 0
	}

	maleMedian := medianOf(male)
	if maleMedian == 0 {
		return 0
	}
	return (maleMedian - medianOf(female)) / maleMedian * 100
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
