package convergence_test

import (
	"testing"

	"github.com/okian/equilift/internal/domain/convergence"
	"github.com/okian/equilift/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func levelThree(id string, salary float64) model.Employee {
	return model.Employee{
		ID: id, Level: 3, Salary: salary,
		Gender: "Male", PerformanceRating: model.RatingAchieving,
	}
}

func TestBuildPeerGroups(t *testing.T) {
	Convey("Given a population across two levels", t, func() {
		a := convergence.New()
		pop := []model.Employee{
			levelThree("a", 70000),
			levelThree("b", 80000),
			levelThree("c", 90000),
			{ID: "d", Level: 2, Salary: 50000, Gender: "Female", PerformanceRating: model.RatingAchieving},
			{ID: "e", Level: 2, Salary: 60000, Gender: "Male", PerformanceRating: model.RatingAchieving},
		}

		Convey("When building peer groups by level", func() {
			groups, err := a.BuildPeerGroups(pop)
			So(err, ShouldBeNil)

			Convey("Then odd groups take the middle salary", func() {
				g := groups[model.GroupKey{Level: 3}]
				So(g.MemberCount, ShouldEqual, 3)
				So(g.MedianSalary, ShouldAlmostEqual, 80000, 1e-9)
			})

			Convey("Then even groups average the two middle salaries", func() {
				g := groups[model.GroupKey{Level: 2}]
				So(g.MemberCount, ShouldEqual, 2)
				So(g.MedianSalary, ShouldAlmostEqual, 55000, 1e-9)
			})
		})

		Convey("When splitting by gender as well", func() {
			byGender := convergence.New(convergence.WithByGender(true))
			groups, err := byGender.BuildPeerGroups(pop)
			So(err, ShouldBeNil)

			Convey("Then level-2 members land in separate groups", func() {
				So(groups[model.GroupKey{Level: 2, Gender: "Female"}].MemberCount, ShouldEqual, 1)
				So(groups[model.GroupKey{Level: 2, Gender: "Male"}].MemberCount, ShouldEqual, 1)
			})
		})

		Convey("When the population is empty", func() {
			_, err := a.BuildPeerGroups(nil)

			Convey("Then it reports an empty population", func() {
				So(err, ShouldWrap, convergence.ErrEmptyPopulation)
			})
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given a level-3 peer group with median 80000", t, func() {
		a := convergence.New()
		pop := []model.Employee{
			levelThree("a", 70000),
			levelThree("b", 80000),
			levelThree("c", 90000),
		}
		groups, err := a.BuildPeerGroups(pop)
		So(err, ShouldBeNil)

		Convey("When classifying an employee exactly at the median", func() {
			cls, err := a.Classify(pop[1], groups)

			Convey("Then the gap is zero and the employee is not below", func() {
				So(err, ShouldBeNil)
				So(cls.BelowMedian, ShouldBeFalse)
				So(cls.GapPercent, ShouldAlmostEqual, 0, 1e-12)
			})
		})

		Convey("When classifying an employee below the median", func() {
			cls, err := a.Classify(pop[0], groups)

			Convey("Then the gap is relative to the median", func() {
				So(err, ShouldBeNil)
				So(cls.BelowMedian, ShouldBeTrue)
				So(cls.GapAmount, ShouldAlmostEqual, 10000, 1e-9)
				So(cls.GapPercent, ShouldAlmostEqual, 10000.0/80000.0, 1e-12)
			})
		})

		Convey("When the employee has no peer group", func() {
			outsider := model.Employee{
				ID: "x", Level: 6, Salary: 95000,
				Gender: "Female", PerformanceRating: model.RatingExceeding,
			}
			_, err := a.Classify(outsider, groups)

			Convey("Then it reports insufficient population", func() {
				So(err, ShouldWrap, convergence.ErrInsufficientPopulation)
			})
		})
	})
}

func TestAnalyzeConvergence(t *testing.T) {
	Convey("Given an employee at 60000 in a peer group with median 65000", t, func() {
		a := convergence.New(
			convergence.WithThresholdYears(5),
			convergence.WithMedianGrowthRate(0.025),
		)
		pop := []model.Employee{
			levelThree("low", 60000),
			levelThree("mid", 65000),
			levelThree("high", 70000),
		}
		groups, err := a.BuildPeerGroups(pop)
		So(err, ShouldBeNil)

		Convey("When the employee grows at 3.0% against a 2.5% median drift", func() {
			rec, err := a.AnalyzeConvergence(pop[0], groups, 0.03)
			So(err, ShouldBeNil)

			Convey("Then natural convergence takes about 16.4 years", func() {
				So(rec.Divergent, ShouldBeFalse)
				So(rec.NaturalYearsToMedian, ShouldAlmostEqual, 16.4, 0.1)
			})

			Convey("And that exceeds the threshold, so intervention is required", func() {
				So(rec.InterventionRequired, ShouldBeTrue)
			})

			Convey("And a one-time adjustment closes the gap immediately", func() {
				So(rec.InterventionYearsToMedian, ShouldAlmostEqual, 0, 1e-12)
			})
		})

		Convey("When the employee grows no faster than the median", func() {
			rec, err := a.AnalyzeConvergence(pop[0], groups, 0.025)
			So(err, ShouldBeNil)

			Convey("Then the record is divergent and flagged", func() {
				So(rec.Divergent, ShouldBeTrue)
				So(rec.InterventionRequired, ShouldBeTrue)
			})
		})

		Convey("When the employee is at or above the median", func() {
			rec, err := a.AnalyzeConvergence(pop[2], groups, 0.03)
			So(err, ShouldBeNil)

			Convey("Then nothing is flagged", func() {
				So(rec.GapAmount, ShouldAlmostEqual, 0, 1e-12)
				So(rec.InterventionRequired, ShouldBeFalse)
			})
		})
	})
}

func TestAnalyzeReport(t *testing.T) {
	Convey("Given a mixed population with one invalid record", t, func() {
		a := convergence.New(convergence.WithMedianGrowthRate(0.025))
		pop := []model.Employee{
			levelThree("a", 70000),
			levelThree("b", 80000),
			levelThree("c", 90000),
			{ID: "bad", Level: 9, Salary: 100, Gender: "Male", PerformanceRating: model.RatingAchieving},
		}
		growth := func(model.Employee) (float64, error) { return 0.04, nil }

		Convey("When analyzing the full population", func() {
			report, err := a.Analyze(pop, growth)
			So(err, ShouldBeNil)

			Convey("Then the invalid record is counted but not aggregated", func() {
				So(report.TotalEmployees, ShouldEqual, 4)
				So(report.FailedCount, ShouldEqual, 1)
				So(report.Failures[0].EmployeeID, ShouldEqual, "bad")
				So(report.TotalPayroll, ShouldAlmostEqual, 240000, 1e-9)
			})

			Convey("Then only the below-median employee has a record", func() {
				So(report.BelowMedianCount, ShouldEqual, 1)
				So(len(report.Records), ShouldEqual, 1)
				So(report.Records[0].EmployeeID, ShouldEqual, "a")
				So(report.TotalGapAmount, ShouldAlmostEqual, 10000, 1e-9)
			})

			Convey("Then the below-median percentage covers valid employees only", func() {
				So(report.BelowMedianPercent, ShouldAlmostEqual, 100.0/3.0, 1e-6)
			})
		})
	})
}

func TestGenderGapPercent(t *testing.T) {
	Convey("Given a population with a known gender gap", t, func() {
		pop := []model.Employee{
			{ID: "m1", Level: 3, Salary: 100000, Gender: "Male", PerformanceRating: model.RatingAchieving},
			{ID: "m2", Level: 3, Salary: 80000, Gender: "Male", PerformanceRating: model.RatingAchieving},
			{ID: "f1", Level: 3, Salary: 81000, Gender: "Female", PerformanceRating: model.RatingAchieving},
		}

		Convey("When computing the population gap", func() {
			gap := convergence.GenderGapPercent(pop)

			Convey("Then it compares the medians relative to the male median", func() {
				So(gap, ShouldAlmostEqual, (90000.0-81000.0)/90000.0*100, 1e-9)
			})
		})

		Convey("When one gender is missing", func() {
			gap := convergence.GenderGapPercent(pop[:2])

			Convey("Then the gap reports zero", func() {
				So(gap, ShouldAlmostEqual, 0, 1e-12)
			})
		})
	})
}
