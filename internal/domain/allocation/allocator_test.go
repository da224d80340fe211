package allocation_test

import (
	"fmt"
	"testing"

	"github.com/okian/equilift/internal/domain/allocation"
	"github.com/okian/equilift/internal/domain/convergence"
	"github.com/okian/equilift/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func report(id, manager string, salary float64, rating model.PerformanceRating) model.Employee {
	return model.Employee{
		ID: id, Level: 3, Salary: salary,
		Gender: "Female", PerformanceRating: rating, ManagerID: manager,
	}
}

func TestAllocateCapInvariant(t *testing.T) {
	Convey("Given one manager whose team gaps exceed the cap", t, func() {
		a := allocation.New(
			allocation.WithBudgetPercent(0.005),
			allocation.WithMaxDirectReports(6),
		)
		analyzer := convergence.New()
		pop := []model.Employee{
			report("e1", "m1", 50000, model.RatingHighPerforming),
			report("e2", "m1", 60000, model.RatingAchieving),
			report("e3", "m1", 70000, model.RatingAchieving),
			report("e4", "m1", 80000, model.RatingAchieving),
			report("e5", "m1", 90000, model.RatingHighPerforming),
		}

		Convey("When allocating", func() {
			res, err := a.Allocate(pop, analyzer)
			So(err, ShouldBeNil)
			So(len(res.Managers), ShouldEqual, 1)
			budget := res.Managers[0].Budget

			Convey("Then the cap is 0.5% of team payroll", func() {
				So(budget.TeamPayroll, ShouldAlmostEqual, 350000, 1e-9)
				So(budget.Cap, ShouldAlmostEqual, 1750, 1e-9)
			})

			Convey("Then granted uplifts never exceed the cap", func() {
				granted := 0.0
				for _, rec := range res.Recommendations {
					if rec.State == model.StateAccepted || rec.State == model.StateTrimmed {
						granted += rec.ProposedUplift
					}
				}
				So(granted, ShouldBeLessThanOrEqualTo, budget.Cap+1e-9)
				So(budget.Spent, ShouldAlmostEqual, granted, 1e-9)
			})

			Convey("Then the urgent below-median high performer is served first", func() {
				byID := recsByID(res.Recommendations)
				urgent := byID["e1"]
				So(urgent.PriorityTier, ShouldEqual, model.TierUrgent)
				So(urgent.ProposedUplift, ShouldAlmostEqual, budget.Cap, 1e-9)
				So(urgent.State, ShouldEqual, model.StateTrimmed)
			})

			Convey("Then tiers never reached are staged, not trimmed", func() {
				byID := recsByID(res.Recommendations)
				So(byID["e5"].PriorityTier, ShouldEqual, model.TierMonitor)
				So(byID["e5"].State, ShouldEqual, model.StateStaged)
				So(byID["e2"].PriorityTier, ShouldEqual, model.TierRecognition)
				So(byID["e2"].State, ShouldEqual, model.StateStaged)
			})
		})
	})
}

func TestAllocatePoolCap(t *testing.T) {
	Convey("Given a manager with more reports than the pool cap", t, func() {
		a := allocation.New(
			allocation.WithBudgetPercent(0.05),
			allocation.WithMaxDirectReports(6),
		)
		analyzer := convergence.New()

		pop := make([]model.Employee, 0, 9)
		for i := 0; i < 9; i++ {
			pop = append(pop, report(
				fmt.Sprintf("e%d", i), "m1",
				50000+float64(i)*5000,
				model.RatingAchieving,
			))
		}

		Convey("When allocating", func() {
			res, err := a.Allocate(pop, analyzer)
			So(err, ShouldBeNil)
			budget := res.Managers[0].Budget

			Convey("Then at most six employees are considered", func() {
				So(budget.PoolSize, ShouldEqual, 6)
				So(len(budget.ConsideredIDs), ShouldEqual, 6)
			})

			Convey("Then squeezed-out below-median members are staged", func() {
				staged := 0
				for _, rec := range res.Recommendations {
					if rec.State == model.StateStaged {
						staged++
					}
				}
				So(staged, ShouldBeGreaterThanOrEqualTo, 0)
				// Every below-median employee ends in a terminal state.
				for _, rec := range res.Recommendations {
					So(rec.State.Terminal(), ShouldBeTrue)
				}
			})
		})
	})
}

func TestAllocateTierRequests(t *testing.T) {
	Convey("Given a generous budget and mixed tiers", t, func() {
		a := allocation.New(
			allocation.WithBudgetPercent(0.5),
			allocation.WithMeritUpliftPercent(0.05),
		)
		analyzer := convergence.New()
		pop := []model.Employee{
			report("low-hp", "m1", 50000, model.RatingExceeding),
			report("low", "m1", 60000, model.RatingAchieving),
			report("mid", "m1", 70000, model.RatingPartiallyMet),
			report("high-hp", "m1", 80000, model.RatingHighPerforming),
			report("top", "m1", 90000, model.RatingNotMet),
		}

		Convey("When allocating with room for everyone", func() {
			res, err := a.Allocate(pop, analyzer)
			So(err, ShouldBeNil)
			byID := recsByID(res.Recommendations)

			Convey("Then below-median members request their full gap", func() {
				So(byID["low-hp"].PriorityTier, ShouldEqual, model.TierUrgent)
				So(byID["low-hp"].RequestedUplift, ShouldAlmostEqual, 20000, 1e-9)
				So(byID["low-hp"].State, ShouldEqual, model.StateAccepted)

				So(byID["low"].PriorityTier, ShouldEqual, model.TierRecognition)
				So(byID["low"].RequestedUplift, ShouldAlmostEqual, 10000, 1e-9)
			})

			Convey("Then high performers above the median request the merit fraction", func() {
				So(byID["high-hp"].PriorityTier, ShouldEqual, model.TierMonitor)
				So(byID["high-hp"].RequestedUplift, ShouldAlmostEqual, 4000, 1e-9)
			})

			Convey("Then employees with nothing to claim get no recommendation", func() {
				_, ok := byID["top"]
				So(ok, ShouldBeFalse)
			})

			Convey("Then an at-median low performer gets no recommendation either", func() {
				_, ok := byID["mid"]
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestAllocateEdgeCases(t *testing.T) {
	Convey("Given an allocator", t, func() {
		analyzer := convergence.New()

		Convey("When the budget percent is not positive", func() {
			a := allocation.New(allocation.WithBudgetPercent(0))
			_, err := a.Allocate([]model.Employee{report("e1", "m1", 50000, model.RatingAchieving)}, analyzer)

			Convey("Then it is rejected before processing", func() {
				So(err, ShouldWrap, allocation.ErrInvalidBudget)
			})
		})

		Convey("When a team has no eligible members", func() {
			a := allocation.New()
			pop := []model.Employee{
				report("e1", "m1", 70000, model.RatingNotMet),
				report("e2", "m1", 70000, model.RatingPartiallyMet),
			}
			res, err := a.Allocate(pop, analyzer)

			Convey("Then the pool yields no action, not an error", func() {
				So(err, ShouldBeNil)
				So(res.Managers[0].NoAction, ShouldBeTrue)
				So(len(res.Recommendations), ShouldEqual, 0)
			})
		})
	})
}

func recsByID(recs []model.Recommendation) map[string]model.Recommendation {
	out := make(map[string]model.Recommendation, len(recs))
	for _, rec := range recs {
		out[rec.EmployeeID] = rec
	}
	return out
}
