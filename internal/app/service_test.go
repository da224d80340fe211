package service_test

import (
	"context"
	"os"
	"testing"

	service "github.com/okian/equilift/internal/app"
	"github.com/okian/equilift/internal/config"
	"github.com/okian/equilift/internal/domain/model"
	"github.com/okian/equilift/internal/domain/strategy"
	"github.com/okian/equilift/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func smallConfig() *config.Config {
	cfg := config.New()
	cfg.PopulationSize = 120
	cfg.Seed = 7
	cfg.WorkerCount = 4
	return cfg
}

func TestServiceRun(t *testing.T) {
	Convey("Given a service over a small synthetic population", t, func() {
		svc, err := service.New(smallConfig())
		So(err, ShouldBeNil)

		Convey("When running one analysis batch", func() {
			res, err := svc.Run(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the run carries an identifier and all phase outputs", func() {
				So(res.RunID, ShouldNotBeBlank)
				So(res.Convergence, ShouldNotBeNil)
				So(res.Strategies, ShouldNotBeNil)
				So(res.Allocation, ShouldNotBeNil)
			})

			Convey("Then every employee was projected under three scenarios", func() {
				So(len(res.Projections), ShouldEqual, 120)
				for _, p := range res.Projections[:5] {
					So(len(p.Projections), ShouldEqual, 3)
					So(p.FinalLower, ShouldBeLessThanOrEqualTo, p.FinalUpper)
				}
			})

			Convey("Then the convergence report covers the population", func() {
				So(res.Convergence.TotalEmployees, ShouldEqual, 120)
				So(res.Convergence.TotalPayroll, ShouldBeGreaterThan, 0)
				So(len(res.Convergence.PeerGroups), ShouldBeGreaterThan, 0)
			})

			Convey("Then a strategy was selected from the closed set", func() {
				So(res.Strategies.Selected, ShouldBeIn,
					strategy.Immediate, strategy.Gradual3Year, strategy.Gradual5Year, strategy.Targeted)
				So(len(res.Strategies.Results), ShouldEqual, 4)
			})

			Convey("Then allocation respected every manager's cap", func() {
				for _, mr := range res.Allocation.Managers {
					So(mr.Budget.Spent, ShouldBeLessThanOrEqualTo, mr.Budget.Cap+1e-9)
				}
			})

			Convey("Then every recommendation reached a terminal state", func() {
				for _, rec := range res.Allocation.Recommendations {
					So(rec.State.Terminal(), ShouldBeTrue)
				}
			})
		})

		Convey("When running twice with the same seed", func() {
			first, err := svc.Run(context.Background())
			So(err, ShouldBeNil)
			second, err := svc.Run(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the analytical outputs are identical", func() {
				So(second.Convergence.TotalGapAmount, ShouldAlmostEqual, first.Convergence.TotalGapAmount, 1e-9)
				So(second.Strategies.Selected, ShouldEqual, first.Strategies.Selected)
				So(second.Allocation.AllocatedBudget, ShouldAlmostEqual, first.Allocation.AllocatedBudget, 1e-9)
			})
		})
	})
}

type staticSource struct {
	pop []model.Employee
}

func (s *staticSource) Generate() ([]model.Employee, error) {
	return s.pop, nil
}

func TestServiceWithCustomSource(t *testing.T) {
	Convey("Given a service with an injected population source", t, func() {
		pop := []model.Employee{
			{ID: "a", Level: 3, Salary: 72000, Gender: "Female", PerformanceRating: model.RatingHighPerforming, ManagerID: "m"},
			{ID: "b", Level: 3, Salary: 84000, Gender: "Male", PerformanceRating: model.RatingAchieving, ManagerID: "m"},
			{ID: "c", Level: 3, Salary: 90000, Gender: "Male", PerformanceRating: model.RatingAchieving, ManagerID: "m"},
		}
		svc, err := service.New(smallConfig(), service.WithPopulationSource(&staticSource{pop: pop}))
		So(err, ShouldBeNil)

		Convey("When running against the fixed population", func() {
			res, err := svc.Run(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the below-median employee is identified", func() {
				So(res.Convergence.TotalEmployees, ShouldEqual, 3)
				So(res.Convergence.BelowMedianCount, ShouldEqual, 1)
				So(res.Convergence.Records[0].EmployeeID, ShouldEqual, "a")
			})
		})
	})
}

func TestServiceRejectsBadConfig(t *testing.T) {
	Convey("Given a configuration with an invalid budget", t, func() {
		cfg := smallConfig()
		cfg.BudgetConstraintPercent = -1

		Convey("When building the service", func() {
			_, err := service.New(cfg)

			Convey("Then construction fails closed", func() {
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}
