package forecast_test

import (
	"math"
	"testing"

	"github.com/okian/equilift/internal/domain/forecast"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCAGRProjectRoundTrip(t *testing.T) {
	Convey("Given a starting salary and a growth rate", t, func() {
		start := 60000.0
		rate := 0.037
		years := 7

		Convey("When projecting forward and deriving the CAGR back", func() {
			final := forecast.Project(start, rate, years)
			got, err := forecast.CAGR(start, final, years)

			Convey("Then the derived rate matches the input rate", func() {
				So(err, ShouldBeNil)
				So(got, ShouldAlmostEqual, rate, 1e-9)
			})
		})

		Convey("When projecting with a zero rate", func() {
			final := forecast.Project(start, 0, years)

			Convey("Then the salary is unchanged", func() {
				So(final, ShouldAlmostEqual, start, 1e-9)
			})
		})

		Convey("When projecting with a negative rate", func() {
			final := forecast.Project(start, -0.02, years)
			got, err := forecast.CAGR(start, final, years)

			Convey("Then the round trip still holds", func() {
				So(err, ShouldBeNil)
				So(got, ShouldAlmostEqual, -0.02, 1e-9)
			})
		})
	})
}

func TestCAGRValidation(t *testing.T) {
	Convey("Given invalid CAGR inputs", t, func() {
		Convey("When years is zero", func() {
			_, err := forecast.CAGR(50000, 60000, 0)

			Convey("Then it reports invalid years", func() {
				So(err, ShouldWrap, forecast.ErrInvalidYears)
			})
		})

		Convey("When the starting salary is not positive", func() {
			_, err := forecast.CAGR(0, 60000, 3)

			Convey("Then it reports a non-positive salary", func() {
				So(err, ShouldWrap, forecast.ErrNonPositiveSalary)
			})
		})

		Convey("When the final salary is not positive", func() {
			_, err := forecast.CAGR(50000, -1, 3)

			Convey("Then it reports a non-positive salary", func() {
				So(err, ShouldWrap, forecast.ErrNonPositiveSalary)
			})
		})
	})
}

func TestConfidenceInterval(t *testing.T) {
	Convey("Given a projected salary", t, func() {
		base := 80000.0

		Convey("When computing a 95% interval with a 5% spread", func() {
			lower, upper, err := forecast.ConfidenceInterval(base, 0.95, 0.05)

			Convey("Then the interval is symmetric around the base", func() {
				So(err, ShouldBeNil)
				So(upper-base, ShouldAlmostEqual, base-lower, 1e-6)
			})

			Convey("And the half-width uses the normal quantile", func() {
				// z(0.975) = 1.959964...
				So(upper-base, ShouldAlmostEqual, base*0.05*1.959964, 1e-3)
			})
		})

		Convey("When the spread is zero", func() {
			lower, upper, err := forecast.ConfidenceInterval(base, 0.95, 0)

			Convey("Then the interval collapses to the base", func() {
				So(err, ShouldBeNil)
				So(lower, ShouldAlmostEqual, base, 1e-9)
				So(upper, ShouldAlmostEqual, base, 1e-9)
			})
		})

		Convey("When the confidence level is out of range", func() {
			_, _, err := forecast.ConfidenceInterval(base, 1.0, 0.05)

			Convey("Then it reports an invalid confidence", func() {
				So(err, ShouldWrap, forecast.ErrInvalidConfidence)
			})
		})
	})
}

func TestTimeToTarget(t *testing.T) {
	Convey("Given a salary below a target", t, func() {
		Convey("When the growth rate is positive", func() {
			years, err := forecast.TimeToTarget(60000, 65000, 0.03)

			Convey("Then the crossing time satisfies the growth equation", func() {
				So(err, ShouldBeNil)
				So(60000*math.Pow(1.03, years), ShouldAlmostEqual, 65000, 1e-6)
			})
		})

		Convey("When the growth rate is zero", func() {
			_, err := forecast.TimeToTarget(60000, 65000, 0)

			Convey("Then it reports an invalid rate", func() {
				So(err, ShouldWrap, forecast.ErrInvalidRate)
			})
		})

		Convey("When the target is not above the current salary", func() {
			_, err := forecast.TimeToTarget(65000, 65000, 0.03)

			Convey("Then it reports the target ordering error", func() {
				So(err, ShouldWrap, forecast.ErrTargetNotAbove)
			})
		})
	})
}
