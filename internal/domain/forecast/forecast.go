// Package forecast holds the pure mathematical primitives for salary
// progression modeling: compound growth, CAGR, and confidence intervals.
package forecast

import (
	"fmt"
	"math"
)

// CAGR returns the compound annual growth rate that takes start to end over
// the given number of years: (end/start)^(1/years) - 1.
func CAGR(start, end float64, years int) (float64, error) {
	if years <= 0 {
		return 0, fmt.Errorf("cagr over %d years: %w", years, ErrInvalidYears)
	}
	if start <= 0 || end <= 0 {
		return 0, fmt.Errorf("cagr from %.2f to %.2f: %w", start, end, ErrNonPositiveSalary)
	}
	return math.Pow(end/start, 1/float64(years)) - 1, nil
}

// Project returns initial compounded at rate for the given number of years:
// initial * (1+rate)^years. Years may be zero; the result is then initial.
func Project(initial, rate float64, years int) float64 {
	return initial * math.Pow(1+rate, float64(years))
}

// ConfidenceInterval returns the symmetric interval base*(1 +/- z*spread)
// where z is the two-sided standard normal quantile for the requested
// confidence level and spread is a relative standard deviation.
func ConfidenceInterval(base, confidence, spread float64) (lower, upper float64, err error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, 0, fmt.Errorf("confidence %.4f: %w", confidence, ErrInvalidConfidence)
	}
	z := normQuantile((1 + confidence) / 2)
	delta := base * z * spread
	return base - delta, base + delta, nil
}

// TimeToTarget returns the fractional number of years needed for current to
// reach target under constant annual growth:
// ln(target/current) / ln(1+rate).
func TimeToTarget(current, target, rate float64) (float64, error) {
	if current <= 0 {
		return 0, fmt.Errorf("time to target from %.2f: %w", current, ErrNonPositiveSalary)
	}
	if target <= current {
		return 0, fmt.Errorf("time to target %.2f from %.2f: %w", target, current, ErrTargetNotAbove)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("time to target at rate %.4f: %w", rate, ErrInvalidRate)
	}
	return math.Log(target/current) / math.Log(1+rate), nil
}

// Acklam's rational approximation to the standard normal quantile.
// Absolute error is below 1.15e-9 over the full open interval, well inside
// the tolerance the interval math needs.
func normQuantile(p float64) float64 {
	const (
		pLow  = 0.02425
		pHigh = 1 - pLow
	)
	var (
		a = [6]float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
			1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
		b = [5]float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
			6.680131188771972e+01, -1.328068155288572e+01}
		c = [6]float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
			-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
		d = [4]float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
			3.754408661907416e+00}
	)

	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p <= pHigh:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	default:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}
}
