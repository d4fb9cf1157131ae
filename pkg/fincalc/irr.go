// Package fincalc provides standalone project-finance primitives: IRR, NPV
// and payback period. Functions operate on annual cash-flow slices where
// index 0 is year zero.
package fincalc

import "math"

const (
	irrInitialGuess = 0.10
	irrMaxIter      = 1000
	irrTolerance    = 1e-6
	irrLowerBound   = -0.99
	irrUpperBound   = 5.0
)

// IRR computes the internal rate of return of a cash-flow series using
// Newton-Raphson iteration. Returns (rate, false) when no meaningful rate
// exists: all-negative flows, a non-negative initial flow, a vanishing
// derivative, or iteration escaping the (-99%, 500%) band.
func IRR(cashFlows []float64) (float64, bool) {
	if len(cashFlows) < 2 {
		return 0, false
	}
	// An IRR needs money out up front and money back later.
	if cashFlows[0] >= 0 {
		return 0, false
	}
	hasInflow := false
	for _, cf := range cashFlows[1:] {
		if cf > 0 {
			hasInflow = true
			break
		}
	}
	if !hasInflow {
		return 0, false
	}

	rate := irrInitialGuess
	for i := 0; i < irrMaxIter; i++ {
		npv, derivative := npvWithDerivative(cashFlows, rate)
		if math.Abs(npv) < irrTolerance {
			return rate, true
		}
		if math.Abs(derivative) < 1e-12 {
			return 0, false
		}
		rate -= npv / derivative
		if rate <= irrLowerBound || rate >= irrUpperBound {
			return 0, false
		}
	}
	return 0, false
}

// NPV discounts a cash-flow series at the given rate, with index 0
// undiscounted.
func NPV(cashFlows []float64, rate float64) float64 {
	var npv float64
	for t, cf := range cashFlows {
		npv += cf / math.Pow(1+rate, float64(t))
	}
	return npv
}

func npvWithDerivative(cashFlows []float64, rate float64) (float64, float64) {
	var npv, derivative float64
	for t, cf := range cashFlows {
		ft := float64(t)
		discount := math.Pow(1+rate, ft)
		npv += cf / discount
		if t > 0 {
			derivative -= ft * cf / (discount * (1 + rate))
		}
	}
	return npv, derivative
}

// PaybackPeriod returns the first index at which the cumulative cash flow
// turns positive, or -1 when it never does. An exactly recovered investment
// has not paid back yet.
func PaybackPeriod(cashFlows []float64) int {
	var cumulative float64
	for t, cf := range cashFlows {
		cumulative += cf
		if cumulative > 0 {
			return t
		}
	}
	return -1
}
