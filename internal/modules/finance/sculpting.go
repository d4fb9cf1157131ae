package finance

import "github.com/halcyon-energy/halcyon/internal/domain"

const (
	sculptMaxIterations = 100
	// Convergence and repayment tolerances, $M ($1k).
	sculptToleranceM = 0.001
	repaidToleranceM = 0.001
	// A schedule is feasible when its realized minimum DSCR reaches at
	// least this share of the minimum target DSCR.
	dscrFeasibilityRatio = 0.95
	// Gearing applied when no candidate debt amount is feasible.
	fallbackDebtShare = 0.5
)

// sculpt finds the largest supportable debt for a CFADS profile by bisecting
// candidate principals in [0, capex*maxGearing]. Feasibility is assumed
// monotonic in the candidate amount: more debt never repays where less debt
// failed to. When nothing is feasible the engine falls back to half the
// ceiling rather than reporting failure, so callers always receive a
// complete schedule.
func sculpt(flows []cashFlowPeriod, costs domain.CostAssumptions) (float64, domain.DebtSchedule) {
	maxDebt := costs.Capex * costs.MaxGearing
	if maxDebt <= 0 || len(flows) == 0 {
		return 0, buildSchedule(0, flows, costs.InterestRate)
	}

	lo, hi := 0.0, maxDebt
	bestDebt := -1.0
	var bestSchedule domain.DebtSchedule

	for i := 0; i < sculptMaxIterations && hi-lo >= sculptToleranceM; i++ {
		mid := (lo + hi) / 2
		schedule := buildSchedule(mid, flows, costs.InterestRate)
		if isFeasible(schedule, flows) {
			bestDebt = mid
			bestSchedule = schedule
			lo = mid
		} else {
			hi = mid
		}
	}

	if bestDebt < 0 {
		fallback := maxDebt * fallbackDebtShare
		return fallback, buildSchedule(fallback, flows, costs.InterestRate)
	}
	return bestDebt, bestSchedule
}

// buildSchedule amortizes a candidate debt amount against the CFADS profile.
// Each period repays the largest principal keeping debt service within
// CFADS/targetDSCR, capped by the remaining balance. Grace periods accrue
// nothing.
func buildSchedule(debt float64, flows []cashFlowPeriod, interestRate float64) domain.DebtSchedule {
	schedule := domain.DebtSchedule{
		Periods: make([]domain.DebtPeriod, 0, len(flows)),
		MinDSCR: 0,
	}

	balance := debt
	minDSCR := 0.0
	seenService := false

	for _, flow := range flows {
		dp := domain.DebtPeriod{
			Label:          flow.Label,
			OpeningBalance: balance,
			CFADS:          flow.CFADS,
			TargetDSCR:     flow.TargetDSCR,
			Grace:          flow.Grace,
		}

		if flow.Grace {
			schedule.GracePeriods++
			dp.ClosingBalance = balance
			schedule.Periods = append(schedule.Periods, dp)
			continue
		}

		dp.Interest = balance * interestRate * flow.Adjustment

		maxService := 0.0
		if flow.TargetDSCR > 0 && flow.CFADS > 0 {
			maxService = flow.CFADS / flow.TargetDSCR
		}
		principal := maxService - dp.Interest
		if principal < 0 {
			principal = 0
		}
		if principal > balance {
			principal = balance
		}

		dp.Principal = principal
		dp.DebtService = dp.Interest + dp.Principal
		balance -= principal
		dp.ClosingBalance = balance

		if dp.DebtService > 0 {
			dp.DSCR = flow.CFADS / dp.DebtService
			if !seenService || dp.DSCR < minDSCR {
				minDSCR = dp.DSCR
			}
			seenService = true
		}

		schedule.Periods = append(schedule.Periods, dp)
	}

	schedule.FullyRepaid = balance < repaidToleranceM
	schedule.MinDSCR = minDSCR
	return schedule
}

// isFeasible applies the two feasibility constraints: the debt must be fully
// repaid within the tenor and the realized minimum DSCR must not undershoot
// the minimum target by more than 5%.
func isFeasible(schedule domain.DebtSchedule, flows []cashFlowPeriod) bool {
	if !schedule.FullyRepaid {
		return false
	}

	minTarget := 0.0
	for _, flow := range flows {
		if flow.Grace {
			continue
		}
		if minTarget == 0 || flow.TargetDSCR < minTarget {
			minTarget = flow.TargetDSCR
		}
	}
	if minTarget == 0 {
		return true
	}
	return schedule.MinDSCR >= dscrFeasibilityRatio*minTarget
}
