// Package finance builds per-asset cash-flow schedules and sizes debt
// against them. CFADS (cash flow available for debt service) is revenue
// net of operating costs; the sculpting engine in this package sizes the
// largest debt the CFADS profile can carry at a target DSCR path.
package finance

import (
	"math"

	"github.com/halcyon-energy/halcyon/internal/domain"
)

// cashFlowPeriod is one operating period of the financing window.
type cashFlowPeriod struct {
	Label         string
	Year          int
	Adjustment    float64 // share of a full year this period covers
	Revenue       float64 // $M
	Opex          float64 // $M
	CFADS         float64 // $M
	ContractedPct float64 // 0-100, drives the blended target DSCR
	TargetDSCR    float64
	Grace         bool
}

// buildCashFlows extracts the asset's operating cash flows from a calculated
// time series, truncated to the debt tenor. Periods before the asset's start
// year are skipped; the tenor clock starts at the first operational period.
// Callers pass cost assumptions already normalized by applyDefaults.
func buildCashFlows(asset *domain.Asset, series domain.TimeSeries, costs domain.CostAssumptions) []cashFlowPeriod {
	startYear := asset.StartYear()
	tenor := costs.TenorYears

	var flows []cashFlowPeriod
	var covered float64
	for _, pp := range series {
		if pp.Period.Year < startYear {
			continue
		}
		if covered >= float64(tenor) {
			break
		}

		result, ok := pp.Assets[asset.Name]
		if !ok {
			continue
		}

		flow := cashFlowPeriod{
			Label:      pp.Period.Label,
			Year:       pp.Period.Year,
			Adjustment: pp.Period.Adjustment,
			Revenue:    result.Revenue.Total,
			Opex:       opexFor(costs, pp.Period.Year, startYear, pp.Period.Adjustment),
			Grace:      isGracePeriod(asset, pp.Period),
		}
		flow.CFADS = flow.Revenue - flow.Opex
		if result.Revenue.Total > 0 {
			flow.ContractedPct = result.Revenue.Contracted() / result.Revenue.Total * 100
		}
		flow.TargetDSCR = blendedTargetDSCR(costs, flow.ContractedPct)

		flows = append(flows, flow)
		covered += pp.Period.Adjustment
	}
	return flows
}

// buildPortfolioCashFlows does the same for the portfolio aggregate, using
// the earliest asset start year as the tenor anchor.
func buildPortfolioCashFlows(series domain.TimeSeries, costs domain.CostAssumptions, startYear int) []cashFlowPeriod {
	tenor := costs.TenorYears

	var flows []cashFlowPeriod
	var covered float64
	for _, pp := range series {
		if pp.Period.Year < startYear {
			continue
		}
		if covered >= float64(tenor) {
			break
		}

		flow := cashFlowPeriod{
			Label:         pp.Period.Label,
			Year:          pp.Period.Year,
			Adjustment:    pp.Period.Adjustment,
			Revenue:       pp.Totals.Total,
			Opex:          opexFor(costs, pp.Period.Year, startYear, pp.Period.Adjustment),
			ContractedPct: pp.ContractedPct,
		}
		flow.CFADS = flow.Revenue - flow.Opex
		flow.TargetDSCR = blendedTargetDSCR(costs, flow.ContractedPct)

		flows = append(flows, flow)
		covered += pp.Period.Adjustment
	}
	return flows
}

// opexFor escalates operating costs from the asset's start year and scales
// them to the period's share of a year.
func opexFor(costs domain.CostAssumptions, year, startYear int, adjustment float64) float64 {
	years := year - startYear
	if years < 0 {
		years = 0
	}
	escalated := costs.OperatingCosts * math.Pow(1+costs.OpexEscalation/100, float64(years))
	return escalated * adjustment
}

// blendedTargetDSCR weights the contracted and merchant DSCR targets by the
// period's contracted revenue share.
func blendedTargetDSCR(costs domain.CostAssumptions, contractedPct float64) float64 {
	w := contractedPct / 100
	if w < 0 {
		w = 0
	}
	if w > 1 {
		w = 1
	}
	return costs.TargetDSCRContract*w + costs.TargetDSCRMerchant*(1-w)
}

// isGracePeriod reports whether a quarter of the asset's first operational
// year ends before the asset's start month. Such a partial-year quarter
// accrues no interest or principal.
func isGracePeriod(asset *domain.Asset, period domain.TimePeriod) bool {
	if period.Quarter == 0 || period.Year != asset.StartYear() {
		return false
	}
	startMonth := domain.ParseMonth(asset.StartDate)
	quarterEndMonth := period.Quarter * 3
	return quarterEndMonth < startMonth
}
