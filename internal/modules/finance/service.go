package finance

import (
	"github.com/rs/zerolog"

	"github.com/halcyon-energy/halcyon/internal/domain"
	"github.com/halcyon-energy/halcyon/pkg/fincalc"
)

// Service turns calculated revenue time series into financing outcomes:
// sculpted debt schedules, equity cash flows and return metrics.
type Service struct {
	log zerolog.Logger
}

// NewService creates a finance service.
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log.With().Str("module", "finance").Logger()}
}

// ForAsset sizes debt against one asset's revenue series and derives the
// equity return metrics. Assets with no cost data get the conservative
// defaults; the result is always complete, never an error.
func (s *Service) ForAsset(asset *domain.Asset, series domain.TimeSeries, costs domain.CostAssumptions) domain.FinanceResult {
	costs = applyDefaults(costs)
	flows := buildCashFlows(asset, series, costs)
	result := s.assemble(asset.Name, flows, costs)
	result.CapexSchedule = CapexSchedule(asset, costs.Capex, result.EquityAmount, costs.Funding)

	s.log.Debug().
		Str("asset", asset.Name).
		Float64("debt", result.DebtAmount).
		Float64("gearing", result.Gearing).
		Bool("fully_repaid", result.Schedule.FullyRepaid).
		Msg("asset financing sized")

	return result
}

// ForPortfolio sizes debt against the portfolio aggregate series.
func (s *Service) ForPortfolio(series domain.TimeSeries, costs domain.CostAssumptions, startYear int) domain.FinanceResult {
	costs = applyDefaults(costs)
	flows := buildPortfolioCashFlows(series, costs, startYear)
	return s.assemble("portfolio", flows, costs)
}

// applyDefaults fills each unset cost assumption independently from the
// conservative defaults. A request that supplies only some of the fields
// keeps them and falls back for the rest, datum by datum.
func applyDefaults(costs domain.CostAssumptions) domain.CostAssumptions {
	defaults := domain.DefaultCostAssumptions()
	if costs.TenorYears <= 0 {
		costs.TenorYears = defaults.TenorYears
	}
	if costs.MaxGearing == 0 {
		costs.MaxGearing = defaults.MaxGearing
	}
	if costs.InterestRate == 0 {
		costs.InterestRate = defaults.InterestRate
	}
	if costs.TargetDSCRContract == 0 {
		costs.TargetDSCRContract = defaults.TargetDSCRContract
	}
	if costs.TargetDSCRMerchant == 0 {
		costs.TargetDSCRMerchant = defaults.TargetDSCRMerchant
	}
	if costs.DiscountRate == 0 {
		costs.DiscountRate = defaults.DiscountRate
	}
	return costs
}

func (s *Service) assemble(name string, flows []cashFlowPeriod, costs domain.CostAssumptions) domain.FinanceResult {
	debt, schedule := sculpt(flows, costs)
	equity := costs.Capex - debt

	result := domain.FinanceResult{
		AssetName:    name,
		Capex:        costs.Capex,
		DebtAmount:   debt,
		EquityAmount: equity,
		Schedule:     schedule,
		MinDSCR:      schedule.MinDSCR,
	}
	if costs.Capex > 0 {
		result.Gearing = debt / costs.Capex
	}

	var totalService float64
	serviced := 0
	for _, dp := range schedule.Periods {
		if dp.DebtService > 0 {
			totalService += dp.DebtService
			serviced++
		}
	}
	if serviced > 0 {
		result.AvgDebtService = totalService / float64(serviced)
	}

	result.EquityCashFlows = equityCashFlows(equity, flows, schedule, costs.TerminalValue)
	result.PaybackPeriod = fincalc.PaybackPeriod(result.EquityCashFlows)
	result.EquityNPV = fincalc.NPV(result.EquityCashFlows, costs.DiscountRate)

	if irr, ok := fincalc.IRR(result.EquityCashFlows); ok {
		result.EquityIRR = &irr
	}
	if irr, ok := fincalc.IRR(projectCashFlows(costs.Capex, flows, costs.TerminalValue)); ok {
		result.ProjectIRR = &irr
	}

	result.AvgROE = averageROE(result.EquityCashFlows, equity)
	return result
}

// equityCashFlows builds the equity holder's vector: the equity cheque at
// index 0, then CFADS net of debt service per period, terminal value folded
// into the final entry.
func equityCashFlows(equity float64, flows []cashFlowPeriod, schedule domain.DebtSchedule, terminalValue float64) []float64 {
	out := make([]float64, 0, len(flows)+1)
	out = append(out, -equity)
	for i, flow := range flows {
		service := 0.0
		if i < len(schedule.Periods) {
			service = schedule.Periods[i].DebtService
		}
		out = append(out, flow.CFADS-service)
	}
	if len(out) > 1 {
		out[len(out)-1] += terminalValue
	}
	return out
}

// projectCashFlows is the unlevered view: full capex out, CFADS in.
func projectCashFlows(capex float64, flows []cashFlowPeriod, terminalValue float64) []float64 {
	out := make([]float64, 0, len(flows)+1)
	out = append(out, -capex)
	for _, flow := range flows {
		out = append(out, flow.CFADS)
	}
	if len(out) > 1 {
		out[len(out)-1] += terminalValue
	}
	return out
}

// averageROE is the mean operational equity flow over the equity amount, as
// a percentage.
func averageROE(equityFlows []float64, equity float64) float64 {
	if equity <= 0 || len(equityFlows) < 2 {
		return 0
	}
	var sum float64
	for _, cf := range equityFlows[1:] {
		sum += cf
	}
	avg := sum / float64(len(equityFlows)-1)
	return avg / equity * 100
}
