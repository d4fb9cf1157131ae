// Package analysis perturbs financing parameters around a solved base-case
// IRR: one-at-a-time shocks (tornado), joint Monte Carlo sampling, and
// break-even inversion. All three share a fixed linear sensitivity model
// rather than re-running the revenue/debt pipeline per draw; coefficients
// approximate the pipeline's local response around a typical base case.
package analysis

import "sort"

// Parameter identifies one shockable driver of equity IRR.
type Parameter string

const (
	ParamElectricityPrice Parameter = "electricity_price"
	ParamGreenPrice       Parameter = "green_price"
	ParamCapacityFactor   Parameter = "capacity_factor"
	ParamCapex            Parameter = "capex"
	ParamOpex             Parameter = "opex"
	ParamInterestRate     Parameter = "interest_rate"
	ParamTerminalValue    Parameter = "terminal_value"
	ParamDebtTenor        Parameter = "debt_tenor"
)

// sensitivity is the linear response of equity IRR to one parameter:
// IRR moves CoefPPPerPct percentage points per 1% parameter increase, and
// the tornado applies +/- ShockPct.
type sensitivity struct {
	CoefPPPerPct float64
	ShockPct     float64
}

// Coefficients are ordered so output is deterministic before sorting.
var sensitivities = []struct {
	Param Parameter
	sensitivity
}{
	{ParamElectricityPrice, sensitivity{CoefPPPerPct: 0.08, ShockPct: 10}},
	{ParamGreenPrice, sensitivity{CoefPPPerPct: 0.04, ShockPct: 10}},
	{ParamCapacityFactor, sensitivity{CoefPPPerPct: 0.12, ShockPct: 10}},
	{ParamCapex, sensitivity{CoefPPPerPct: -0.10, ShockPct: 10}},
	{ParamOpex, sensitivity{CoefPPPerPct: -0.03, ShockPct: 10}},
	{ParamInterestRate, sensitivity{CoefPPPerPct: -0.05, ShockPct: 10}},
	{ParamTerminalValue, sensitivity{CoefPPPerPct: 0.01, ShockPct: 20}},
	{ParamDebtTenor, sensitivity{CoefPPPerPct: 0.04, ShockPct: 11}},
}

// TornadoEntry is one bar of the tornado chart. IRRs are fractions.
type TornadoEntry struct {
	Parameter Parameter `json:"parameter"`
	ShockPct  float64   `json:"shockPct"`
	DownIRR   float64   `json:"downIRR"`
	UpIRR     float64   `json:"upIRR"`
	// Impact is the larger absolute IRR delta of the two directions.
	Impact float64 `json:"impact"`
}

// Tornado shocks each parameter up and down by its configured width and
// reports the IRR swing, sorted by descending impact.
func Tornado(baseIRR float64) []TornadoEntry {
	entries := make([]TornadoEntry, 0, len(sensitivities))
	for _, s := range sensitivities {
		delta := s.CoefPPPerPct * s.ShockPct / 100 // pp -> fraction
		entries = append(entries, TornadoEntry{
			Parameter: s.Param,
			ShockPct:  s.ShockPct,
			DownIRR:   baseIRR - delta,
			UpIRR:     baseIRR + delta,
			Impact:    abs(delta),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Impact > entries[j].Impact
	})
	return entries
}

// BreakEven reports the multiplicative level of a parameter at which IRR
// would reach the target, inverting the linear model.
type BreakEven struct {
	Parameter Parameter `json:"parameter"`
	// RequiredShockPct is the percent move needed; Multiplier is 1 plus
	// that move as a fraction.
	RequiredShockPct float64 `json:"requiredShockPct"`
	Multiplier       float64 `json:"multiplier"`
	// Achievable is false when the required move exceeds a full wipeout
	// of the parameter (below -100%).
	Achievable bool `json:"achievable"`
}

// BreakEvens solves each parameter's break-even level for the target IRR.
// Parameters with a zero coefficient are skipped.
func BreakEvens(baseIRR, targetIRR float64) []BreakEven {
	gapPP := (targetIRR - baseIRR) * 100
	out := make([]BreakEven, 0, len(sensitivities))
	for _, s := range sensitivities {
		if s.CoefPPPerPct == 0 {
			continue
		}
		shock := gapPP / s.CoefPPPerPct
		out = append(out, BreakEven{
			Parameter:        s.Param,
			RequiredShockPct: shock,
			Multiplier:       1 + shock/100,
			Achievable:       shock > -100,
		})
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
