package revenue

import "github.com/halcyon-energy/halcyon/internal/domain"

// ApplyScenario applies the deterministic stress transform for the configured
// scenario to a revenue breakdown. Contracts are assumed volume-exposed but
// price-fixed: volume shocks hit all four buckets, price shocks hit merchant
// buckets only, and the worst case compounds both on the merchant side.
//
// Unknown scenario names return the input unchanged. The transform is pure;
// the total is recomputed from the shocked buckets so revenue conservation
// holds exactly.
func ApplyScenario(breakdown domain.RevenueBreakdown, scenario domain.Scenario, constants domain.Constants) domain.RevenueBreakdown {
	volumeShock := 1 - constants.VolumeVariation/100
	greenShock := 1 - constants.GreenPriceVariation/100
	energyShock := 1 - constants.EnergyPriceVariation/100

	out := breakdown
	switch scenario {
	case domain.ScenarioVolume:
		out.ContractedGreen *= volumeShock
		out.ContractedEnergy *= volumeShock
		out.MerchantGreen *= volumeShock
		out.MerchantEnergy *= volumeShock

	case domain.ScenarioPrice:
		out.MerchantGreen *= greenShock
		out.MerchantEnergy *= energyShock

	case domain.ScenarioWorst:
		out.ContractedGreen *= volumeShock
		out.ContractedEnergy *= volumeShock
		out.MerchantGreen *= volumeShock * greenShock
		out.MerchantEnergy *= volumeShock * energyShock

	default:
		return breakdown
	}

	out.Total = out.ContractedGreen + out.ContractedEnergy + out.MerchantGreen + out.MerchantEnergy
	return out
}

// ApplyFilter restricts a breakdown to one product leg for the green-only or
// energy-only portfolio views. The default view returns the input unchanged.
func ApplyFilter(breakdown domain.RevenueBreakdown, filter domain.RevenueFilter) domain.RevenueBreakdown {
	switch filter {
	case domain.FilterGreen:
		return domain.RevenueBreakdown{
			ContractedGreen: breakdown.ContractedGreen,
			MerchantGreen:   breakdown.MerchantGreen,
			Total:           breakdown.ContractedGreen + breakdown.MerchantGreen,
		}
	case domain.FilterEnergy:
		return domain.RevenueBreakdown{
			ContractedEnergy: breakdown.ContractedEnergy,
			MerchantEnergy:   breakdown.MerchantEnergy,
			Total:            breakdown.ContractedEnergy + breakdown.MerchantEnergy,
		}
	default:
		return breakdown
	}
}
