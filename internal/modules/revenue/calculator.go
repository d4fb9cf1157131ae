package revenue

import (
	"github.com/rs/zerolog"

	"github.com/halcyon-energy/halcyon/internal/domain"
	"github.com/halcyon-energy/halcyon/internal/modules/pricing"
)

// Calculator computes the full RevenueResult for one asset in one period.
// It is a pure function of its inputs given the configured price source;
// the logger traces per-asset computations at debug level and never affects
// results.
type Calculator struct {
	pricing *pricing.Service
	log     zerolog.Logger
}

// NewCalculator creates a revenue calculator.
func NewCalculator(pricingService *pricing.Service, log zerolog.Logger) *Calculator {
	return &Calculator{
		pricing: pricingService,
		log:     log.With().Str("module", "revenue").Logger(),
	}
}

// ForPeriod computes the revenue breakdown for an asset in one period.
// Periods before the asset's start year, or after its operational life,
// produce an exact-zero result - a terminal condition, not an error.
func (c *Calculator) ForPeriod(asset *domain.Asset, period domain.TimePeriod, constants domain.Constants) domain.RevenueResult {
	result := domain.RevenueResult{
		AssetName:  asset.Name,
		Technology: asset.Type,
	}

	startYear := asset.StartYear()
	if period.Year < startYear || period.Year >= startYear+asset.Life() {
		return result
	}

	if asset.Type.IsRenewable() {
		c.renewableResult(asset, period, constants, &result)
	} else {
		c.storageResult(asset, period, constants, &result)
	}

	result.Revenue = ApplyScenario(result.Revenue, constants.Scenario, constants)

	c.log.Debug().
		Str("asset", asset.Name).
		Str("period", period.Label).
		Float64("adjustedVolume", result.Volume.Adjusted).
		Float64("totalRevenue", result.Revenue.Total).
		Msg("computed asset revenue")

	return result
}

func (c *Calculator) renewableResult(asset *domain.Asset, period domain.TimePeriod, constants domain.Constants, result *domain.RevenueResult) {
	volume := computeVolume(asset, period, constants)
	alloc := allocateRenewable(asset, period, volume.Adjusted)

	merchantGreenPct := merchantPercentage(alloc.greenPct)
	merchantEnergyPct := merchantPercentage(alloc.energyPct)

	volume.ContractedGreen = alloc.greenVolume
	volume.ContractedEnergy = alloc.energyVolume
	volume.MerchantGreen = volume.Adjusted * merchantGreenPct / 100
	volume.MerchantEnergy = volume.Adjusted * merchantEnergyPct / 100

	greenPrice := c.pricing.MerchantPrice(asset.Type, "green", asset.State, period, constants)
	energyPrice := c.pricing.MerchantPrice(asset.Type, "Energy", asset.State, period, constants)

	revenue := domain.RevenueBreakdown{
		ContractedGreen:  alloc.greenRevenue,
		ContractedEnergy: alloc.energyRevenue,
		MerchantGreen:    volume.MerchantGreen * greenPrice / 1e6,
		MerchantEnergy:   volume.MerchantEnergy * energyPrice / 1e6,
	}
	revenue.Total = revenue.ContractedGreen + revenue.ContractedEnergy + revenue.MerchantGreen + revenue.MerchantEnergy

	result.Volume = volume
	result.Revenue = revenue
	result.ContractedGreenPct = alloc.greenPct
	result.ContractedEnergyPct = alloc.energyPct
	result.MerchantGreenPct = merchantGreenPct
	result.MerchantEnergyPct = merchantEnergyPct
	result.ActiveContracts = alloc.activeContracts
	result.Prices = priceBreakdown(volume, revenue, greenPrice, energyPrice)
}

func (c *Calculator) storageResult(asset *domain.Asset, period domain.TimePeriod, constants domain.Constants, result *domain.RevenueResult) {
	volume := computeVolume(asset, period, constants)
	alloc := allocateStorage(asset, period, volume.Adjusted, constants)

	merchantPct := merchantPercentage(alloc.energyPct)
	volume.ContractedEnergy = alloc.energyVolume
	volume.MerchantEnergy = volume.Adjusted * merchantPct / 100

	// Merchant storage revenue prices the residual throughput at the spread
	// interpolated for the asset's duration.
	spread := c.pricing.StorageSpread(asset.State, asset.Duration(), period, constants)

	revenue := domain.RevenueBreakdown{
		ContractedEnergy: alloc.energyRevenue,
		MerchantEnergy:   volume.MerchantEnergy * spread / 1e6,
	}
	revenue.Total = revenue.ContractedEnergy + revenue.MerchantEnergy

	result.Volume = volume
	result.Revenue = revenue
	result.ContractedEnergyPct = alloc.energyPct
	result.MerchantEnergyPct = merchantPct
	result.ActiveContracts = alloc.activeContracts
	result.Prices = priceBreakdown(volume, revenue, 0, spread)
}

// priceBreakdown derives realized $/MWh prices from volumes and revenues.
// Internal precision is preserved - rounding happens only at the display layer.
func priceBreakdown(volume domain.VolumeBreakdown, revenue domain.RevenueBreakdown, merchantGreen, merchantEnergy float64) domain.PriceBreakdown {
	prices := domain.PriceBreakdown{
		MerchantGreen:  merchantGreen,
		MerchantEnergy: merchantEnergy,
	}
	if volume.ContractedGreen > 0 {
		prices.ContractedGreen = revenue.ContractedGreen * 1e6 / volume.ContractedGreen
	}
	if volume.ContractedEnergy > 0 {
		prices.ContractedEnergy = revenue.ContractedEnergy * 1e6 / volume.ContractedEnergy
	}
	if greenVolume := volume.ContractedGreen + volume.MerchantGreen; greenVolume > 0 {
		prices.BlendedGreen = (revenue.ContractedGreen + revenue.MerchantGreen) * 1e6 / greenVolume
	}
	if energyVolume := volume.ContractedEnergy + volume.MerchantEnergy; energyVolume > 0 {
		prices.BlendedEnergy = (revenue.ContractedEnergy + revenue.MerchantEnergy) * 1e6 / energyVolume
	}
	return prices
}
