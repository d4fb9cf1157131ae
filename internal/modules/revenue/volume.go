// Package revenue computes per-asset, per-period volume and revenue
// breakdowns: generation or throughput modeling, contract allocation with
// indexation and floors, merchant pricing of the residual, and the
// deterministic stress-scenario transform.
package revenue

import (
	"math"

	"github.com/halcyon-energy/halcyon/internal/domain"
)

// defaultCapacityFactors is the technology x region fallback table, used when
// an asset carries no quarterly capacity factors. Fractions, not percent.
var defaultCapacityFactors = map[domain.Technology]map[string]float64{
	domain.TechnologySolar: {
		"QLD": 0.29, "NSW": 0.28, "VIC": 0.25,
		"SA": 0.27, "WA": 0.26, "TAS": 0.23,
	},
	domain.TechnologyWind: {
		"QLD": 0.32, "NSW": 0.35, "VIC": 0.38,
		"SA": 0.40, "WA": 0.37, "TAS": 0.42,
	},
}

// flatCapacityFactors is the last resort when the region is unknown.
var flatCapacityFactors = map[domain.Technology]float64{
	domain.TechnologySolar: 0.25,
	domain.TechnologyWind:  0.35,
}

// CapacityFactor resolves a renewable asset's capacity factor for a period
// through the four-level fallback chain:
//
//  1. explicit quarterly factor matching a quarterly period's quarter
//  2. quarterly factor of the quarter containing a monthly period
//  3. average of whatever quarterly factors are configured
//  4. technology+region default table, else a flat technology default
//
// Missing factors are a fallback condition, never an error.
func CapacityFactor(asset *domain.Asset, period domain.TimePeriod) float64 {
	if period.Quarter > 0 {
		if factor, ok := asset.QuarterlyCapacityFactor(period.Quarter); ok {
			return factor
		}
	}

	var sum float64
	var count int
	for q := 1; q <= 4; q++ {
		if factor, ok := asset.QuarterlyCapacityFactor(q); ok {
			sum += factor
			count++
		}
	}
	if count > 0 {
		return sum / float64(count)
	}

	if factor, ok := defaultCapacityFactors[asset.Type][asset.State]; ok {
		return factor
	}
	if factor, ok := flatCapacityFactors[asset.Type]; ok {
		return factor
	}
	return 0.25
}

// DegradationFactor returns the cumulative output multiplier for an asset in
// the given year: (1 - annualDegradation/100)^(year - startYear), floored at
// whole years. It never resets and approaches but never reaches zero.
func DegradationFactor(asset *domain.Asset, year int) float64 {
	years := year - asset.StartYear()
	if years <= 0 {
		return 1.0
	}
	return math.Pow(1-asset.Degradation()/100, float64(years))
}

// lossAdjustment converts the configured volume/availability loss percentage
// into a multiplier, defaulting to 95% when unset.
func lossAdjustment(asset *domain.Asset) float64 {
	if asset.VolumeLossAdjustment <= 0 {
		return 0.95
	}
	return asset.VolumeLossAdjustment / 100
}

// computeVolume fills the base/degraded/adjusted slots of a VolumeBreakdown
// for one asset-period. Contracted/merchant splits are filled later by the
// allocator.
func computeVolume(asset *domain.Asset, period domain.TimePeriod, constants domain.Constants) domain.VolumeBreakdown {
	degradation := DegradationFactor(asset, period.Year)
	loss := lossAdjustment(asset)

	var base float64
	if asset.Type.IsRenewable() {
		annual := asset.Capacity * constants.HoursInYear * CapacityFactor(asset, period)
		base = annual * period.Adjustment
	} else {
		annual := asset.Volume * domain.DaysInYear
		base = annual * period.Adjustment
	}

	degraded := base * degradation
	return domain.VolumeBreakdown{
		BaseGeneration: base,
		Degraded:       degraded,
		Adjusted:       degraded * loss,
	}
}
