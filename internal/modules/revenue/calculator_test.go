package revenue

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-energy/halcyon/internal/domain"
	"github.com/halcyon-energy/halcyon/internal/modules/intervals"
	"github.com/halcyon-energy/halcyon/internal/modules/pricing"
)

func testCalculator(source pricing.Source) *Calculator {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	return NewCalculator(pricing.NewService(source, log), log)
}

// fixedPrices quotes green=35, Energy=65 for every renewable lookup.
func fixedPrices() pricing.Source {
	return pricing.SourceFunc(func(profile, productType, state, periodLabel string) (float64, bool) {
		switch productType {
		case "green":
			return 35, true
		case "Energy":
			return 65, true
		}
		return 0, false
	})
}

func flatConstants() domain.Constants {
	c := domain.DefaultConstants()
	c.Escalation = 0
	return c
}

func period(t *testing.T, label string) domain.TimePeriod {
	t.Helper()
	p, err := intervals.Parse(label)
	require.NoError(t, err)
	return p
}

func solarAsset() *domain.Asset {
	return &domain.Asset{
		Name:      "Beryl Solar Farm",
		Type:      domain.TechnologySolar,
		State:     "NSW",
		Capacity:  100,
		StartDate: "2025-01-01",
	}
}

// Matches the reference scenario: 100MW NSW solar, no quarterly factors, no
// contracts, merchant green=35 / Energy=65, period "2025".
func TestForPeriod_ReferenceScenario(t *testing.T) {
	calc := testCalculator(fixedPrices())
	result := calc.ForPeriod(solarAsset(), period(t, "2025"), flatConstants())

	// NSW solar default capacity factor 0.28
	assert.InDelta(t, 245280, result.Volume.BaseGeneration, 1)    // 100*8760*0.28
	assert.InDelta(t, 233016, result.Volume.Adjusted, 1)          // x0.95 loss, no degradation yet
	assert.InDelta(t, 15.15, result.Revenue.MerchantEnergy, 0.02) // 233,016*65/1e6
	assert.InDelta(t, 8.16, result.Revenue.MerchantGreen, 0.02)   // 233,016*35/1e6
	assert.InDelta(t, 23.30, result.Revenue.Total, 0.02)
	assert.Equal(t, 100.0, result.MerchantGreenPct)
	assert.Equal(t, 100.0, result.MerchantEnergyPct)
}

func TestForPeriod_PreStartZeroing(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()
	asset.StartDate = "2028-01-01"

	for _, label := range []string{"2025", "2027", "2027-Q4", "2027-12"} {
		result := calc.ForPeriod(asset, period(t, label), flatConstants())
		assert.Zero(t, result.Revenue.Total, "period %s", label)
		assert.Zero(t, result.Volume.Adjusted, "period %s", label)
	}

	// First operational year produces revenue.
	result := calc.ForPeriod(asset, period(t, "2028"), flatConstants())
	assert.Greater(t, result.Revenue.Total, 0.0)
}

func TestForPeriod_ZeroAfterAssetLife(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()
	asset.AssetLife = 3 // operational 2025..2027

	assert.Greater(t, calc.ForPeriod(asset, period(t, "2027"), flatConstants()).Revenue.Total, 0.0)
	assert.Zero(t, calc.ForPeriod(asset, period(t, "2028"), flatConstants()).Revenue.Total)
}

func TestForPeriod_DegradationMonotonicity(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()

	prev := calc.ForPeriod(asset, period(t, "2025"), flatConstants()).Volume.Adjusted
	for year := 2026; year < 2045; year++ {
		p, err := intervals.Parse(intervalLabel(year))
		require.NoError(t, err)
		current := calc.ForPeriod(asset, p, flatConstants()).Volume.Adjusted
		assert.LessOrEqual(t, current, prev, "year %d", year)
		prev = current
	}
}

func TestForPeriod_DegradationDefaultsWhenUnset(t *testing.T) {
	calc := testCalculator(fixedPrices())

	// No annualDegradation field at all: the 0.5%/yr default applies.
	asset := solarAsset()
	y0 := calc.ForPeriod(asset, period(t, "2025"), flatConstants()).Volume.Adjusted
	y5 := calc.ForPeriod(asset, period(t, "2030"), flatConstants()).Volume.Adjusted
	assert.InDelta(t, y0*math.Pow(0.995, 5), y5, 1)

	// An explicit zero disables degradation entirely.
	zero := 0.0
	asset.AnnualDegradation = &zero
	flat := calc.ForPeriod(asset, period(t, "2030"), flatConstants()).Volume.Adjusted
	assert.InDelta(t, y0, flat, 1e-9)
}

func intervalLabel(year int) string {
	labels, _ := intervals.Generate(domain.IntervalAnnual, year, 1, nil)
	return labels[0]
}

func TestForPeriod_RevenueConservation(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()
	asset.Contracts = []domain.Contract{
		{Type: domain.ContractBundled, StartDate: "2025-01-01", EndDate: "2040-01-01",
			BuyersPercentage: 60, GreenPrice: 30, EnergyPrice: 55, Indexation: 2},
		{Type: domain.ContractGreen, StartDate: "2025-01-01", EndDate: "2035-01-01",
			BuyersPercentage: 30, StrikePrice: 42},
	}

	for _, scenario := range []domain.Scenario{
		domain.ScenarioBase, domain.ScenarioVolume, domain.ScenarioPrice, domain.ScenarioWorst,
	} {
		constants := flatConstants()
		constants.Scenario = scenario
		result := calc.ForPeriod(asset, period(t, "2030"), constants)
		sum := result.Revenue.ContractedGreen + result.Revenue.ContractedEnergy +
			result.Revenue.MerchantGreen + result.Revenue.MerchantEnergy
		assert.Equal(t, sum, result.Revenue.Total, "scenario %s", scenario)
	}
}

func TestForPeriod_QuarterlyAdjustment(t *testing.T) {
	calc := testCalculator(fixedPrices())
	annual := calc.ForPeriod(solarAsset(), period(t, "2025"), flatConstants())

	var quarterlyTotal float64
	for _, label := range []string{"2025-Q1", "2025-Q2", "2025-Q3", "2025-Q4"} {
		quarterlyTotal += calc.ForPeriod(solarAsset(), period(t, label), flatConstants()).Revenue.Total
	}
	assert.InDelta(t, annual.Revenue.Total, quarterlyTotal, 1e-9)
}

func TestForPeriod_QuarterlyCapacityFactorPreferred(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()
	q3 := 31.0
	asset.CapacityFactorQ3 = &q3

	result := calc.ForPeriod(asset, period(t, "2025-Q3"), flatConstants())
	assert.InDelta(t, 100*8760*0.31*0.25, result.Volume.BaseGeneration, 1)

	// Monthly periods use the quarter that contains them.
	monthly := calc.ForPeriod(asset, period(t, "2025-08"), flatConstants())
	assert.InDelta(t, 100*8760*0.31/12, monthly.Volume.BaseGeneration, 1)

	// Annual periods average whatever factors are present (only Q3 here).
	annual := calc.ForPeriod(asset, period(t, "2025"), flatConstants())
	assert.InDelta(t, 100*8760*0.31, annual.Volume.BaseGeneration, 1)
}

func TestForPeriod_ContractAllocation(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()
	asset.Contracts = []domain.Contract{
		{Counterparty: "Retailer A", Type: domain.ContractEnergy,
			StartDate: "2025-01-01", EndDate: "2035-01-01",
			BuyersPercentage: 70, StrikePrice: 80},
	}

	result := calc.ForPeriod(asset, period(t, "2025"), flatConstants())

	adjusted := result.Volume.Adjusted
	assert.InDelta(t, adjusted*0.7*80/1e6, result.Revenue.ContractedEnergy, 1e-9)
	assert.InDelta(t, adjusted*0.3*65/1e6, result.Revenue.MerchantEnergy, 1e-9)
	// Green leg stays fully merchant.
	assert.InDelta(t, adjusted*35/1e6, result.Revenue.MerchantGreen, 1e-9)
	assert.Equal(t, 70.0, result.ContractedEnergyPct)
	assert.Equal(t, 30.0, result.MerchantEnergyPct)
	require.Len(t, result.ActiveContracts, 1)
	assert.Equal(t, "Retailer A", result.ActiveContracts[0].Counterparty)
	assert.Equal(t, 10, result.ActiveContracts[0].RemainingYears)
}

func TestForPeriod_OverAllocationPreserved(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()
	asset.Contracts = []domain.Contract{
		{Type: domain.ContractEnergy, StartDate: "2025-01-01", EndDate: "2035-01-01",
			BuyersPercentage: 80, StrikePrice: 70},
		{Type: domain.ContractEnergy, StartDate: "2025-01-01", EndDate: "2035-01-01",
			BuyersPercentage: 40, StrikePrice: 75},
	}

	result := calc.ForPeriod(asset, period(t, "2025"), flatConstants())

	// Contracted sum stays raw; merchant clamps at zero.
	assert.Equal(t, 120.0, result.ContractedEnergyPct)
	assert.Equal(t, 0.0, result.MerchantEnergyPct)
	assert.Zero(t, result.Revenue.MerchantEnergy)
}

func TestForPeriod_Indexation(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()
	asset.Contracts = []domain.Contract{
		{Type: domain.ContractEnergy, StartDate: "2025-01-01", EndDate: "2040-01-01",
			BuyersPercentage: 100, StrikePrice: 100, Indexation: 3},
	}

	y0 := calc.ForPeriod(asset, period(t, "2025"), flatConstants())
	y2 := calc.ForPeriod(asset, period(t, "2027"), flatConstants())

	// Indexed price after 2 years is 100 * 1.03^2. Degradation scales volume
	// and revenue together, so the realized price is unaffected by it.
	assert.InDelta(t, y0.Prices.ContractedEnergy*1.03*1.03, y2.Prices.ContractedEnergy, 1e-6)
}

func TestForPeriod_FloorOverridesIndexedPrice(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()
	asset.Contracts = []domain.Contract{
		{Type: domain.ContractGreen, StartDate: "2025-01-01", EndDate: "2040-01-01",
			BuyersPercentage: 100, StrikePrice: 20, HasFloor: true, FloorValue: 30},
	}

	result := calc.ForPeriod(asset, period(t, "2025"), flatConstants())
	assert.InDelta(t, 30.0, result.Prices.ContractedGreen, 1e-9)
}

func TestForPeriod_BundledFloorRedistributesProportionally(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()
	asset.Contracts = []domain.Contract{
		{Type: domain.ContractBundled, StartDate: "2025-01-01", EndDate: "2040-01-01",
			BuyersPercentage: 100, GreenPrice: 10, EnergyPrice: 30, HasFloor: true, FloorValue: 60},
	}

	result := calc.ForPeriod(asset, period(t, "2025"), flatConstants())

	// Floor 60 split 10:30 -> 15 green, 45 energy.
	assert.InDelta(t, 15.0, result.Prices.ContractedGreen, 1e-9)
	assert.InDelta(t, 45.0, result.Prices.ContractedEnergy, 1e-9)
}

func TestForPeriod_FixedContractIsLevelRevenue(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()
	asset.Contracts = []domain.Contract{
		{Type: domain.ContractFixed, StartDate: "2025-01-01", EndDate: "2040-01-01",
			BuyersPercentage: 50, StrikePrice: 12}, // $12M/yr
	}

	annual := calc.ForPeriod(asset, period(t, "2025"), flatConstants())
	quarter := calc.ForPeriod(asset, period(t, "2025-Q2"), flatConstants())

	assert.InDelta(t, 12.0, annual.Revenue.ContractedEnergy, 1e-9)
	assert.InDelta(t, 3.0, quarter.Revenue.ContractedEnergy, 1e-9)
	// Fixed contracts do not consume volume: the full energy leg stays merchant.
	assert.Equal(t, 100.0, annual.MerchantEnergyPct)
}

func TestForPeriod_StressMonotonicity(t *testing.T) {
	calc := testCalculator(fixedPrices())
	asset := solarAsset()
	asset.Contracts = []domain.Contract{
		{Type: domain.ContractBundled, StartDate: "2025-01-01", EndDate: "2040-01-01",
			BuyersPercentage: 50, GreenPrice: 30, EnergyPrice: 55},
	}

	totals := make(map[domain.Scenario]float64)
	for _, scenario := range []domain.Scenario{
		domain.ScenarioBase, domain.ScenarioVolume, domain.ScenarioPrice, domain.ScenarioWorst,
	} {
		constants := flatConstants()
		constants.Scenario = scenario
		totals[scenario] = calc.ForPeriod(asset, period(t, "2025"), constants).Revenue.Total
	}

	assert.LessOrEqual(t, totals[domain.ScenarioWorst], totals[domain.ScenarioVolume])
	assert.LessOrEqual(t, totals[domain.ScenarioVolume], totals[domain.ScenarioBase])
	assert.LessOrEqual(t, totals[domain.ScenarioWorst], totals[domain.ScenarioPrice])
	assert.LessOrEqual(t, totals[domain.ScenarioPrice], totals[domain.ScenarioBase])
}

func TestApplyScenario_UnknownScenarioIsIdentity(t *testing.T) {
	in := domain.RevenueBreakdown{ContractedGreen: 1, MerchantEnergy: 2, Total: 3}
	out := ApplyScenario(in, domain.Scenario("meltdown"), domain.DefaultConstants())
	assert.Equal(t, in, out)
}

func storageAsset() *domain.Asset {
	return &domain.Asset{
		Name:      "Waratah BESS",
		Type:      domain.TechnologyStorage,
		State:     "NSW",
		Capacity:  50,  // MW
		Volume:    100, // MWh/day -> 2h duration
		StartDate: "2025-01-01",
	}
}

func TestForPeriod_StorageMerchant(t *testing.T) {
	calc := testCalculator(nil) // default spreads
	result := calc.ForPeriod(storageAsset(), period(t, "2025"), flatConstants())

	// 100 MWh/day * 365 * 0.95 loss
	assert.InDelta(t, 100*365*0.95, result.Volume.Adjusted, 1e-6)
	// 2h duration -> default 200 $/MWh spread
	assert.InDelta(t, result.Volume.Adjusted*200/1e6, result.Revenue.MerchantEnergy, 1e-9)
	assert.Zero(t, result.Revenue.MerchantGreen)
	assert.Zero(t, result.Revenue.ContractedGreen)
}

func TestForPeriod_StorageDurationInterpolation(t *testing.T) {
	calc := testCalculator(nil)
	asset := storageAsset()
	asset.Volume = 75 // 1.5h duration -> spread midway 180..200 = 190

	result := calc.ForPeriod(asset, period(t, "2025"), flatConstants())
	assert.InDelta(t, result.Volume.Adjusted*190/1e6, result.Revenue.MerchantEnergy, 1e-9)
}

func TestForPeriod_StorageCfD(t *testing.T) {
	calc := testCalculator(nil)
	asset := storageAsset()
	asset.Contracts = []domain.Contract{
		{Type: domain.ContractCfD, StartDate: "2025-01-01", EndDate: "2035-01-01",
			BuyersPercentage: 60, StrikePrice: 150},
	}

	result := calc.ForPeriod(asset, period(t, "2025"), flatConstants())

	throughput := result.Volume.Adjusted
	assert.InDelta(t, throughput*0.6*150/1e6, result.Revenue.ContractedEnergy, 1e-9)
	assert.InDelta(t, throughput*0.4*200/1e6, result.Revenue.MerchantEnergy, 1e-9)
	assert.Equal(t, 60.0, result.ContractedEnergyPct)
}

func TestForPeriod_StorageTolling(t *testing.T) {
	calc := testCalculator(nil)
	asset := storageAsset()
	asset.Contracts = []domain.Contract{
		{Type: domain.ContractTolling, StartDate: "2025-01-01", EndDate: "2035-01-01",
			BuyersPercentage: 100, StrikePrice: 10}, // $/MW/h
	}

	result := calc.ForPeriod(asset, period(t, "2025"), flatConstants())

	// capacity * 8760 * rate / 1e6: availability payments are on nameplate
	// capacity, untouched by the loss adjustment.
	expected := 50 * 8760 * 10.0 / 1e6
	assert.InDelta(t, expected, result.Revenue.ContractedEnergy, 1e-9)
	assert.Zero(t, result.Revenue.MerchantEnergy)

	// The payment stays level across the contract: degradation shrinks the
	// throughput but never the capacity payment.
	later := calc.ForPeriod(asset, period(t, "2030"), flatConstants())
	assert.InDelta(t, expected, later.Revenue.ContractedEnergy, 1e-9)
	assert.Less(t, later.Volume.Adjusted, result.Volume.Adjusted)
}

func TestApplyFilter(t *testing.T) {
	in := domain.RevenueBreakdown{
		ContractedGreen: 1, ContractedEnergy: 2, MerchantGreen: 3, MerchantEnergy: 4, Total: 10,
	}

	green := ApplyFilter(in, domain.FilterGreen)
	assert.Equal(t, 4.0, green.Total)
	assert.Zero(t, green.ContractedEnergy)

	energy := ApplyFilter(in, domain.FilterEnergy)
	assert.Equal(t, 6.0, energy.Total)
	assert.Zero(t, energy.MerchantGreen)

	assert.Equal(t, in, ApplyFilter(in, domain.FilterAll))
}
