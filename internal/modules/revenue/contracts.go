package revenue

import (
	"math"

	"github.com/halcyon-energy/halcyon/internal/domain"
)

// allocation is the outcome of splitting one asset-period's volume across
// its active contracts. Percentages are raw sums: over-allocation above 100
// is preserved here and only clamped on the merchant side.
type allocation struct {
	greenPct        float64
	energyPct       float64
	greenRevenue    float64 // $M
	energyRevenue   float64 // $M
	greenVolume     float64 // MWh under contract
	energyVolume    float64
	activeContracts []domain.ContractStatus
}

// indexedPrice applies compound indexation from the contract's start year.
func indexedPrice(base float64, contract *domain.Contract, year int) float64 {
	elapsed := year - domain.ParseYear(contract.StartDate, year)
	if elapsed <= 0 || contract.Indexation == 0 {
		return base
	}
	return base * math.Pow(1+contract.Indexation/100, float64(elapsed))
}

// indexationFactor is the cumulative multiplier reported in contract metadata.
func indexationFactor(contract *domain.Contract, year int) float64 {
	elapsed := year - domain.ParseYear(contract.StartDate, year)
	if elapsed <= 0 || contract.Indexation == 0 {
		return 1.0
	}
	return math.Pow(1+contract.Indexation/100, float64(elapsed))
}

// applyFloor enforces a single-leg price floor: the floor overrides the
// indexed price when the indexed price falls below it.
func applyFloor(price float64, contract *domain.Contract) float64 {
	if contract.HasFloor && price < contract.FloorValue {
		return contract.FloorValue
	}
	return price
}

// applyBundledFloor enforces a floor on the combined bundled price,
// redistributing the floor proportionally between the green and energy legs.
// A zero combined price splits the floor evenly.
func applyBundledFloor(green, energy float64, contract *domain.Contract) (float64, float64) {
	if !contract.HasFloor {
		return green, energy
	}
	total := green + energy
	if total >= contract.FloorValue {
		return green, energy
	}
	if total > 0 {
		return green / total * contract.FloorValue, energy / total * contract.FloorValue
	}
	return contract.FloorValue / 2, contract.FloorValue / 2
}

// allocateRenewable splits a renewable asset's adjusted volume across its
// contracts active in the period's year.
//
// Fixed-revenue contracts contribute a level (pro-rated) revenue stream to
// the energy bucket and do not consume volume, so they leave the contracted
// percentages untouched.
func allocateRenewable(asset *domain.Asset, period domain.TimePeriod, adjustedVolume float64) allocation {
	var alloc allocation

	for i := range asset.Contracts {
		contract := &asset.Contracts[i]
		if !contract.ActiveInYear(period.Year) {
			continue
		}

		pct := contract.BuyersPercentage
		volume := adjustedVolume * pct / 100

		switch contract.Type {
		case domain.ContractBundled:
			green := indexedPrice(contract.GreenPrice, contract, period.Year)
			energy := indexedPrice(contract.EnergyPrice, contract, period.Year)
			green, energy = applyBundledFloor(green, energy, contract)

			alloc.greenRevenue += volume * green / 1e6
			alloc.energyRevenue += volume * energy / 1e6
			alloc.greenPct += pct
			alloc.energyPct += pct
			alloc.greenVolume += volume
			alloc.energyVolume += volume

		case domain.ContractGreen:
			price := applyFloor(indexedPrice(contract.StrikePrice, contract, period.Year), contract)
			alloc.greenRevenue += volume * price / 1e6
			alloc.greenPct += pct
			alloc.greenVolume += volume

		case domain.ContractEnergy:
			price := applyFloor(indexedPrice(contract.StrikePrice, contract, period.Year), contract)
			alloc.energyRevenue += volume * price / 1e6
			alloc.energyPct += pct
			alloc.energyVolume += volume

		case domain.ContractFixed:
			annual := indexedPrice(contract.StrikePrice, contract, period.Year)
			alloc.energyRevenue += annual * period.Adjustment
		}

		alloc.activeContracts = append(alloc.activeContracts, contractStatus(contract, period.Year))
	}

	return alloc
}

// allocateStorage splits a storage asset's throughput across its active
// contracts. Storage revenue lands entirely in the energy bucket.
func allocateStorage(asset *domain.Asset, period domain.TimePeriod, throughput float64, constants domain.Constants) allocation {
	var alloc allocation

	for i := range asset.Contracts {
		contract := &asset.Contracts[i]
		if !contract.ActiveInYear(period.Year) {
			continue
		}

		pct := contract.BuyersPercentage

		switch contract.Type {
		case domain.ContractCfD:
			spread := applyFloor(indexedPrice(contract.StrikePrice, contract, period.Year), contract)
			volume := throughput * pct / 100
			alloc.energyRevenue += volume * spread / 1e6
			alloc.energyPct += pct
			alloc.energyVolume += volume

		case domain.ContractTolling:
			// Tolling pays per MW of nameplate capacity regardless of
			// dispatch, so neither degradation nor losses apply.
			rate := applyFloor(indexedPrice(contract.StrikePrice, contract, period.Year), contract)
			revenue := asset.Capacity * constants.HoursInYear * period.Adjustment * rate * pct / 100
			alloc.energyRevenue += revenue / 1e6
			alloc.energyPct += pct

		case domain.ContractFixed:
			annual := indexedPrice(contract.StrikePrice, contract, period.Year)
			alloc.energyRevenue += annual * period.Adjustment
		}

		alloc.activeContracts = append(alloc.activeContracts, contractStatus(contract, period.Year))
	}

	return alloc
}

func contractStatus(contract *domain.Contract, year int) domain.ContractStatus {
	remaining := domain.ParseYear(contract.EndDate, year) - year
	if remaining < 0 {
		remaining = 0
	}
	return domain.ContractStatus{
		Counterparty:     contract.Counterparty,
		Type:             contract.Type,
		BuyersPercentage: contract.BuyersPercentage,
		IndexationFactor: indexationFactor(contract, year),
		RemainingYears:   remaining,
	}
}

// merchantPercentage clamps the residual uncontracted percentage at zero so
// merchant volume never goes negative, while the contracted sums above stay
// uncapped.
func merchantPercentage(contractedPct float64) float64 {
	return math.Max(0, 100-contractedPct)
}
