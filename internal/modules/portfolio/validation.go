package portfolio

import (
	"fmt"

	"github.com/halcyon-energy/halcyon/internal/domain"
)

// Validate checks portfolio configuration before calculation. Errors make the
// portfolio uncalculable; warnings flag inputs that fall back to defaults or
// that look economically suspect.
func Validate(portfolio *domain.Portfolio) domain.ValidationResult {
	result := domain.ValidationResult{Valid: true}

	if portfolio == nil || len(portfolio.Assets) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "portfolio contains no assets")
		return result
	}

	for name, asset := range portfolio.Assets {
		result.AssetCount++
		result.ContractCount += len(asset.Contracts)

		label := asset.Name
		if label == "" {
			label = name
		}

		switch asset.Type {
		case domain.TechnologySolar, domain.TechnologyWind, domain.TechnologyStorage:
		default:
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: unknown technology %q", label, asset.Type))
		}

		if asset.Capacity <= 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: capacity must be positive, got %.2f MW", label, asset.Capacity))
		}

		if asset.Type == domain.TechnologyStorage && asset.Volume <= 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: storage asset has no volume, duration defaults to 2.0h", label))
		}

		if asset.Type.IsRenewable() {
			missing := 0
			for q := 1; q <= 4; q++ {
				if _, ok := asset.QuarterlyCapacityFactor(q); !ok {
					missing++
				}
			}
			if missing == 4 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: no quarterly capacity factors, using %s/%s defaults",
						label, asset.Type, asset.State))
			}
		}

		validateContracts(label, asset, &result)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func validateContracts(label string, asset *domain.Asset, result *domain.ValidationResult) {
	var totalPct float64
	for i, contract := range asset.Contracts {
		ref := contract.Counterparty
		if ref == "" {
			ref = fmt.Sprintf("contract %d", i+1)
		}

		if contract.BuyersPercentage < 0 || contract.BuyersPercentage > 100 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %s: buyersPercentage %.1f outside [0, 100]",
					label, ref, contract.BuyersPercentage))
		}

		start := domain.ParseYear(contract.StartDate, 0)
		end := domain.ParseYear(contract.EndDate, 0)
		if start != 0 && end != 0 && end < start {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %s: ends (%d) before it starts (%d)", label, ref, end, start))
		}

		// Fixed contracts are levels, not volume shares.
		if contract.Type != domain.ContractFixed {
			totalPct += contract.BuyersPercentage
		}
	}

	if totalPct > 100 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: contracts allocate %.1f%% of volume, merchant floor is 0%%",
				label, totalPct))
	}
}
