package finance

import "github.com/halcyon-energy/halcyon/internal/domain"

// CapexSchedule spreads capex evenly across the construction window and
// splits each drawdown between equity and debt. When the asset has no
// construction start date the whole amount lands in the year before COD.
func CapexSchedule(asset *domain.Asset, capex, equity float64, mode domain.FundingMode) []domain.CapexDrawdown {
	if capex <= 0 {
		return nil
	}
	startYear := asset.StartYear()
	constructionStart := domain.ParseYear(asset.ConstructionStartDate, startYear-1)
	if constructionStart >= startYear {
		constructionStart = startYear - 1
	}

	years := startYear - constructionStart
	perYear := capex / float64(years)

	schedule := make([]domain.CapexDrawdown, 0, years)
	equityRemaining := equity
	for year := constructionStart; year < startYear; year++ {
		draw := domain.CapexDrawdown{Year: year, Total: perYear}
		switch mode {
		case domain.FundingPariPassu:
			share := equity / capex
			draw.Equity = perYear * share
		default: // equity first
			draw.Equity = perYear
			if draw.Equity > equityRemaining {
				draw.Equity = equityRemaining
			}
		}
		draw.Debt = draw.Total - draw.Equity
		equityRemaining -= draw.Equity
		schedule = append(schedule, draw)
	}
	return schedule
}
