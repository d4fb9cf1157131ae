// Package export renders calculation results as CSV and JSON projections
// for download. Column ordering is fixed so downstream spreadsheets keep
// working across releases.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/halcyon-energy/halcyon/internal/domain"
)

// portfolioHeader is the fixed left block of the portfolio CSV. Per-asset
// revenue columns follow, five per asset in sorted-name order.
var portfolioHeader = []string{
	"time_period",
	"year",
	"quarter",
	"month",
	"contracted_green_revenue",
	"contracted_energy_revenue",
	"merchant_green_revenue",
	"merchant_energy_revenue",
	"total_revenue",
	"contracted_percentage",
	"merchant_percentage",
}

var assetRevenueColumns = []string{
	"contracted_green_revenue",
	"contracted_energy_revenue",
	"merchant_green_revenue",
	"merchant_energy_revenue",
	"total_revenue",
}

// WritePortfolioCSV writes the portfolio view: one row per period with
// portfolio totals followed by per-asset revenue columns.
func WritePortfolioCSV(w io.Writer, series domain.TimeSeries) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	names := assetNames(series)

	header := append([]string{}, portfolioHeader...)
	for _, name := range names {
		for _, col := range assetRevenueColumns {
			header = append(header, name+"_"+col)
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, pp := range series {
		row := periodColumns(pp.Period)
		row = append(row, revenueColumns(pp.Totals)...)
		row = append(row, fmtFloat(pp.ContractedPct), fmtFloat(pp.MerchantPct))
		for _, name := range names {
			result, ok := pp.Assets[name]
			if !ok {
				row = append(row, "", "", "", "", "")
				continue
			}
			row = append(row, revenueColumns(result.Revenue)...)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// assetHeader is the fixed column set of the single-asset CSV.
var assetHeader = []string{
	"time_period",
	"year",
	"quarter",
	"month",
	"base_generation_mwh",
	"degraded_volume_mwh",
	"adjusted_volume_mwh",
	"contracted_green_revenue",
	"contracted_energy_revenue",
	"merchant_green_revenue",
	"merchant_energy_revenue",
	"total_revenue",
	"contracted_green_percentage",
	"contracted_energy_percentage",
	"merchant_green_percentage",
	"merchant_energy_percentage",
}

// WriteAssetCSV writes the detailed single-asset view with volume and
// percentage breakdowns.
func WriteAssetCSV(w io.Writer, series domain.TimeSeries, assetName string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(assetHeader); err != nil {
		return err
	}

	for _, pp := range series {
		result, ok := pp.Assets[assetName]
		if !ok {
			return fmt.Errorf("asset %q not present in time series", assetName)
		}

		row := periodColumns(pp.Period)
		row = append(row,
			fmtFloat(result.Volume.BaseGeneration),
			fmtFloat(result.Volume.Degraded),
			fmtFloat(result.Volume.Adjusted),
		)
		row = append(row, revenueColumns(result.Revenue)...)
		row = append(row,
			fmtFloat(result.ContractedGreenPct),
			fmtFloat(result.ContractedEnergyPct),
			fmtFloat(result.MerchantGreenPct),
			fmtFloat(result.MerchantEnergyPct),
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func assetNames(series domain.TimeSeries) []string {
	seen := make(map[string]bool)
	var names []string
	for _, pp := range series {
		for name := range pp.Assets {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func periodColumns(p domain.TimePeriod) []string {
	quarter, month := "", ""
	if p.Quarter > 0 {
		quarter = strconv.Itoa(p.Quarter)
	}
	if p.Month > 0 {
		month = strconv.Itoa(p.Month)
	}
	return []string{p.Label, strconv.Itoa(p.Year), quarter, month}
}

func revenueColumns(r domain.RevenueBreakdown) []string {
	return []string{
		fmtFloat(r.ContractedGreen),
		fmtFloat(r.ContractedEnergy),
		fmtFloat(r.MerchantGreen),
		fmtFloat(r.MerchantEnergy),
		fmtFloat(r.Total),
	}
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
