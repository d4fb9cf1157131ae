// Package portfolio orchestrates a full calculation run: interval
// generation, per-asset revenue computation, portfolio aggregation and
// summary metrics.
package portfolio

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/halcyon-energy/halcyon/internal/domain"
	"github.com/halcyon-energy/halcyon/internal/modules/intervals"
	"github.com/halcyon-energy/halcyon/internal/modules/revenue"
)

// Version tags calculation metadata.
const Version = "1.0.0"

// CalcConfig configures one calculation run.
type CalcConfig struct {
	Interval        domain.IntervalType  `json:"intervalType"`
	StartYear       int                  `json:"startYear"`
	Years           int                  `json:"analysisYears"`
	CustomIntervals []string             `json:"customIntervals,omitempty"`
	RegionFilter    string               `json:"regionFilter,omitempty"` // "" or "ALL" means no filter
	Filter          domain.RevenueFilter `json:"revenueFilter,omitempty"`
	Constants       domain.Constants     `json:"constants"`
}

// Response is the complete output of one calculation run, serializable to
// JSON for the rendering and export layers.
type Response struct {
	Success    bool                       `json:"success"`
	TimeSeries domain.TimeSeries          `json:"timeSeries"`
	Summary    domain.SummaryMetrics      `json:"summary"`
	Validation domain.ValidationResult    `json:"validation"`
	Metadata   domain.CalculationMetadata `json:"metadata"`
}

// Service computes portfolio time series.
type Service struct {
	calc *revenue.Calculator
	log  zerolog.Logger
}

// NewService creates a portfolio calculation service.
func NewService(calc *revenue.Calculator, log zerolog.Logger) *Service {
	return &Service{
		calc: calc,
		log:  log.With().Str("module", "portfolio").Logger(),
	}
}

// Calculate runs the full pipeline for a portfolio and returns the complete
// response. Validation errors abort the run; warnings are carried through.
func (s *Service) Calculate(portfolio *domain.Portfolio, cfg CalcConfig) (*Response, error) {
	started := time.Now()
	calculationID := uuid.NewString()

	log := s.log.With().Str("calculation_id", calculationID).Logger()
	log.Info().Int("assets", len(portfolio.Assets)).Msg("starting calculation")

	validation := Validate(portfolio)
	if !validation.Valid {
		return nil, fmt.Errorf("portfolio validation failed: %s", strings.Join(validation.Errors, "; "))
	}

	series, err := s.TimeSeries(portfolio, cfg)
	if err != nil {
		return nil, err
	}

	response := &Response{
		Success:    true,
		TimeSeries: series,
		Summary:    Summary(series, portfolio),
		Validation: validation,
		Metadata: domain.CalculationMetadata{
			CalculationID:    calculationID,
			Timestamp:        started.UTC().Format(time.RFC3339),
			Version:          Version,
			ExecutionSeconds: time.Since(started).Seconds(),
		},
	}

	log.Info().
		Int("periods", len(series)).
		Float64("execution_seconds", response.Metadata.ExecutionSeconds).
		Msg("calculation complete")

	return response, nil
}

// TimeSeries computes one PortfolioPeriod per generated interval. Assets are
// aggregated in sorted-name order so floating-point portfolio sums are
// reproducible across runs.
func (s *Service) TimeSeries(portfolio *domain.Portfolio, cfg CalcConfig) (domain.TimeSeries, error) {
	labels, err := intervals.Generate(cfg.Interval, cfg.StartYear, cfg.Years, cfg.CustomIntervals)
	if err != nil {
		return nil, err
	}

	names := sortedAssetNames(portfolio, cfg.RegionFilter)

	series := make(domain.TimeSeries, 0, len(labels))
	for _, label := range labels {
		period, err := intervals.Parse(label)
		if err != nil {
			return nil, err
		}

		pp := domain.PortfolioPeriod{
			Period: period,
			Assets: make(map[string]domain.RevenueResult, len(names)),
		}

		for _, name := range names {
			asset := portfolio.Assets[name]
			result := s.calc.ForPeriod(asset, period, cfg.Constants)
			result.Revenue = revenue.ApplyFilter(result.Revenue, cfg.Filter)
			pp.Assets[asset.Name] = result
			pp.Totals.Add(result.Revenue)
		}

		if pp.Totals.Total > 0 {
			pp.ContractedPct = pp.Totals.Contracted() / pp.Totals.Total * 100
			pp.MerchantPct = pp.Totals.Merchant() / pp.Totals.Total * 100
		}

		series = append(series, pp)
	}

	return series, nil
}

func sortedAssetNames(portfolio *domain.Portfolio, regionFilter string) []string {
	filter := strings.ToUpper(strings.TrimSpace(regionFilter))
	names := make([]string, 0, len(portfolio.Assets))
	for name, asset := range portfolio.Assets {
		if filter != "" && filter != "ALL" && !strings.EqualFold(asset.State, filter) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary computes portfolio-level summary metrics over a full time series.
func Summary(series domain.TimeSeries, portfolio *domain.Portfolio) domain.SummaryMetrics {
	metrics := domain.SummaryMetrics{
		AssetCount:  len(portfolio.Assets),
		PeriodCount: len(series),
	}
	if len(series) == 0 {
		return metrics
	}

	var totalContracted, totalMerchant float64
	for _, pp := range series {
		metrics.TotalRevenueM += pp.Totals.Total
		totalContracted += pp.Totals.Contracted()
		totalMerchant += pp.Totals.Merchant()
	}

	for _, asset := range portfolio.Assets {
		metrics.TotalCapacityMW += asset.Capacity
	}

	metrics.AverageAnnualRevenueM = metrics.TotalRevenueM / float64(len(series))
	if metrics.TotalRevenueM > 0 {
		metrics.ContractedPercentage = totalContracted / metrics.TotalRevenueM * 100
		metrics.MerchantPercentage = totalMerchant / metrics.TotalRevenueM * 100
	}

	return metrics
}
