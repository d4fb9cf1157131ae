package domain

// VolumeBreakdown decomposes an asset's output for one period, in MWh.
// Base -> degraded -> adjusted is the order adjustments are applied; the
// contracted/merchant splits are slices of the adjusted volume.
type VolumeBreakdown struct {
	BaseGeneration   float64 `json:"baseGeneration"`   // before degradation and losses
	Degraded         float64 `json:"degraded"`         // after degradation
	Adjusted         float64 `json:"adjustedVolume"`   // after degradation and loss adjustment
	ContractedGreen  float64 `json:"contractedGreen"`  // volume under green/bundled contracts
	ContractedEnergy float64 `json:"contractedEnergy"` // volume under energy/bundled contracts
	MerchantGreen    float64 `json:"merchantGreen"`
	MerchantEnergy   float64 `json:"merchantEnergy"`
}

// PriceBreakdown captures realized $/MWh prices for one asset-period.
type PriceBreakdown struct {
	ContractedGreen  float64 `json:"contractedGreen"` // volume-weighted average
	ContractedEnergy float64 `json:"contractedEnergy"`
	MerchantGreen    float64 `json:"merchantGreen"`
	MerchantEnergy   float64 `json:"merchantEnergy"`
	BlendedGreen     float64 `json:"blendedGreen"` // revenue / volume across both legs
	BlendedEnergy    float64 `json:"blendedEnergy"`
}

// RevenueBreakdown holds the four revenue buckets plus their total, in $M.
// Total always equals the sum of the four buckets exactly.
type RevenueBreakdown struct {
	ContractedGreen  float64 `json:"contractedGreenRevenue"`
	ContractedEnergy float64 `json:"contractedEnergyRevenue"`
	MerchantGreen    float64 `json:"merchantGreenRevenue"`
	MerchantEnergy   float64 `json:"merchantEnergyRevenue"`
	Total            float64 `json:"totalRevenue"`
}

// Add accumulates another breakdown into this one.
func (r *RevenueBreakdown) Add(other RevenueBreakdown) {
	r.ContractedGreen += other.ContractedGreen
	r.ContractedEnergy += other.ContractedEnergy
	r.MerchantGreen += other.MerchantGreen
	r.MerchantEnergy += other.MerchantEnergy
	r.Total += other.Total
}

// Contracted returns the contracted revenue across both legs.
func (r RevenueBreakdown) Contracted() float64 {
	return r.ContractedGreen + r.ContractedEnergy
}

// Merchant returns the merchant revenue across both legs.
func (r RevenueBreakdown) Merchant() float64 {
	return r.MerchantGreen + r.MerchantEnergy
}

// ContractStatus summarizes one active contract inside a RevenueResult.
type ContractStatus struct {
	Counterparty     string       `json:"counterparty"`
	Type             ContractType `json:"type"`
	BuyersPercentage float64      `json:"buyersPercentage"`
	IndexationFactor float64      `json:"indexationFactor"` // cumulative multiplier this period
	RemainingYears   int          `json:"remainingYears"`
}

// RevenueResult is the full computed outcome for one asset in one period.
// It is never mutated after creation, only aggregated.
type RevenueResult struct {
	AssetName  string     `json:"assetName"`
	Technology Technology `json:"technology"`

	Volume  VolumeBreakdown  `json:"volume"`
	Prices  PriceBreakdown   `json:"prices"`
	Revenue RevenueBreakdown `json:"revenue"`

	// Raw contracted percentage sums. Deliberately not capped at 100:
	// over-allocation is preserved and surfaced by validation, while the
	// merchant percentages below are clamped at zero.
	ContractedGreenPct  float64 `json:"contractedGreenPercentage"`
	ContractedEnergyPct float64 `json:"contractedEnergyPercentage"`
	MerchantGreenPct    float64 `json:"merchantGreenPercentage"`
	MerchantEnergyPct   float64 `json:"merchantEnergyPercentage"`

	ActiveContracts []ContractStatus `json:"activeContracts,omitempty"`
}

// PortfolioPeriod pairs one analysis period with per-asset results and
// portfolio-level sums.
type PortfolioPeriod struct {
	Period TimePeriod               `json:"period"`
	Assets map[string]RevenueResult `json:"assets"`

	Totals RevenueBreakdown `json:"totals"`
	// Revenue-weighted portfolio percentages for the period.
	ContractedPct float64 `json:"contractedPercentage"`
	MerchantPct   float64 `json:"merchantPercentage"`
}

// TimeSeries is the ordered sequence of portfolio periods, one per
// generated interval.
type TimeSeries []PortfolioPeriod

// SummaryMetrics aggregates a TimeSeries for the summary panel.
type SummaryMetrics struct {
	TotalCapacityMW       float64 `json:"totalCapacityMW"`
	TotalRevenueM         float64 `json:"totalRevenueM"`
	AverageAnnualRevenueM float64 `json:"averageAnnualRevenueM"`
	ContractedPercentage  float64 `json:"contractedPercentage"`
	MerchantPercentage    float64 `json:"merchantPercentage"`
	AssetCount            int     `json:"assetCount"`
	PeriodCount           int     `json:"periodCount"`
}

// ValidationResult reports configuration errors and warnings for a portfolio.
// Errors block a calculation; warnings (missing capacity factors, contract
// over-allocation) do not.
type ValidationResult struct {
	Valid         bool     `json:"isValid"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	AssetCount    int      `json:"assetCount"`
	ContractCount int      `json:"contractCount"`
}

// CalculationMetadata tags one calculation run.
type CalculationMetadata struct {
	CalculationID    string  `json:"calculationId"`
	Timestamp        string  `json:"timestamp"`
	Version          string  `json:"version"`
	ExecutionSeconds float64 `json:"executionTimeSeconds"`
}
