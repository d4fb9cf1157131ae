package domain

// Scenario selects the deterministic stress transform applied to computed
// revenue breakdowns.
type Scenario string

const (
	ScenarioBase   Scenario = "base"
	ScenarioVolume Scenario = "volume"
	ScenarioPrice  Scenario = "price"
	ScenarioWorst  Scenario = "worst"
)

// IntervalType selects the granularity of the generated analysis periods.
type IntervalType string

const (
	IntervalAnnual    IntervalType = "annual"
	IntervalQuarterly IntervalType = "quarterly"
	IntervalMonthly   IntervalType = "monthly"
	IntervalCustom    IntervalType = "custom"
)

// RevenueFilter restricts a revenue breakdown to one product leg.
type RevenueFilter string

const (
	FilterAll    RevenueFilter = "all"
	FilterGreen  RevenueFilter = "green"
	FilterEnergy RevenueFilter = "energy"
)

const (
	// DefaultStartYear is assumed when an asset or contract date cannot be parsed.
	DefaultStartYear = 2025
	// DefaultAssetLife is the operational life assumed when none is configured.
	DefaultAssetLife = 25
	// DefaultAnnualDegradation is the %/yr output degradation applied when an
	// asset document carries no annualDegradation field.
	DefaultAnnualDegradation = 0.5
	// DaysInYear drives storage throughput (daily volume x days).
	DaysInYear = 365.0
)

// Constants holds the calculation-wide assumptions recognized by the engine.
// All percent fields are expressed on the 0-100 scale; conversion to
// fractions happens at a single boundary inside the calculators.
type Constants struct {
	HoursInYear          float64  `json:"HOURS_IN_YEAR"`
	VolumeVariation      float64  `json:"volumeVariation"`      // percent shock for volume/worst scenarios
	GreenPriceVariation  float64  `json:"greenPriceVariation"`  // percent shock for price/worst scenarios
	EnergyPriceVariation float64  `json:"EnergyPriceVariation"` // percent shock for price/worst scenarios
	Escalation           float64  `json:"escalation"`           // %/yr merchant price escalation
	ReferenceYear        int      `json:"referenceYear"`        // escalation base year
	Scenario             Scenario `json:"scenario"`
}

// DefaultConstants returns the engine defaults from the input contract.
func DefaultConstants() Constants {
	return Constants{
		HoursInYear:          8760,
		VolumeVariation:      20,
		GreenPriceVariation:  20,
		EnergyPriceVariation: 20,
		Escalation:           2.5,
		ReferenceYear:        2025,
		Scenario:             ScenarioBase,
	}
}
