// Package domain provides core domain models and types for the portfolio engine.
package domain

import (
	"strconv"
	"strings"
)

// Technology represents the generation technology of an asset.
type Technology string

const (
	// TechnologySolar represents photovoltaic generation assets
	TechnologySolar Technology = "solar"
	// TechnologyWind represents wind generation assets
	TechnologyWind Technology = "wind"
	// TechnologyStorage represents battery storage assets
	TechnologyStorage Technology = "storage"
)

// IsRenewable reports whether the technology is volume-driven generation
// (solar or wind) as opposed to throughput-driven storage.
func (t Technology) IsRenewable() bool {
	return t == TechnologySolar || t == TechnologyWind
}

// ContractType represents the commercial structure of a contract.
// The "Energy" casing is preserved from the persisted document format.
type ContractType string

const (
	ContractBundled ContractType = "bundled"
	ContractGreen   ContractType = "green"
	ContractEnergy  ContractType = "Energy"
	ContractFixed   ContractType = "fixed"
	ContractCfD     ContractType = "cfd"
	ContractTolling ContractType = "tolling"
)

// Contract represents a revenue contract attached to a single asset.
// Contracts on the same asset may overlap and their percentages may sum
// above 100 - this is accepted at the data level and surfaced as a
// validation warning, never rejected.
type Contract struct {
	Counterparty     string       `json:"counterparty"`
	Type             ContractType `json:"type"`
	StartDate        string       `json:"startDate"` // YYYY-MM-DD, DD/MM/YYYY or bare year
	EndDate          string       `json:"endDate"`
	BuyersPercentage float64      `json:"buyersPercentage"` // 0-100
	StrikePrice      float64      `json:"strikePrice"`      // $/MWh ($M/yr for fixed)
	GreenPrice       float64      `json:"greenPrice"`       // $/MWh, bundled only
	EnergyPrice      float64      `json:"EnergyPrice"`      // $/MWh, bundled only
	Indexation       float64      `json:"indexation"`       // %/yr
	HasFloor         bool         `json:"hasFloor"`
	FloorValue       float64      `json:"floorValue"` // $/MWh floor on the indexed price
}

// ActiveInYear reports whether the contract covers the given calendar year.
// Activity is resolved at year granularity, matching the period activity rule:
// a contract is active for a period iff the period lies within [start, end).
func (c *Contract) ActiveInYear(year int) bool {
	return ParseYear(c.StartDate, year+1) <= year && year <= ParseYear(c.EndDate, year-1)
}

// Asset represents a single renewable-generation or storage asset.
// Assets are immutable for the duration of one calculation run; the
// surrounding application mutates them only between runs.
type Asset struct {
	Name                  string     `json:"name"`
	Type                  Technology `json:"type"`
	State                 string     `json:"state"`    // NEM region (NSW, QLD, VIC, SA, WA, TAS)
	Capacity              float64    `json:"capacity"` // MW
	Volume                float64    `json:"volume"`   // MWh/day, storage only
	StartDate             string     `json:"assetStartDate"`
	ConstructionStartDate string     `json:"constructionStartDate"`
	AssetLife             int        `json:"assetLife"`         // years, 0 means default 25
	AnnualDegradation     *float64   `json:"annualDegradation,omitempty"` // %/yr, nil means default 0.5
	VolumeLossAdjustment  float64    `json:"volumeLossAdjustment"`
	CapacityFactorQ1      *float64   `json:"qtrCapacityFactor_q1,omitempty"` // percent
	CapacityFactorQ2      *float64   `json:"qtrCapacityFactor_q2,omitempty"`
	CapacityFactorQ3      *float64   `json:"qtrCapacityFactor_q3,omitempty"`
	CapacityFactorQ4      *float64   `json:"qtrCapacityFactor_q4,omitempty"`
	Contracts             []Contract `json:"contracts"`
}

// StartYear returns the asset's first operational year.
func (a *Asset) StartYear() int {
	return ParseYear(a.StartDate, DefaultStartYear)
}

// Degradation returns the annual output degradation rate in %/yr. Documents
// without the field degrade at the 0.5%/yr default; an explicit zero
// disables degradation.
func (a *Asset) Degradation() float64 {
	if a.AnnualDegradation == nil {
		return DefaultAnnualDegradation
	}
	return *a.AnnualDegradation
}

// Life returns the asset's operational life in years.
func (a *Asset) Life() int {
	if a.AssetLife > 0 {
		return a.AssetLife
	}
	return DefaultAssetLife
}

// Duration returns the storage duration in hours (volume / power rating).
// Assets without a power rating report the 2-hour default used for
// spread interpolation.
func (a *Asset) Duration() float64 {
	if a.Capacity <= 0 {
		return 2.0
	}
	return a.Volume / a.Capacity
}

// QuarterlyCapacityFactor returns the explicit capacity factor for the given
// quarter (1-4) as a fraction, or false when none is configured.
func (a *Asset) QuarterlyCapacityFactor(quarter int) (float64, bool) {
	var f *float64
	switch quarter {
	case 1:
		f = a.CapacityFactorQ1
	case 2:
		f = a.CapacityFactorQ2
	case 3:
		f = a.CapacityFactorQ3
	case 4:
		f = a.CapacityFactorQ4
	}
	if f == nil {
		return 0, false
	}
	return *f / 100, true
}

// Portfolio maps asset keys to assets, as loaded from the persistence layer.
type Portfolio struct {
	Assets map[string]*Asset `json:"assets"`
}

// ParseYear extracts the year from a loosely formatted date string.
// Accepted forms: "YYYY-MM-DD", "DD/MM/YYYY" and a bare year. Anything
// unparseable resolves to the fallback - missing dates are a fallback
// condition, not an error.
func ParseYear(date string, fallback int) int {
	date = strings.TrimSpace(date)
	if date == "" {
		return fallback
	}
	var yearPart string
	switch {
	case strings.Contains(date, "/"):
		parts := strings.Split(date, "/")
		yearPart = parts[len(parts)-1]
	case strings.Contains(date, "-"):
		yearPart = strings.SplitN(date, "-", 2)[0]
	default:
		yearPart = date
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return fallback
	}
	return year
}

// ParseMonth extracts the month (1-12) from a loosely formatted date string,
// defaulting to January when the string carries no month component.
func ParseMonth(date string) int {
	date = strings.TrimSpace(date)
	switch {
	case strings.Contains(date, "/"):
		parts := strings.Split(date, "/")
		if len(parts) == 3 {
			if m, err := strconv.Atoi(parts[1]); err == nil && m >= 1 && m <= 12 {
				return m
			}
		}
	case strings.Contains(date, "-"):
		parts := strings.Split(date, "-")
		if len(parts) >= 2 {
			if m, err := strconv.Atoi(parts[1]); err == nil && m >= 1 && m <= 12 {
				return m
			}
		}
	}
	return 1
}
