// Package pricing resolves merchant prices for the revenue calculators.
//
// The engine consumes prices through the Source interface - a black box
// supplied by the caller. A zero or missing price is "no price available"
// and resolves through the technology default tables; the lookup never
// fails a calculation.
package pricing

import (
	"math"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/halcyon-energy/halcyon/internal/domain"
)

// Source is the external price-lookup collaborator. Implementations return
// (price, true) when a curve value exists for the combination, and (0, false)
// otherwise. A returned price of exactly 0 is treated as missing.
type Source interface {
	Price(profile, productType, state, periodLabel string) (float64, bool)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(profile, productType, state, periodLabel string) (float64, bool)

// Price implements Source.
func (f SourceFunc) Price(profile, productType, state, periodLabel string) (float64, bool) {
	return f(profile, productType, state, periodLabel)
}

// StandardDurations are the storage durations (hours) at which merchant
// spreads are quoted. Actual asset durations interpolate between the nearest
// two, clamping outside the bracket.
var StandardDurations = [4]float64{0.5, 1, 2, 4}

// defaultPrices is the hard-coded technology fallback table, $/MWh.
var defaultPrices = map[domain.Technology]map[string]float64{
	domain.TechnologySolar: {"green": 35, "Energy": 65},
	domain.TechnologyWind:  {"green": 35, "Energy": 65},
}

// defaultSpreads are the storage fallback spreads by standard duration, $/MWh.
var defaultSpreads = map[float64]float64{
	0.5: 160,
	1:   180,
	2:   200,
	4:   220,
}

// Service resolves merchant prices through the configured source with the
// default-table fallback chain, applying escalation from the reference year.
type Service struct {
	source Source
	log    zerolog.Logger
}

// NewService creates a pricing service. A nil source means every lookup
// resolves through the default tables.
func NewService(source Source, log zerolog.Logger) *Service {
	return &Service{
		source: source,
		log:    log.With().Str("module", "pricing").Logger(),
	}
}

// MerchantPrice returns the escalated $/MWh merchant price for a renewable
// technology and product type ("green" or "Energy") in the given period.
func (s *Service) MerchantPrice(tech domain.Technology, productType, state string, period domain.TimePeriod, constants domain.Constants) float64 {
	base, ok := s.lookup(string(tech), productType, state, period.Label)
	if !ok {
		base = defaultPrices[tech][productType]
		if base == 0 {
			base = 50 // last-resort flat default for unknown combinations
		}
		s.log.Debug().
			Str("technology", string(tech)).
			Str("product", productType).
			Str("state", state).
			Str("period", period.Label).
			Float64("default", base).
			Msg("no merchant price available, using technology default")
	}
	return Escalate(base, period.Year, constants)
}

// StorageSpread returns the escalated $/MWh spread for a storage asset with
// the given duration, linearly interpolating between the two standard
// durations bracketing it. Durations outside [0.5, 4] clamp to the nearest
// standard duration.
func (s *Service) StorageSpread(state string, duration float64, period domain.TimePeriod, constants domain.Constants) float64 {
	base := s.spreadAt(duration, state, period.Label)
	return Escalate(base, period.Year, constants)
}

func (s *Service) spreadAt(duration float64, state, periodLabel string) float64 {
	durations := StandardDurations

	if duration <= durations[0] {
		return s.spreadQuote(durations[0], state, periodLabel)
	}
	if duration >= durations[len(durations)-1] {
		return s.spreadQuote(durations[len(durations)-1], state, periodLabel)
	}

	for i := 0; i < len(durations)-1; i++ {
		lower, upper := durations[i], durations[i+1]
		if duration < lower || duration > upper {
			continue
		}
		lowerPrice := s.spreadQuote(lower, state, periodLabel)
		upperPrice := s.spreadQuote(upper, state, periodLabel)
		ratio := (duration - lower) / (upper - lower)
		return lowerPrice + ratio*(upperPrice-lowerPrice)
	}

	// Unreachable for finite durations; keep the 2-hour quote as a guard.
	return s.spreadQuote(2, state, periodLabel)
}

// spreadQuote resolves the quoted spread at one standard duration, falling
// back to the default table when the source has no curve.
func (s *Service) spreadQuote(duration float64, state, periodLabel string) float64 {
	if price, ok := s.lookup(string(domain.TechnologyStorage), durationKey(duration), state, periodLabel); ok {
		return price
	}
	return defaultSpreads[duration]
}

func (s *Service) lookup(profile, productType, state, periodLabel string) (float64, bool) {
	if s.source == nil {
		return 0, false
	}
	price, ok := s.source.Price(profile, productType, state, periodLabel)
	if !ok || price == 0 {
		return 0, false
	}
	return price, true
}

// Escalate applies the compound escalation rate between the reference year
// and the period year. Years before the reference deflate symmetrically.
func Escalate(price float64, year int, constants domain.Constants) float64 {
	if constants.Escalation == 0 {
		return price
	}
	years := float64(year - constants.ReferenceYear)
	return price * math.Pow(1+constants.Escalation/100, years)
}

// durationKey formats a standard duration as a lookup product type ("0.5h",
// "1h", "2h", "4h").
func durationKey(duration float64) string {
	return strconv.FormatFloat(duration, 'f', -1, 64) + "h"
}
