package domain

import "time"

// TimePeriod is one analysis period derived from a period label.
// It is immutable once parsed and carries everything downstream calculators
// need: calendar bounds, the fractional-year weight used to pro-rate
// annualized quantities, and a human-readable label for display.
type TimePeriod struct {
	Label      string    `json:"label"`            // "2025", "2025-Q3", "2025-06"
	Year       int       `json:"year"`             // calendar year
	Quarter    int       `json:"quarter"`          // 1-4, 0 for annual periods
	Month      int       `json:"month"`            // 1-12, 0 for annual/quarterly periods
	Start      time.Time `json:"start"`            // first day of the period
	End        time.Time `json:"end"`              // last day of the period (inclusive)
	Adjustment float64   `json:"periodAdjustment"` // 1.0 annual, 0.25 quarterly, 1/12 monthly
	Days       int       `json:"days"`             // calendar days covered, display only
	Display    string    `json:"display"`          // e.g. "Q3 2025", "Jun 2025"
}
