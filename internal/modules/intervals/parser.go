package intervals

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/halcyon-energy/halcyon/internal/domain"
)

// ErrMalformedPeriodLabel is returned when a label matches none of the three
// recognized lexical forms.
var ErrMalformedPeriodLabel = errors.New("malformed period label")

// Parse decomposes a period label into a TimePeriod. Three lexical forms are
// recognized:
//
//	"2025"     digits only         -> annual,    adjustment 1.0
//	"2025-Q3"  year, Q, quarter    -> quarterly, adjustment 0.25
//	"2025-06"  any other hyphen or slash form -> monthly, adjustment 1/12
//
// The monthly day component defaults to 1; the period's end date covers the
// whole month. Day counts are for display only.
func Parse(label string) (domain.TimePeriod, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return domain.TimePeriod{}, fmt.Errorf("%w: empty label", ErrMalformedPeriodLabel)
	}

	if year, err := strconv.Atoi(trimmed); err == nil {
		return annualPeriod(trimmed, year), nil
	}

	if year, quarter, ok := splitQuarterLabel(trimmed); ok {
		return quarterlyPeriod(trimmed, year, quarter)
	}

	if strings.ContainsAny(trimmed, "-/") {
		return monthlyPeriod(trimmed)
	}

	return domain.TimePeriod{}, fmt.Errorf("%w: %q", ErrMalformedPeriodLabel, label)
}

func annualPeriod(label string, year int) domain.TimePeriod {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return domain.TimePeriod{
		Label:      label,
		Year:       year,
		Start:      start,
		End:        end,
		Adjustment: 1.0,
		Days:       daysBetween(start, end),
		Display:    strconv.Itoa(year),
	}
}

func quarterlyPeriod(label string, year, quarter int) (domain.TimePeriod, error) {
	if quarter < 1 || quarter > 4 {
		return domain.TimePeriod{}, fmt.Errorf("%w: quarter out of range in %q", ErrMalformedPeriodLabel, label)
	}
	startMonth := time.Month((quarter-1)*3 + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, -1)
	return domain.TimePeriod{
		Label:      label,
		Year:       year,
		Quarter:    quarter,
		Start:      start,
		End:        end,
		Adjustment: 0.25,
		Days:       daysBetween(start, end),
		Display:    fmt.Sprintf("Q%d %d", quarter, year),
	}, nil
}

func monthlyPeriod(label string) (domain.TimePeriod, error) {
	normalized := strings.ReplaceAll(label, "/", "-")
	parts := strings.Split(normalized, "-")
	if len(parts) < 2 {
		return domain.TimePeriod{}, fmt.Errorf("%w: %q", ErrMalformedPeriodLabel, label)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return domain.TimePeriod{}, fmt.Errorf("%w: bad year in %q", ErrMalformedPeriodLabel, label)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return domain.TimePeriod{}, fmt.Errorf("%w: bad month in %q", ErrMalformedPeriodLabel, label)
	}
	// Day component, if present, is ignored: periods cover whole months.
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return domain.TimePeriod{
		Label:      label,
		Year:       year,
		Quarter:    (month-1)/3 + 1,
		Month:      month,
		Start:      start,
		End:        end,
		Adjustment: 1.0 / 12.0,
		Days:       daysBetween(start, end),
		Display:    fmt.Sprintf("%s %d", start.Month().String()[:3], year),
	}, nil
}

// splitQuarterLabel recognizes the "YYYY-QN" form.
func splitQuarterLabel(label string) (year, quarter int, ok bool) {
	idx := strings.Index(label, "-Q")
	if idx < 0 {
		return 0, 0, false
	}
	y, err := strconv.Atoi(label[:idx])
	if err != nil {
		return 0, 0, false
	}
	q, err := strconv.Atoi(label[idx+2:])
	if err != nil {
		return 0, 0, false
	}
	return y, q, true
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
