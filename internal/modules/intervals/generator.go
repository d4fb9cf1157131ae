// Package intervals generates and parses the analysis periods consumed by
// every downstream calculator. Interval generation and period parsing are
// deterministic and side-effect-free; the two errors defined here are the
// engine's only genuine input-contract violations.
package intervals

import (
	"errors"
	"fmt"

	"github.com/halcyon-energy/halcyon/internal/domain"
)

// ErrUnsupportedIntervalType is returned for interval types outside
// annual/quarterly/monthly/custom.
var ErrUnsupportedIntervalType = errors.New("unsupported interval type")

// Generate produces the ordered list of period labels for an analysis run.
// The periods argument is the horizon in YEARS regardless of granularity:
// quarterly output has periods*4 labels and monthly has periods*12.
//
// Custom mode returns the caller-supplied labels verbatim - ordering and
// format are the caller's responsibility.
func Generate(interval domain.IntervalType, startYear, periods int, custom []string) ([]string, error) {
	switch interval {
	case domain.IntervalAnnual:
		labels := make([]string, 0, periods)
		for i := 0; i < periods; i++ {
			labels = append(labels, fmt.Sprintf("%d", startYear+i))
		}
		return labels, nil

	case domain.IntervalQuarterly:
		labels := make([]string, 0, periods*4)
		for i := 0; i < periods*4; i++ {
			labels = append(labels, fmt.Sprintf("%d-Q%d", startYear+i/4, i%4+1))
		}
		return labels, nil

	case domain.IntervalMonthly:
		labels := make([]string, 0, periods*12)
		for i := 0; i < periods*12; i++ {
			labels = append(labels, fmt.Sprintf("%d-%02d", startYear+i/12, i%12+1))
		}
		return labels, nil

	case domain.IntervalCustom:
		return custom, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedIntervalType, interval)
	}
}
