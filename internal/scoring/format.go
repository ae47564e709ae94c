package scoring

import (
	"fmt"
	"math"
)

// deltaTolerance treats near-zero deltas as equal to the baseline. An
// equality tolerance, not a literal zero comparison.
const deltaTolerance = 1.0

// FormatDetourDelta renders a detour delta in meters versus the β=0
// baseline as a signed label, or an equality label when the delta is
// within tolerance.
func FormatDetourDelta(meters float64) string {
	if math.Abs(meters) < deltaTolerance {
		return "same distance as β=0"
	}
	return fmt.Sprintf("%+.0f m", meters)
}

// FormatRiskDelta renders a risk-distance delta versus the β=0 baseline.
func FormatRiskDelta(delta float64) string {
	if math.Abs(delta) < deltaTolerance {
		return "same risk as β=0"
	}
	return fmt.Sprintf("%+.0f", delta)
}
