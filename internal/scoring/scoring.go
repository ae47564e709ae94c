// Package scoring derives comparable display metrics from raw route
// statistics: ETA, a relative safety score, badge tiers, titles, and
// delta labels versus the β=0 baseline. Pure computation, no I/O.
package scoring

import (
	"fmt"
	"math"

	"github.com/safemap/safemap/internal/routing"
)

// Per-mode travel speeds in meters per second.
const (
	walkSpeedMPS  = 1.4
	bikeSpeedMPS  = 4.2
	driveSpeedMPS = 11.1
)

// riskEpsilon floors the per-set maximum risk so an all-zero set divides
// cleanly and every route scores 100.
const riskEpsilon = 1e-9

// Badge is the safety badge tier shown on a route card.
type Badge string

// Badge tiers. Thresholds are fixed, inclusive on the lower bound.
const (
	BadgeSafe     Badge = "Safe"
	BadgeModerate Badge = "Moderate"
	BadgeCaution  Badge = "Caution"
)

const (
	safeThreshold     = 80
	moderateThreshold = 60
)

// ScoredRoute is a RouteCandidate enriched with derived display metrics.
// Recomputed fresh for every result set, never persisted.
type ScoredRoute struct {
	routing.RouteCandidate

	ETASeconds     float64
	ETAMinutes     int
	SafetyScore    int
	Badge          Badge
	Title          string
	Description    string
	Chips          []string
	DetourLabel    string
	RiskDeltaLabel string
}

// Speed returns the travel speed for the mode in meters per second.
func Speed(mode routing.Mode) float64 {
	switch mode {
	case routing.ModeBike:
		return bikeSpeedMPS
	case routing.ModeDrive:
		return driveSpeedMPS
	default:
		return walkSpeedMPS
	}
}

// Score derives a ScoredRoute per candidate, preserving input order.
// The safety score is relative to the maximum mean risk within this set
// only; scores from different sets are not comparable.
func Score(set *routing.RouteResultSet) []ScoredRoute {
	maxRisk := riskEpsilon
	for _, r := range set.Routes {
		if r.Stats.MeanRisk > maxRisk {
			maxRisk = r.Stats.MeanRisk
		}
	}

	speed := Speed(set.Mode)

	scored := make([]ScoredRoute, 0, len(set.Routes))
	for _, r := range set.Routes {
		etaSeconds := r.Stats.LengthM / speed

		rel := r.Stats.MeanRisk / maxRisk
		if rel < 0 {
			rel = 0
		}
		if rel > 1 {
			rel = 1
		}
		score := int(math.Round((1 - rel) * 100))
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}

		title, description, chips := describe(r.Beta, set.Mode)

		scored = append(scored, ScoredRoute{
			RouteCandidate: r,
			ETASeconds:     etaSeconds,
			ETAMinutes:     int(math.Round(etaSeconds / 60)),
			SafetyScore:    score,
			Badge:          BadgeFor(score),
			Title:          title,
			Description:    description,
			Chips:          chips,
			DetourLabel:    FormatDetourDelta(r.Stats.DetourMVsBeta0),
			RiskDeltaLabel: FormatRiskDelta(r.Stats.RiskDeltaVsBeta0),
		})
	}

	return scored
}

// BadgeFor maps a safety score to its badge tier.
func BadgeFor(score int) Badge {
	switch {
	case score >= safeThreshold:
		return BadgeSafe
	case score >= moderateThreshold:
		return BadgeModerate
	default:
		return BadgeCaution
	}
}

// describe picks the title, description, and feature chips by the
// three-way β split.
func describe(beta float64, mode routing.Mode) (title, description string, chips []string) {
	switch {
	case beta == 0:
		return "Fastest Route",
			fmt.Sprintf("Direct route optimized for %s", mode),
			[]string{"Fastest", "Direct path", "Higher exposure"}
	case beta >= 1:
		return "Safest Route",
			fmt.Sprintf("Maximum safety route for %s", mode),
			[]string{"Safest", "Avoids hotspots", "Longer"}
	default:
		return "Balanced Route",
			fmt.Sprintf("Good compromise between speed and safety for %s", mode),
			[]string{"Balanced", "Moderate detour"}
	}
}
