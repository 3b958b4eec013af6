package scan

import (
	"math"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

// Scoring weights.
const (
	liquidityWeight  = 17.0
	volumeWeight     = 14.0
	activeBonus      = 14.0
	inactivePenalty  = -35.0
	spreadMultiplier = 100 * 1.6
	maxSpreadPenalty = 25.0
	midStabilityBase = 8.0
	midStabilityRate = 10.0
	neutralMidpoint  = 0.5
)

// Metrics is the scoring output for one market.
type Metrics struct {
	Score    float64
	Spread   *float64
	Midpoint *float64
}

// Score ranks m given its depth quote. It is pure and deterministic.
//
// Liquidity and volume contribute on a log scale so very large markets cannot
// dominate by size alone. Inactive markets are pushed down hard, the spread
// penalty saturates at 25, and quotes near 0.5 earn a stability bonus that
// turns negative beyond 0.8 from the centre.
func Score(m domain.Market, d domain.DepthQuote) Metrics {
	spread := finite(d.Spread)
	mid := finite(d.Midpoint)

	score := math.Log10(m.Liquidity+1)*liquidityWeight +
		math.Log10(m.Volume+1)*volumeWeight

	if m.Active {
		score += activeBonus
	} else {
		score += inactivePenalty
	}
	if spread != nil {
		score -= math.Min(maxSpreadPenalty, *spread*spreadMultiplier)
	}
	if mid != nil {
		score += midStabilityBase - math.Abs(*mid-neutralMidpoint)*midStabilityRate
	}

	return Metrics{
		Score:    round2(score),
		Spread:   spread,
		Midpoint: mid,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
