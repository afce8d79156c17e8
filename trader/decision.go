// Package trader is the decision core of the live loop: it fuses trend,
// candlestick pattern, and cached news sentiment into a decision, reconciles
// that decision against the authoritative brokerage position, and gates the
// resulting order through a cooldown before submission and ledger logging.
package trader

import (
	"github.com/alexroth/tradebot/indicators"
	"github.com/alexroth/tradebot/patterns"
	"github.com/alexroth/tradebot/sentiment"
)

// Decision is the per-tick trading intent. It is recomputed on every tick
// and never persisted.
type Decision string

const (
	DecisionBuy  Decision = "buy"
	DecisionSell Decision = "sell"
	DecisionHold Decision = "hold"
)

// Decide scores the three signals and maps the sum to a decision. Trend
// contributes ±1, a strong reversal pattern ±2, sentiment ±0.5. A score of
// +2 or more is a buy, −2 or less a sell, anything between holds.
//
// Pure function: identical inputs always yield the identical decision.
func Decide(trend indicators.Trend, pattern patterns.Pattern, label sentiment.Label) Decision {
	score := 0.0

	switch trend {
	case indicators.TrendUp:
		score++
	case indicators.TrendDown:
		score--
	}

	switch pattern {
	case patterns.BullishEngulfing, patterns.Hammer:
		score += 2
	case patterns.BearishEngulfing, patterns.ShootingStar:
		score -= 2
	}

	switch label {
	case sentiment.Positive:
		score += 0.5
	case sentiment.Negative:
		score -= 0.5
	}

	switch {
	case score >= 2:
		return DecisionBuy
	case score <= -2:
		return DecisionSell
	default:
		return DecisionHold
	}
}
