package trader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexroth/tradebot/indicators"
	"github.com/alexroth/tradebot/patterns"
	"github.com/alexroth/tradebot/sentiment"
)

func TestDecideScoring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		trend   indicators.Trend
		pattern patterns.Pattern
		label   sentiment.Label
		want    Decision
	}{
		// 1 + 2 + 0.5 = 3.5
		{"up hammer positive", indicators.TrendUp, patterns.Hammer, sentiment.Positive, DecisionBuy},
		// −1 − 2 + 0 = −3
		{"down shooting star neutral", indicators.TrendDown, patterns.ShootingStar, sentiment.Neutral, DecisionSell},
		// 1 + 0 − 0.5 = 0.5
		{"up neutral negative", indicators.TrendUp, patterns.Neutral, sentiment.Negative, DecisionHold},
		// 0 + 2 + 0 = 2, boundary inclusive
		{"no-signal bullish engulfing neutral", indicators.TrendNone, patterns.BullishEngulfing, sentiment.Neutral, DecisionBuy},
		// −1 − 2 + 0.5 = −2.5
		{"down bearish engulfing positive", indicators.TrendDown, patterns.BearishEngulfing, sentiment.Positive, DecisionSell},
		// morning star scores 0
		{"up morning star negative", indicators.TrendUp, patterns.MorningStar, sentiment.Negative, DecisionHold},
		{"all quiet", indicators.TrendNone, patterns.Neutral, sentiment.Neutral, DecisionHold},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Decide(tt.trend, tt.pattern, tt.label))
		})
	}
}

func TestDecideIsPure(t *testing.T) {
	t.Parallel()

	first := Decide(indicators.TrendUp, patterns.Hammer, sentiment.Positive)
	second := Decide(indicators.TrendUp, patterns.Hammer, sentiment.Positive)
	assert.Equal(t, first, second)
}
