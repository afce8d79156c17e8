package patterns

import (
	"testing"

	"github.com/alexroth/tradebot/market"
	"github.com/stretchr/testify/assert"
)

func bar(o, h, l, c float64) market.Bar {
	return market.Bar{Open: o, High: h, Low: l, Close: c}
}

func TestClassifyBullishEngulfing(t *testing.T) {
	t.Parallel()

	bars := []market.Bar{
		bar(100, 101, 99, 100), // filler
		bar(102, 103, 99, 100), // bearish
		bar(99, 104, 98, 103),  // bullish, body contains previous body
	}
	assert.Equal(t, BullishEngulfing, Classify(bars))
}

func TestClassifyBearishEngulfing(t *testing.T) {
	t.Parallel()

	bars := []market.Bar{
		bar(100, 101, 99, 100),
		bar(100, 103, 99, 102),  // bullish
		bar(103, 104, 97, 99),   // bearish, opens above prior close, closes below prior open
	}
	assert.Equal(t, BearishEngulfing, Classify(bars))
}

func TestClassifyHammer(t *testing.T) {
	t.Parallel()

	bars := []market.Bar{
		bar(100, 101, 99, 100),
		bar(100, 101, 99, 100),
		bar(100, 101.5, 95, 101), // small body, long lower shadow
	}
	assert.Equal(t, Hammer, Classify(bars))
}

func TestClassifyShootingStar(t *testing.T) {
	t.Parallel()

	bars := []market.Bar{
		bar(100, 101, 99, 100),
		bar(100, 101, 99, 100),
		bar(101, 106, 100.5, 100), // small body, long upper shadow
	}
	assert.Equal(t, ShootingStar, Classify(bars))
}

func TestClassifyMorningStar(t *testing.T) {
	t.Parallel()

	bars := []market.Bar{
		bar(110, 111, 99, 100),     // big bearish
		bar(100, 100.5, 99, 100.2), // tiny body doji-ish middle
		bar(100, 109, 100, 108),    // bullish close above midpoint (105)
	}
	assert.Equal(t, MorningStar, Classify(bars))
}

func TestClassifyNeutral(t *testing.T) {
	t.Parallel()

	bars := []market.Bar{
		bar(100, 101, 99, 100.5),
		bar(100.5, 101.5, 100, 101),
		bar(101, 102, 100.5, 101.5),
	}
	assert.Equal(t, Neutral, Classify(bars))
}

func TestClassifyTooFewBars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Neutral, Classify(nil))
	assert.Equal(t, Neutral, Classify([]market.Bar{bar(1, 2, 0, 1), bar(1, 2, 0, 1)}))
}

// A window that satisfies both the engulfing and the hammer shape must
// resolve to the engulfing because rules are checked in order.
func TestClassifyPrecedence(t *testing.T) {
	t.Parallel()

	bars := []market.Bar{
		bar(100, 101, 99, 100),
		bar(100.6, 101, 100.3, 100.4), // small bearish
		bar(100.2, 100.9, 95, 100.7),  // bullish engulfing with a long lower wick
	}
	assert.Equal(t, BullishEngulfing, Classify(bars))
}
