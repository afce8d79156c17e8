// Package patterns classifies short candlestick windows into reversal shapes.
package patterns

import "github.com/alexroth/tradebot/market"

// Pattern is a closed set of candlestick shapes over the last three bars.
type Pattern string

const (
	BullishEngulfing Pattern = "bullish_engulfing"
	BearishEngulfing Pattern = "bearish_engulfing"
	Hammer           Pattern = "hammer"
	ShootingStar     Pattern = "shooting_star"
	MorningStar      Pattern = "morning_star"
	Neutral          Pattern = "neutral"
)

// Classify inspects exactly the last three bars of the series, oldest to
// newest, and returns the first matching pattern. Rules are checked in a
// fixed order, so a window satisfying several shapes always resolves the
// same way. Fewer than three bars classifies as Neutral.
func Classify(bars []market.Bar) Pattern {
	if len(bars) < 3 {
		return Neutral
	}
	c1 := bars[len(bars)-3]
	c2 := bars[len(bars)-2]
	c3 := bars[len(bars)-1]

	if isBullishEngulfing(c2, c3) {
		return BullishEngulfing
	}
	if isBearishEngulfing(c2, c3) {
		return BearishEngulfing
	}

	body := c3.Body()
	lower := c3.LowerShadow()
	upper := c3.UpperShadow()

	if lower > 2*body && upper < body {
		return Hammer
	}
	if upper > 2*body && lower < body {
		return ShootingStar
	}

	if isMorningStar(c1, c2, c3) {
		return MorningStar
	}

	return Neutral
}

// isBullishEngulfing: bearish candle followed by a bullish candle whose body
// strictly contains the previous body.
func isBullishEngulfing(c2, c3 market.Bar) bool {
	if !c2.Bearish() || !c3.Bullish() {
		return false
	}
	return c3.Close > c2.Open && c3.Open < c2.Close
}

// isBearishEngulfing mirrors the bullish case with the roles reversed.
func isBearishEngulfing(c2, c3 market.Bar) bool {
	if !c2.Bullish() || !c3.Bearish() {
		return false
	}
	return c3.Open > c2.Close && c3.Close < c2.Open
}

// isMorningStar: a bearish candle, a small-bodied middle candle, then a
// bullish candle closing above the midpoint of the first candle's body.
func isMorningStar(c1, c2, c3 market.Bar) bool {
	if !c1.Bearish() || !c3.Bullish() {
		return false
	}
	if c2.Body() >= 0.5*c1.Body() {
		return false
	}
	return c3.Close > (c1.Open+c1.Close)/2
}
