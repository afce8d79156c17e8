package market

import "time"

// Bar is one OHLCV sample for a fixed interval. A bar series is chronological
// and immutable once appended.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the bar closed below its open.
func (b Bar) Bearish() bool { return b.Close < b.Open }

// Body returns the absolute size of the open-to-close body.
func (b Bar) Body() float64 {
	if b.Close > b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

// LowerShadow returns the wick below the body.
func (b Bar) LowerShadow() float64 { return min(b.Open, b.Close) - b.Low }

// UpperShadow returns the wick above the body.
func (b Bar) UpperShadow() float64 { return b.High - max(b.Open, b.Close) }

// Tail returns the last n bars, or all of them when fewer are available.
func Tail(bars []Bar, n int) []Bar {
	if len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}
