// Package indicators provides streaming technical indicators for the live
// decision loop. Indicators are deterministic and safe to reuse in tests.
package indicators

import "fmt"

// Trend is the direction label produced by TrendSMA.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	// TrendNone means the window has not filled yet. It is a valid state,
	// not an error.
	TrendNone Trend = "no-signal"
)

// TrendSMA keeps a rolling buffer of close prices and compares the most
// recent price against the simple moving average of the window.
//
// A price exactly equal to the average reads as down: the comparison is
// strictly greater-than.
type TrendSMA struct {
	period int
	closes []float64
}

// NewTrendSMA returns a trend estimator over the given window size.
func NewTrendSMA(period int) *TrendSMA {
	if period <= 0 {
		period = 20
	}
	return &TrendSMA{
		period: period,
		closes: make([]float64, 0, period),
	}
}

func (t *TrendSMA) Name() string {
	return fmt.Sprintf("TrendSMA(%d)", t.period)
}

// Warmup returns how many updates are needed before Ready can be true.
func (t *TrendSMA) Warmup() int { return t.period }

// Reset clears all internal state.
func (t *TrendSMA) Reset() { t.closes = t.closes[:0] }

// Update consumes the next close price, evicting the oldest sample once the
// window is full.
func (t *TrendSMA) Update(close float64) {
	t.closes = append(t.closes, close)
	if len(t.closes) > t.period {
		t.closes = t.closes[1:]
	}
}

// Ready reports whether the window holds a full period of samples.
func (t *TrendSMA) Ready() bool { return len(t.closes) >= t.period }

// Value returns the simple moving average of the window, or 0 when not
// Ready. Callers should check Ready first.
func (t *TrendSMA) Value() float64 {
	if !t.Ready() {
		return 0
	}
	sum := 0.0
	for _, c := range t.closes {
		sum += c
	}
	return sum / float64(len(t.closes))
}

// Trend returns the direction of the latest price relative to the moving
// average, or TrendNone while the window is still filling.
func (t *TrendSMA) Trend() Trend {
	if !t.Ready() {
		return TrendNone
	}
	last := t.closes[len(t.closes)-1]
	if last > t.Value() {
		return TrendUp
	}
	return TrendDown
}
