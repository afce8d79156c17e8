package market

import "time"

// Tick is a single real-time trade event for a symbol.
type Tick struct {
	Symbol string
	Price  float64
	Size   float64
	Time   time.Time
}
