package trader

import "time"

// DefaultCooldown is the minimum spacing between two order submissions for
// the traded symbol.
const DefaultCooldown = 30 * time.Second

// Throttle enforces the order cooldown. It is not internally locked: the
// tick loop is the only writer and processes ticks one at a time.
type Throttle struct {
	cooldown time.Duration
	last     time.Time
}

func NewThrottle(cooldown time.Duration) *Throttle {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Throttle{cooldown: cooldown}
}

// Allow reports whether an order may be submitted at now. The first order
// is always allowed.
func (t *Throttle) Allow(now time.Time) bool {
	return t.last.IsZero() || now.Sub(t.last) >= t.cooldown
}

// Mark records a successful submission. Only call after the brokerage
// accepted the order.
func (t *Throttle) Mark(now time.Time) {
	t.last = now
}
