package trader

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexroth/tradebot/broker"
)

// DefaultSessionInterval is how often the exchange clock is polled while the
// loop is running.
const DefaultSessionInterval = time.Minute

// SessionMonitor polls the exchange clock and stops the orchestrator when
// the session closes. A failed poll is logged and retried on the next tick;
// it never stops the loop by itself.
type SessionMonitor struct {
	broker   broker.Broker
	interval time.Duration
	log      zerolog.Logger
}

func NewSessionMonitor(b broker.Broker, interval time.Duration, log zerolog.Logger) *SessionMonitor {
	if interval <= 0 {
		interval = DefaultSessionInterval
	}
	return &SessionMonitor{
		broker:   b,
		interval: interval,
		log:      log.With().Str("component", "session-monitor").Logger(),
	}
}

// Run polls until ctx is cancelled or the session closes. On close it calls
// stop, which cancels the tick subscription, and returns.
func (m *SessionMonitor) Run(ctx context.Context, stop context.CancelFunc) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			clock, err := m.broker.GetClock(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				m.log.Warn().Err(err).Msg("clock poll failed")
				continue
			}
			if !clock.IsOpen {
				m.log.Info().
					Time("next_open", clock.NextOpen).
					Msg("session closed, stopping")
				stop()
				return
			}
		}
	}
}
