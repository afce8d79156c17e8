// Package broker defines the brokerage and market-data boundaries consumed
// by the live trading loop. Implementations live in subpackages; tests
// substitute fakes.
package broker

import (
	"context"
	"errors"
	"time"

	"github.com/alexroth/tradebot/market"
)

// Side is the direction of a market order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

var (
	// ErrNoPosition is returned by GetPosition when the account holds no
	// open position for the symbol.
	ErrNoPosition = errors.New("broker: no open position")

	// ErrOrderRejected is returned when the brokerage refuses an order.
	ErrOrderRejected = errors.New("broker: order rejected")
)

// Account is the subset of account state the decision loop needs.
type Account struct {
	ID       string
	Currency string
	Cash     float64
}

// PositionSnapshot is the authoritative brokerage position for a symbol.
// Qty is signed: negative means short. Snapshots are never cached across
// decision cycles; always re-query before acting.
type PositionSnapshot struct {
	Symbol        string
	Qty           float64
	AvgEntryPrice float64
}

func (p PositionSnapshot) Long() bool  { return p.Qty > 0 }
func (p PositionSnapshot) Short() bool { return p.Qty < 0 }

// Clock reports the exchange session state for the traded symbol.
type Clock struct {
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// MarketOrderRequest is a plain market order. Qty is always positive; the
// direction is carried by Side.
type MarketOrderRequest struct {
	Symbol        string
	Qty           int64
	Side          Side
	ClientOrderID string
}

// OrderAck is the brokerage acknowledgement of a submitted order.
type OrderAck struct {
	OrderID  string
	Symbol   string
	Qty      int64
	Side     Side
	Accepted time.Time
}

// Broker is the brokerage execution/account boundary.
type Broker interface {
	GetAccount(ctx context.Context) (Account, error)
	// GetPosition returns ErrNoPosition when the account is flat.
	GetPosition(ctx context.Context, symbol string) (PositionSnapshot, error)
	GetAllPositions(ctx context.Context) ([]PositionSnapshot, error)
	SubmitMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderAck, error)
	GetClock(ctx context.Context) (Clock, error)
}

// BarSource retrieves recent historical bars for a symbol.
type BarSource interface {
	// GetRecentBars returns bars covering the lookback window at the given
	// interval, oldest first.
	GetRecentBars(ctx context.Context, symbol string, lookback, interval time.Duration) ([]market.Bar, error)
}

// TickStream delivers live trade events. The returned channel is closed when
// ctx is cancelled or the upstream connection is lost; consumers treat a
// closed channel as the end of the session.
type TickStream interface {
	Subscribe(ctx context.Context, symbol string) (<-chan market.Tick, error)
	Close() error
}
