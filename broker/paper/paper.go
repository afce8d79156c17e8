// Package paper is an in-memory broker.Broker used by tests and dry runs.
// Orders fill immediately at the last known price; cash and positions are
// tracked per symbol.
package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexroth/tradebot/broker"
	"github.com/alexroth/tradebot/pkg/id"
)

type Engine struct {
	mu        sync.Mutex
	acct      broker.Account
	positions map[string]broker.PositionSnapshot
	prices    map[string]float64
	clock     broker.Clock
	fills     []broker.OrderAck
}

// NewEngine starts a paper account with the given cash balance and an open
// session.
func NewEngine(cash float64) *Engine {
	return &Engine{
		acct: broker.Account{
			ID:       "PAPER-" + id.New(),
			Currency: "USD",
			Cash:     cash,
		},
		positions: make(map[string]broker.PositionSnapshot),
		prices:    make(map[string]float64),
		clock:     broker.Clock{IsOpen: true},
	}
}

// SetPrice sets the fill price for subsequent market orders on symbol.
func (e *Engine) SetPrice(symbol string, price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prices[symbol] = price
}

// SetClock overrides the session state returned by GetClock.
func (e *Engine) SetClock(c broker.Clock) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock = c
}

// SetPosition seeds a pre-existing position, as if carried over from an
// earlier session.
func (e *Engine) SetPosition(p broker.PositionSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.positions[p.Symbol] = p
}

// Fills returns every acknowledged order in submission order.
func (e *Engine) Fills() []broker.OrderAck {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]broker.OrderAck, len(e.fills))
	copy(out, e.fills)
	return out
}

func (e *Engine) GetAccount(ctx context.Context) (broker.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct, nil
}

func (e *Engine) GetPosition(ctx context.Context, symbol string) (broker.PositionSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.positions[symbol]
	if !ok || p.Qty == 0 {
		return broker.PositionSnapshot{}, broker.ErrNoPosition
	}
	return p, nil
}

func (e *Engine) GetAllPositions(ctx context.Context) ([]broker.PositionSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]broker.PositionSnapshot, 0, len(e.positions))
	for _, p := range e.positions {
		if p.Qty != 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (e *Engine) SubmitMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderAck, error) {
	if req.Qty <= 0 {
		return broker.OrderAck{}, fmt.Errorf("%w: non-positive qty %d", broker.ErrOrderRejected, req.Qty)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	price, ok := e.prices[req.Symbol]
	if !ok {
		return broker.OrderAck{}, fmt.Errorf("%w: no price for %q", broker.ErrOrderRejected, req.Symbol)
	}

	delta := float64(req.Qty)
	if req.Side == broker.SideSell {
		delta = -delta
	}

	pos := e.positions[req.Symbol]
	pos.Symbol = req.Symbol

	// Opening or increasing from flat records the entry price; cash moves by
	// the notional value either way.
	if pos.Qty == 0 {
		pos.AvgEntryPrice = price
	}
	pos.Qty += delta
	e.positions[req.Symbol] = pos
	e.acct.Cash -= delta * price

	ack := broker.OrderAck{
		OrderID:  id.New(),
		Symbol:   req.Symbol,
		Qty:      req.Qty,
		Side:     req.Side,
		Accepted: time.Now().UTC(),
	}
	e.fills = append(e.fills, ack)
	return ack, nil
}

func (e *Engine) GetClock(ctx context.Context) (broker.Clock, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock, nil
}
