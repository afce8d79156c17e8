// Package journal is the append-only trade ledger: every order action is
// recorded together with the signal context that produced it, and per-symbol
// invested capital and realized PnL are tracked across open/close pairs.
package journal

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexroth/tradebot/pkg/id"
)

// Action is the kind of a recorded order action.
type Action string

const (
	ActionBuy       Action = "BUY"
	ActionBuyClose  Action = "BUY-CLOSE"
	ActionSell      Action = "SELL"
	ActionSellClose Action = "SELL-CLOSE"
	ActionSellOpen  Action = "SELL-OPEN"

	// Init actions reconcile a position that already existed at startup.
	ActionInitLong  Action = "INIT-LONG"
	ActionInitShort Action = "INIT-SHORT"
)

// Opening reports whether the action establishes a position.
func (a Action) Opening() bool {
	return a == ActionBuy || a == ActionSellOpen
}

// Closing reports whether the action unwinds a position.
func (a Action) Closing() bool {
	return a == ActionBuyClose || a == ActionSellClose
}

// Init reports whether the action records a pre-existing position.
func (a Action) Init() bool {
	return a == ActionInitLong || a == ActionInitShort
}

// Entry is one ledger row. PnLUSD is only set on closing actions.
type Entry struct {
	ID          string
	Time        time.Time
	Action      Action
	Symbol      string
	Qty         float64
	Price       float64
	Sentiment   string
	Trend       string
	InvestedUSD float64
	PnLUSD      *float64
	CashAfter   float64
}

// OpenPosition is the ledger's record of an open trade for a symbol.
type OpenPosition struct {
	Symbol      string
	Qty         float64
	Price       float64
	InvestedUSD float64
}

// Store persists ledger rows. Rows are appended exactly once and never
// edited afterwards.
type Store interface {
	Append(Entry) error
	Close() error
}

// Ledger owns the open-position bookkeeping on top of a Store. It is safe
// for concurrent use, although the live loop serializes all writes.
type Ledger struct {
	mu        sync.Mutex
	store     Store
	positions map[string]OpenPosition
	log       zerolog.Logger
}

// New returns a ledger writing through to store.
func New(store Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		store:     store,
		positions: make(map[string]OpenPosition),
		log:       log.With().Str("component", "ledger").Logger(),
	}
}

// Log appends one entry. Opening actions (BUY, SELL-OPEN) record the
// invested capital and create the symbol's open-position record; closing
// actions (SELL-CLOSE, BUY-CLOSE) compute realized PnL against that record
// and remove it. Closing without a matching record is a data-integrity
// warning and proceeds with invested = 0. Init actions seed both the entry
// and the open-position record from the brokerage snapshot.
func (l *Ledger) Log(action Action, symbol string, qty, price float64, sentimentLabel, trendLabel string, cash float64) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		ID:        id.New(),
		Time:      time.Now().UTC(),
		Action:    action,
		Symbol:    symbol,
		Qty:       qty,
		Price:     price,
		Sentiment: sentimentLabel,
		Trend:     trendLabel,
		CashAfter: cash,
	}

	switch {
	case action.Opening(), action.Init():
		e.InvestedUSD = round2(qty * price)
		l.positions[symbol] = OpenPosition{
			Symbol:      symbol,
			Qty:         qty,
			Price:       price,
			InvestedUSD: e.InvestedUSD,
		}

	case action.Closing():
		rec, ok := l.positions[symbol]
		if !ok {
			l.log.Warn().
				Str("symbol", symbol).
				Str("action", string(action)).
				Msg("closing entry with no matching open record")
		}
		e.InvestedUSD = rec.InvestedUSD

		var pnl float64
		if action == ActionSellClose {
			pnl = round2(qty*price - e.InvestedUSD)
		} else {
			// Covering a short: profit when the buyback is cheaper.
			pnl = round2(e.InvestedUSD - qty*price)
		}
		e.PnLUSD = &pnl
		delete(l.positions, symbol)
	}

	if err := l.store.Append(e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// OpenPositions returns a copy of the current open-position records.
func (l *Ledger) OpenPositions() map[string]OpenPosition {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]OpenPosition, len(l.positions))
	for k, v := range l.positions {
		out[k] = v
	}
	return out
}

// Close flushes and closes the underlying store.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Close()
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
