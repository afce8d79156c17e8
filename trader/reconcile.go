package trader

import (
	"math"

	"github.com/alexroth/tradebot/broker"
	"github.com/alexroth/tradebot/journal"
)

// Skip explains why a decision produced no order.
type Skip string

const (
	SkipNone Skip = ""
	// SkipHold: the decision was hold.
	SkipHold Skip = "hold"
	// SkipAlreadyLong: buy signal while already long.
	SkipAlreadyLong Skip = "already-positioned"
	// SkipShortConflict: sell signal while already short. Treated as an
	// inconsistent signal and never increases the short.
	SkipShortConflict Skip = "short-conflict"
	// SkipNoCapital: available cash buys less than one share.
	SkipNoCapital Skip = "insufficient-capital"
)

// OrderAction is a concrete, sized order derived from a decision. Qty is
// always a positive integer; direction is carried by Side and Kind.
type OrderAction struct {
	Kind   journal.Action
	Side   broker.Side
	Symbol string
	Qty    int64
	Price  float64
}

// Reconcile maps a decision onto the live position:
//
//	buy  + short → BUY-CLOSE |qty|
//	buy  + flat  → BUY floor(cash/price)
//	buy  + long  → no-op
//	sell + long  → SELL-CLOSE qty
//	sell + flat  → SELL-OPEN floor(cash/price)
//	sell + short → no-op, inconsistent signal
//	hold + any   → no-op
//
// Zero-quantity opens are suppressed with SkipNoCapital. The position is the
// brokerage snapshot for this cycle only; callers re-query before every call.
func Reconcile(d Decision, pos broker.PositionSnapshot, cash, price float64, symbol string) (OrderAction, Skip) {
	switch d {
	case DecisionBuy:
		if pos.Short() {
			return OrderAction{
				Kind:   journal.ActionBuyClose,
				Side:   broker.SideBuy,
				Symbol: symbol,
				Qty:    int64(math.Abs(pos.Qty)),
				Price:  price,
			}, SkipNone
		}
		if pos.Long() {
			return OrderAction{}, SkipAlreadyLong
		}
		qty := affordable(cash, price)
		if qty <= 0 {
			return OrderAction{}, SkipNoCapital
		}
		return OrderAction{
			Kind:   journal.ActionBuy,
			Side:   broker.SideBuy,
			Symbol: symbol,
			Qty:    qty,
			Price:  price,
		}, SkipNone

	case DecisionSell:
		if pos.Long() {
			return OrderAction{
				Kind:   journal.ActionSellClose,
				Side:   broker.SideSell,
				Symbol: symbol,
				Qty:    int64(pos.Qty),
				Price:  price,
			}, SkipNone
		}
		if pos.Short() {
			return OrderAction{}, SkipShortConflict
		}
		qty := affordable(cash, price)
		if qty <= 0 {
			return OrderAction{}, SkipNoCapital
		}
		return OrderAction{
			Kind:   journal.ActionSellOpen,
			Side:   broker.SideSell,
			Symbol: symbol,
			Qty:    qty,
			Price:  price,
		}, SkipNone
	}

	return OrderAction{}, SkipHold
}

func affordable(cash, price float64) int64 {
	if price <= 0 {
		return 0
	}
	return int64(math.Floor(cash / price))
}
