package trader

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexroth/tradebot/broker"
	"github.com/alexroth/tradebot/indicators"
	"github.com/alexroth/tradebot/journal"
	"github.com/alexroth/tradebot/market"
	"github.com/alexroth/tradebot/news"
	"github.com/alexroth/tradebot/patterns"
	"github.com/alexroth/tradebot/pkg/id"
	"github.com/alexroth/tradebot/sentiment"
)

// State is the orchestrator lifecycle state.
type State int32

const (
	StateInit State = iota
	StateAwaitingOpen
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAwaitingOpen:
		return "awaiting-open"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Params wires the orchestrator's collaborators. Broker, Bars, Stream,
// Cache, and Ledger are required; the rest default sensibly.
type Params struct {
	Symbol string

	Broker broker.Broker
	Bars   broker.BarSource
	Stream broker.TickStream

	Watcher *news.Watcher
	Cache   *sentiment.Cache
	Monitor *SessionMonitor

	Trend    *indicators.TrendSMA
	Throttle *Throttle
	Ledger   *journal.Ledger

	// BarLookback and BarInterval shape the refresh window fed to the
	// pattern classifier.
	BarLookback time.Duration
	BarInterval time.Duration

	Logger zerolog.Logger
}

// Orchestrator is the top-level driver of the live loop. Ticks are consumed
// one at a time; the news watcher and session monitor run beside it and only
// touch state built for concurrent access (the sentiment cache, the context).
type Orchestrator struct {
	symbol string

	broker broker.Broker
	bars   broker.BarSource
	stream broker.TickStream

	watcher *news.Watcher
	cache   *sentiment.Cache
	monitor *SessionMonitor

	trend    *indicators.TrendSMA
	throttle *Throttle
	ledger   *journal.Ledger

	barLookback time.Duration
	barInterval time.Duration

	log zerolog.Logger

	state atomic.Int32

	// window and lastDecision are touched only by the serialized tick flow.
	window       []market.Bar
	lastDecision Decision
}

// New builds an orchestrator from params.
func New(p Params) *Orchestrator {
	if p.Trend == nil {
		p.Trend = indicators.NewTrendSMA(20)
	}
	if p.Throttle == nil {
		p.Throttle = NewThrottle(DefaultCooldown)
	}
	if p.BarLookback <= 0 {
		p.BarLookback = time.Hour
	}
	if p.BarInterval <= 0 {
		p.BarInterval = 5 * time.Minute
	}
	return &Orchestrator{
		symbol:      p.Symbol,
		broker:      p.Broker,
		bars:        p.Bars,
		stream:      p.Stream,
		watcher:     p.Watcher,
		cache:       p.Cache,
		monitor:     p.Monitor,
		trend:       p.Trend,
		throttle:    p.Throttle,
		ledger:      p.Ledger,
		barLookback: p.BarLookback,
		barInterval: p.BarInterval,
		log:         p.Logger.With().Str("component", "orchestrator").Str("symbol", p.Symbol).Logger(),
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	prev := State(o.state.Swap(int32(s)))
	if prev != s {
		o.log.Info().Stringer("from", prev).Stringer("to", s).Msg("state change")
	}
}

// Run drives the session to completion: reconcile pre-existing positions,
// wait out a closed session, then consume ticks until the stream ends or
// ctx is cancelled. It blocks until both background loops have joined.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.setState(StateInit)
	o.reconcileExisting(ctx)

	o.setState(StateAwaitingOpen)
	clock, err := o.broker.GetClock(ctx)
	if err != nil {
		o.setState(StateStopped)
		return fmt.Errorf("session check: %w", err)
	}
	if !clock.IsOpen {
		o.log.Info().Time("next_open", clock.NextOpen).Msg("session closed, not subscribing")
		o.setState(StateStopped)
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticks, err := o.stream.Subscribe(ctx, o.symbol)
	if err != nil {
		o.setState(StateStopped)
		return fmt.Errorf("subscribe %s: %w", o.symbol, err)
	}

	o.setState(StateRunning)

	var wg sync.WaitGroup
	if o.watcher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.watcher.Run(ctx)
		}()
	}
	if o.monitor != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.monitor.Run(ctx, cancel)
		}()
	}

	for tick := range ticks {
		o.onTick(ctx, tick)
	}

	cancel()
	wg.Wait()
	o.setState(StateStopped)
	o.log.Info().Msg("session over")
	return nil
}

// reconcileExisting records any position already held at the brokerage as an
// init ledger entry, seeding the open-position bookkeeping so a later close
// settles against real invested capital.
func (o *Orchestrator) reconcileExisting(ctx context.Context) {
	positions, err := o.broker.GetAllPositions(ctx)
	if err != nil {
		o.log.Warn().Err(err).Msg("position reconciliation failed, ledger starts empty")
		return
	}
	if len(positions) == 0 {
		return
	}

	cash := 0.0
	if acct, err := o.broker.GetAccount(ctx); err == nil {
		cash = acct.Cash
	} else {
		o.log.Warn().Err(err).Msg("account fetch failed during reconciliation")
	}

	for _, pos := range positions {
		action := journal.ActionInitLong
		if pos.Short() {
			action = journal.ActionInitShort
		}
		if _, err := o.ledger.Log(action, pos.Symbol, math.Abs(pos.Qty), pos.AvgEntryPrice, "init", "init", cash); err != nil {
			o.log.Error().Err(err).Str("symbol", pos.Symbol).Msg("init ledger write failed")
			continue
		}
		o.log.Info().
			Str("symbol", pos.Symbol).
			Float64("qty", pos.Qty).
			Float64("avg_entry", pos.AvgEntryPrice).
			Msg("reconciled existing position")
	}
}

// onTick runs one full decision cycle. Trend, pattern, and sentiment are
// read once at the top and frozen for the cycle.
func (o *Orchestrator) onTick(ctx context.Context, tick market.Tick) {
	o.refreshBars(ctx)
	o.trend.Update(tick.Price)

	trend := o.trend.Trend()
	pattern := patterns.Classify(o.window)
	senti := o.cache.Snapshot()

	decision := Decide(trend, pattern, senti.Label)
	if decision != o.lastDecision {
		o.log.Info().
			Str("decision", string(decision)).
			Str("trend", string(trend)).
			Str("pattern", string(pattern)).
			Str("sentiment", string(senti.Label)).
			Float64("price", tick.Price).
			Msg("decision change")
		o.lastDecision = decision
	}
	if decision == DecisionHold {
		return
	}

	pos, err := o.broker.GetPosition(ctx, o.symbol)
	if err != nil && !errors.Is(err, broker.ErrNoPosition) {
		o.log.Warn().Err(err).Msg("position fetch failed, skipping cycle")
		return
	}
	acct, err := o.broker.GetAccount(ctx)
	if err != nil {
		o.log.Warn().Err(err).Msg("account fetch failed, skipping cycle")
		return
	}

	action, skip := Reconcile(decision, pos, acct.Cash, tick.Price, o.symbol)
	switch skip {
	case SkipNone:
	case SkipShortConflict:
		o.log.Warn().
			Float64("position_qty", pos.Qty).
			Msg("sell signal while short, no action")
		return
	case SkipNoCapital:
		o.log.Info().
			Float64("cash", acct.Cash).
			Float64("price", tick.Price).
			Msg("insufficient capital for one share")
		return
	default:
		o.log.Debug().Str("skip", string(skip)).Msg("no action")
		return
	}

	now := time.Now()
	if !o.throttle.Allow(now) {
		o.log.Debug().Str("action", string(action.Kind)).Msg("cooldown active, order suppressed")
		return
	}

	ack, err := o.broker.SubmitMarketOrder(ctx, broker.MarketOrderRequest{
		Symbol:        action.Symbol,
		Qty:           action.Qty,
		Side:          action.Side,
		ClientOrderID: id.New(),
	})
	if err != nil {
		o.log.Error().Err(err).
			Str("action", string(action.Kind)).
			Int64("qty", action.Qty).
			Msg("order submission failed")
		return
	}
	o.throttle.Mark(now)

	notional := float64(action.Qty) * action.Price
	cashAfter := acct.Cash - notional
	if action.Side == broker.SideSell {
		cashAfter = acct.Cash + notional
	}

	if _, err := o.ledger.Log(action.Kind, action.Symbol, float64(action.Qty), action.Price,
		string(senti.Label), string(trend), cashAfter); err != nil {
		o.log.Error().Err(err).Str("order_id", ack.OrderID).Msg("ledger write failed")
		return
	}

	o.log.Info().
		Str("action", string(action.Kind)).
		Int64("qty", action.Qty).
		Float64("price", action.Price).
		Str("order_id", ack.OrderID).
		Msg("order submitted")
}

// refreshBars re-pulls the recent bar window. On failure the previous window
// stays in effect for this cycle.
func (o *Orchestrator) refreshBars(ctx context.Context) {
	bars, err := o.bars.GetRecentBars(ctx, o.symbol, o.barLookback, o.barInterval)
	if err != nil {
		o.log.Warn().Err(err).Msg("bar refresh failed, using stale window")
		return
	}
	o.window = bars
}
