package trader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexroth/tradebot/broker"
	"github.com/alexroth/tradebot/indicators"
	"github.com/alexroth/tradebot/journal"
	"github.com/alexroth/tradebot/market"
	"github.com/alexroth/tradebot/sentiment"
)

type fakeBroker struct {
	mu        sync.Mutex
	cash      float64
	clock     broker.Clock
	positions map[string]broker.PositionSnapshot
	orders    []broker.MarketOrderRequest
	// track makes fills update the held position, so a second buy signal
	// sees the long and backs off.
	track bool
}

func newFakeBroker(cash float64) *fakeBroker {
	return &fakeBroker{
		cash:      cash,
		clock:     broker.Clock{IsOpen: true},
		positions: make(map[string]broker.PositionSnapshot),
		track:     true,
	}
}

func (b *fakeBroker) GetAccount(context.Context) (broker.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return broker.Account{ID: "FAKE", Currency: "USD", Cash: b.cash}, nil
}

func (b *fakeBroker) GetPosition(_ context.Context, symbol string) (broker.PositionSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pos, ok := b.positions[symbol]
	if !ok || pos.Qty == 0 {
		return broker.PositionSnapshot{}, broker.ErrNoPosition
	}
	return pos, nil
}

func (b *fakeBroker) GetAllPositions(context.Context) ([]broker.PositionSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []broker.PositionSnapshot
	for _, pos := range b.positions {
		out = append(out, pos)
	}
	return out, nil
}

func (b *fakeBroker) SubmitMarketOrder(_ context.Context, req broker.MarketOrderRequest) (broker.OrderAck, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = append(b.orders, req)
	if b.track {
		pos := b.positions[req.Symbol]
		pos.Symbol = req.Symbol
		if req.Side == broker.SideBuy {
			pos.Qty += float64(req.Qty)
		} else {
			pos.Qty -= float64(req.Qty)
		}
		b.positions[req.Symbol] = pos
	}
	return broker.OrderAck{
		OrderID:  fmt.Sprintf("ORD-%d", len(b.orders)),
		Symbol:   req.Symbol,
		Qty:      req.Qty,
		Side:     req.Side,
		Accepted: time.Now(),
	}, nil
}

func (b *fakeBroker) GetClock(context.Context) (broker.Clock, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clock, nil
}

func (b *fakeBroker) setClock(c broker.Clock) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clock = c
}

type fakeBars struct {
	bars []market.Bar
}

func (f fakeBars) GetRecentBars(context.Context, string, time.Duration, time.Duration) ([]market.Bar, error) {
	return f.bars, nil
}

type fakeStream struct {
	ch         chan market.Tick
	subscribes atomic.Int32
}

func (s *fakeStream) Subscribe(context.Context, string) (<-chan market.Tick, error) {
	s.subscribes.Add(1)
	return s.ch, nil
}

func (s *fakeStream) Close() error { return nil }

type memStore struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (m *memStore) Append(e journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) all() []journal.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]journal.Entry(nil), m.entries...)
}

// bullishWindow ends in a bullish engulfing, worth +2 on its own.
func bullishWindow() []market.Bar {
	base := time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC)
	return []market.Bar{
		{Time: base, Open: 101, High: 103, Low: 100, Close: 102, Volume: 100},
		{Time: base.Add(5 * time.Minute), Open: 102, High: 102.5, Low: 99.5, Close: 100, Volume: 100},
		{Time: base.Add(10 * time.Minute), Open: 99, High: 104, Low: 98.5, Close: 103, Volume: 100},
	}
}

func testOrchestrator(b *fakeBroker, stream *fakeStream, store *memStore, cache *sentiment.Cache) *Orchestrator {
	return New(Params{
		Symbol:   "TSLA",
		Broker:   b,
		Bars:     fakeBars{bars: bullishWindow()},
		Stream:   stream,
		Cache:    cache,
		Trend:    indicators.NewTrendSMA(2),
		Throttle: NewThrottle(30 * time.Second),
		Ledger:   journal.New(store, zerolog.Nop()),
		Logger:   zerolog.Nop(),
	})
}

func TestOrchestratorBuysOnBullishSignal(t *testing.T) {
	t.Parallel()

	b := newFakeBroker(1000)
	stream := &fakeStream{ch: make(chan market.Tick, 4)}
	store := &memStore{}
	cache := sentiment.NewCache()
	cache.Put(sentiment.Result{Probability: 0.99, Label: sentiment.Positive, ObservedAt: time.Now()})

	o := testOrchestrator(b, stream, store, cache)

	stream.ch <- market.Tick{Symbol: "TSLA", Price: 100, Time: time.Now()}
	stream.ch <- market.Tick{Symbol: "TSLA", Price: 101, Time: time.Now()}
	close(stream.ch)

	require.NoError(t, o.Run(context.Background()))
	assert.Equal(t, StateStopped, o.State())

	// Tick one already scores 2.5 (engulfing + positive sentiment); tick
	// two sees the long position and backs off.
	require.Len(t, b.orders, 1)
	assert.Equal(t, broker.SideBuy, b.orders[0].Side)
	assert.EqualValues(t, 10, b.orders[0].Qty)
	assert.NotEmpty(t, b.orders[0].ClientOrderID)

	entries := store.all()
	require.Len(t, entries, 1)
	assert.Equal(t, journal.ActionBuy, entries[0].Action)
	assert.InDelta(t, 1000, entries[0].InvestedUSD, 1e-9)
	assert.Equal(t, "positive", entries[0].Sentiment)
}

func TestOrchestratorStopsWhenSessionClosed(t *testing.T) {
	t.Parallel()

	b := newFakeBroker(1000)
	b.setClock(broker.Clock{IsOpen: false, NextOpen: time.Now().Add(time.Hour)})
	stream := &fakeStream{ch: make(chan market.Tick)}

	o := testOrchestrator(b, stream, &memStore{}, sentiment.NewCache())

	require.NoError(t, o.Run(context.Background()))
	assert.Equal(t, StateStopped, o.State())
	assert.Zero(t, stream.subscribes.Load(), "closed session must not subscribe")
}

func TestOrchestratorReconcilesExistingShort(t *testing.T) {
	t.Parallel()

	b := newFakeBroker(1000)
	b.positions["TSLA"] = broker.PositionSnapshot{Symbol: "TSLA", Qty: -5, AvgEntryPrice: 120}
	stream := &fakeStream{ch: make(chan market.Tick, 2)}
	store := &memStore{}
	cache := sentiment.NewCache()
	cache.Put(sentiment.Result{Probability: 0.99, Label: sentiment.Positive, ObservedAt: time.Now()})

	o := testOrchestrator(b, stream, store, cache)

	stream.ch <- market.Tick{Symbol: "TSLA", Price: 100, Time: time.Now()}
	close(stream.ch)

	require.NoError(t, o.Run(context.Background()))

	require.Len(t, b.orders, 1)
	assert.Equal(t, broker.SideBuy, b.orders[0].Side)
	assert.EqualValues(t, 5, b.orders[0].Qty)

	entries := store.all()
	require.Len(t, entries, 2)
	assert.Equal(t, journal.ActionInitShort, entries[0].Action)
	assert.InDelta(t, 600, entries[0].InvestedUSD, 1e-9)

	assert.Equal(t, journal.ActionBuyClose, entries[1].Action)
	require.NotNil(t, entries[1].PnLUSD)
	// Shorted 5@120, covered 5@100.
	assert.InDelta(t, 100, *entries[1].PnLUSD, 1e-9)
}

func TestOrchestratorCooldownSuppressesSecondOrder(t *testing.T) {
	t.Parallel()

	b := newFakeBroker(1000)
	b.track = false
	stream := &fakeStream{ch: make(chan market.Tick, 4)}
	store := &memStore{}
	cache := sentiment.NewCache()
	cache.Put(sentiment.Result{Probability: 0.99, Label: sentiment.Positive, ObservedAt: time.Now()})

	o := testOrchestrator(b, stream, store, cache)

	// The broker never reports a position, so every tick re-decides buy.
	// Only the cooldown stands between the ticks and a second order.
	stream.ch <- market.Tick{Symbol: "TSLA", Price: 100, Time: time.Now()}
	stream.ch <- market.Tick{Symbol: "TSLA", Price: 101, Time: time.Now()}
	stream.ch <- market.Tick{Symbol: "TSLA", Price: 102, Time: time.Now()}
	close(stream.ch)

	require.NoError(t, o.Run(context.Background()))
	assert.Len(t, b.orders, 1)
}

func TestOrchestratorSkipsWithoutCapital(t *testing.T) {
	t.Parallel()

	b := newFakeBroker(50)
	stream := &fakeStream{ch: make(chan market.Tick, 2)}
	store := &memStore{}
	cache := sentiment.NewCache()
	cache.Put(sentiment.Result{Probability: 0.99, Label: sentiment.Positive, ObservedAt: time.Now()})

	o := testOrchestrator(b, stream, store, cache)

	stream.ch <- market.Tick{Symbol: "TSLA", Price: 100, Time: time.Now()}
	close(stream.ch)

	require.NoError(t, o.Run(context.Background()))
	assert.Empty(t, b.orders)
	assert.Empty(t, store.all())
}
