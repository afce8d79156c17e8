package journal

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore collects entries in memory for ledger bookkeeping tests.
type memStore struct {
	entries []Entry
}

func (m *memStore) Append(e Entry) error { m.entries = append(m.entries, e); return nil }
func (m *memStore) Close() error         { return nil }

func newTestLedger() (*Ledger, *memStore) {
	store := &memStore{}
	return New(store, zerolog.Nop()), store
}

func TestLedgerRoundTripPnL(t *testing.T) {
	t.Parallel()

	l, store := newTestLedger()

	open, err := l.Log(ActionBuy, "TSLA", 10, 100, "positive", "up", 1000)
	require.NoError(t, err)
	assert.InDelta(t, 1000, open.InvestedUSD, 1e-9)
	assert.Nil(t, open.PnLUSD)
	assert.Contains(t, l.OpenPositions(), "TSLA")

	closeE, err := l.Log(ActionSellClose, "TSLA", 10, 110, "negative", "down", 2100)
	require.NoError(t, err)
	require.NotNil(t, closeE.PnLUSD)
	// 10×110 − 1000 = 100
	assert.InDelta(t, 100, *closeE.PnLUSD, 1e-9)
	assert.NotContains(t, l.OpenPositions(), "TSLA")

	assert.Len(t, store.entries, 2)
}

func TestLedgerShortCoverPnL(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger()

	_, err := l.Log(ActionSellOpen, "TSLA", 5, 200, "negative", "down", 1000)
	require.NoError(t, err)

	cover, err := l.Log(ActionBuyClose, "TSLA", 5, 180, "neutral", "up", 1100)
	require.NoError(t, err)
	require.NotNil(t, cover.PnLUSD)
	// invested 1000 − 5×180 = 100
	assert.InDelta(t, 100, *cover.PnLUSD, 1e-9)
}

func TestLedgerCloseWithoutOpenRecord(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger()

	e, err := l.Log(ActionSellClose, "TSLA", 10, 50, "neutral", "down", 500)
	require.NoError(t, err)
	assert.Zero(t, e.InvestedUSD)
	require.NotNil(t, e.PnLUSD)
	assert.InDelta(t, 500, *e.PnLUSD, 1e-9)
}

func TestLedgerInitSeedsOpenRecord(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger()

	_, err := l.Log(ActionInitLong, "TSLA", 20, 90, "init", "init", 0)
	require.NoError(t, err)

	rec, ok := l.OpenPositions()["TSLA"]
	require.True(t, ok)
	assert.InDelta(t, 1800, rec.InvestedUSD, 1e-9)

	// A later close settles against the reconciled record.
	closeE, err := l.Log(ActionSellClose, "TSLA", 20, 95, "neutral", "up", 1900)
	require.NoError(t, err)
	require.NotNil(t, closeE.PnLUSD)
	assert.InDelta(t, 100, *closeE.PnLUSD, 1e-9)
}

func TestActionPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, ActionBuy.Opening())
	assert.True(t, ActionSellOpen.Opening())
	assert.True(t, ActionSellClose.Closing())
	assert.True(t, ActionBuyClose.Closing())
	assert.True(t, ActionInitShort.Init())
	assert.False(t, ActionBuy.Closing())
	assert.False(t, ActionSellClose.Opening())
}
