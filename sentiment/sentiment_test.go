package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSnapshotDefault(t *testing.T) {
	t.Parallel()

	c := NewCache()

	_, ok := c.Get()
	assert.False(t, ok)

	snap := c.Snapshot()
	assert.Equal(t, Neutral, snap.Label)
	assert.InDelta(t, 0.5, snap.Probability, 1e-9)
}

func TestCacheLatestWins(t *testing.T) {
	t.Parallel()

	c := NewCache()
	c.Put(Result{Probability: 0.6, Label: Positive})
	c.Put(Result{Probability: 0.8, Label: Negative})

	got, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, Negative, got.Label)
	assert.InDelta(t, 0.8, got.Probability, 1e-9)
}

func TestCacheConcurrentReaders(t *testing.T) {
	t.Parallel()

	c := NewCache()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.Put(Result{Probability: 0.7, Label: Positive, ObservedAt: time.Now()})
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				snap := c.Snapshot()
				// Readers never observe a torn tuple.
				if snap.Label == Positive {
					assert.InDelta(t, 0.7, snap.Probability, 1e-9)
				}
			}
		}()
	}
	wg.Wait()
}

func TestHTTPClassifier(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/classify", r.URL.Path)

		var req classifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Texts, 2)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(classifyResponse{Probability: 0.91, Label: "positive"})
	}))
	defer srv.Close()

	hc := NewHTTPClassifier(srv.URL, 5*time.Second)
	res, err := hc.Classify(context.Background(), []string{"stock soars", "record earnings"})
	require.NoError(t, err)

	assert.Equal(t, Positive, res.Label)
	assert.InDelta(t, 0.91, res.Probability, 1e-9)
	assert.False(t, res.ObservedAt.IsZero())
}

func TestHTTPClassifierBadLabel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(classifyResponse{Probability: 0.5, Label: "confused"})
	}))
	defer srv.Close()

	hc := NewHTTPClassifier(srv.URL, 5*time.Second)
	_, err := hc.Classify(context.Background(), []string{"headline"})
	assert.Error(t, err)
}

func TestHTTPClassifierEmptyBatch(t *testing.T) {
	t.Parallel()

	hc := NewHTTPClassifier("http://localhost:0", time.Second)
	_, err := hc.Classify(context.Background(), nil)
	assert.Error(t, err)
}
