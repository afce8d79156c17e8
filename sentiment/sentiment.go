// Package sentiment holds the news-sentiment result and the single-slot
// cache shared between the refresh loop and the decision loop.
package sentiment

import (
	"sync"
	"time"
)

// Label is the dominant sentiment class of a batch of headlines.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// Result is one classification pass over a batch of texts: the averaged
// probability of the dominant class and when it was observed. Results are
// replaced wholesale, never merged.
type Result struct {
	Probability float64
	Label       Label
	ObservedAt  time.Time
}

// Cache is a single-slot mailbox: one writer replaces the value, any number
// of readers snapshot it. Latest value always wins; there is no queue.
type Cache struct {
	mu  sync.RWMutex
	res Result
	ok  bool
}

func NewCache() *Cache {
	return &Cache{}
}

// Put replaces the cached result atomically.
func (c *Cache) Put(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.res = r
	c.ok = true
}

// Get returns the cached result and whether one has been stored yet.
func (c *Cache) Get() (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.res, c.ok
}

// Snapshot returns the cached result, or a neutral placeholder while no
// refresh has completed. Decision cycles read this once and keep the copy.
func (c *Cache) Snapshot() Result {
	if r, ok := c.Get(); ok {
		return r
	}
	return Result{Probability: 0.5, Label: Neutral}
}
