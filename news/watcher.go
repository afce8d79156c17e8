package news

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexroth/tradebot/sentiment"
)

// Watcher polls a headline source on a fixed interval and, when the
// headline set changes, classifies the batch and replaces the sentiment
// cache. Poll failures are logged and skipped; the previous cached value
// stays in effect.
type Watcher struct {
	source     Source
	classifier sentiment.Classifier
	cache      *sentiment.Cache
	query      string
	interval   time.Duration
	log        zerolog.Logger

	last map[string]struct{}
}

// NewWatcher wires a source and classifier to the shared cache.
func NewWatcher(src Source, cl sentiment.Classifier, cache *sentiment.Cache, query string, interval time.Duration, log zerolog.Logger) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Watcher{
		source:     src,
		classifier: cl,
		cache:      cache,
		query:      query,
		interval:   interval,
		log:        log.With().Str("component", "news-watcher").Logger(),
	}
}

// Run polls until ctx is cancelled. The first poll happens immediately so
// the decision loop is not stuck on the neutral default for a full interval.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	headlines, err := w.source.Headlines(pctx, w.query)
	if err != nil {
		w.log.Warn().Err(err).Msg("headline fetch failed, keeping cached sentiment")
		return
	}

	set := toSet(headlines)
	if equalSets(set, w.last) {
		return
	}

	res, err := w.classifier.Classify(pctx, headlines)
	if err != nil {
		// Leave w.last untouched so the batch is retried next cycle.
		w.log.Warn().Err(err).Msg("sentiment classification failed")
		return
	}

	w.cache.Put(res)
	w.last = set
	w.log.Info().
		Str("label", string(res.Label)).
		Float64("probability", res.Probability).
		Int("headlines", len(headlines)).
		Msg("sentiment refreshed")
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func equalSets(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
