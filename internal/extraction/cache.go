package extraction

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pantry/internal/model"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pantry_extraction_cache_hits_total",
		Help: "Extraction requests answered from the cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pantry_extraction_cache_misses_total",
		Help: "Extraction requests forwarded to the model.",
	})
)

// Cached remembers successful extractions per normalized text. Errors and
// empty results pass through uncached.
type Cached struct {
	next  Extractor
	cache *expirable.LRU[string, []model.ItemDraft]
}

// NewCached wraps next with an LRU of maxSize entries living for ttl.
func NewCached(next Extractor, maxSize int, ttl time.Duration) *Cached {
	return &Cached{
		next:  next,
		cache: expirable.NewLRU[string, []model.ItemDraft](maxSize, nil, ttl),
	}
}

var _ Extractor = (*Cached)(nil)

func (c *Cached) Extract(ctx context.Context, text string) ([]model.ItemDraft, error) {
	key := normalize(text)
	if v, ok := c.cache.Get(key); ok {
		cacheHitsTotal.Inc()
		return clone(v), nil
	}
	cacheMissesTotal.Inc()

	drafts, err := c.next.Extract(ctx, text)
	if err != nil || len(drafts) == 0 {
		return drafts, err
	}
	c.cache.Add(key, clone(drafts))
	return drafts, nil
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func clone(d []model.ItemDraft) []model.ItemDraft {
	return append([]model.ItemDraft(nil), d...)
}
