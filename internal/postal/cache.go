package postal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cadastro/internal/platform/metrics"
)

// Entry is one cached lookup result. Misses from the upstream are cached
// too, so repeated lookups of an unknown CEP do not hit ViaCEP.
type Entry struct {
	Address  *Address `json:"address,omitempty"`
	NotFound bool     `json:"not_found,omitempty"`
}

// Cache stores lookup results by normalized CEP. Get reports ok=false on a
// miss.
type Cache interface {
	Get(ctx context.Context, cep string) (entry Entry, ok bool, err error)
	Set(ctx context.Context, cep string, entry Entry, ttl time.Duration) error
}

// CachedLookup decorates a Lookuper with a cache. Cache failures degrade to
// a direct lookup; only upstream results are ever returned as errors.
type CachedLookup struct {
	next    Lookuper
	cache   Cache
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type CacheOption func(*CachedLookup)

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedLookup) { c.logger = logger }
}

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *CachedLookup) { c.metrics = m }
}

func NewCachedLookup(next Lookuper, cache Cache, ttl time.Duration, opts ...CacheOption) *CachedLookup {
	c := &CachedLookup{next: next, cache: cache, ttl: ttl, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedLookup) Lookup(ctx context.Context, cep string) (*Address, error) {
	cep = Normalize(cep)
	if !Valid(cep) {
		return nil, NewError(CategoryInvalidInput, "cep must have 8 digits", nil)
	}

	entry, ok, err := c.cache.Get(ctx, cep)
	switch {
	case err != nil:
		c.count("error")
		c.logger.WarnContext(ctx, "postal cache read failed", "error", err, "cep", cep)
	case ok && entry.NotFound:
		c.count("hit")
		return nil, ErrNotFound
	case ok && entry.Address != nil:
		c.count("hit")
		addr := *entry.Address
		return &addr, nil
	default:
		c.count("miss")
	}

	addr, err := c.next.Lookup(ctx, cep)
	switch {
	case err == nil:
		c.store(ctx, cep, Entry{Address: addr})
	case errors.Is(err, ErrNotFound):
		c.store(ctx, cep, Entry{NotFound: true})
	}
	return addr, err
}

func (c *CachedLookup) store(ctx context.Context, cep string, entry Entry) {
	if err := c.cache.Set(ctx, cep, entry, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "postal cache write failed", "error", err, "cep", cep)
	}
}

func (c *CachedLookup) count(result string) {
	if c.metrics != nil {
		c.metrics.IncrementPostalCache(result)
	}
}
