package cache

import (
	"context"
	"sync"
	"time"

	"github.com/nickaustinlee/stock-portfolio-balancer-v1/config"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/data/repository"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model/quoteModel"
)

// MemoryCache is an in-process TTL cache for quotes. It is an explicit field
// of whoever needs it, constructed once in main — not an ambient global.
type MemoryCache struct {
	mu     sync.RWMutex
	quotes map[string]entry
	ttl    time.Duration
}

type entry struct {
	quote     quoteModel.Quote
	fetchedAt time.Time
}

func NewMemoryCache(cfg *config.Config) *MemoryCache {
	return &MemoryCache{
		quotes: make(map[string]entry),
		ttl:    cfg.Cache.QuotesExpiration,
	}
}

func (c *MemoryCache) GetQuote(_ context.Context, ticker string) (quoteModel.Quote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.quotes[ticker]
	if !ok || time.Since(e.fetchedAt) > c.ttl {
		return quoteModel.Quote{}, repository.ErrNotFound
	}
	return e.quote, nil
}

func (c *MemoryCache) SetQuote(_ context.Context, quote quoteModel.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quotes[quote.Ticker] = entry{quote: quote, fetchedAt: time.Now()}
	return nil
}

func (c *MemoryCache) SetQuotes(ctx context.Context, quotes map[string]quoteModel.Quote) error {
	for _, q := range quotes {
		if err := c.SetQuote(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (c *MemoryCache) Flush(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quotes = make(map[string]entry)
	return nil
}
