package cache

import (
	"context"
	"testing"
	"time"

	"github.com/nickaustinlee/stock-portfolio-balancer-v1/config"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/data/repository"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model/quoteModel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(ttl time.Duration) *MemoryCache {
	cfg := &config.Config{}
	cfg.Cache.QuotesExpiration = ttl
	return NewMemoryCache(cfg)
}

func sampleQuote(ticker string) quoteModel.Quote {
	return quoteModel.Quote{
		Ticker:    ticker,
		Shortname: ticker + " Inc.",
		Currency:  "USD",
		Price:     decimal.NewFromInt(150),
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(time.Minute)

	require.NoError(t, c.SetQuote(ctx, sampleQuote("AAPL")))

	got, err := c.GetQuote(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Ticker)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(150)))
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestCache(time.Minute)

	_, err := c.GetQuote(context.Background(), "MSFT")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(time.Nanosecond)

	require.NoError(t, c.SetQuote(ctx, sampleQuote("AAPL")))
	time.Sleep(time.Millisecond)

	_, err := c.GetQuote(ctx, "AAPL")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryCacheSetQuotes(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(time.Minute)

	quotes := map[string]quoteModel.Quote{
		"AAPL": sampleQuote("AAPL"),
		"TSLA": sampleQuote("TSLA"),
	}
	require.NoError(t, c.SetQuotes(ctx, quotes))

	for ticker := range quotes {
		got, err := c.GetQuote(ctx, ticker)
		require.NoError(t, err)
		assert.Equal(t, ticker, got.Ticker)
	}
}

func TestMemoryCacheFlush(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(time.Minute)

	require.NoError(t, c.SetQuote(ctx, sampleQuote("AAPL")))
	require.NoError(t, c.Flush(ctx))

	_, err := c.GetQuote(ctx, "AAPL")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
