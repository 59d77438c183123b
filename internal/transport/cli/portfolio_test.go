package cli

import (
	"context"
	"flag"
	"testing"

	"github.com/google/subcommands"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/config"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/data/repository"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/externalApi"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model/quoteModel"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/service/portfolioService"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	saveCalls int
}

func (s *stubStore) Save(context.Context, *model.Portfolio) error {
	s.saveCalls++
	return nil
}

func (s *stubStore) Load(context.Context) (*model.Portfolio, error) {
	return model.NewPortfolio(), nil
}

type stubCache struct{}

func (stubCache) GetQuote(context.Context, string) (quoteModel.Quote, error) {
	return quoteModel.Quote{}, repository.ErrNotFound
}
func (stubCache) SetQuote(context.Context, quoteModel.Quote) error             { return nil }
func (stubCache) SetQuotes(context.Context, map[string]quoteModel.Quote) error { return nil }
func (stubCache) Flush(context.Context) error                                  { return nil }

type stubQuoteApi struct{}

func (stubQuoteApi) GetQuote(_ context.Context, ticker string) (quoteModel.Quote, error) {
	if model.NormalizeTicker(ticker) != "AAPL" {
		return quoteModel.Quote{}, externalApi.ErrNotFound
	}
	return quoteModel.Quote{Ticker: "AAPL", Currency: "USD", Price: decimal.NewFromInt(150)}, nil
}

func (stubQuoteApi) GetQuotes(context.Context, []string) (map[string]quoteModel.Quote, error) {
	return map[string]quoteModel.Quote{}, nil
}

type stubHistory struct{}

func (stubHistory) InsertOperation(context.Context, model.Operation) error { return nil }
func (stubHistory) ListOperations(context.Context, int) ([]model.Operation, error) {
	return nil, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, model.PortfolioReport) ([]byte, string, error) {
	return []byte("workbook"), ".xlsx", nil
}

func newTestService(t *testing.T) (*portfolioService.PortfolioService, *stubStore) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Report.Dir = t.TempDir()

	store := &stubStore{}
	svc := portfolioService.New(cfg, store, stubCache{}, stubQuoteApi{}, stubHistory{}, stubGenerator{}, nil)
	return svc, store
}

func runAdd(t *testing.T, svc *portfolioService.PortfolioService, args ...string) subcommands.ExitStatus {
	t.Helper()
	cmd := &addCmd{svc: svc}
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cmd.Execute(context.Background(), fs)
}

func TestAddCmd(t *testing.T) {
	t.Run("adds with a valid target", func(t *testing.T) {
		svc, store := newTestService(t)

		st := runAdd(t, svc, "-target", "60", "AAPL", "10")
		assert.Equal(t, subcommands.ExitSuccess, st)
		assert.False(t, svc.IsEmpty())
		assert.Equal(t, 2, store.saveCalls)
	})

	t.Run("malformed target leaves state untouched", func(t *testing.T) {
		svc, store := newTestService(t)

		st := runAdd(t, svc, "-target", "abc", "AAPL", "10")
		assert.Equal(t, subcommands.ExitUsageError, st)
		assert.True(t, svc.IsEmpty())
		assert.Equal(t, 0, store.saveCalls)
	})

	t.Run("out of range target leaves state untouched", func(t *testing.T) {
		svc, store := newTestService(t)

		st := runAdd(t, svc, "-target", "150", "AAPL", "10")
		assert.Equal(t, subcommands.ExitUsageError, st)
		assert.True(t, svc.IsEmpty())
		assert.Equal(t, 0, store.saveCalls)
	})

	t.Run("malformed quantity", func(t *testing.T) {
		svc, store := newTestService(t)

		st := runAdd(t, svc, "AAPL", "ten")
		assert.Equal(t, subcommands.ExitUsageError, st)
		assert.Equal(t, 0, store.saveCalls)
	})
}
