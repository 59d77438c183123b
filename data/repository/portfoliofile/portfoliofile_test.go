package portfoliofile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nickaustinlee/stock-portfolio-balancer-v1/data/repository"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "portfolio.json"))
}

func samplePortfolio(t *testing.T) *model.Portfolio {
	t.Helper()
	pf := model.NewPortfolio()

	aapl, err := model.NewHolding("AAPL", decimal.NewFromInt(10), decimal.NewFromInt(60))
	require.NoError(t, err)
	aapl.UpdatePrice(decimal.NewFromInt(150))
	pf.AddHolding(aapl)

	tsla, err := model.NewHolding("TSLA", decimal.RequireFromString("5.5"), decimal.NewFromInt(40))
	require.NoError(t, err)
	tsla.UpdatePrice(decimal.NewFromInt(200))
	pf.AddHolding(tsla)

	return pf
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	pf := samplePortfolio(t)

	require.NoError(t, store.Save(ctx, pf))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)

	require.Equal(t, pf.AllTickers(), loaded.AllTickers())
	for _, ticker := range pf.AllTickers() {
		want, _ := pf.Holding(ticker)
		got, ok := loaded.Holding(ticker)
		require.True(t, ok)
		assert.True(t, got.Quantity.Equal(want.Quantity), "%s quantity", ticker)
		assert.True(t, got.TargetAllocation.Equal(want.TargetAllocation), "%s target", ticker)
		assert.True(t, got.CurrentPrice.Equal(want.CurrentPrice), "%s price", ticker)
		assert.WithinDuration(t, want.LastUpdated, got.LastUpdated, 0, "%s last updated", ticker)
	}
}

func TestStoreLoadAbsentFile(t *testing.T) {
	store := newTestStore(t)

	pf, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, pf.IsEmpty())
}

func TestStoreSaveCreatesBackup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, samplePortfolio(t)))
	assert.False(t, store.BackupExists(), "first save has nothing to back up")

	require.NoError(t, store.Save(ctx, samplePortfolio(t)))
	assert.True(t, store.BackupExists())
}

func TestStoreLoadRecoversFromBackup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	pf := samplePortfolio(t)

	// two saves so the backup holds a valid copy
	require.NoError(t, store.Save(ctx, pf))
	require.NoError(t, store.Save(ctx, pf))

	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0o644))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, pf.AllTickers(), loaded.AllTickers())

	// recovery restored the main file
	data, err := os.ReadFile(store.path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestStoreLoadBothCopiesCorrupted(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(store.backupPath, []byte("also broken"), 0o644))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrDataCorrupted)
}

func TestStoreLoadCorruptedWithoutBackup(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, os.WriteFile(store.path, []byte("[1,2,3]"), 0o644))

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, repository.ErrDataCorrupted)
}

func TestStoreLoadMissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing holdings", `{"version":"1.0","last_saved":"2024-01-01T00:00:00Z"}`},
		{"missing ticker", `{"version":"1.0","holdings":[{"quantity":1,"target_allocation":10}]}`},
		{"missing quantity", `{"version":"1.0","holdings":[{"ticker":"AAPL","target_allocation":10}]}`},
		{"missing target", `{"version":"1.0","holdings":[{"ticker":"AAPL","quantity":1}]}`},
		{"allocation out of range", `{"version":"1.0","holdings":[{"ticker":"AAPL","quantity":1,"target_allocation":150}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t)
			require.NoError(t, os.WriteFile(store.path, []byte(tc.body), 0o644))

			_, err := store.Load(context.Background())
			assert.ErrorIs(t, err, repository.ErrDataCorrupted)
		})
	}
}

func TestStoreLoadOptionalFields(t *testing.T) {
	store := newTestStore(t)
	body := `{"version":"1.0","holdings":[{"ticker":"AAPL","quantity":2,"target_allocation":50}]}`
	require.NoError(t, os.WriteFile(store.path, []byte(body), 0o644))

	pf, err := store.Load(context.Background())
	require.NoError(t, err)

	h, ok := pf.Holding("AAPL")
	require.True(t, ok)
	assert.True(t, h.CurrentPrice.IsZero())
	assert.True(t, h.LastUpdated.IsZero())
}

func TestStoreLoadTolerantTimestamps(t *testing.T) {
	t.Run("naive ISO timestamp", func(t *testing.T) {
		store := newTestStore(t)
		body := `{"version":"1.0","holdings":[{"ticker":"AAPL","quantity":2,"target_allocation":50,"last_price":150,"last_updated":"2024-06-01T12:30:45.123456"}]}`
		require.NoError(t, os.WriteFile(store.path, []byte(body), 0o644))

		pf, err := store.Load(context.Background())
		require.NoError(t, err)

		h, _ := pf.Holding("AAPL")
		assert.Equal(t, 2024, h.LastUpdated.Year())
	})

	t.Run("garbage timestamp is tolerated", func(t *testing.T) {
		store := newTestStore(t)
		body := `{"version":"1.0","holdings":[{"ticker":"AAPL","quantity":2,"target_allocation":50,"last_updated":"yesterday"}]}`
		require.NoError(t, os.WriteFile(store.path, []byte(body), 0o644))

		pf, err := store.Load(context.Background())
		require.NoError(t, err)

		h, _ := pf.Holding("AAPL")
		assert.True(t, h.LastUpdated.IsZero())
	})
}

func TestStoreSaveEmptyPortfolio(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, model.NewPortfolio()))

	pf, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, pf.IsEmpty())
}

func TestStoreSaveLeavesNoTempFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), samplePortfolio(t)))

	_, err := os.Stat(store.path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
