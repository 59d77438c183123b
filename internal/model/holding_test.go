package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewHolding(t *testing.T) {
	t.Run("normalizes ticker", func(t *testing.T) {
		h, err := NewHolding("  aapl ", d("10"), d("50"))
		require.NoError(t, err)
		assert.Equal(t, "AAPL", h.Ticker)
		assert.True(t, h.Quantity.Equal(d("10")))
		assert.True(t, h.TargetAllocation.Equal(d("50")))
	})

	t.Run("allocation bounds", func(t *testing.T) {
		cases := []struct {
			allocation string
			wantErr    bool
		}{
			{"0", false},
			{"100", false},
			{"33.333", false},
			{"-0.001", true},
			{"100.001", true},
		}
		for _, tc := range cases {
			_, err := NewHolding("AAPL", d("1"), d(tc.allocation))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAllocation, "allocation %s", tc.allocation)
			} else {
				assert.NoError(t, err, "allocation %s", tc.allocation)
			}
		}
	})
}

func TestHoldingCurrentValue(t *testing.T) {
	h, err := NewHolding("AAPL", d("10.5"), d("0"))
	require.NoError(t, err)
	h.CurrentPrice = d("150.25")

	assert.True(t, h.CurrentValue().Equal(d("1577.625")))
}

func TestHoldingCurrentAllocation(t *testing.T) {
	h, err := NewHolding("AAPL", d("10"), d("0"))
	require.NoError(t, err)
	h.CurrentPrice = d("150")

	assert.True(t, h.CurrentAllocation(d("2500")).Equal(d("60")))

	t.Run("zero total value yields zero", func(t *testing.T) {
		assert.True(t, h.CurrentAllocation(decimal.Zero).Equal(decimal.Zero))
	})
}

func TestHoldingRebalanceAction(t *testing.T) {
	t.Run("zero price yields zero action", func(t *testing.T) {
		h, err := NewHolding("AAPL", d("10"), d("50"))
		require.NoError(t, err)

		assert.True(t, h.RebalanceAction(d("1000"), true).IsZero())
	})

	t.Run("fractional result", func(t *testing.T) {
		h, err := NewHolding("AAPL", d("10"), d("50"))
		require.NoError(t, err)
		h.CurrentPrice = d("150")

		// target value 1250, current 1500, delta -250 / 150
		got := h.RebalanceAction(d("2500"), false)
		assert.True(t, got.Round(4).Equal(d("-1.6667")), "got %s", got)
	})

	t.Run("zero target sells the whole position", func(t *testing.T) {
		h, err := NewHolding("AAPL", d("7"), d("0"))
		require.NoError(t, err)
		h.CurrentPrice = d("150")

		total := d("2500")
		got := h.RebalanceAction(total, false)
		assert.True(t, got.Equal(d("-7")), "got %s", got)

		got = h.RebalanceAction(total, true)
		assert.True(t, got.Equal(d("-7")), "got %s", got)
	})

	t.Run("rounds half away from zero", func(t *testing.T) {
		cases := []struct {
			price    string
			quantity string
			target   string
			total    string
			want     string
		}{
			// exact delta of +1.5 shares: target 150, current 0, price 100
			{"100", "0", "50", "300", "2"},
			// exact delta of -1.5 shares
			{"100", "3", "50", "300", "-2"},
		}
		for _, tc := range cases {
			h, err := NewHolding("AAPL", d(tc.quantity), d(tc.target))
			require.NoError(t, err)
			h.CurrentPrice = d(tc.price)

			got := h.RebalanceAction(d(tc.total), true)
			assert.True(t, got.Equal(d(tc.want)), "want %s got %s", tc.want, got)
		}
	})
}

func TestHoldingUpdatePrice(t *testing.T) {
	h, err := NewHolding("AAPL", d("10"), d("0"))
	require.NoError(t, err)
	require.True(t, h.LastUpdated.IsZero())

	h.UpdatePrice(d("150"))

	assert.True(t, h.CurrentPrice.Equal(d("150")))
	assert.False(t, h.LastUpdated.IsZero())
}
