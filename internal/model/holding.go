package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Holding is a single stock position: ticker, share quantity, target
// allocation percent and the last known price. Quantities may be fractional.
type Holding struct {
	Ticker           string
	Quantity         decimal.Decimal
	TargetAllocation decimal.Decimal
	CurrentPrice     decimal.Decimal
	LastUpdated      time.Time // zero until the first price update
}

// NewHolding builds a holding with a normalized ticker. The target allocation
// must be within [0, 100], otherwise ErrInvalidAllocation is returned.
func NewHolding(ticker string, quantity, targetAllocation decimal.Decimal) (Holding, error) {
	if err := ValidateAllocation(targetAllocation); err != nil {
		return Holding{}, err
	}

	return Holding{
		Ticker:           NormalizeTicker(ticker),
		Quantity:         quantity,
		TargetAllocation: targetAllocation,
	}, nil
}

func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func ValidateAllocation(percentage decimal.Decimal) error {
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return fmt.Errorf("got %s%%: %w", percentage, ErrInvalidAllocation)
	}
	return nil
}

// CurrentValue is quantity * current price.
func (h Holding) CurrentValue() decimal.Decimal {
	return h.Quantity.Mul(h.CurrentPrice)
}

// CurrentAllocation is this holding's share of the portfolio value, in
// percent. A non-positive total yields 0 rather than an error.
func (h Holding) CurrentAllocation(totalValue decimal.Decimal) decimal.Decimal {
	if !totalValue.IsPositive() {
		return decimal.Zero
	}
	return h.CurrentValue().Div(totalValue).Mul(hundred)
}

// TargetValue is the value this holding should have at its target allocation.
func (h Holding) TargetValue(totalValue decimal.Decimal) decimal.Decimal {
	return h.TargetAllocation.Div(hundred).Mul(totalValue)
}

// RebalanceAction is the signed number of shares to buy (positive) or sell
// (negative) to reach the target allocation. Without a positive price no
// share delta can be computed and 0 is returned. When rounded is true the
// result is rounded to whole shares, half away from zero.
func (h Holding) RebalanceAction(totalValue decimal.Decimal, rounded bool) decimal.Decimal {
	if !h.CurrentPrice.IsPositive() {
		return decimal.Zero
	}

	difference := h.TargetValue(totalValue).Sub(h.CurrentValue())
	shares := difference.Div(h.CurrentPrice)

	if rounded {
		return shares.Round(0)
	}
	return shares
}

// UpdatePrice sets the current price and stamps LastUpdated. Prices are not
// validated here, the quote service never returns negative values.
func (h *Holding) UpdatePrice(price decimal.Decimal) {
	h.CurrentPrice = price
	h.LastUpdated = time.Now()
}
