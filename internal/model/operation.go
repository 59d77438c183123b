package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation is a recorded quantity change: positive quantity for a buy,
// negative for a sell. Price is the quote at the time of the change.
type Operation struct {
	Ticker     string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
}
