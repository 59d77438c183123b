package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingReport is one display row of the portfolio report.
type HoldingReport struct {
	Ticker            string
	Price             decimal.Decimal
	Quantity          decimal.Decimal
	TargetAllocation  decimal.Decimal
	CurrentAllocation decimal.Decimal
	CurrentValue      decimal.Decimal
	TargetValue       decimal.Decimal
	Difference        decimal.Decimal
	RebalanceAction   decimal.Decimal
	LastUpdated       time.Time
}

type PortfolioReport struct {
	GeneratedAt           time.Time
	TotalValue            decimal.Decimal
	TargetAllocationTotal decimal.Decimal
	AllocationStatus      AllocationStatus
	Holdings              []HoldingReport
	Operations            []Operation
}
