package model

import "github.com/shopspring/decimal"

type AllocationStatus string

const (
	AllocationEqual AllocationStatus = "equal"
	AllocationAbove AllocationStatus = "above"
	AllocationBelow AllocationStatus = "below"
)

// allocationTolerance absorbs floating point noise when comparing the target
// allocation total against 100%.
var allocationTolerance = decimal.NewFromFloat(0.01)

// Portfolio owns a set of holdings keyed by normalized ticker. Insertion
// order is preserved for stable serialization and display. All derived values
// are recomputed on call, there is no cached state. Not safe for concurrent
// mutation.
type Portfolio struct {
	holdings map[string]*Holding
	order    []string
}

func NewPortfolio() *Portfolio {
	return &Portfolio{holdings: make(map[string]*Holding)}
}

// AddHolding inserts or replaces by ticker. Last write wins; a replaced
// holding keeps its original position.
func (p *Portfolio) AddHolding(h Holding) {
	if _, ok := p.holdings[h.Ticker]; !ok {
		p.order = append(p.order, h.Ticker)
	}
	p.holdings[h.Ticker] = &h
}

// RemoveHolding is a no-op when the ticker is absent.
func (p *Portfolio) RemoveHolding(ticker string) {
	ticker = NormalizeTicker(ticker)
	if _, ok := p.holdings[ticker]; !ok {
		return
	}
	delete(p.holdings, ticker)
	for i, t := range p.order {
		if t == ticker {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Holding returns a copy of the holding for ticker. Mutation goes through
// the Portfolio methods, never through the returned value.
func (p *Portfolio) Holding(ticker string) (Holding, bool) {
	h, ok := p.holdings[NormalizeTicker(ticker)]
	if !ok {
		return Holding{}, false
	}
	return *h, true
}

// UpdateQuantity sets the share quantity, no-op when the ticker is absent.
func (p *Portfolio) UpdateQuantity(ticker string, quantity decimal.Decimal) {
	if h, ok := p.holdings[NormalizeTicker(ticker)]; ok {
		h.Quantity = quantity
	}
}

// UpdateTargetAllocation validates the percentage before touching state, so
// an out-of-range value fails even for an absent ticker.
func (p *Portfolio) UpdateTargetAllocation(ticker string, percentage decimal.Decimal) error {
	if err := ValidateAllocation(percentage); err != nil {
		return err
	}
	if h, ok := p.holdings[NormalizeTicker(ticker)]; ok {
		h.TargetAllocation = percentage
	}
	return nil
}

// UpdatePrice sets the current price and timestamp, no-op when absent.
func (p *Portfolio) UpdatePrice(ticker string, price decimal.Decimal) {
	if h, ok := p.holdings[NormalizeTicker(ticker)]; ok {
		h.UpdatePrice(price)
	}
}

func (p *Portfolio) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, h := range p.holdings {
		total = total.Add(h.CurrentValue())
	}
	return total
}

// AllocationSummary maps ticker to current allocation percent. When the total
// value is not positive every entry is 0.
func (p *Portfolio) AllocationSummary() map[string]decimal.Decimal {
	total := p.TotalValue()
	summary := make(map[string]decimal.Decimal, len(p.holdings))
	for ticker, h := range p.holdings {
		summary[ticker] = h.CurrentAllocation(total)
	}
	return summary
}

// TargetAllocationTotal may legitimately be above or below 100%.
func (p *Portfolio) TargetAllocationTotal() decimal.Decimal {
	total := decimal.Zero
	for _, h := range p.holdings {
		total = total.Add(h.TargetAllocation)
	}
	return total
}

func (p *Portfolio) AllocationStatus() AllocationStatus {
	total := p.TargetAllocationTotal()
	switch {
	case total.Sub(hundred).Abs().LessThan(allocationTolerance):
		return AllocationEqual
	case total.GreaterThan(hundred):
		return AllocationAbove
	default:
		return AllocationBelow
	}
}

// RebalanceActions maps ticker to the signed share delta needed to reach its
// target allocation, computed against the current total value.
func (p *Portfolio) RebalanceActions(rounded bool) map[string]decimal.Decimal {
	total := p.TotalValue()
	actions := make(map[string]decimal.Decimal, len(p.holdings))
	for ticker, h := range p.holdings {
		actions[ticker] = h.RebalanceAction(total, rounded)
	}
	return actions
}

// AllTickers returns tickers in insertion order.
func (p *Portfolio) AllTickers() []string {
	tickers := make([]string, len(p.order))
	copy(tickers, p.order)
	return tickers
}

func (p *Portfolio) IsEmpty() bool {
	return len(p.holdings) == 0
}

func (p *Portfolio) Len() int {
	return len(p.holdings)
}
