package cli

import (
	"fmt"
	"io"

	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model"
)

func printStatus(w io.Writer, report model.PortfolioReport) {
	fmt.Fprintf(w, "%-8s %12s %12s %14s %10s %10s\n",
		"TICKER", "PRICE", "QUANTITY", "VALUE", "CURRENT%", "TARGET%")

	for _, h := range report.Holdings {
		fmt.Fprintf(w, "%-8s %12s %12s %14s %9s%% %9s%%\n",
			h.Ticker,
			h.Price.StringFixed(2),
			h.Quantity.String(),
			h.CurrentValue.StringFixed(2),
			h.CurrentAllocation.StringFixed(2),
			h.TargetAllocation.StringFixed(2),
		)
	}

	fmt.Fprintf(w, "\nTotal value: %s\n", report.TotalValue.StringFixed(2))
	fmt.Fprintf(w, "Target allocations: %s%% (%s)\n",
		report.TargetAllocationTotal.StringFixed(2), describeStatus(report.AllocationStatus))
}

func printRebalance(w io.Writer, report model.PortfolioReport, fractional bool) {
	fmt.Fprintf(w, "%-8s %14s %14s %14s %10s\n",
		"TICKER", "VALUE", "TARGET VALUE", "DIFFERENCE", "ACTION")

	for _, h := range report.Holdings {
		fmt.Fprintf(w, "%-8s %14s %14s %14s %10s\n",
			h.Ticker,
			h.CurrentValue.StringFixed(2),
			h.TargetValue.StringFixed(2),
			h.Difference.StringFixed(2),
			formatAction(h, fractional),
		)
	}

	fmt.Fprintf(w, "\nTotal value: %s\n", report.TotalValue.StringFixed(2))
	if report.AllocationStatus != model.AllocationEqual {
		fmt.Fprintf(w, "Note: target allocations sum to %s%%, actions assume that total.\n",
			report.TargetAllocationTotal.StringFixed(2))
	}
}

func formatAction(h model.HoldingReport, fractional bool) string {
	abs := h.RebalanceAction.Abs()
	shares := abs.String()
	if fractional {
		shares = abs.StringFixed(4)
	}

	switch h.RebalanceAction.Sign() {
	case 1:
		return "buy " + shares
	case -1:
		return "sell " + shares
	default:
		return "hold"
	}
}

func describeStatus(status model.AllocationStatus) string {
	switch status {
	case model.AllocationAbove:
		return "above 100%"
	case model.AllocationBelow:
		return "below 100%"
	default:
		return "balanced"
	}
}
