package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/service/portfolioService"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/utils"
	"github.com/shopspring/decimal"
)

type addCmd struct {
	svc    *portfolioService.PortfolioService
	target string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a holding to the portfolio" }
func (*addCmd) Usage() string {
	return `add [-target <percent>] <ticker> <quantity>

  Adds a holding with the given number of shares. The ticker is validated
  against the quote service and the current price is stored. Adding a ticker
  that already exists replaces its quantity.

Usage Examples:
$ balancer add AAPL 10
$ balancer add -target 60 AAPL 10
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.target, "target", "", "Target allocation percentage for the holding")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected <ticker> and <quantity> arguments.")
		return subcommands.ExitUsageError
	}

	quantity, err := parseDecimalArg("quantity", f.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	// Validate the target up front so a bad flag value never leaves a
	// half-configured holding behind.
	var percentage decimal.Decimal
	if c.target != "" {
		percentage, err = parseDecimalArg("target allocation", c.target)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
		if err := model.ValidateAllocation(percentage); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
	}

	ctx = utils.CreateCtxWithRqID(ctx)
	if st := loadPortfolio(ctx, c.svc); st != subcommands.ExitSuccess {
		return st
	}

	holding, err := c.svc.AddHolding(ctx, f.Arg(0), quantity)
	if err != nil {
		printServiceErr(err)
		return subcommands.ExitFailure
	}

	if c.target != "" {
		if err := c.svc.UpdateTargetAllocation(ctx, holding.Ticker, percentage); err != nil {
			printServiceErr(err)
			return subcommands.ExitFailure
		}
	}

	fmt.Printf("Added %s: %s shares at %s\n", holding.Ticker, holding.Quantity, holding.CurrentPrice.StringFixed(2))
	return subcommands.ExitSuccess
}

type removeCmd struct {
	svc *portfolioService.PortfolioService
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove a holding from the portfolio" }
func (*removeCmd) Usage() string {
	return `remove <ticker>

  Removes the holding. Removing a ticker that is not in the portfolio is not
  an error.
`
}

func (*removeCmd) SetFlags(*flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected a <ticker> argument.")
		return subcommands.ExitUsageError
	}

	ctx = utils.CreateCtxWithRqID(ctx)
	if st := loadPortfolio(ctx, c.svc); st != subcommands.ExitSuccess {
		return st
	}

	if err := c.svc.RemoveHolding(ctx, f.Arg(0)); err != nil {
		printServiceErr(err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Removed %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}

type setQuantityCmd struct {
	svc *portfolioService.PortfolioService
}

func (*setQuantityCmd) Name() string     { return "set-quantity" }
func (*setQuantityCmd) Synopsis() string { return "set the share count of a holding" }
func (*setQuantityCmd) Usage() string {
	return `set-quantity <ticker> <quantity>

  Sets the number of shares held. The difference from the previous quantity is
  journaled as a buy or sell at the last known price.
`
}

func (*setQuantityCmd) SetFlags(*flag.FlagSet) {}

func (c *setQuantityCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected <ticker> and <quantity> arguments.")
		return subcommands.ExitUsageError
	}

	quantity, err := parseDecimalArg("quantity", f.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	ctx = utils.CreateCtxWithRqID(ctx)
	if st := loadPortfolio(ctx, c.svc); st != subcommands.ExitSuccess {
		return st
	}

	if err := c.svc.UpdateQuantity(ctx, f.Arg(0), quantity); err != nil {
		printServiceErr(err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Set %s quantity to %s\n", f.Arg(0), quantity)
	return subcommands.ExitSuccess
}

type setTargetCmd struct {
	svc *portfolioService.PortfolioService
}

func (*setTargetCmd) Name() string     { return "set-target" }
func (*setTargetCmd) Synopsis() string { return "set the target allocation of a holding" }
func (*setTargetCmd) Usage() string {
	return `set-target <ticker> <percent>

  Sets the target allocation percentage, between 0 and 100. Targets across
  the portfolio do not have to sum to 100; the status report shows whether
  they do.
`
}

func (*setTargetCmd) SetFlags(*flag.FlagSet) {}

func (c *setTargetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected <ticker> and <percent> arguments.")
		return subcommands.ExitUsageError
	}

	percentage, err := parseDecimalArg("target allocation", f.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	ctx = utils.CreateCtxWithRqID(ctx)
	if st := loadPortfolio(ctx, c.svc); st != subcommands.ExitSuccess {
		return st
	}

	if err := c.svc.UpdateTargetAllocation(ctx, f.Arg(0), percentage); err != nil {
		printServiceErr(err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Set %s target allocation to %s%%\n", f.Arg(0), percentage)
	return subcommands.ExitSuccess
}
