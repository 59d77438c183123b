package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/service/portfolioService"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/utils"
)

type statusCmd struct {
	svc     *portfolioService.PortfolioService
	refresh bool
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show holdings, values and allocations" }
func (*statusCmd) Usage() string {
	return `status [-refresh]

  Prints every holding with its price, value, current and target allocation,
  plus the portfolio total. With -refresh, prices are fetched first.
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "refresh", false, "Refresh prices before printing")
}

func (c *statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)
	if st := loadPortfolio(ctx, c.svc); st != subcommands.ExitSuccess {
		return st
	}

	if c.svc.IsEmpty() {
		fmt.Println("Portfolio is empty. Use 'add' to create a holding.")
		return subcommands.ExitSuccess
	}

	if c.refresh {
		if err := c.svc.RefreshPrices(ctx); err != nil {
			printServiceErr(err)
			return subcommands.ExitFailure
		}
	}

	printStatus(os.Stdout, c.svc.Report(ctx, true))
	return subcommands.ExitSuccess
}

type rebalanceCmd struct {
	svc        *portfolioService.PortfolioService
	fractional bool
}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "show buy/sell actions to reach target allocations" }
func (*rebalanceCmd) Usage() string {
	return `rebalance [-fractional]

  For each holding, prints how many shares to buy (positive) or sell
  (negative) to move its value to the target allocation. Share counts are
  rounded to whole shares unless -fractional is given.
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.fractional, "fractional", false, "Print exact fractional share counts")
}

func (c *rebalanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)
	if st := loadPortfolio(ctx, c.svc); st != subcommands.ExitSuccess {
		return st
	}

	if c.svc.IsEmpty() {
		fmt.Println("Portfolio is empty. Use 'add' to create a holding.")
		return subcommands.ExitSuccess
	}

	printRebalance(os.Stdout, c.svc.Report(ctx, !c.fractional), c.fractional)
	return subcommands.ExitSuccess
}

type exportCmd struct {
	svc        *portfolioService.PortfolioService
	fractional bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the portfolio report to an XLSX file" }
func (*exportCmd) Usage() string {
	return `export [-fractional]

  Writes a spreadsheet with positions, allocations, rebalance actions and
  recent operations into the report directory. When Google Drive upload is
  configured, also prints a download link.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.fractional, "fractional", false, "Use exact fractional share counts in the rebalance section")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)
	if st := loadPortfolio(ctx, c.svc); st != subcommands.ExitSuccess {
		return st
	}

	path, downloadLink, err := c.svc.ExportReport(ctx, !c.fractional)
	if err != nil {
		printServiceErr(err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Report written to %s\n", path)
	if downloadLink != "" {
		fmt.Printf("Download link: %s\n", downloadLink)
	}
	return subcommands.ExitSuccess
}
