package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/config"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/scheduler"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/service/portfolioService"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/utils"
)

type refreshCmd struct {
	svc *portfolioService.PortfolioService
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "refresh prices for every holding" }
func (*refreshCmd) Usage() string {
	return `refresh

  Fetches current quotes for all holdings and saves the updated portfolio.
  Tickers whose quote fails keep their previous price.
`
}

func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (c *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)
	if st := loadPortfolio(ctx, c.svc); st != subcommands.ExitSuccess {
		return st
	}

	if c.svc.IsEmpty() {
		fmt.Println("Portfolio is empty, nothing to refresh.")
		return subcommands.ExitSuccess
	}

	if err := c.svc.RefreshPrices(ctx); err != nil {
		printServiceErr(err)
		return subcommands.ExitFailure
	}

	printStatus(os.Stdout, c.svc.Report(ctx, true))
	return subcommands.ExitSuccess
}

type watchCmd struct {
	cfg *config.Config
	svc *portfolioService.PortfolioService
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "refresh prices on an interval until interrupted" }
func (*watchCmd) Usage() string {
	return `watch

  Refreshes prices on the configured interval and prints the portfolio status
  after each refresh. Stops on Ctrl-C.
`
}

func (*watchCmd) SetFlags(*flag.FlagSet) {}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)
	if st := loadPortfolio(ctx, c.svc); st != subcommands.ExitSuccess {
		return st
	}

	if c.svc.IsEmpty() {
		fmt.Println("Portfolio is empty, nothing to watch.")
		return subcommands.ExitSuccess
	}

	sched := scheduler.New()
	sched.NewIntervalJob("refreshPrices", func(jobCtx context.Context) error {
		jobCtx = utils.CreateCtxWithRqID(jobCtx)
		if err := c.svc.RefreshPrices(jobCtx); err != nil {
			printServiceErr(err)
			return err
		}
		printStatus(os.Stdout, c.svc.Report(jobCtx, true))
		return nil
	}, c.cfg.Jobs.RefreshInterval, true)

	sched.Start()
	defer sched.Stop()

	fmt.Printf("Refreshing every %s, press Ctrl-C to stop.\n", c.cfg.Jobs.RefreshInterval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	return subcommands.ExitSuccess
}
