// Package cli implements the command line transport on top of the portfolio
// service. Each subcommand loads the portfolio, applies one operation and
// prints the result; persistence happens inside the service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/config"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/data/repository"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/service"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/service/portfolioService"
	"github.com/shopspring/decimal"
)

// Register wires every subcommand into the commander.
func Register(c *subcommands.Commander, cfg *config.Config, svc *portfolioService.PortfolioService) {
	c.Register(&addCmd{svc: svc}, "portfolio")
	c.Register(&removeCmd{svc: svc}, "portfolio")
	c.Register(&setQuantityCmd{svc: svc}, "portfolio")
	c.Register(&setTargetCmd{svc: svc}, "portfolio")

	c.Register(&refreshCmd{svc: svc}, "quotes")
	c.Register(&watchCmd{cfg: cfg, svc: svc}, "quotes")

	c.Register(&statusCmd{svc: svc}, "reports")
	c.Register(&rebalanceCmd{svc: svc}, "reports")
	c.Register(&exportCmd{svc: svc}, "reports")
}

// loadPortfolio restores saved state before a command runs. A corrupted data
// file degrades to an empty portfolio with a warning instead of aborting, so
// the user can keep working and re-add holdings.
func loadPortfolio(ctx context.Context, svc *portfolioService.PortfolioService) subcommands.ExitStatus {
	err := svc.LoadPortfolio(ctx)
	if err == nil {
		return subcommands.ExitSuccess
	}

	if errors.Is(err, repository.ErrDataCorrupted) {
		fmt.Fprintln(os.Stderr, "Warning: portfolio data is corrupted and could not be recovered, starting with an empty portfolio.")
		return subcommands.ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: could not load portfolio: %v\n", err)
	return subcommands.ExitFailure
}

func parseDecimalArg(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: expected a number", name, value)
	}
	return d, nil
}

// printServiceErr translates service and storage errors into user messages.
func printServiceErr(err error) {
	switch {
	case errors.Is(err, service.ErrTickerNotFound):
		fmt.Fprintln(os.Stderr, "Error: ticker not found, check the symbol and try again.")
	case errors.Is(err, service.ErrQuoteTimeout):
		fmt.Fprintln(os.Stderr, "Error: quote service timed out, try again later.")
	case errors.Is(err, service.ErrQuoteUnavailable):
		fmt.Fprintln(os.Stderr, "Error: quote service is unavailable, try again later.")
	case errors.Is(err, service.ErrEmptyPortfolio):
		fmt.Fprintln(os.Stderr, "Error: portfolio is empty, nothing to export.")
	case errors.Is(err, repository.ErrPermissionDenied):
		fmt.Fprintln(os.Stderr, "Error: no permission to write the portfolio file.")
	case errors.Is(err, repository.ErrInsufficientSpace):
		fmt.Fprintln(os.Stderr, "Error: not enough disk space to save the portfolio.")
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
