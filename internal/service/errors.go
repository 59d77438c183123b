package service

import "errors"

var (
	// ErrTickerNotFound surfaces when a brand-new holding's ticker fails the
	// price lookup. In batch refreshes unknown tickers are skipped instead.
	ErrTickerNotFound   = errors.New("error ticker not found")
	ErrQuoteUnavailable = errors.New("error quote service unavailable")
	ErrQuoteTimeout     = errors.New("error quote request timed out")
	ErrEmptyPortfolio   = errors.New("error portfolio is empty")
)
