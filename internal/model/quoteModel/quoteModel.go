package quoteModel

import "github.com/shopspring/decimal"

// RawQuoteResponse mirrors the quote endpoint payload.
type RawQuoteResponse struct {
	QuoteResponse struct {
		Result []RawQuote `json:"result"`
		Error  any        `json:"error"`
	} `json:"quoteResponse"`
}

type RawQuote struct {
	Symbol             string   `json:"symbol"`
	ShortName          string   `json:"shortName"`
	Currency           string   `json:"currency"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
}

type Quote struct {
	Ticker    string
	Shortname string
	Currency  string
	Price     decimal.Decimal
}
