package quoteApi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/nickaustinlee/stock-portfolio-balancer-v1/config"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/externalApi"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model/quoteModel"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const quotePath = "/v7/finance/quote"

// fetchConcurrency bounds parallel per-ticker requests in GetQuotes.
const fetchConcurrency = 4

type QuoteApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *QuoteApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.QuoteApi.Url)
	return &QuoteApi{client: client}
}

// GetQuote fetches the current quote for a single ticker. Failures map to the
// externalApi sentinel errors: unknown ticker to ErrNotFound, timeouts to
// ErrTimeout and everything else to ErrUnavailable.
func (a *QuoteApi) GetQuote(ctx context.Context, ticker string) (quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	ticker = model.NormalizeTicker(ticker)

	slog.Debug("start QuoteApi.GetQuote request", slog.String("rqID", rqID), slog.String("ticker", ticker))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("symbols", ticker).
		Get(quotePath)

	if err != nil {
		slog.Error("error while dialing quote API", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return quoteModel.Quote{}, classifyTransportErr(err)
	}

	if resp.StatusCode() != http.StatusOK {
		slog.Error("quote API returned non-200", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID))
		if resp.StatusCode() == http.StatusNotFound {
			return quoteModel.Quote{}, externalApi.ErrNotFound
		}
		return quoteModel.Quote{}, externalApi.ErrUnavailable
	}

	rawResp := quoteModel.RawQuoteResponse{}
	if err := json.Unmarshal(resp.Body(), &rawResp); err != nil {
		slog.Error("can't unmarshall response into quoteModel.RawQuoteResponse", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return quoteModel.Quote{}, externalApi.ErrUnavailable
	}

	quote, err := parseRawQuote(rawResp, ticker)
	if err != nil {
		return quoteModel.Quote{}, err
	}

	slog.Debug("QuoteApi.GetQuote request complete", slog.String("rqID", rqID), slog.String("ticker", ticker))

	return quote, nil
}

// GetQuotes fetches quotes for several tickers with partial-failure
// semantics: tickers that fail are omitted from the result. An error is
// returned only when nothing could be fetched for a reason other than
// unknown tickers.
func (a *QuoteApi) GetQuotes(ctx context.Context, tickers []string) (map[string]quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	clean := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t = model.NormalizeTicker(t); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return map[string]quoteModel.Quote{}, nil
	}

	slog.Debug("start QuoteApi.GetQuotes", slog.String("rqID", rqID), slog.Int("tickers", len(clean)))

	var (
		mu       sync.Mutex
		quotes   = make(map[string]quoteModel.Quote, len(clean))
		totalErr error
	)

	// Failures are recorded, not propagated: one slow or unknown ticker must
	// not abort the other in-flight lookups.
	g := errgroup.Group{}
	g.SetLimit(fetchConcurrency)

	for _, ticker := range clean {
		g.Go(func() error {
			quote, err := a.GetQuote(ctx, ticker)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("skipping ticker in GetQuotes", slog.String("rqID", rqID), slog.String("ticker", ticker), slog.String("err", err.Error()))
				if !errors.Is(err, externalApi.ErrNotFound) {
					totalErr = err
				}
				return nil
			}
			quotes[quote.Ticker] = quote
			return nil
		})
	}
	_ = g.Wait()

	if len(quotes) == 0 && totalErr != nil {
		return nil, totalErr
	}

	slog.Debug("QuoteApi.GetQuotes complete", slog.String("rqID", rqID), slog.Int("fetched", len(quotes)))

	return quotes, nil
}

func parseRawQuote(rawResp quoteModel.RawQuoteResponse, ticker string) (quoteModel.Quote, error) {
	for _, raw := range rawResp.QuoteResponse.Result {
		if model.NormalizeTicker(raw.Symbol) != ticker {
			continue
		}
		if raw.RegularMarketPrice == nil {
			return quoteModel.Quote{}, externalApi.ErrNotFound
		}
		price := decimal.NewFromFloat(*raw.RegularMarketPrice)
		return quoteModel.Quote{
			Ticker:    model.NormalizeTicker(raw.Symbol),
			Shortname: raw.ShortName,
			Currency:  raw.Currency,
			Price:     price,
		}, nil
	}
	return quoteModel.Quote{}, externalApi.ErrNotFound
}

func classifyTransportErr(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return externalApi.ErrTimeout
	}
	return externalApi.ErrUnavailable
}
