package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nickaustinlee/stock-portfolio-balancer-v1/config"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/externalApi"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model/quoteModel"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/service"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/utils"
	"github.com/shopspring/decimal"
)

// historyLimit bounds the operations section of a report.
const historyLimit = 50

type QuoteApi interface {
	GetQuote(ctx context.Context, ticker string) (quoteModel.Quote, error)
	GetQuotes(ctx context.Context, tickers []string) (map[string]quoteModel.Quote, error)
}

type Cache interface {
	GetQuote(ctx context.Context, ticker string) (quoteModel.Quote, error)
	SetQuote(ctx context.Context, quote quoteModel.Quote) error
	SetQuotes(ctx context.Context, quotes map[string]quoteModel.Quote) error
	Flush(ctx context.Context) error
}

type Store interface {
	Save(ctx context.Context, pf *model.Portfolio) error
	Load(ctx context.Context) (*model.Portfolio, error)
}

type History interface {
	InsertOperation(ctx context.Context, operation model.Operation) error
	ListOperations(ctx context.Context, limit int) ([]model.Operation, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

// PortfolioService owns the in-memory portfolio and coordinates quotes,
// persistence, history and report generation. Every mutation is persisted
// before it returns. Methods are not safe for concurrent use; the transports
// call them from a single goroutine at a time.
type PortfolioService struct {
	cfg             *config.Config
	pf              *model.Portfolio
	store           Store
	cache           Cache
	quoteApi        QuoteApi
	history         History
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage // nil when drive upload is disabled
}

func New(
	cfg *config.Config,
	store Store,
	cache Cache,
	quoteApi QuoteApi,
	history History,
	reportGenerator ReportGenerator,
	cloudStorage CloudStorage,
) *PortfolioService {
	return &PortfolioService{
		cfg:             cfg,
		pf:              model.NewPortfolio(),
		store:           store,
		cache:           cache,
		quoteApi:        quoteApi,
		history:         history,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
	}
}

// LoadPortfolio restores state from disk. On corruption (both copies
// unusable) the service starts fresh with an empty portfolio and the error is
// returned for user messaging; the files on disk are left untouched.
func (s *PortfolioService) LoadPortfolio(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.LoadPortfolio"

	slog.Debug("LoadPortfolio start", slog.String("rqID", rqID), slog.String("op", op))

	pf, err := s.store.Load(ctx)
	if err != nil {
		slog.Error("got error from store.Load", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		s.pf = model.NewPortfolio()
		return err
	}

	s.pf = pf

	slog.Debug("LoadPortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("holdings", pf.Len()))

	return nil
}

// AddHolding validates the ticker against the quote service before creating
// the holding, so an unknown symbol never enters the portfolio.
func (s *PortfolioService) AddHolding(ctx context.Context, ticker string, quantity decimal.Decimal) (model.Holding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddHolding"

	slog.Debug("AddHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	defer func() {
		slog.Debug("AddHolding finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	}()

	quote, err := s.getQuote(ctx, ticker)
	if err != nil {
		return model.Holding{}, err
	}

	holding, err := model.NewHolding(ticker, quantity, decimal.Zero)
	if err != nil {
		return model.Holding{}, err
	}
	holding.UpdatePrice(quote.Price)

	s.pf.AddHolding(holding)

	if err := s.store.Save(ctx, s.pf); err != nil {
		slog.Error("got error from store.Save", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	if !quantity.IsZero() {
		s.recordOperation(ctx, holding.Ticker, quantity, quote.Price)
	}

	return holding, nil
}

// RemoveHolding is a no-op for unknown tickers, the portfolio is persisted
// either way.
func (s *PortfolioService) RemoveHolding(ctx context.Context, ticker string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RemoveHolding"

	slog.Debug("RemoveHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	s.pf.RemoveHolding(ticker)

	if err := s.store.Save(ctx, s.pf); err != nil {
		slog.Error("got error from store.Save", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// UpdateQuantity sets a holding's share count and journals the signed delta
// as a buy or sell operation.
func (s *PortfolioService) UpdateQuantity(ctx context.Context, ticker string, quantity decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UpdateQuantity"

	slog.Debug("UpdateQuantity start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	previous, known := s.pf.Holding(ticker)

	s.pf.UpdateQuantity(ticker, quantity)

	if err := s.store.Save(ctx, s.pf); err != nil {
		slog.Error("got error from store.Save", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if known {
		if delta := quantity.Sub(previous.Quantity); !delta.IsZero() {
			s.recordOperation(ctx, previous.Ticker, delta, previous.CurrentPrice)
		}
	}

	return nil
}

// UpdateTargetAllocation rejects percentages outside [0, 100] with
// model.ErrInvalidAllocation before any state is touched.
func (s *PortfolioService) UpdateTargetAllocation(ctx context.Context, ticker string, percentage decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UpdateTargetAllocation"

	slog.Debug("UpdateTargetAllocation start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	if err := s.pf.UpdateTargetAllocation(ticker, percentage); err != nil {
		return err
	}

	if err := s.store.Save(ctx, s.pf); err != nil {
		slog.Error("got error from store.Save", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// RefreshPrices fetches quotes for every holding and applies all successful
// updates as one batch before persisting. Tickers that fail are skipped and
// keep their previous price — one bad symbol never rolls back the others.
func (s *PortfolioService) RefreshPrices(ctx context.Context) error {
	ctx = utils.CreateCtxWithRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshPrices"

	slog.Debug("RefreshPrices start", slog.String("rqID", rqID), slog.String("op", op))

	if s.pf.IsEmpty() {
		slog.Debug("no holdings to refresh", slog.String("rqID", rqID), slog.String("op", op))
		return nil
	}

	quotes, err := s.quoteApi.GetQuotes(ctx, s.pf.AllTickers())
	if err != nil {
		slog.Error("got error from quoteApi.GetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return mapQuoteErr(err)
	}

	// Apply the whole batch, then persist, so reads after this call reflect
	// the complete refresh.
	for ticker, quote := range quotes {
		s.pf.UpdatePrice(ticker, quote.Price)
	}

	if err := s.cache.SetQuotes(ctx, quotes); err != nil {
		slog.Warn("can't cache refreshed quotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	if err := s.store.Save(ctx, s.pf); err != nil {
		slog.Error("got error from store.Save", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("RefreshPrices finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("updated", len(quotes)))

	return nil
}

// Report assembles the display records for every holding plus recent
// operations. Read-only; derived values are recomputed on every call.
func (s *PortfolioService) Report(ctx context.Context, rounded bool) model.PortfolioReport {
	total := s.pf.TotalValue()
	allocations := s.pf.AllocationSummary()
	actions := s.pf.RebalanceActions(rounded)

	holdings := make([]model.HoldingReport, 0, s.pf.Len())
	for _, ticker := range s.pf.AllTickers() {
		h, ok := s.pf.Holding(ticker)
		if !ok {
			continue
		}

		currentValue := h.CurrentValue()
		targetValue := h.TargetValue(total)

		holdings = append(holdings, model.HoldingReport{
			Ticker:            h.Ticker,
			Price:             h.CurrentPrice,
			Quantity:          h.Quantity,
			TargetAllocation:  h.TargetAllocation,
			CurrentAllocation: allocations[h.Ticker],
			CurrentValue:      currentValue,
			TargetValue:       targetValue,
			Difference:        targetValue.Sub(currentValue),
			RebalanceAction:   actions[h.Ticker],
			LastUpdated:       h.LastUpdated,
		})
	}

	report := model.PortfolioReport{
		GeneratedAt:           time.Now(),
		TotalValue:            total,
		TargetAllocationTotal: s.pf.TargetAllocationTotal(),
		AllocationStatus:      s.pf.AllocationStatus(),
		Holdings:              holdings,
	}

	operations, err := s.history.ListOperations(ctx, historyLimit)
	if err != nil {
		// The report is still useful without the journal.
		slog.Warn("can't list operations for report", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
	} else {
		report.Operations = operations
	}

	return report
}

// ExportReport writes an XLSX report to the report directory and, when cloud
// storage is configured, uploads a copy and returns its download link.
func (s *PortfolioService) ExportReport(ctx context.Context, rounded bool) (path string, downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportReport"

	slog.Debug("ExportReport start", slog.String("rqID", rqID), slog.String("op", op))

	if s.pf.IsEmpty() {
		return "", "", service.ErrEmptyPortfolio
	}

	report := s.Report(ctx, rounded)

	fileBytes, fileExtension, err := s.reportGenerator.Generate(ctx, report)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", "", err
	}

	filename := fmt.Sprintf("portfolio_report_%s%s", report.GeneratedAt.Format("2006-01-02_150405"), fileExtension)
	path = filepath.Join(s.cfg.Report.Dir, filename)

	if err := os.WriteFile(path, fileBytes, 0o644); err != nil {
		slog.Error("can't write report file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", "", err
	}

	if s.cloudStorage != nil {
		downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
		if err != nil {
			// The local copy exists; the upload is best effort.
			slog.Warn("report upload failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			downloadLink = ""
		}
	}

	slog.Debug("ExportReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", path))

	return path, downloadLink, nil
}

// IsEmpty reports whether the portfolio currently has holdings.
func (s *PortfolioService) IsEmpty() bool {
	return s.pf.IsEmpty()
}

// getQuote consults the cache first and falls back to the quote API,
// repopulating the cache on success.
func (s *PortfolioService) getQuote(ctx context.Context, ticker string) (quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getQuote"

	quote, err := s.cache.GetQuote(ctx, model.NormalizeTicker(ticker))
	if err == nil {
		return quote, nil
	}

	quote, err = s.quoteApi.GetQuote(ctx, ticker)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			slog.Warn("ticker not found in quote API", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
			return quoteModel.Quote{}, service.ErrTickerNotFound
		}
		slog.Error("can't get quote from quote API", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return quoteModel.Quote{}, mapQuoteErr(err)
	}

	if err := s.cache.SetQuote(ctx, quote); err != nil {
		slog.Warn("can't cache quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return quote, nil
}

// recordOperation appends to the history journal. Journal failures are
// logged, never surfaced: the portfolio mutation already succeeded.
func (s *PortfolioService) recordOperation(ctx context.Context, ticker string, quantity, price decimal.Decimal) {
	operation := model.Operation{
		Ticker:     ticker,
		Quantity:   quantity,
		Price:      price,
		TotalPrice: price.Mul(quantity),
		CreatedAt:  time.Now(),
	}

	if err := s.history.InsertOperation(ctx, operation); err != nil {
		slog.Error("got error from history.InsertOperation", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
	}
}

func mapQuoteErr(err error) error {
	switch {
	case errors.Is(err, externalApi.ErrNotFound):
		return service.ErrTickerNotFound
	case errors.Is(err, externalApi.ErrTimeout):
		return service.ErrQuoteTimeout
	case errors.Is(err, externalApi.ErrUnavailable):
		return service.ErrQuoteUnavailable
	default:
		return err
	}
}
