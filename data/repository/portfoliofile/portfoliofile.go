package portfoliofile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/nickaustinlee/stock-portfolio-balancer-v1/config"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/data/repository"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/utils"
	"github.com/shopspring/decimal"
)

const schemaVersion = "1.0"

// Store persists a portfolio to a JSON file with a `.backup` sibling holding
// the last known-good state. Writes go through a temp file and an atomic
// rename, so a crash never leaves a half-written main file. One Store owns
// its file pair; no file locking, the tool is single-process by design.
type Store struct {
	path       string
	backupPath string
}

func New(cfg *config.Config) *Store {
	return NewStore(cfg.Storage.PortfolioFile)
}

func NewStore(path string) *Store {
	return &Store{path: path, backupPath: path + ".backup"}
}

// portfolioFile is the on-disk schema, version "1.0". Field names and types
// must stay exactly as they are for interoperability with files written by
// earlier versions of the tool.
type portfolioFile struct {
	Version   string           `json:"version"`
	LastSaved string           `json:"last_saved"`
	Holdings  *[]holdingRecord `json:"holdings"`
}

// holdingRecord uses pointers so a missing required field is distinguishable
// from a zero value on load.
type holdingRecord struct {
	Ticker           *string  `json:"ticker"`
	Quantity         *float64 `json:"quantity"`
	TargetAllocation *float64 `json:"target_allocation"`
	LastPrice        *float64 `json:"last_price"`
	LastUpdated      *string  `json:"last_updated"`
}

// Save writes the portfolio atomically. The previous non-empty file is copied
// to the backup first, preserving the last known-good state. Failures are
// typed: ErrPermissionDenied, ErrInsufficientSpace or ErrIOFailure.
func (s *Store) Save(ctx context.Context, pf *model.Portfolio) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Store.Save"

	slog.Debug("Save start", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", s.path))
	defer func() {
		if err != nil {
			slog.Error("Save failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("Save completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	if info, statErr := os.Stat(s.path); statErr == nil && info.Size() > 0 {
		if err = s.backup(); err != nil {
			return classifyWriteErr(err)
		}
	}

	data, err := json.MarshalIndent(serialize(pf), "", "  ")
	if err != nil {
		return fmt.Errorf("serializing portfolio: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err = os.WriteFile(tmpPath, data, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return classifyWriteErr(err)
	}

	if err = os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return classifyWriteErr(err)
	}

	return nil
}

// Load reads the portfolio back. An absent file yields an empty portfolio.
// A corrupted main file falls back to the backup; a recovered backup is
// immediately re-saved so the main file is valid again. When both copies are
// unusable the result is ErrDataCorrupted. Bare I/O errors surface as
// ErrIOFailure, never as corruption.
func (s *Store) Load(ctx context.Context) (*model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Store.Load"

	slog.Debug("Load start", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", s.path))

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("portfolio file absent, starting empty", slog.String("rqID", rqID), slog.String("op", op))
		return model.NewPortfolio(), nil
	}
	if err != nil {
		slog.Error("can't read portfolio file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("reading %s: %w", s.path, repository.ErrIOFailure)
	}

	pf, err := deserialize(data)
	if err == nil {
		slog.Debug("Load completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("holdings", pf.Len()))
		return pf, nil
	}

	slog.Warn("portfolio file corrupted, trying backup", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	backupData, backupErr := os.ReadFile(s.backupPath)
	if errors.Is(backupErr, fs.ErrNotExist) {
		return nil, repository.ErrDataCorrupted
	}
	if backupErr != nil {
		slog.Error("can't read backup file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", backupErr.Error()))
		return nil, fmt.Errorf("reading %s: %w", s.backupPath, repository.ErrIOFailure)
	}

	pf, backupErr = deserialize(backupData)
	if backupErr != nil {
		slog.Error("backup file corrupted as well", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", backupErr.Error()))
		return nil, repository.ErrDataCorrupted
	}

	// Restore the main file from the recovered state.
	if err := s.Save(ctx, pf); err != nil {
		return nil, err
	}

	slog.Info("portfolio recovered from backup", slog.String("rqID", rqID), slog.String("op", op), slog.Int("holdings", pf.Len()))

	return pf, nil
}

func (s *Store) FileExists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *Store) BackupExists() bool {
	_, err := os.Stat(s.backupPath)
	return err == nil
}

func (s *Store) backup() error {
	src, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(s.backupPath)
	if err != nil {
		return err
	}

	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func serialize(pf *model.Portfolio) portfolioFile {
	records := make([]holdingRecord, 0, pf.Len())
	for _, ticker := range pf.AllTickers() {
		h, ok := pf.Holding(ticker)
		if !ok {
			continue
		}

		quantity := h.Quantity.InexactFloat64()
		targetAllocation := h.TargetAllocation.InexactFloat64()
		lastPrice := h.CurrentPrice.InexactFloat64()

		rec := holdingRecord{
			Ticker:           &h.Ticker,
			Quantity:         &quantity,
			TargetAllocation: &targetAllocation,
			LastPrice:        &lastPrice,
		}
		if !h.LastUpdated.IsZero() {
			lastUpdated := h.LastUpdated.Format(time.RFC3339Nano)
			rec.LastUpdated = &lastUpdated
		}
		records = append(records, rec)
	}

	return portfolioFile{
		Version:   schemaVersion,
		LastSaved: time.Now().Format(time.RFC3339Nano),
		Holdings:  &records,
	}
}

func deserialize(data []byte) (*model.Portfolio, error) {
	file := portfolioFile{}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	if file.Holdings == nil {
		return nil, errors.New("missing 'holdings' field in portfolio data")
	}

	pf := model.NewPortfolio()

	for _, rec := range *file.Holdings {
		switch {
		case rec.Ticker == nil || *rec.Ticker == "":
			return nil, errors.New("missing 'ticker' field in holding data")
		case rec.Quantity == nil:
			return nil, errors.New("missing 'quantity' field in holding data")
		case rec.TargetAllocation == nil:
			return nil, errors.New("missing 'target_allocation' field in holding data")
		}

		// An out-of-range allocation is treated the same as a missing field,
		// never silently clamped.
		h, err := model.NewHolding(
			*rec.Ticker,
			decimal.NewFromFloat(*rec.Quantity),
			decimal.NewFromFloat(*rec.TargetAllocation),
		)
		if err != nil {
			return nil, err
		}

		if rec.LastPrice != nil {
			h.CurrentPrice = decimal.NewFromFloat(*rec.LastPrice)
		}
		if rec.LastUpdated != nil {
			// Unparseable timestamps are tolerated, the field stays unset.
			if ts, err := parseTimestamp(*rec.LastUpdated); err == nil {
				h.LastUpdated = ts
			}
		}

		pf.AddHolding(h)
	}

	return pf, nil
}

// parseTimestamp accepts RFC 3339 as written by this tool plus the naive ISO
// form written by earlier versions.
func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05.999999999", s)
}

func classifyWriteErr(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", repository.ErrPermissionDenied, err)
	case errors.Is(err, syscall.ENOSPC):
		return fmt.Errorf("%w: %s", repository.ErrInsufficientSpace, err)
	default:
		return fmt.Errorf("%w: %s", repository.ErrIOFailure, err)
	}
}
