package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/model"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/utils"
	"github.com/shopspring/decimal"
)

// operationRow is the db-side shape; decimals travel as TEXT to keep exact
// values, timestamps as RFC 3339 strings.
type operationRow struct {
	Ticker     string `db:"ticker"`
	Quantity   string `db:"quantity"`
	Price      string `db:"price"`
	TotalPrice string `db:"total_price"`
	CreatedAt  string `db:"dt_create"`
}

func (r *Sqlite) InsertOperation(ctx context.Context, operation model.Operation) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `INSERT INTO operations(ticker, quantity, price, total_price, dt_create) VALUES(?, ?, ?, ?, ?)`

	slog.Debug("InsertOperation start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertOperation failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertOperation completed", slog.String("rqID", rqID))
		}
	}()

	createdAt := operation.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(
		ctx,
		query,
		operation.Ticker,
		operation.Quantity.String(),
		operation.Price.String(),
		operation.TotalPrice.String(),
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (r *Sqlite) ListOperations(ctx context.Context, limit int) (operations []model.Operation, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT ticker, quantity, price, total_price, dt_create
		FROM operations
		ORDER BY operation_id DESC
		LIMIT ?
		`

	slog.Debug("ListOperations start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("ListOperations failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListOperations completed", slog.String("rqID", rqID), slog.Int("count", len(operations)))
		}
	}()

	rows := []operationRow{}
	if err = r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}

	operations = make([]model.Operation, 0, len(rows))
	for _, row := range rows {
		operation, err := convertOperationRow(row)
		if err != nil {
			return nil, err
		}
		operations = append(operations, operation)
	}

	return operations, nil
}

func convertOperationRow(row operationRow) (model.Operation, error) {
	quantity, err := decimal.NewFromString(row.Quantity)
	if err != nil {
		return model.Operation{}, err
	}
	price, err := decimal.NewFromString(row.Price)
	if err != nil {
		return model.Operation{}, err
	}
	totalPrice, err := decimal.NewFromString(row.TotalPrice)
	if err != nil {
		return model.Operation{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return model.Operation{}, err
	}

	return model.Operation{
		Ticker:     row.Ticker,
		Quantity:   quantity,
		Price:      price,
		TotalPrice: totalPrice,
		CreatedAt:  createdAt,
	}, nil
}
