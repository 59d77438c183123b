package data

import (
	"log/slog"

	"github.com/nickaustinlee/stock-portfolio-balancer-v1/config"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// Single-table schema, created on open. The journal is append-only so there
// is nothing to migrate between versions yet.
const historySchema = `
CREATE TABLE IF NOT EXISTS operations (
	operation_id INTEGER PRIMARY KEY AUTOINCREMENT,
	ticker       TEXT NOT NULL,
	quantity     TEXT NOT NULL,
	price        TEXT NOT NULL,
	total_price  TEXT NOT NULL,
	dt_create    TEXT NOT NULL
);`

func NewSqliteClient(cfg *config.Config) *sqlx.DB {
	db, err := sqlx.Connect("sqlite", cfg.Storage.HistoryFile)
	if err != nil {
		slog.Error("error while opening history db", slog.String("err", err.Error()))
		panic(err)
	}

	if _, err := db.Exec(historySchema); err != nil {
		slog.Error("error while creating history schema", slog.String("err", err.Error()))
		panic(err)
	}

	slog.Info("history db ready", slog.String("path", cfg.Storage.HistoryFile))

	return db
}
