package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/config"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/data"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/data/cache"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/data/repository/portfoliofile"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/data/repository/sqlite"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/externalApi/quoteApi"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/reportGenerator/xlsxGenerator"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/service/portfolioService"
	"github.com/nickaustinlee/stock-portfolio-balancer-v1/internal/transport/cli"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sqliteClient := data.NewSqliteClient(cfg)
	defer sqliteClient.Close()

	historyRepo := sqlite.New(sqliteClient)

	store := portfoliofile.New(cfg)

	quotesCache := cache.NewMemoryCache(cfg)

	quoteApiClient := quoteApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	var cloudStorage portfolioService.CloudStorage
	if cfg.GoogleDrive.Enabled {
		googleDriveClient, err := googleDriveApi.New(ctx, cfg)
		if err != nil {
			slog.Error("can't init google drive client, report upload disabled", slog.String("err", err.Error()))
		} else {
			cloudStorage = googleDriveClient
		}
	}

	portfolioSrv := portfolioService.New(cfg, store, quotesCache, quoteApiClient, historyRepo, reportGenerator, cloudStorage)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	cli.Register(commander, cfg, portfolioSrv)

	flag.Parse()
	os.Exit(int(commander.Execute(ctx)))
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
