package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Storage     Storage
	API         API
	Cache       Cache
	Jobs        Jobs
	Report      Report
	GoogleDrive GoogleDrive
}

type Storage struct {
	PortfolioFile string `env:"PORTFOLIO_FILE" envDefault:"portfolio.json"`
	HistoryFile   string `env:"HISTORY_FILE" envDefault:"history.db"`
}

type API struct {
	Debug    bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout  time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	QuoteApi QuoteApi
}

type QuoteApi struct {
	Url string `env:"QUOTE_API_URL" envDefault:"https://query1.finance.yahoo.com"`
}

type Cache struct {
	QuotesExpiration time.Duration `env:"CACHE_QUOTES_EXPIRATION" envDefault:"60s"`
}

type Jobs struct {
	RefreshInterval time.Duration `env:"REFRESH_JOB_INTERVAL" envDefault:"60s"`
}

type Report struct {
	Dir string `env:"REPORT_DIR" envDefault:"."`
}

type GoogleDrive struct {
	Enabled         bool   `env:"GOOGLE_DRIVE_ENABLED" envDefault:"false"`
	CredentialsFile string `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
