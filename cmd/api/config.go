package main

import (
	"log/slog"
	"time"

	"github.com/coinlink/exchange/internal/config"
	"github.com/shopspring/decimal"
)

type apiConfig struct {
	Port            uint16          `env:"APP_PORT" envDefault:"8080"`
	LogLevel        slog.Level      `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration   `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration   `env:"APP_REQUEST_TIMEOUT" envDefault:"10s"`
	MaxAmount       decimal.Decimal `env:"APP_MAX_AMOUNT" envDefault:"1000000000"`

	Postgres   config.PostgresConfig
	ClickHouse config.ClickHouseConfig
	Webhook    config.WebhookConfig
}
