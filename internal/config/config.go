package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// ClickHouseConfig configures the currency metrics sink. An empty Addr
// disables it.
type ClickHouseConfig struct {
	Addr     string        `env:"CLICKHOUSE_ADDR" envDefault:""`
	Database string        `env:"CLICKHOUSE_DATABASE" envDefault:"default"`
	Username string        `env:"CLICKHOUSE_USERNAME" envDefault:"default"`
	Password string        `env:"CLICKHOUSE_PASSWORD" envDefault:""`
	Timeout  time.Duration `env:"CLICKHOUSE_TIMEOUT" envDefault:"5s"`
}

// WebhookConfig configures the transaction notification webhook. An empty
// URL disables it.
type WebhookConfig struct {
	URL string `env:"WEBHOOK_URL" envDefault:""`
}
