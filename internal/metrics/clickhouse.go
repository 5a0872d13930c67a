package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseConfig connects the recorder to a ClickHouse instance.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	Timeout  time.Duration
}

// ClickHouseRecorder persists currency points into a MergeTree table,
// one row per mutated currency per conversion.
type ClickHouseRecorder struct {
	conn driver.Conn
}

var _ Recorder = (*ClickHouseRecorder)(nil)

func NewClickHouseRecorder(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseRecorder, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: cfg.Timeout,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	err = conn.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS currency_points (
			code    String,
			reserve Float64,
			value   Float64,
			ts      DateTime64(3, 'UTC')
		) ENGINE = MergeTree()
		ORDER BY (code, ts)
	`)
	if err != nil {
		return nil, fmt.Errorf("ensure currency_points table: %w", err)
	}

	return &ClickHouseRecorder{conn: conn}, nil
}

func (r *ClickHouseRecorder) Record(ctx context.Context, points ...Point) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO currency_points (code, reserve, value, ts)")
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(p.Currency, p.Reserve.InexactFloat64(), p.Value.InexactFloat64(), p.At)
		if err != nil {
			return fmt.Errorf("append point for %s: %w", p.Currency, err)
		}
	}

	err = batch.Send()
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

func (r *ClickHouseRecorder) Close() error {
	return r.conn.Close()
}
