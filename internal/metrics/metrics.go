// Package metrics records per-currency time-series points after
// conversions mutate the ledger. Delivery is best effort: the economic
// state change has already been committed by the time a point is written.
package metrics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Point is one observation of a currency's reserve/value pair, stamped
// with the transaction timestamp that produced it.
type Point struct {
	Currency string
	Reserve  decimal.Decimal
	Value    decimal.Decimal
	At       time.Time
}

type Recorder interface {
	Record(ctx context.Context, points ...Point) error
}

// Noop discards points; used when no sink is configured and in tests.
type Noop struct{}

func (Noop) Record(context.Context, ...Point) error { return nil }
