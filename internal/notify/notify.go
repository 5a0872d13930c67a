// Package notify announces committed transactions to an outbound webhook.
// Delivery is fire-and-forget: failures are logged by the caller, never
// retried, and never roll back the transaction they describe.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Detail is the full public shape of a committed transaction.
type Detail struct {
	ID       uuid.UUID
	Amount   decimal.Decimal
	Payout   decimal.Decimal
	FromCode string
	FromName string
	ToCode   string
	ToName   string
	User     string
	At       time.Time
}

type Notifier interface {
	TransactionCreated(ctx context.Context, d Detail) error
}

// Noop drops notifications; used when no webhook is configured and in
// tests.
type Noop struct{}

func (Noop) TransactionCreated(context.Context, Detail) error { return nil }
