package transactions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// Transaction is a single conversion event. Rows are append-only: after
// insert only Handled ever changes, and only via MarkHandled.
type Transaction struct {
	ID        uuid.UUID
	FromCode  string
	ToCode    string
	Amount    decimal.Decimal
	Payout    decimal.Decimal
	User      string
	Handled   bool
	Timestamp time.Time
}

type Transactions interface {
	Insert(tx *sql.Tx, row *Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*Transaction, error)
	MarkHandled(ctx context.Context, id uuid.UUID) (*Transaction, error)
}
