package currencies

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrCurrencyNotFound = errors.New("currency not found")

// Currency is an exchangeable unit of value backed by a reserve.
// Wid is the market cap (reserve * value) in the settlement unit.
type Currency struct {
	Code    string
	Name    string
	Reserve decimal.Decimal
	Value   decimal.Decimal
	Wid     decimal.Decimal
	BotID   string
}

// Snapshot is the reserve/value pair of a currency after a mutation.
type Snapshot struct {
	Reserve decimal.Decimal
	Value   decimal.Decimal
}

type Currencies interface {
	Get(ctx context.Context, code string) (*Currency, error)
	GetTx(tx *sql.Tx, code string) (*Currency, error)
	// AddToReserve grows the reserve by delta and recomputes value as
	// wid / reserve server-side, against the freshly updated row.
	AddToReserve(tx *sql.Tx, code string, delta decimal.Decimal) (*Snapshot, error)
	// DrainReserve shrinks the reserve by delta under the same server-side
	// recompute. The update only applies while the resulting reserve stays
	// above floor; ok reports whether the row was mutated.
	DrainReserve(tx *sql.Tx, code string, delta, floor decimal.Decimal) (*Snapshot, bool, error)
}
