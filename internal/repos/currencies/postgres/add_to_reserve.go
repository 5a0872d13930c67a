package currencies

import (
	"database/sql"
	"fmt"

	"github.com/coinlink/exchange/internal/repos/currencies"
	"github.com/shopspring/decimal"
)

// AddToReserve is a relative update: the reserve delta is applied against
// whatever the row holds at execution time, and value is recomputed from
// the invariant market cap. Two interleaved conversions touching the same
// currency therefore never overwrite each other's reserve. The recomputed
// value is clamped at the 0.0001 quantum so an extreme delta against a
// tiny market cap cannot round it to zero.
func (r *currenciesRepo) AddToReserve(tx *sql.Tx, code string, delta decimal.Decimal) (*currencies.Snapshot, error) {
	var snap currencies.Snapshot

	err := tx.QueryRow(`
		UPDATE currencies
		SET reserve = round(reserve + $2, 2),
		    value   = greatest(round(wid / round(reserve + $2, 2), 4), 0.0001)
		WHERE code = $1
		RETURNING reserve, value
	`, code, delta).Scan(&snap.Reserve, &snap.Value)
	if err != nil {
		return nil, fmt.Errorf("add to reserve: %w", err)
	}

	return &snap, nil
}
