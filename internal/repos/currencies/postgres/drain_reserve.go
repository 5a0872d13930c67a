package currencies

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/coinlink/exchange/internal/repos/currencies"
	"github.com/shopspring/decimal"
)

// DrainReserve mirrors AddToReserve with a floor predicate: the update is
// a no-op when it would leave the reserve at or below floor, so a
// conversion can never drive a currency's backing to zero through rounding
// or extreme amounts. Zero rows affected reports ok=false, not an error.
func (r *currenciesRepo) DrainReserve(tx *sql.Tx, code string, delta, floor decimal.Decimal) (*currencies.Snapshot, bool, error) {
	var snap currencies.Snapshot

	err := tx.QueryRow(`
		UPDATE currencies
		SET reserve = round(reserve - $2, 2),
		    value   = round(wid / round(reserve - $2, 2), 4)
		WHERE code = $1
		  AND reserve - $2 > $3
		RETURNING reserve, value
	`, code, delta, floor).Scan(&snap.Reserve, &snap.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("drain reserve: %w", err)
	}

	return &snap, true, nil
}
