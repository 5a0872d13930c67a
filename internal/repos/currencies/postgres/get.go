package currencies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coinlink/exchange/internal/repos/currencies"
)

const getQuery = `
	SELECT code, name, reserve, value, wid, bot_id
	FROM currencies
	WHERE code = $1
`

func (r *currenciesRepo) Get(ctx context.Context, code string) (*currencies.Currency, error) {
	return scanCurrency(r.db.QueryRowContext(ctx, getQuery, code))
}

// GetTx reads a currency inside an open transaction. Pricing reads go
// through here so every computation starts from the row as of its own
// transaction boundary.
func (r *currenciesRepo) GetTx(tx *sql.Tx, code string) (*currencies.Currency, error) {
	return scanCurrency(tx.QueryRow(getQuery, code))
}

func scanCurrency(row *sql.Row) (*currencies.Currency, error) {
	var c currencies.Currency

	err := row.Scan(&c.Code, &c.Name, &c.Reserve, &c.Value, &c.Wid, &c.BotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, currencies.ErrCurrencyNotFound
		}

		return nil, fmt.Errorf("get currency: %w", err)
	}

	return &c, nil
}
