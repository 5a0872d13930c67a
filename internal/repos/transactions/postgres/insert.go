package transactions

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/coinlink/exchange/internal/repos/currencies"
	"github.com/coinlink/exchange/internal/repos/transactions"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *transactionsRepo) Insert(tx *sql.Tx, row *transactions.Transaction) error {
	_, err := tx.Exec(`
		INSERT INTO transactions (id, from_code, to_code, amount, payout, user_id, handled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, row.ID, row.FromCode, row.ToCode, row.Amount, row.Payout, row.User, row.Handled, row.Timestamp)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23503" { // foreign_key_violation
				return currencies.ErrCurrencyNotFound
			}
		}

		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}
