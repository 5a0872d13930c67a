package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coinlink/exchange/internal/repos/transactions"
	"github.com/google/uuid"
)

func (r *transactionsRepo) Get(ctx context.Context, id uuid.UUID) (*transactions.Transaction, error) {
	row, err := scanTransaction(r.db.QueryRowContext(ctx, `
		SELECT id, from_code, to_code, amount, payout, user_id, handled, created_at
		FROM transactions
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transactions.ErrTransactionNotFound
		}

		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return row, nil
}
