package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coinlink/exchange/internal/repos/transactions"
	"github.com/google/uuid"
)

func (r *transactionsRepo) MarkHandled(ctx context.Context, id uuid.UUID) (*transactions.Transaction, error) {
	row, err := scanTransaction(r.db.QueryRowContext(ctx, `
		UPDATE transactions
		SET handled = TRUE
		WHERE id = $1
		RETURNING id, from_code, to_code, amount, payout, user_id, handled, created_at
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transactions.ErrTransactionNotFound
		}

		return nil, fmt.Errorf("mark transaction handled: %w", err)
	}

	return row, nil
}
