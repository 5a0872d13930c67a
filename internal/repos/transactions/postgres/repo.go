package transactions

import (
	"database/sql"

	"github.com/coinlink/exchange/internal/repos/transactions"
)

var _ transactions.Transactions = (*transactionsRepo)(nil)

type transactionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *transactionsRepo {
	return &transactionsRepo{db: db}
}

func scanTransaction(row *sql.Row) (*transactions.Transaction, error) {
	var t transactions.Transaction

	err := row.Scan(&t.ID, &t.FromCode, &t.ToCode, &t.Amount, &t.Payout, &t.User, &t.Handled, &t.Timestamp)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
