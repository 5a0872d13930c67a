package currencies

import (
	"database/sql"

	"github.com/coinlink/exchange/internal/repos/currencies"
)

var _ currencies.Currencies = (*currenciesRepo)(nil)

type currenciesRepo struct{ db *sql.DB }

func New(db *sql.DB) *currenciesRepo {
	return &currenciesRepo{db: db}
}
