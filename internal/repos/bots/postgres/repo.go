package bots

import (
	"database/sql"

	"github.com/coinlink/exchange/internal/repos/bots"
)

var _ bots.Bots = (*botsRepo)(nil)

type botsRepo struct{ db *sql.DB }

func New(db *sql.DB) *botsRepo {
	return &botsRepo{db: db}
}
