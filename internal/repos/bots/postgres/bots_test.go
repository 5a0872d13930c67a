package bots

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/coinlink/exchange/internal/infra/pgtestutil"
	"github.com/coinlink/exchange/internal/repos/bots"
)

func seedBot(t *testing.T, db *sql.DB, id, name, token, status, code string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO bots (discord_id, name, token, status) VALUES ($1, $2, $3, $4)
	`, id, name, token, status)
	if err != nil {
		t.Fatalf("seed bot %s: %v", name, err)
	}

	_, err = db.Exec(`
		INSERT INTO currencies (code, name, reserve, value, wid, bot_id)
		VALUES ($1, $2, 1000, 1.0, 1000, $3)
	`, code, "Currency "+code, id)
	if err != nil {
		t.Fatalf("seed currency %s: %v", code, err)
	}
}

func TestBots_FindByToken(t *testing.T) {
	t.Parallel()

	type tc struct {
		name         string
		token        string
		wantErr      error
		wantID       string
		wantCode     string
		wantDisabled bool
	}

	tests := []tc{
		{
			name:     "active_bot",
			token:    "tok_oat",
			wantID:   "1000000000000000001",
			wantCode: "OAT",
		},
		{
			name:         "disabled_bot_still_resolves",
			token:        "tok_rtd",
			wantID:       "1000000000000000003",
			wantCode:     "RTD",
			wantDisabled: true,
		},
		{
			name:    "unknown_token",
			token:   "tok_nope",
			wantErr: bots.ErrBotNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			seedBot(t, db, "1000000000000000001", "Oats Bot", "tok_oat", "active", "OAT")
			seedBot(t, db, "1000000000000000003", "Retired Bot", "tok_rtd", "disabled", "RTD")

			repo := New(db)

			bot, err := repo.FindByToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("find by token: %v", err)
			}

			if bot.DiscordID != tt.wantID || bot.CurrencyCode != tt.wantCode || bot.Disabled != tt.wantDisabled {
				t.Fatalf("unexpected bot: %+v", bot)
			}
		})
	}
}

func TestBots_ManagerOf(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedBot(t, db, "1000000000000000001", "Oats Bot", "tok_oat", "active", "OAT")

	repo := New(db)

	bot, err := repo.ManagerOf(context.Background(), "OAT")
	if err != nil {
		t.Fatalf("manager of: %v", err)
	}

	if bot.DiscordID != "1000000000000000001" || bot.CurrencyCode != "OAT" {
		t.Fatalf("unexpected manager: %+v", bot)
	}

	_, err = repo.ManagerOf(context.Background(), "NOPE")
	if !errors.Is(err, bots.ErrBotNotFound) {
		t.Fatalf("want ErrBotNotFound, got %v", err)
	}
}
