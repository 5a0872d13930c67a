package bots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coinlink/exchange/internal/repos/bots"
)

func (r *botsRepo) FindByToken(ctx context.Context, token string) (*bots.Bot, error) {
	var (
		bot    bots.Bot
		status string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT b.discord_id, b.name, b.status, c.code
		FROM bots b
		JOIN currencies c ON c.bot_id = b.discord_id
		WHERE b.token = $1
	`, token).Scan(&bot.DiscordID, &bot.Name, &status, &bot.CurrencyCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bots.ErrBotNotFound
		}

		return nil, fmt.Errorf("find bot by token: %w", err)
	}

	bot.Disabled = status == "disabled"

	return &bot, nil
}
