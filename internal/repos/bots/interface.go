package bots

import (
	"context"
	"errors"
)

var ErrBotNotFound = errors.New("bot not found")

// Bot is a registered economy owner. Every bot manages exactly one
// currency; CurrencyCode carries it so callers don't need a second lookup.
type Bot struct {
	DiscordID    string
	Name         string
	Disabled     bool
	CurrencyCode string
}

type Bots interface {
	// FindByToken resolves a bearer token to the bot it belongs to.
	FindByToken(ctx context.Context, token string) (*Bot, error)
	// ManagerOf returns the bot managing the given currency code.
	ManagerOf(ctx context.Context, currencyCode string) (*Bot, error)
}
