package exchange

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/coinlink/exchange/internal/repos/bots"
	"github.com/coinlink/exchange/internal/repos/currencies"
)

// A check is one link of the guard chain: nil means pass, a domain error
// means reject. Checks run in order and the chain stops at the first
// rejection, so later checks may rely on what earlier ones established
// (the reserve check assumes the destination was already resolved).
type check func() error

func runChecks(checks ...check) error {
	for _, c := range checks {
		err := c()
		if err != nil {
			return err
		}
	}

	return nil
}

// Discord snowflake: 16 to 22 digits.
var userIDPattern = regexp.MustCompile(`^[0-9]{16,22}$`)

// authenticated rejects missing and disabled requesters alike: a disabled
// bot's token must behave as if it no longer resolves, for every
// operation.
func authenticated(bot *bots.Bot) check {
	return func() error {
		if bot == nil || bot.Disabled {
			return ErrUnauthenticated
		}

		return nil
	}
}

func (s *Service) validRequest(req CreateRequest) check {
	return func() error {
		if !req.Amount.IsPositive() {
			return ErrInvalidAmount
		}

		// Sub-cent precision would round to a zero amount at persistence.
		if !req.Amount.Equal(req.Amount.Round(reservePlaces)) {
			return ErrInvalidAmount
		}

		if req.Amount.GreaterThan(s.maxAmount) {
			return ErrAmountTooLarge
		}

		if !userIDPattern.MatchString(req.User) {
			return ErrInvalidUser
		}

		return nil
	}
}

func notSelfConversion(bot *bots.Bot, to string) check {
	return func() error {
		if to == bot.CurrencyCode {
			return fmt.Errorf("%w: %s", ErrSelfConversion, to)
		}

		return nil
	}
}

// destinationExists resolves the destination currency into dest for the
// checks that follow it.
func (s *Service) destinationExists(ctx context.Context, to string, dest **currencies.Currency) check {
	return func() error {
		c, err := s.currencies.Get(ctx, to)
		if err != nil {
			if errors.Is(err, currencies.ErrCurrencyNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
			}

			return fmt.Errorf("resolve destination currency: %w", err)
		}

		*dest = c

		return nil
	}
}

func (s *Service) destinationEnabled(ctx context.Context, to string) check {
	return func() error {
		manager, err := s.bots.ManagerOf(ctx, to)
		if err != nil {
			if errors.Is(err, bots.ErrBotNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
			}

			return fmt.Errorf("resolve destination manager: %w", err)
		}

		if manager.Disabled {
			return fmt.Errorf("%w: %s", ErrCurrencyDisabled, to)
		}

		return nil
	}
}

// reserveNotExhausted is a dry run of the drain side of the pricing
// formula against current state: a conversion whose difference term would
// reach the whole destination reserve is rejected outright. This is a hard
// rejection protecting the requester; the floor skip at commit time is a
// separate soft policy protecting the ledger.
func (s *Service) reserveNotExhausted(ctx context.Context, bot *bots.Bot, req CreateRequest, dest **currencies.Currency) check {
	return func() error {
		from, err := s.currencies.Get(ctx, bot.CurrencyCode)
		if err != nil {
			return fmt.Errorf("resolve source currency: %w", err)
		}

		to := *dest

		difference := req.Amount.Mul(from.Value).Div(to.Value)
		if difference.GreaterThanOrEqual(to.Reserve) {
			return fmt.Errorf("%w: %s", ErrReserveExhausted, to.Code)
		}

		return nil
	}
}

func (s *Service) guardCreate(ctx context.Context, bot *bots.Bot, req CreateRequest) error {
	var dest *currencies.Currency

	return runChecks(
		authenticated(bot),
		notSelfConversion(bot, req.To),
		s.validRequest(req),
		s.destinationExists(ctx, req.To, &dest),
		s.destinationEnabled(ctx, req.To),
		s.reserveNotExhausted(ctx, bot, req, &dest),
	)
}
