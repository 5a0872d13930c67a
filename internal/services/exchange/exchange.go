package exchange

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coinlink/exchange/internal/infra/pgutils"
	"github.com/coinlink/exchange/internal/metrics"
	"github.com/coinlink/exchange/internal/notify"
	"github.com/coinlink/exchange/internal/repos/bots"
	pgbots "github.com/coinlink/exchange/internal/repos/bots/postgres"
	"github.com/coinlink/exchange/internal/repos/currencies"
	pgcurrencies "github.com/coinlink/exchange/internal/repos/currencies/postgres"
	"github.com/coinlink/exchange/internal/repos/transactions"
	pgtransactions "github.com/coinlink/exchange/internal/repos/transactions/postgres"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMaxAmount caps a single conversion.
var DefaultMaxAmount = decimal.NewFromInt(1_000_000_000)

const defaultRequestTimeout = 10 * time.Second

// Config tunes the orchestrator. Zero values fall back to defaults.
type Config struct {
	// MaxAmount is the largest accepted conversion amount.
	MaxAmount decimal.Decimal
	// RequestTimeout bounds the guard-through-commit sequence of a single
	// create request; on expiry the whole request fails with no partial
	// reserve mutation.
	RequestTimeout time.Duration
}

// Service sequences validation, pricing, ledger mutation and side-effect
// notification for conversion transactions.
type Service struct {
	db           *sql.DB
	bots         bots.Bots
	currencies   currencies.Currencies
	transactions transactions.Transactions
	notifier     notify.Notifier
	recorder     metrics.Recorder
	maxAmount    decimal.Decimal
	timeout      time.Duration
}

func New(db *sql.DB, notifier notify.Notifier, recorder metrics.Recorder, cfg Config) *Service {
	if cfg.MaxAmount.IsZero() {
		cfg.MaxAmount = DefaultMaxAmount
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	return &Service{
		db:           db,
		bots:         pgbots.New(db),
		currencies:   pgcurrencies.New(db),
		transactions: pgtransactions.New(db),
		notifier:     notifier,
		recorder:     recorder,
		maxAmount:    cfg.MaxAmount,
		timeout:      cfg.RequestTimeout,
	}
}

// CreateRequest is a conversion request from the authenticated bot's
// currency into To, on behalf of User.
type CreateRequest struct {
	Amount decimal.Decimal
	To     string
	User   string
}

// Create runs the full flow for one conversion:
//
// 1) Guard chain (auth, self-conversion, request shape, destination
// existence and eligibility, reserve-exhaustion dry run).
// 2) Inside a single DB transaction: re-read both currencies, price the
// conversion, apply the reserve/value transitions, insert the row.
// 3) Fire-and-forget webhook notification and metrics points.
func (s *Service) Create(ctx context.Context, bot *bots.Bot, req CreateRequest) (*transactions.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.guardCreate(ctx, bot, req)
	if err != nil {
		return nil, err
	}

	return s.commitConversion(ctx, bot, req)
}

// CreateBatch prices and commits each element independently, in order.
// Every element is guard-checked before the first commit, but a storage
// failure mid-batch leaves already-committed siblings standing.
func (s *Service) CreateBatch(ctx context.Context, bot *bots.Bot, reqs []CreateRequest) ([]*transactions.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := runChecks(authenticated(bot)); err != nil {
		return nil, err
	}

	if len(reqs) == 0 {
		return nil, ErrEmptyBatch
	}

	for i, req := range reqs {
		err := s.guardCreate(ctx, bot, req)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
	}

	out := make([]*transactions.Transaction, 0, len(reqs))

	for i, req := range reqs {
		row, err := s.commitConversion(ctx, bot, req)
		if err != nil {
			slog.Error("bulk conversion failed mid-batch",
				"index", i, "committed", len(out), "error", err)

			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}

		out = append(out, row)
	}

	return out, nil
}

// MarkHandled flips the handled flag of a transaction. Only the bot
// managing the destination currency may do so; a repeated call is a no-op
// returning the current row. No pricing recomputation happens here.
func (s *Service) MarkHandled(ctx context.Context, bot *bots.Bot, id uuid.UUID) (*transactions.Transaction, error) {
	err := runChecks(authenticated(bot))
	if err != nil {
		return nil, err
	}

	row, err := s.transactions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	recipient, err := s.bots.ManagerOf(ctx, row.ToCode)
	if err != nil {
		if errors.Is(err, bots.ErrBotNotFound) {
			return nil, ErrNotRecipient
		}

		return nil, fmt.Errorf("resolve transaction recipient: %w", err)
	}

	if recipient.DiscordID != bot.DiscordID {
		return nil, ErrNotRecipient
	}

	if row.Handled {
		return row, nil
	}

	updated, err := s.transactions.MarkHandled(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark handled: %w", err)
	}

	return updated, nil
}

// Get returns a single transaction by id.
func (s *Service) Get(ctx context.Context, bot *bots.Bot, id uuid.UUID) (*transactions.Transaction, error) {
	err := runChecks(authenticated(bot))
	if err != nil {
		return nil, err
	}

	return s.transactions.Get(ctx, id)
}

// commitConversion prices the conversion and applies it as one atomic
// unit: two reserve updates (or one, when the destination floor skip
// fires) plus the transaction row. Reserve mutations are relative deltas
// evaluated against the fresh row at the storage layer, applied in
// lexicographic code order so overlapping conversions cannot deadlock.
func (s *Service) commitConversion(ctx context.Context, bot *bots.Bot, req CreateRequest) (*transactions.Transaction, error) {
	var (
		row      *transactions.Transaction
		points   []metrics.Point
		fromName string
		toName   string
	)

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		from, err := s.currencies.GetTx(tx, bot.CurrencyCode)
		if err != nil {
			return fmt.Errorf("read source currency: %w", err)
		}

		to, err := s.currencies.GetTx(tx, req.To)
		if err != nil {
			if errors.Is(err, currencies.ErrCurrencyNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownCurrency, req.To)
			}

			return fmt.Errorf("read destination currency: %w", err)
		}

		quote := Price(req.Amount, from.Reserve, from.Value, to.Reserve, to.Value)

		now := time.Now().UTC()

		var (
			fromSnap *currencies.Snapshot
			toSnap   *currencies.Snapshot
			toMoved  bool
		)

		applyFrom := func() error {
			fromSnap, err = s.currencies.AddToReserve(tx, from.Code, req.Amount)
			return err
		}
		applyTo := func() error {
			toSnap, toMoved, err = s.currencies.DrainReserve(tx, to.Code, quote.Difference, reserveFloor)
			return err
		}

		first, second := applyFrom, applyTo
		if to.Code < from.Code {
			first, second = applyTo, applyFrom
		}

		if err := first(); err != nil {
			return fmt.Errorf("apply conversion: %w", err)
		}
		if err := second(); err != nil {
			return fmt.Errorf("apply conversion: %w", err)
		}

		row = &transactions.Transaction{
			ID:        uuid.New(),
			FromCode:  from.Code,
			ToCode:    to.Code,
			Amount:    req.Amount.Round(reservePlaces),
			Payout:    quote.Payout,
			User:      req.User,
			Handled:   false,
			Timestamp: now,
		}

		err = s.transactions.Insert(tx, row)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		points = append(points[:0], metrics.Point{
			Currency: from.Code,
			Reserve:  fromSnap.Reserve,
			Value:    fromSnap.Value,
			At:       now,
		})

		if toMoved {
			points = append(points, metrics.Point{
				Currency: to.Code,
				Reserve:  toSnap.Reserve,
				Value:    toSnap.Value,
				At:       now,
			})
		} else {
			slog.Warn("destination reserve floor reached, drain skipped",
				"currency", to.Code, "difference", quote.Difference.String())
		}

		fromName, toName = from.Name, to.Name

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.finish(ctx, row, fromName, toName, points)

	return row, nil
}

// finish delivers the side effects of a committed conversion. The ledger
// change already happened, so failures here are logged and swallowed.
func (s *Service) finish(ctx context.Context, row *transactions.Transaction, fromName, toName string, points []metrics.Point) {
	detached := context.WithoutCancel(ctx)

	go func() {
		err := s.notifier.TransactionCreated(detached, notify.Detail{
			ID:       row.ID,
			Amount:   row.Amount,
			Payout:   row.Payout,
			FromCode: row.FromCode,
			FromName: fromName,
			ToCode:   row.ToCode,
			ToName:   toName,
			User:     row.User,
			At:       row.Timestamp,
		})
		if err != nil {
			slog.Error("transaction notification failed", "transaction", row.ID, "error", err)
		}
	}()

	go func() {
		err := s.recorder.Record(detached, points...)
		if err != nil {
			slog.Error("currency metrics write failed", "transaction", row.ID, "error", err)
		}
	}()
}
