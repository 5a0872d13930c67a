package exchange

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coinlink/exchange/internal/infra/pgtestutil"
	"github.com/coinlink/exchange/internal/metrics"
	"github.com/coinlink/exchange/internal/notify"
	"github.com/coinlink/exchange/internal/repos/bots"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventuallyTimeout = 2 * time.Second
	eventuallyTick    = 10 * time.Millisecond
)

// capturingRecorder collects metric points for assertions.
type capturingRecorder struct {
	mu     sync.Mutex
	points []metrics.Point
}

func (r *capturingRecorder) Record(_ context.Context, points ...metrics.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.points = append(r.points, points...)

	return nil
}

func seedBot(t *testing.T, db *sql.DB, id, name, token, status, code, currencyName, reserve, value, wid string) *bots.Bot {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO bots (discord_id, name, token, status) VALUES ($1, $2, $3, $4)
	`, id, name, token, status)
	if err != nil {
		t.Fatalf("seed bot %s: %v", name, err)
	}

	_, err = db.Exec(`
		INSERT INTO currencies (code, name, reserve, value, wid, bot_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, code, currencyName, reserve, value, wid, id)
	if err != nil {
		t.Fatalf("seed currency %s: %v", code, err)
	}

	return &bots.Bot{DiscordID: id, Name: name, Disabled: status == "disabled", CurrencyCode: code}
}

func currencyState(t *testing.T, db *sql.DB, code string) (reserve, value decimal.Decimal) {
	t.Helper()

	err := db.QueryRow(`SELECT reserve, value FROM currencies WHERE code = $1`, code).
		Scan(&reserve, &value)
	if err != nil {
		t.Fatalf("read currency %s: %v", code, err)
	}

	return reserve, value
}

func TestService_Create_WorkedExample(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	oatBot := seedBot(t, db, "1000000000000000001", "Oats Bot", "tok_oat", "active",
		"OAT", "Oats", "1000", "1.0", "1000")
	seedBot(t, db, "1000000000000000002", "Ribbon Bot", "tok_rbn", "active",
		"RBN", "Ribbons", "500", "2.0", "1000")

	recorder := &capturingRecorder{}
	svc := New(db, notify.Noop{}, recorder, Config{})

	tx, err := svc.Create(context.Background(), oatBot, CreateRequest{
		Amount: dec("100"), To: "RBN", User: "2100242447661793290",
	})
	require.NoError(t, err)

	assert.True(t, tx.Payout.Equal(dec("45.46")), "payout: %s", tx.Payout)
	assert.Equal(t, "OAT", tx.FromCode)
	assert.Equal(t, "RBN", tx.ToCode)
	assert.False(t, tx.Handled)

	fromReserve, fromValue := currencyState(t, db, "OAT")
	assert.True(t, fromReserve.Equal(dec("1100")), "OAT reserve: %s", fromReserve)
	assert.True(t, fromValue.Equal(dec("0.9091")), "OAT value: %s", fromValue)

	toReserve, toValue := currencyState(t, db, "RBN")
	assert.True(t, toReserve.Equal(dec("450")), "RBN reserve: %s", toReserve)
	assert.True(t, toValue.Equal(dec("2.2222")), "RBN value: %s", toValue)

	// The row must be durable and readable back through the service.
	got, err := svc.Get(context.Background(), oatBot, tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(dec("100")))
	assert.True(t, got.Payout.Equal(dec("45.46")))
}

func TestService_Create_FloorSkipStillCommits(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	// difference = 100 * 0.5 / 1.0 = 50; RBN would be left at exactly the
	// floor (50.01 - 50 = 0.01), so the drain is skipped. The guard chain
	// passes because difference < reserve.
	oatBot := seedBot(t, db, "1000000000000000001", "Oats Bot", "tok_oat", "active",
		"OAT", "Oats", "1000", "0.5", "500")
	seedBot(t, db, "1000000000000000002", "Ribbon Bot", "tok_rbn", "active",
		"RBN", "Ribbons", "50.01", "1.0", "50.01")

	recorder := &capturingRecorder{}
	svc := New(db, notify.Noop{}, recorder, Config{})

	tx, err := svc.Create(context.Background(), oatBot, CreateRequest{
		Amount: dec("100"), To: "RBN", User: "2100242447661793290",
	})
	require.NoError(t, err)
	assert.True(t, tx.Payout.IsPositive(), "payout still owed: %s", tx.Payout)

	// Destination untouched, source fully updated.
	toReserve, toValue := currencyState(t, db, "RBN")
	assert.True(t, toReserve.Equal(dec("50.01")), "RBN reserve: %s", toReserve)
	assert.True(t, toValue.Equal(dec("1.0")), "RBN value: %s", toValue)

	fromReserve, _ := currencyState(t, db, "OAT")
	assert.True(t, fromReserve.Equal(dec("1100")), "OAT reserve: %s", fromReserve)
}

func TestService_Create_ConcurrentConversionsSameDestination(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	// Destination large enough that its value stays pinned at 1.0000
	// across all drains, making every difference term exactly 50.
	seedBot(t, db, "1000000000000000099", "Hub Bot", "tok_hub", "active",
		"HUB", "Hubs", "100000000", "1.0", "100000000")

	const workers = 8

	sources := make([]*bots.Bot, 0, workers)
	for i := 0; i < workers; i++ {
		sources = append(sources, seedBot(t, db,
			fmt.Sprintf("10000000000000001%02d", i),
			fmt.Sprintf("Bot %d", i),
			fmt.Sprintf("tok_%d", i),
			"active",
			fmt.Sprintf("C%02d", i),
			fmt.Sprintf("Coin %d", i),
			"10000", "0.5", "5000"))
	}

	svc := New(db, notify.Noop{}, metrics.Noop{}, Config{})

	var wg sync.WaitGroup

	errs := make([]error, workers)

	for i, src := range sources {
		i, src := i, src

		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = svc.Create(context.Background(), src, CreateRequest{
				Amount: dec("100"), To: "HUB", User: "2100242447661793290",
			})
		}()
	}

	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	// No lost updates: every difference term of 50 landed.
	reserve, _ := currencyState(t, db, "HUB")
	want := dec("100000000").Sub(dec("50").Mul(decimal.NewFromInt(workers)))
	assert.True(t, reserve.Equal(want), "HUB reserve: %s, want %s", reserve, want)
}

func TestService_MarkHandled_EndToEnd(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	oatBot := seedBot(t, db, "1000000000000000001", "Oats Bot", "tok_oat", "active",
		"OAT", "Oats", "1000", "1.0", "1000")
	rbnBot := seedBot(t, db, "1000000000000000002", "Ribbon Bot", "tok_rbn", "active",
		"RBN", "Ribbons", "500", "2.0", "1000")

	svc := New(db, notify.Noop{}, metrics.Noop{}, Config{})

	tx, err := svc.Create(context.Background(), oatBot, CreateRequest{
		Amount: dec("100"), To: "RBN", User: "2100242447661793290",
	})
	require.NoError(t, err)

	// The sender must not be able to confirm delivery.
	_, err = svc.MarkHandled(context.Background(), oatBot, tx.ID)
	require.ErrorIs(t, err, ErrNotRecipient)

	updated, err := svc.MarkHandled(context.Background(), rbnBot, tx.ID)
	require.NoError(t, err)
	assert.True(t, updated.Handled)

	// Amount and payout survive the update untouched.
	assert.True(t, updated.Amount.Equal(tx.Amount))
	assert.True(t, updated.Payout.Equal(tx.Payout))

	// Idempotent: a second confirmation returns the same state.
	again, err := svc.MarkHandled(context.Background(), rbnBot, tx.ID)
	require.NoError(t, err)
	assert.True(t, again.Handled)
	assert.Equal(t, updated.ID, again.ID)
}

func TestService_Create_MetricsSkipUnmutatedDestination(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	oatBot := seedBot(t, db, "1000000000000000001", "Oats Bot", "tok_oat", "active",
		"OAT", "Oats", "1000", "0.5", "500")
	seedBot(t, db, "1000000000000000002", "Ribbon Bot", "tok_rbn", "active",
		"RBN", "Ribbons", "50.01", "1.0", "50.01")

	recorder := &capturingRecorder{}
	svc := New(db, notify.Noop{}, recorder, Config{})

	tx, err := svc.Create(context.Background(), oatBot, CreateRequest{
		Amount: dec("100"), To: "RBN", User: "2100242447661793290",
	})
	require.NoError(t, err)

	// Metrics delivery is asynchronous; wait for the single point from
	// the mutated source side.
	assert.Eventually(t, func() bool {
		recorder.mu.Lock()
		defer recorder.mu.Unlock()

		return len(recorder.points) == 1 && recorder.points[0].Currency == "OAT"
	}, eventuallyTimeout, eventuallyTick, "expected exactly one point for the source currency")

	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	require.Len(t, recorder.points, 1)
	assert.True(t, recorder.points[0].Reserve.Equal(dec("1100")))
	assert.Equal(t, tx.Timestamp, recorder.points[0].At)
}
