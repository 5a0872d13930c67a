package exchange

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPrice_WorkedExample(t *testing.T) {
	t.Parallel()

	// A: reserve=1000 value=1.0, B: reserve=500 value=2.0, amount=100.
	q := Price(dec("100"), dec("1000"), dec("1.0"), dec("500"), dec("2.0"))

	assert.True(t, q.NewFromValue.Equal(dec("0.9091")), "new from value: %s", q.NewFromValue)
	assert.True(t, q.NewFromReserve.Equal(dec("1100")), "new from reserve: %s", q.NewFromReserve)
	assert.True(t, q.Payout.Equal(dec("45.46")), "payout: %s", q.Payout)
	assert.True(t, q.Difference.Equal(dec("50")), "difference: %s", q.Difference)
	assert.True(t, q.NewToReserve.Equal(dec("450")), "new to reserve: %s", q.NewToReserve)
	assert.True(t, q.NewToValue.Equal(dec("2.2222")), "new to value: %s", q.NewToValue)
	assert.False(t, q.ToSkipped)
}

func TestPrice_Properties(t *testing.T) {
	t.Parallel()

	type tc struct {
		name        string
		amount      string
		fromReserve string
		fromValue   string
		toReserve   string
		toValue     string
	}

	tests := []tc{
		{"small_trade", "1", "1000", "1.0", "1000", "1.0"},
		{"cheap_into_expensive", "500", "100000", "0.01", "2000", "25"},
		{"expensive_into_cheap", "3", "50", "40", "900000", "0.05"},
		{"tiny_values", "0.5", "12.34", "0.0007", "400", "0.0003"},
		{"large_amount", "999999", "5000000", "1.5", "80000000", "0.8"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			amount := dec(tt.amount)
			fromReserve := dec(tt.fromReserve)
			fromValue := dec(tt.fromValue)

			q := Price(amount, fromReserve, fromValue, dec(tt.toReserve), dec(tt.toValue))

			assert.True(t, q.Payout.GreaterThanOrEqual(decimal.Zero), "payout must never be negative: %s", q.Payout)
			assert.True(t, q.NewFromValue.IsPositive(), "source value must stay positive: %s", q.NewFromValue)
			assert.True(t, q.NewFromReserve.GreaterThan(fromReserve), "source reserve must grow")

			// Market cap near-invariance on the source side: the only drift
			// allowed is the value rounding, which is at most half of the
			// last kept place per unit of reserve.
			capBefore := fromReserve.Mul(fromValue)
			capAfter := fromReserve.Add(amount).Mul(q.NewFromValue)
			tolerance := fromReserve.Add(amount).Mul(dec("0.00005"))
			drift := capBefore.Sub(capAfter).Abs()
			assert.True(t, drift.LessThanOrEqual(tolerance),
				"market cap drifted %s (tolerance %s)", drift, tolerance)
		})
	}
}

func TestPrice_PayoutRoundsToZero(t *testing.T) {
	t.Parallel()

	// Payout of a dust-sized trade rounds down to zero but never below.
	q := Price(dec("0.01"), dec("1000000"), dec("0.0001"), dec("1000"), dec("100"))

	require.True(t, q.Payout.Equal(decimal.Zero), "payout: %s", q.Payout)
}

func TestPrice_DestinationFloorSkip(t *testing.T) {
	t.Parallel()

	type tc struct {
		name      string
		toReserve string
	}

	tests := []tc{
		{"difference_exceeds_reserve", "40"},
		{"difference_reaches_floor", "50.01"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			toReserve := dec(tt.toReserve)
			toValue := dec("1.0")

			// difference = 100 * 0.5 / 1.0 = 50
			q := Price(dec("100"), dec("1000"), dec("0.5"), toReserve, toValue)

			require.True(t, q.ToSkipped)

			// The destination side is untouched but the payout is still owed.
			assert.True(t, q.NewToReserve.Equal(toReserve))
			assert.True(t, q.NewToValue.Equal(toValue))
			assert.True(t, q.Payout.IsPositive(), "payout still owed: %s", q.Payout)
		})
	}
}

func TestPrice_SourceSideAlwaysUpdates(t *testing.T) {
	t.Parallel()

	// Even when the destination drain is skipped, the source side absorbs
	// the full amount.
	q := Price(dec("100"), dec("1000"), dec("0.5"), dec("40"), dec("1.0"))

	require.True(t, q.ToSkipped)
	assert.True(t, q.NewFromReserve.Equal(dec("1100")))
	assert.True(t, q.NewFromValue.Equal(dec("0.4545")), "new from value: %s", q.NewFromValue)
}
