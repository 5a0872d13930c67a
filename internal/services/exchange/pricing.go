package exchange

import "github.com/shopspring/decimal"

// Persisted precision: two places for money-like quantities (reserves,
// amounts, payouts), four for unit valuations. Rounding is half away from
// zero and happens once, at the point of persistence.
const (
	reservePlaces = 2
	valuePlaces   = 4
)

// reserveFloor is the smallest reserve a destination currency may be left
// with. A drain that would cross it is skipped rather than committed.
var reserveFloor = decimal.New(1, -reservePlaces) // 0.01

// Quote is the outcome of pricing a single conversion: the payout owed to
// the user and the reserve/value transitions on both sides.
type Quote struct {
	Payout decimal.Decimal

	NewFromReserve decimal.Decimal
	NewFromValue   decimal.Decimal

	// Difference is the quantity of destination currency drained from its
	// reserve. It is derived from the source value before the source-side
	// update, not after.
	Difference   decimal.Decimal
	NewToReserve decimal.Decimal
	NewToValue   decimal.Decimal

	// ToSkipped reports that draining Difference would leave the
	// destination reserve at or below the floor, so the destination side
	// is left untouched. The payout is still owed.
	ToSkipped bool
}

// Price computes the payout for converting amount units of the source
// currency into the destination currency, holding each side's market cap
// (reserve times value) invariant.
//
// The source side absorbs the full amount unconditionally: its reserve
// grows by amount and its value shrinks to keep the cap constant. The
// destination side only updates while it stays safely above the floor.
func Price(amount, fromReserve, fromValue, toReserve, toValue decimal.Decimal) Quote {
	q := Quote{
		NewFromReserve: fromReserve.Add(amount).Round(reservePlaces),
		NewFromValue: fromReserve.Mul(fromValue).
			Div(fromReserve.Add(amount)).
			Round(valuePlaces),
	}

	// Settlement value extracted from the source side, at its post-trade
	// valuation, exchanged into destination units.
	fromWorth := amount.Mul(q.NewFromValue)

	q.Payout = fromWorth.Div(toValue).Round(reservePlaces)
	if q.Payout.IsNegative() {
		q.Payout = decimal.Zero
	}

	q.Difference = amount.Mul(fromValue).Div(toValue)

	remaining := toReserve.Sub(q.Difference)
	if remaining.Cmp(reserveFloor) <= 0 {
		q.ToSkipped = true
		q.NewToReserve = toReserve
		q.NewToValue = toValue

		return q
	}

	q.NewToReserve = remaining.Round(reservePlaces)
	q.NewToValue = toReserve.Mul(toValue).Div(remaining).Round(valuePlaces)

	return q
}
