package exchange

import "errors"

// Guard and validation failures. The API layer maps these onto HTTP
// statuses with errors.Is; anything else coming out of the service is a
// storage failure and stays opaque to clients.
var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrSelfConversion   = errors.New("the from and to currencies must be different")
	ErrUnknownCurrency  = errors.New("unknown destination currency")
	ErrCurrencyDisabled = errors.New("destination currency is disabled")
	ErrReserveExhausted = errors.New("conversion would exhaust the destination reserve")
	ErrNotRecipient     = errors.New("only the recipient bot may update a transaction")
	ErrInvalidAmount    = errors.New("amount must be a positive number with at most 2 decimal places")
	ErrAmountTooLarge   = errors.New("amount exceeds the conversion maximum")
	ErrInvalidUser      = errors.New("user id must be a 16 to 22 digit number")
	ErrEmptyBatch       = errors.New("bulk request contains no transactions")
)
