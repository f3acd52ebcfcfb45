package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to response error codes.
var (
	ErrDuplicateListing      = errors.New("duplicate_listing")
	ErrUnknownStock          = errors.New("unknown_stock")
	ErrInvalidPrice          = errors.New("invalid_price")
	ErrInvalidDividendConfig = errors.New("invalid_dividend_config")
	ErrNoStocksListed        = errors.New("no_stocks_listed")
)

// ValidationError represents malformed caller input, such as an unknown
// stock kind or an empty symbol.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
