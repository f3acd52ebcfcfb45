package domain

import (
	"fmt"
	"strings"
)

// StockKind distinguishes common stocks from preferred stocks. The two
// kinds differ only in how the dividend yield is computed.
type StockKind string

const (
	KindCommon    StockKind = "common"
	KindPreferred StockKind = "preferred"
)

// ParseStockKind parses a case-insensitive kind name.
func ParseStockKind(s string) (StockKind, error) {
	switch StockKind(strings.ToLower(s)) {
	case KindCommon:
		return KindCommon, nil
	case KindPreferred:
		return KindPreferred, nil
	}
	return "", &ValidationError{
		Message: fmt.Sprintf("kind must be 'common' or 'preferred', got %q", s),
	}
}

// Stock holds a listed security's dividend attributes. It is a value type:
// changing an attribute means building a new Stock with the same Symbol.
type Stock struct {
	Symbol               string
	Kind                 StockKind
	LastDividend         int64
	FixedDividendPercent int64 // only meaningful for preferred stocks
	ParValue             int64
}

// NewStock builds a validated Stock.
func NewStock(symbol string, kind StockKind, lastDividend, fixedDividendPercent, parValue int64) (Stock, error) {
	s := Stock{
		Symbol:               symbol,
		Kind:                 kind,
		LastDividend:         lastDividend,
		FixedDividendPercent: fixedDividendPercent,
		ParValue:             parValue,
	}
	if err := s.Validate(); err != nil {
		return Stock{}, err
	}
	return s, nil
}

// Validate checks the stock invariants. Malformed identity (empty symbol,
// unknown kind) yields a *ValidationError; bad dividend attributes yield
// ErrInvalidDividendConfig.
func (s Stock) Validate() error {
	if s.Symbol == "" {
		return &ValidationError{Message: "symbol must not be empty"}
	}
	switch s.Kind {
	case KindCommon:
	case KindPreferred:
		if s.FixedDividendPercent <= 0 {
			return fmt.Errorf("%w: preferred stock %s needs a fixed dividend > 0", ErrInvalidDividendConfig, s.Symbol)
		}
	default:
		return &ValidationError{
			Message: fmt.Sprintf("kind must be 'common' or 'preferred', got %q", s.Kind),
		}
	}
	if s.LastDividend < 0 {
		return fmt.Errorf("%w: last dividend must not be negative", ErrInvalidDividendConfig)
	}
	if s.ParValue < 0 {
		return fmt.Errorf("%w: par value must not be negative", ErrInvalidDividendConfig)
	}
	return nil
}

// WithLastDividend returns a copy of s with a new last dividend.
func (s Stock) WithLastDividend(lastDividend int64) (Stock, error) {
	return NewStock(s.Symbol, s.Kind, lastDividend, s.FixedDividendPercent, s.ParValue)
}
