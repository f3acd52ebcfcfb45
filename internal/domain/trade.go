package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction indicates whether a trade was a buy or a sell.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// ParseDirection parses a case-insensitive direction name.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case DirectionBuy:
		return DirectionBuy, nil
	case DirectionSell:
		return DirectionSell, nil
	}
	return "", &ValidationError{
		Message: fmt.Sprintf("direction must be 'buy' or 'sell', got %q", s),
	}
}

// Validate reports a *ValidationError for a direction other than buy or sell.
func (d Direction) Validate() error {
	switch d {
	case DirectionBuy, DirectionSell:
		return nil
	}
	return &ValidationError{
		Message: fmt.Sprintf("direction must be 'buy' or 'sell', got %q", string(d)),
	}
}

// Trade records a single transaction on a stock. Trades are passed and
// stored by value and never modified after construction.
type Trade struct {
	TradeID   string
	Timestamp time.Time
	Quantity  int64
	Direction Direction
	Price     int64
}

// NewTrade builds a Trade with a fresh ID. It returns ErrInvalidPrice
// when price is not positive and a *ValidationError for an unknown
// direction.
func NewTrade(timestamp time.Time, quantity int64, direction Direction, price int64) (Trade, error) {
	if price <= 0 {
		return Trade{}, ErrInvalidPrice
	}
	if err := direction.Validate(); err != nil {
		return Trade{}, err
	}
	return Trade{
		TradeID:   uuid.New().String(),
		Timestamp: timestamp,
		Quantity:  quantity,
		Direction: direction,
		Price:     price,
	}, nil
}

// Value returns price × quantity. It wraps when the product leaves the
// int64 range.
func (t Trade) Value() int64 {
	return t.Price * t.Quantity
}
