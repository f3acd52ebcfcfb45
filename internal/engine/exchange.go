package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/efreitasn/gbce/internal/domain"
)

// DefaultWindow is the look-back period for the volume-weighted price.
const DefaultWindow = 5 * time.Minute

// Option configures an Exchange.
type Option func(*Exchange)

// WithClock sets the source of the current time. Tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(e *Exchange) {
		e.now = now
	}
}

// WithWindow sets the volume-weighted price window.
func WithWindow(d time.Duration) Option {
	return func(e *Exchange) {
		e.window = d
	}
}

// WithLogger sets the logger used for listing and trade events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exchange) {
		e.logger = l
	}
}

// Exchange owns the registry of listed stocks and their trade histories,
// and computes metrics from them. A single mutex is held for the whole of
// every public method, so each call sees and leaves a consistent state.
type Exchange struct {
	mu        sync.Mutex
	stocks    map[string]domain.Stock
	histories map[string]*History
	now       func() time.Time
	window    time.Duration
	logger    *slog.Logger
}

// NewExchange creates an empty Exchange.
func NewExchange(opts ...Option) *Exchange {
	e := &Exchange{
		stocks:    make(map[string]domain.Stock),
		histories: make(map[string]*History),
		now:       time.Now,
		window:    DefaultWindow,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Window returns the configured volume-weighted price window.
func (e *Exchange) Window() time.Duration {
	return e.window
}

// Listing is a stock together with its existing trade history, which may
// be empty and may be in any order.
type Listing struct {
	Stock   domain.Stock
	History []domain.Trade
}

// NewExchangeFrom creates an Exchange already holding listings, with each
// history sorted newest first. It fails like ListAll.
func NewExchangeFrom(listings []Listing, opts ...Option) (*Exchange, error) {
	e := NewExchange(opts...)
	if err := e.ListAll(listings); err != nil {
		return nil, err
	}
	return e, nil
}

// ListStock registers a stock together with its existing trade history,
// which may be empty and may be in any order. It returns
// domain.ErrDuplicateListing if the symbol is already listed, and leaves
// the exchange untouched on any error.
func (e *Exchange) ListStock(stock domain.Stock, initialHistory []domain.Trade) error {
	return e.ListAll([]Listing{{Stock: stock, History: initialHistory}})
}

// ListAll registers several stocks at once. Either every listing is added
// or, on any error, none is.
func (e *Exchange) ListAll(listings []Listing) error {
	for _, l := range listings {
		if err := validateListing(l); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]bool, len(listings))
	for _, l := range listings {
		if _, exists := e.stocks[l.Stock.Symbol]; exists || seen[l.Stock.Symbol] {
			return fmt.Errorf("%s: %w", l.Stock.Symbol, domain.ErrDuplicateListing)
		}
		seen[l.Stock.Symbol] = true
	}

	for _, l := range listings {
		e.stocks[l.Stock.Symbol] = l.Stock
		e.histories[l.Stock.Symbol] = NewHistory(l.History)

		e.logger.Debug("stock listed",
			slog.String("symbol", l.Stock.Symbol),
			slog.String("kind", string(l.Stock.Kind)),
			slog.Int("history", len(l.History)),
		)
	}
	return nil
}

func validateListing(l Listing) error {
	if err := l.Stock.Validate(); err != nil {
		return err
	}
	for _, t := range l.History {
		if t.Price <= 0 {
			return domain.ErrInvalidPrice
		}
		if err := t.Direction.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStock replaces the attributes of an already listed stock. The
// trade history is kept.
func (e *Exchange) UpdateStock(stock domain.Stock) error {
	if err := stock.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.stocks[stock.Symbol]; !exists {
		return domain.ErrUnknownStock
	}
	e.stocks[stock.Symbol] = stock

	e.logger.Debug("stock updated",
		slog.String("symbol", stock.Symbol),
		slog.Int64("last_dividend", stock.LastDividend),
	)
	return nil
}

// RecordTrade records a trade stamped with the current time as the most
// recent entry of the stock's history.
func (e *Exchange) RecordTrade(symbol string, quantity, price int64, direction domain.Direction) (domain.Trade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.histories[symbol]
	if !ok {
		return domain.Trade{}, domain.ErrUnknownStock
	}

	t, err := domain.NewTrade(e.now(), quantity, direction, price)
	if err != nil {
		return domain.Trade{}, err
	}
	h.Insert(t)

	e.logger.Debug("trade recorded",
		slog.String("symbol", symbol),
		slog.String("trade_id", t.TradeID),
		slog.String("direction", string(direction)),
		slog.Int64("quantity", quantity),
		slog.Int64("price", price),
	)
	return t, nil
}

// IsListed reports whether symbol is listed.
func (e *Exchange) IsListed(symbol string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.stocks[symbol]
	return ok
}

// GetStock returns the listed stock for symbol, or domain.ErrUnknownStock.
func (e *Exchange) GetStock(symbol string) (domain.Stock, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.stocks[symbol]
	if !ok {
		return domain.Stock{}, domain.ErrUnknownStock
	}
	return s, nil
}

// History returns a copy of the stock's trades, most recent first.
func (e *Exchange) History(symbol string) ([]domain.Trade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.histories[symbol]
	if !ok {
		return nil, domain.ErrUnknownStock
	}
	return h.Trades(), nil
}

// Symbols returns the listed symbols in ascending order.
func (e *Exchange) Symbols() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.symbolsLocked()
}

func (e *Exchange) symbolsLocked() []string {
	symbols := make([]string, 0, len(e.stocks))
	for s := range e.stocks {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
