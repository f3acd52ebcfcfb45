package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/efreitasn/gbce/internal/domain"
)

// noTradesPrice is the volume-weighted price reported when no trade falls
// inside the window. The all-share index multiplies it in like any other
// price, so it must stay exactly 1.
const noTradesPrice = 1.0

// VWAPStats describes the trades that contributed to a volume-weighted price.
// TotalValue is accumulated in float64 and does not wrap; TotalQuantity is
// an exact int64 sum and wraps past math.MaxInt64.
type VWAPStats struct {
	Symbol         string
	Price          float64
	TradesInWindow int
	TotalQuantity  int64
	TotalValue     float64
	LastTradeAt    *time.Time // nil when the stock was never traded
	Window         time.Duration
}

// IndexSnapshot is the all-share index together with the per-stock figures
// it was computed from, all taken at the same instant.
type IndexSnapshot struct {
	Index      float64
	Components []VWAPStats // ordered by symbol
	Window     time.Duration
	ComputedAt time.Time
}

// DividendYield returns the dividend return of a listed stock relative to
// price. The price is checked before the symbol.
func (e *Exchange) DividendYield(symbol string, price int64) (float64, error) {
	if price <= 0 {
		return 0, domain.ErrInvalidPrice
	}
	stock, err := e.GetStock(symbol)
	if err != nil {
		return 0, err
	}

	switch stock.Kind {
	case domain.KindCommon:
		return float64(stock.LastDividend) / float64(price), nil
	case domain.KindPreferred:
		return (float64(stock.FixedDividendPercent) / 100.0) * float64(stock.ParValue) / float64(price), nil
	default:
		panic(fmt.Sprintf("engine: unhandled stock kind %q", stock.Kind))
	}
}

// PERatio returns price divided by the last dividend. A stock that paid no
// dividend has a ratio of 0.
func (e *Exchange) PERatio(symbol string, price int64) (float64, error) {
	if price <= 0 {
		return 0, domain.ErrInvalidPrice
	}
	stock, err := e.GetStock(symbol)
	if err != nil {
		return 0, err
	}

	if stock.LastDividend == 0 {
		return 0, nil
	}
	return float64(price) / float64(stock.LastDividend), nil
}

// VolumeWeightedPrice returns the volume-weighted price of the trades
// recorded within the window, or 1 if there are none.
func (e *Exchange) VolumeWeightedPrice(symbol string) (float64, error) {
	stats, err := e.WindowStats(symbol)
	if err != nil {
		return 0, err
	}
	return stats.Price, nil
}

// WindowStats returns the volume-weighted price of symbol together with
// the figures it was computed from.
func (e *Exchange) WindowStats(symbol string) (VWAPStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.windowStatsLocked(symbol, e.now())
}

func (e *Exchange) windowStatsLocked(symbol string, now time.Time) (VWAPStats, error) {
	h, ok := e.histories[symbol]
	if !ok {
		return VWAPStats{}, domain.ErrUnknownStock
	}

	stats := VWAPStats{
		Symbol: symbol,
		Window: e.window,
	}
	if last, ok := h.Latest(); ok {
		ts := last.Timestamp
		stats.LastTradeAt = &ts
	}

	// The history iterates newest first, so the first trade outside the
	// window ends the scan.
	h.Scan(func(t domain.Trade) bool {
		if now.Sub(t.Timestamp) > e.window {
			return false
		}
		stats.TotalQuantity += t.Quantity
		stats.TotalValue += float64(t.Price) * float64(t.Quantity)
		stats.TradesInWindow++
		return true
	})

	if stats.TotalQuantity == 0 {
		stats.Price = noTradesPrice
	} else {
		stats.Price = stats.TotalValue / float64(stats.TotalQuantity)
	}
	return stats, nil
}

// AllShareIndex returns the GBCE All-Share index: the geometric mean of
// the volume-weighted prices of all listed stocks.
func (e *Exchange) AllShareIndex() (float64, error) {
	snap, err := e.IndexSnapshot()
	if err != nil {
		return 0, err
	}
	return snap.Index, nil
}

// IndexSnapshot computes the all-share index against a single snapshot and
// a single "now", and returns it with the price of every listed stock.
func (e *Exchange) IndexSnapshot() (IndexSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.stocks) == 0 {
		return IndexSnapshot{}, domain.ErrNoStocksListed
	}

	now := e.now()
	symbols := e.symbolsLocked()
	snap := IndexSnapshot{
		Components: make([]VWAPStats, 0, len(symbols)),
		Window:     e.window,
		ComputedAt: now,
	}
	prices := make([]float64, 0, len(symbols))
	for _, symbol := range symbols {
		stats, err := e.windowStatsLocked(symbol, now)
		if err != nil {
			return IndexSnapshot{}, err
		}
		snap.Components = append(snap.Components, stats)
		prices = append(prices, stats.Price)
	}
	snap.Index = geometricMean(prices)
	return snap, nil
}

// geometricMean averages logarithms so that many large or small prices
// neither overflow nor underflow. Non-positive prices, which only a window
// of negative quantities produces, have no logarithm and fall back to the
// plain product.
func geometricMean(prices []float64) float64 {
	n := float64(len(prices))
	sum := 0.0
	for _, p := range prices {
		if p <= 0 {
			product := 1.0
			for _, q := range prices {
				product *= q
			}
			return math.Pow(product, 1/n)
		}
		sum += math.Log(p)
	}
	return math.Exp(sum / n)
}
