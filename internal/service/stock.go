package service

import (
	"fmt"
	"time"

	"github.com/efreitasn/gbce/internal/domain"
	"github.com/efreitasn/gbce/internal/engine"
)

// ListStockRequest carries raw listing input.
type ListStockRequest struct {
	Symbol               string
	Kind                 string
	LastDividend         int64
	FixedDividendPercent int64
	ParValue             int64
}

// RecordTradeRequest carries raw trade input.
type RecordTradeRequest struct {
	Symbol    string
	Direction string
	Quantity  int64
	Price     int64
}

// PriceResponse is the volume-weighted price of a stock over the window.
type PriceResponse struct {
	Symbol         string
	Price          float64
	Window         string // e.g. "5m"
	TradesInWindow int
	TotalQuantity  int64
	LastTradeAt    *time.Time // nil when the stock was never traded
}

// StockMetrics is the per-stock report for a given price.
type StockMetrics struct {
	Symbol              string
	Kind                domain.StockKind
	Price               int64
	DividendYield       float64
	PERatio             float64
	VolumeWeightedPrice float64
	TradesInWindow      int
	Window              string     // e.g. "5m"
	LastTradeAt         *time.Time // nil when the stock was never traded
}

// IndexComponent is a single stock's contribution to the index.
type IndexComponent struct {
	Symbol              string
	VolumeWeightedPrice float64
}

// IndexResponse is the GBCE All-Share index with its components.
type IndexResponse struct {
	Index      float64
	Components []IndexComponent
	Window     string
	ComputedAt time.Time
}

// StockService turns raw caller input into exchange operations and
// composes metric reports.
type StockService struct {
	exchange *engine.Exchange
}

// NewStockService creates a new StockService backed by exchange.
func NewStockService(exchange *engine.Exchange) *StockService {
	return &StockService{exchange: exchange}
}

// ListStock validates req and lists the stock with an empty history.
func (s *StockService) ListStock(req ListStockRequest) (domain.Stock, error) {
	stock, err := buildStock(req)
	if err != nil {
		return domain.Stock{}, err
	}
	if err := s.exchange.ListStock(stock, nil); err != nil {
		return domain.Stock{}, err
	}
	return stock, nil
}

// UpdateStock replaces the attributes of a listed stock.
func (s *StockService) UpdateStock(req ListStockRequest) (domain.Stock, error) {
	stock, err := buildStock(req)
	if err != nil {
		return domain.Stock{}, err
	}
	if err := s.exchange.UpdateStock(stock); err != nil {
		return domain.Stock{}, err
	}
	return stock, nil
}

// ListSample lists the GBCE sample stocks. If any of them is already
// listed, none is.
func (s *StockService) ListSample() ([]domain.Stock, error) {
	sample := domain.SampleStocks()
	listings := make([]engine.Listing, len(sample))
	for i, stock := range sample {
		listings[i] = engine.Listing{Stock: stock}
	}
	if err := s.exchange.ListAll(listings); err != nil {
		return nil, fmt.Errorf("sample stock %w", err)
	}
	return sample, nil
}

// RecordTrade validates req and records the trade at the current time.
func (s *StockService) RecordTrade(req RecordTradeRequest) (domain.Trade, error) {
	direction, err := domain.ParseDirection(req.Direction)
	if err != nil {
		return domain.Trade{}, err
	}
	return s.exchange.RecordTrade(req.Symbol, req.Quantity, req.Price, direction)
}

// DividendYield returns the dividend yield of symbol at price.
func (s *StockService) DividendYield(symbol string, price int64) (float64, error) {
	return s.exchange.DividendYield(symbol, price)
}

// PERatio returns the P/E ratio of symbol at price.
func (s *StockService) PERatio(symbol string, price int64) (float64, error) {
	return s.exchange.PERatio(symbol, price)
}

// VolumeWeightedPrice returns the volume-weighted price of symbol along
// with the window figures. The price is 1 when nothing traded in the window.
func (s *StockService) VolumeWeightedPrice(symbol string) (*PriceResponse, error) {
	stats, err := s.exchange.WindowStats(symbol)
	if err != nil {
		return nil, err
	}
	return &PriceResponse{
		Symbol:         stats.Symbol,
		Price:          stats.Price,
		Window:         formatDuration(stats.Window),
		TradesInWindow: stats.TradesInWindow,
		TotalQuantity:  stats.TotalQuantity,
		LastTradeAt:    stats.LastTradeAt,
	}, nil
}

// GetMetrics returns every per-stock metric of symbol at price.
func (s *StockService) GetMetrics(symbol string, price int64) (*StockMetrics, error) {
	yield, err := s.exchange.DividendYield(symbol, price)
	if err != nil {
		return nil, err
	}
	pe, err := s.exchange.PERatio(symbol, price)
	if err != nil {
		return nil, err
	}
	stock, err := s.exchange.GetStock(symbol)
	if err != nil {
		return nil, err
	}
	stats, err := s.exchange.WindowStats(symbol)
	if err != nil {
		return nil, err
	}

	return &StockMetrics{
		Symbol:              symbol,
		Kind:                stock.Kind,
		Price:               price,
		DividendYield:       yield,
		PERatio:             pe,
		VolumeWeightedPrice: stats.Price,
		TradesInWindow:      stats.TradesInWindow,
		Window:              formatDuration(stats.Window),
		LastTradeAt:         stats.LastTradeAt,
	}, nil
}

// GetIndex returns the GBCE All-Share index and the volume-weighted price
// of each listed stock, all computed at the same instant.
func (s *StockService) GetIndex() (*IndexResponse, error) {
	snap, err := s.exchange.IndexSnapshot()
	if err != nil {
		return nil, err
	}

	components := make([]IndexComponent, len(snap.Components))
	for i, c := range snap.Components {
		components[i] = IndexComponent{
			Symbol:              c.Symbol,
			VolumeWeightedPrice: c.Price,
		}
	}

	return &IndexResponse{
		Index:      snap.Index,
		Components: components,
		Window:     formatDuration(snap.Window),
		ComputedAt: snap.ComputedAt,
	}, nil
}

// ListStocks returns every listed stock ordered by symbol.
func (s *StockService) ListStocks() []domain.Stock {
	symbols := s.exchange.Symbols()
	stocks := make([]domain.Stock, 0, len(symbols))
	for _, symbol := range symbols {
		stock, err := s.exchange.GetStock(symbol)
		if err != nil {
			continue
		}
		stocks = append(stocks, stock)
	}
	return stocks
}

// History returns the trades of symbol, most recent first.
func (s *StockService) History(symbol string) ([]domain.Trade, error) {
	return s.exchange.History(symbol)
}

func buildStock(req ListStockRequest) (domain.Stock, error) {
	kind, err := domain.ParseStockKind(req.Kind)
	if err != nil {
		return domain.Stock{}, err
	}
	return domain.NewStock(req.Symbol, kind, req.LastDividend, req.FixedDividendPercent, req.ParValue)
}

// formatDuration converts a time.Duration to a human-readable string
// like "5m" for the window field.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	minutes := int(d.Minutes())
	if d == time.Duration(minutes)*time.Minute && minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return d.String()
}
