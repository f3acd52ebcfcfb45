package handler

import (
	"errors"
	"io"

	"github.com/efreitasn/gbce/internal/domain"
	"github.com/efreitasn/gbce/internal/service"
)

// StockHandler handles the stock commands.
type StockHandler struct {
	stockSvc *service.StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockSvc *service.StockService) *StockHandler {
	return &StockHandler{stockSvc: stockSvc}
}

// stockResponse is the response for list, update and stocks.
type stockResponse struct {
	Symbol               string `json:"symbol"`
	Kind                 string `json:"kind"`
	LastDividend         int64  `json:"last_dividend"`
	FixedDividendPercent *int64 `json:"fixed_dividend_percent,omitempty"`
	ParValue             int64  `json:"par_value"`
}

// stockListResponse is the response for stocks.
type stockListResponse struct {
	Stocks []stockResponse `json:"stocks"`
	Total  int             `json:"total"`
}

// tradeResponse is a single trade.
type tradeResponse struct {
	TradeID   string `json:"trade_id"`
	Symbol    string `json:"symbol,omitempty"`
	Direction string `json:"direction"`
	Quantity  int64  `json:"quantity"`
	Price     int64  `json:"price"`
	Timestamp string `json:"timestamp"`
}

// historyResponse is the response for history.
type historyResponse struct {
	Symbol string          `json:"symbol"`
	Trades []tradeResponse `json:"trades"`
}

// metricResponse is the response for yield and pe.
type metricResponse struct {
	Symbol string  `json:"symbol"`
	Price  int64   `json:"price"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// vwapResponse is the response for vwap.
type vwapResponse struct {
	Symbol              string  `json:"symbol"`
	VolumeWeightedPrice float64 `json:"volume_weighted_price"`
	Window              string  `json:"window"`
	TradesInWindow      int     `json:"trades_in_window"`
	TotalQuantity       int64   `json:"total_quantity"`
	LastTradeAt         *string `json:"last_trade_at"`
}

// quoteResponse is the response for quote.
type quoteResponse struct {
	Symbol              string  `json:"symbol"`
	Kind                string  `json:"kind"`
	Price               int64   `json:"price"`
	DividendYield       float64 `json:"dividend_yield"`
	PERatio             float64 `json:"pe_ratio"`
	VolumeWeightedPrice float64 `json:"volume_weighted_price"`
	Window              string  `json:"window"`
	TradesInWindow      int     `json:"trades_in_window"`
	LastTradeAt         *string `json:"last_trade_at"`
}

// indexComponentResponse is one stock in the index response.
type indexComponentResponse struct {
	Symbol              string  `json:"symbol"`
	VolumeWeightedPrice float64 `json:"volume_weighted_price"`
}

// indexResponse is the response for index.
type indexResponse struct {
	AllShareIndex float64                  `json:"all_share_index"`
	Window        string                   `json:"window"`
	Components    []indexComponentResponse `json:"components"`
	ComputedAt    string                   `json:"computed_at"`
}

// List handles: list SYMBOL KIND LAST_DIVIDEND FIXED_DIVIDEND_PERCENT PAR_VALUE.
func (h *StockHandler) List(args []string) (any, error) {
	req, err := parseStockArgs(args)
	if err != nil {
		return nil, err
	}
	stock, err := h.stockSvc.ListStock(req)
	if err != nil {
		return nil, err
	}
	return toStockResponse(stock), nil
}

// Update handles: update SYMBOL KIND LAST_DIVIDEND FIXED_DIVIDEND_PERCENT PAR_VALUE.
func (h *StockHandler) Update(args []string) (any, error) {
	req, err := parseStockArgs(args)
	if err != nil {
		return nil, err
	}
	stock, err := h.stockSvc.UpdateStock(req)
	if err != nil {
		return nil, err
	}
	return toStockResponse(stock), nil
}

// Sample handles: sample.
func (h *StockHandler) Sample(_ []string) (any, error) {
	stocks, err := h.stockSvc.ListSample()
	if err != nil {
		return nil, err
	}
	return toStockListResponse(stocks), nil
}

// Stocks handles: stocks.
func (h *StockHandler) Stocks(_ []string) (any, error) {
	return toStockListResponse(h.stockSvc.ListStocks()), nil
}

// Trade handles: trade SYMBOL DIRECTION QUANTITY PRICE.
func (h *StockHandler) Trade(args []string) (any, error) {
	quantity, err := parseInt("quantity", args[2])
	if err != nil {
		return nil, err
	}
	price, err := parseInt("price", args[3])
	if err != nil {
		return nil, err
	}

	trade, err := h.stockSvc.RecordTrade(service.RecordTradeRequest{
		Symbol:    args[0],
		Direction: args[1],
		Quantity:  quantity,
		Price:     price,
	})
	if err != nil {
		return nil, err
	}

	resp := toTradeResponse(trade)
	resp.Symbol = args[0]
	return resp, nil
}

// History handles: history SYMBOL.
func (h *StockHandler) History(args []string) (any, error) {
	trades, err := h.stockSvc.History(args[0])
	if err != nil {
		return nil, err
	}

	resp := historyResponse{
		Symbol: args[0],
		Trades: make([]tradeResponse, len(trades)),
	}
	for i, t := range trades {
		resp.Trades[i] = toTradeResponse(t)
	}
	return resp, nil
}

// Yield handles: yield SYMBOL PRICE.
func (h *StockHandler) Yield(args []string) (any, error) {
	price, err := parseInt("price", args[1])
	if err != nil {
		return nil, err
	}
	v, err := h.stockSvc.DividendYield(args[0], price)
	if err != nil {
		return nil, err
	}
	return metricResponse{Symbol: args[0], Price: price, Metric: "dividend_yield", Value: v}, nil
}

// PE handles: pe SYMBOL PRICE.
func (h *StockHandler) PE(args []string) (any, error) {
	price, err := parseInt("price", args[1])
	if err != nil {
		return nil, err
	}
	v, err := h.stockSvc.PERatio(args[0], price)
	if err != nil {
		return nil, err
	}
	return metricResponse{Symbol: args[0], Price: price, Metric: "pe_ratio", Value: v}, nil
}

// VWAP handles: vwap SYMBOL.
func (h *StockHandler) VWAP(args []string) (any, error) {
	price, err := h.stockSvc.VolumeWeightedPrice(args[0])
	if err != nil {
		return nil, err
	}

	resp := vwapResponse{
		Symbol:              price.Symbol,
		VolumeWeightedPrice: price.Price,
		Window:              price.Window,
		TradesInWindow:      price.TradesInWindow,
		TotalQuantity:       price.TotalQuantity,
	}
	if price.LastTradeAt != nil {
		s := formatTime(*price.LastTradeAt)
		resp.LastTradeAt = &s
	}
	return resp, nil
}

// Quote handles: quote SYMBOL PRICE.
func (h *StockHandler) Quote(args []string) (any, error) {
	price, err := parseInt("price", args[1])
	if err != nil {
		return nil, err
	}
	m, err := h.stockSvc.GetMetrics(args[0], price)
	if err != nil {
		return nil, err
	}

	resp := quoteResponse{
		Symbol:              m.Symbol,
		Kind:                string(m.Kind),
		Price:               m.Price,
		DividendYield:       m.DividendYield,
		PERatio:             m.PERatio,
		VolumeWeightedPrice: m.VolumeWeightedPrice,
		Window:              m.Window,
		TradesInWindow:      m.TradesInWindow,
	}
	if m.LastTradeAt != nil {
		s := formatTime(*m.LastTradeAt)
		resp.LastTradeAt = &s
	}
	return resp, nil
}

// Index handles: index.
func (h *StockHandler) Index(_ []string) (any, error) {
	idx, err := h.stockSvc.GetIndex()
	if err != nil {
		return nil, err
	}

	components := make([]indexComponentResponse, len(idx.Components))
	for i, c := range idx.Components {
		components[i] = indexComponentResponse{
			Symbol:              c.Symbol,
			VolumeWeightedPrice: c.VolumeWeightedPrice,
		}
	}
	return indexResponse{
		AllShareIndex: idx.Index,
		Window:        idx.Window,
		Components:    components,
		ComputedAt:    formatTime(idx.ComputedAt),
	}, nil
}

func parseStockArgs(args []string) (service.ListStockRequest, error) {
	lastDividend, err := parseInt("last_dividend", args[2])
	if err != nil {
		return service.ListStockRequest{}, err
	}
	fixed, err := parseInt("fixed_dividend_percent", args[3])
	if err != nil {
		return service.ListStockRequest{}, err
	}
	par, err := parseInt("par_value", args[4])
	if err != nil {
		return service.ListStockRequest{}, err
	}
	return service.ListStockRequest{
		Symbol:               args[0],
		Kind:                 args[1],
		LastDividend:         lastDividend,
		FixedDividendPercent: fixed,
		ParValue:             par,
	}, nil
}

func toStockResponse(s domain.Stock) stockResponse {
	resp := stockResponse{
		Symbol:       s.Symbol,
		Kind:         string(s.Kind),
		LastDividend: s.LastDividend,
		ParValue:     s.ParValue,
	}
	// Fixed dividend only applies to preferred stocks.
	if s.Kind == domain.KindPreferred {
		fixed := s.FixedDividendPercent
		resp.FixedDividendPercent = &fixed
	}
	return resp
}

func toStockListResponse(stocks []domain.Stock) stockListResponse {
	resp := stockListResponse{
		Stocks: make([]stockResponse, len(stocks)),
		Total:  len(stocks),
	}
	for i, s := range stocks {
		resp.Stocks[i] = toStockResponse(s)
	}
	return resp
}

func toTradeResponse(t domain.Trade) tradeResponse {
	return tradeResponse{
		TradeID:   t.TradeID,
		Direction: string(t.Direction),
		Quantity:  t.Quantity,
		Price:     t.Price,
		Timestamp: formatTime(t.Timestamp),
	}
}

// mapStockError writes the response for err and returns its error code.
func mapStockError(w io.Writer, err error) string {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, "validation_error", validationErr.Message)
		return "validation_error"
	}

	var code string
	switch {
	case errors.Is(err, domain.ErrDuplicateListing):
		code = "duplicate_listing"
	case errors.Is(err, domain.ErrUnknownStock):
		code = "unknown_stock"
	case errors.Is(err, domain.ErrInvalidPrice):
		code = "invalid_price"
	case errors.Is(err, domain.ErrInvalidDividendConfig):
		code = "invalid_dividend_config"
	case errors.Is(err, domain.ErrNoStocksListed):
		code = "no_stocks_listed"
	default:
		WriteError(w, "internal_error", "An unexpected error occurred")
		return "internal_error"
	}
	WriteError(w, code, err.Error())
	return code
}
