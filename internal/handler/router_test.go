package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/efreitasn/gbce/internal/engine"
	"github.com/efreitasn/gbce/internal/service"
)

var testNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

// newTestRouter builds a router over a fresh exchange with a pinned clock.
func newTestRouter() *Router {
	exchange := engine.NewExchange(engine.WithClock(func() time.Time { return testNow }))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(service.NewStockService(exchange), logger)
}

// run executes a command and decodes its response.
func run(t *testing.T, r *Router, line string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	if !r.Handle(&buf, line) {
		t.Fatalf("command %q wrote no response", line)
	}
	var resp map[string]any
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("decode response to %q: %v (body: %s)", line, err, buf.String())
	}
	return resp
}

func expectError(t *testing.T, resp map[string]any, code string) {
	t.Helper()
	if resp["error"] != code {
		t.Fatalf("expected error %q, got %v", code, resp)
	}
}

func TestRouter_ListAndQuote(t *testing.T) {
	r := newTestRouter()

	resp := run(t, r, "list GIN preferred 8 2 100")
	if resp["symbol"] != "GIN" || resp["kind"] != "preferred" || resp["fixed_dividend_percent"] != 2.0 {
		t.Fatalf("unexpected list response %v", resp)
	}

	resp = run(t, r, "yield GIN 1")
	if resp["metric"] != "dividend_yield" || resp["value"].(float64) < 1.999999 || resp["value"].(float64) > 2.000001 {
		t.Fatalf("unexpected yield response %v", resp)
	}

	resp = run(t, r, "pe GIN 4")
	if resp["value"] != 0.5 {
		t.Fatalf("unexpected pe response %v", resp)
	}

	resp = run(t, r, "quote GIN 4")
	if resp["volume_weighted_price"] != 1.0 || resp["window"] != "5m" || resp["last_trade_at"] != nil {
		t.Fatalf("unexpected quote response %v", resp)
	}
}

func TestRouter_CommonStockOmitsFixedDividend(t *testing.T) {
	r := newTestRouter()
	resp := run(t, r, "list TEA common 0 0 100")
	if _, ok := resp["fixed_dividend_percent"]; ok {
		t.Fatalf("common stock should not report a fixed dividend: %v", resp)
	}
}

func TestRouter_TradeAndVWAP(t *testing.T) {
	r := newTestRouter()
	run(t, r, "list TEA common 0 0 100")

	resp := run(t, r, "trade TEA buy 20 2")
	if resp["symbol"] != "TEA" || resp["direction"] != "buy" || resp["trade_id"] == "" {
		t.Fatalf("unexpected trade response %v", resp)
	}
	if resp["timestamp"] != "2025-06-02T10:00:00Z" {
		t.Fatalf("unexpected timestamp %v", resp["timestamp"])
	}
	run(t, r, "trade TEA sell 30 2")

	resp = run(t, r, "vwap TEA")
	if resp["volume_weighted_price"] != 2.0 || resp["trades_in_window"] != 2.0 || resp["total_quantity"] != 50.0 {
		t.Fatalf("unexpected vwap response %v", resp)
	}

	resp = run(t, r, "history TEA")
	trades, ok := resp["trades"].([]any)
	if !ok || len(trades) != 2 {
		t.Fatalf("unexpected history response %v", resp)
	}
	if trades[0].(map[string]any)["direction"] != "sell" {
		t.Fatalf("most recent trade should come first: %v", trades)
	}
}

func TestRouter_Index(t *testing.T) {
	r := newTestRouter()
	expectError(t, run(t, r, "index"), "no_stocks_listed")

	for _, sym := range []string{"TEA", "POP", "GIN"} {
		run(t, r, "list "+sym+" common 0 0 100")
		run(t, r, "trade "+sym+" buy 10 3")
	}

	resp := run(t, r, "index")
	v := resp["all_share_index"].(float64)
	if v < 2.999999 || v > 3.000001 {
		t.Fatalf("all_share_index = %v, want 3", v)
	}
	if resp["computed_at"] != "2025-06-02T10:00:00Z" {
		t.Fatalf("computed_at = %v, want the exchange clock", resp["computed_at"])
	}
	if comps := resp["components"].([]any); len(comps) != 3 {
		t.Fatalf("expected 3 components, got %d", len(comps))
	}
}

func TestRouter_SampleAndStocks(t *testing.T) {
	r := newTestRouter()
	resp := run(t, r, "sample")
	if resp["total"] != 5.0 {
		t.Fatalf("unexpected sample response %v", resp)
	}
	expectError(t, run(t, r, "sample"), "duplicate_listing")

	resp = run(t, r, "stocks")
	if resp["total"] != 5.0 {
		t.Fatalf("unexpected stocks response %v", resp)
	}
}

func TestRouter_Update(t *testing.T) {
	r := newTestRouter()
	run(t, r, "list TEA common 0 0 100")

	if resp := run(t, r, "update TEA common 5 0 100"); resp["last_dividend"] != 5.0 {
		t.Fatalf("unexpected update response %v", resp)
	}
	if resp := run(t, r, "pe TEA 1"); resp["value"] != 0.2 {
		t.Fatalf("unexpected pe response %v", resp)
	}
	expectError(t, run(t, r, "update POP common 5 0 100"), "unknown_stock")
}

func TestRouter_Errors(t *testing.T) {
	r := newTestRouter()
	run(t, r, "list TEA common 0 0 100")

	tests := []struct {
		line string
		code string
	}{
		{"list TEA common 0 0 100", "duplicate_listing"},
		{"list GIN preferred 0 0 100", "invalid_dividend_config"},
		{"list ALE common -1 0 60", "invalid_dividend_config"},
		{"list ALE ordinary 1 0 60", "validation_error"},
		{"list ALE common x 0 60", "validation_error"},
		{"trade POP buy 1 1", "unknown_stock"},
		{"trade TEA buy 1 0", "invalid_price"},
		{"trade TEA hold 1 1", "validation_error"},
		{"yield TEA 0", "invalid_price"},
		{"yield POP 0", "invalid_price"},
		{"yield POP 1", "unknown_stock"},
		{"pe TEA -1", "invalid_price"},
		{"vwap POP", "unknown_stock"},
		{"history POP", "unknown_stock"},
		{"vwap", "validation_error"},
		{"sell TEA 1 1", "unknown_command"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			expectError(t, run(t, r, tt.line), tt.code)
		})
	}
}

func TestRouter_IgnoresBlankAndComments(t *testing.T) {
	r := newTestRouter()
	var buf bytes.Buffer
	if r.Handle(&buf, "   ") || r.Handle(&buf, "# list TEA common 0 0 100") {
		t.Fatal("blank and comment lines should not produce a response")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestRouter_Help(t *testing.T) {
	r := newTestRouter()
	resp := run(t, r, "HELP")
	if cmds := resp["commands"].([]any); len(cmds) != 12 {
		t.Fatalf("expected 12 commands, got %d", len(cmds))
	}
}

func TestRouter_Serve(t *testing.T) {
	r := newTestRouter()
	script := strings.Join([]string{
		"# GBCE session",
		"list TEA common 0 0 100",
		"trade TEA buy 20 2",
		"trade NOPE buy 1 1",
		"",
		"vwap TEA",
	}, "\n")

	var out bytes.Buffer
	if err := r.Serve(context.Background(), strings.NewReader(script), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var lines []string
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 response lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[2], `"unknown_stock"`) {
		t.Fatalf("expected third response to be an error, got %s", lines[2])
	}
	if !strings.Contains(lines[3], `"volume_weighted_price":2`) {
		t.Fatalf("session should continue after an error, got %s", lines[3])
	}
}

func TestRouter_Serve_Cancelled(t *testing.T) {
	r := newTestRouter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := r.Serve(ctx, strings.NewReader("stocks\n"), &out)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}
