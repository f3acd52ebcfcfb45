package handler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/efreitasn/gbce/internal/service"
)

// HandlerFunc handles one command. args excludes the command name and has
// already been checked against the route's arity.
type HandlerFunc func(args []string) (any, error)

type route struct {
	handler HandlerFunc
	usage   string
	nargs   int
}

// Router dispatches text commands to handlers and writes one JSON
// response line per command.
type Router struct {
	routes map[string]route
	logger *slog.Logger
}

// NewRouter creates a Router with all commands registered.
func NewRouter(stockSvc *service.StockService, logger *slog.Logger) *Router {
	r := &Router{
		routes: make(map[string]route),
		logger: logger,
	}

	stockH := NewStockHandler(stockSvc)

	// Listing.
	r.handle("list", 5, "list SYMBOL common|preferred LAST_DIVIDEND FIXED_DIVIDEND_PERCENT PAR_VALUE", stockH.List)
	r.handle("update", 5, "update SYMBOL common|preferred LAST_DIVIDEND FIXED_DIVIDEND_PERCENT PAR_VALUE", stockH.Update)
	r.handle("sample", 0, "sample", stockH.Sample)
	r.handle("stocks", 0, "stocks", stockH.Stocks)

	// Trading.
	r.handle("trade", 4, "trade SYMBOL buy|sell QUANTITY PRICE", stockH.Trade)
	r.handle("history", 1, "history SYMBOL", stockH.History)

	// Metrics.
	r.handle("yield", 2, "yield SYMBOL PRICE", stockH.Yield)
	r.handle("pe", 2, "pe SYMBOL PRICE", stockH.PE)
	r.handle("vwap", 1, "vwap SYMBOL", stockH.VWAP)
	r.handle("quote", 2, "quote SYMBOL PRICE", stockH.Quote)
	r.handle("index", 0, "index", stockH.Index)

	r.handle("help", 0, "help", r.help)

	return r
}

func (r *Router) handle(name string, nargs int, usage string, h HandlerFunc) {
	r.routes[name] = route{handler: h, usage: usage, nargs: nargs}
}

// helpResponse is the response for help.
type helpResponse struct {
	Commands []string `json:"commands"`
}

func (r *Router) help(_ []string) (any, error) {
	usages := make([]string, 0, len(r.routes))
	for _, rt := range r.routes {
		usages = append(usages, rt.usage)
	}
	sort.Strings(usages)
	return helpResponse{Commands: usages}, nil
}

// Handle runs a single command line. Blank lines and lines starting with
// '#' are ignored. It reports whether a response was written.
func (r *Router) Handle(w io.Writer, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false
	}

	start := time.Now()
	name := strings.ToLower(fields[0])
	args := fields[1:]
	outcome := r.dispatch(w, name, args)

	r.logger.Info("command",
		slog.String("command", name),
		slog.Int("args", len(args)),
		slog.String("outcome", outcome),
		slog.Duration("duration", time.Since(start)),
	)
	return true
}

func (r *Router) dispatch(w io.Writer, name string, args []string) string {
	rt, ok := r.routes[name]
	if !ok {
		WriteError(w, "unknown_command", fmt.Sprintf("unknown command %q, try 'help'", name))
		return "unknown_command"
	}
	if len(args) != rt.nargs {
		WriteError(w, "validation_error", "usage: "+rt.usage)
		return "validation_error"
	}

	resp, err := rt.handler(args)
	if err != nil {
		return mapStockError(w, err)
	}
	WriteJSON(w, resp)
	return "ok"
}

// Serve reads commands from in line by line until EOF or until ctx is
// cancelled. A failing command does not stop the session.
func (r *Router) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Handle(out, scanner.Text())
	}
	return scanner.Err()
}
