package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"github.com/efreitasn/gbce/internal/config"
	"github.com/efreitasn/gbce/internal/engine"
	"github.com/efreitasn/gbce/internal/handler"
	"github.com/efreitasn/gbce/internal/service"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&sessionCmd{}, "")
	commander.Register(&sampleCmd{}, "")

	flag.Parse()

	// Stop reading commands on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// app holds the wiring shared by every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *service.StockService
	router *handler.Router
}

// newApp loads configuration and builds the exchange, service and router.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Responses go to stdout, so logs go to stderr.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	exchange := engine.NewExchange(
		engine.WithWindow(cfg.VWAPWindow),
		engine.WithLogger(logger),
	)
	svc := service.NewStockService(exchange)

	return &app{
		cfg:    cfg,
		logger: logger,
		svc:    svc,
		router: handler.NewRouter(svc, logger),
	}, nil
}
