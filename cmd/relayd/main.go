// Command relayd serves the streaming assistant relay over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/tailored-agentic-units/relay/actions"
	"github.com/tailored-agentic-units/relay/driver"
	"github.com/tailored-agentic-units/relay/instructions"
	"github.com/tailored-agentic-units/relay/observability"
	"github.com/tailored-agentic-units/relay/provider/openai"
	"github.com/tailored-agentic-units/relay/server"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to relayd config JSON file")
		addr       = flag.String("addr", "", "Listen address (overrides config)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg := DefaultConfig()
	if *configFile != "" {
		loaded, err := LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	registerBuiltinActions()

	instrStore, err := instructions.New(&cfg.Instructions)
	if err != nil {
		log.Fatalf("Failed to create instruction store: %v", err)
	}

	prov := openai.New(cfg.Provider, instrStore, actions.List)

	metrics := server.NewMetrics()
	observer := observability.NewMultiObserver(
		observability.NewSlogObserver(logger),
		metrics,
	)

	d := driver.New(prov,
		driver.WithObserver(observer),
		driver.WithMaxRounds(cfg.MaxRounds),
	)

	srv := server.New(cfg.Server, prov, d,
		server.WithObserver(observer),
		server.WithMetrics(metrics),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("relayd listening", "addr", cfg.Server.Addr, "model", cfg.Provider.Model)

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
