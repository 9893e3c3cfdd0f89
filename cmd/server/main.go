/*
main.go - Approval API server entry point

PURPOSE:
  Initializes and starts the request/approval API server: configuration,
  dependency injection, graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (optionally load a YAML config file)
  2. Open the store (SQLite file, ":memory:", or the in-memory store)
  3. Create the API handler and router
  4. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr    Listen address (default :8080)
  -db      SQLite database path (default schedule.db, ":memory:" works,
           "mem" selects the pure in-memory store)
  -config  Optional YAML config file; flags override its values

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for active
  requests, close the store, exit.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/schedule-engine/api"
	"github.com/warp/schedule-engine/catalog"
	"github.com/warp/schedule-engine/config"
	"github.com/warp/schedule-engine/store/memory"
	"github.com/warp/schedule-engine/store/sqlite"
)

type closableStore interface {
	api.Store
	Close() error
}

func main() {
	addr := flag.String("addr", "", "listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path, or \"mem\" (overrides config)")
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			zap.NewExample().Fatal("failed to load config", zap.Error(err))
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	var store closableStore
	if cfg.DBPath == "mem" {
		store = memory.New()
	} else {
		s, err := sqlite.New(cfg.DBPath)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		store = s
	}
	defer store.Close()

	types := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			logger.Fatal("failed to load absence type catalog", zap.Error(err))
		}
		types = loaded
	}

	handler := api.NewHandler(store, types)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr), zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}
