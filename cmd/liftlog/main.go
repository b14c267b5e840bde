package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/liftlog/internal/catalog"
	"github.com/meltforce/liftlog/internal/config"
	"github.com/meltforce/liftlog/internal/ingest/alpha"
	"github.com/meltforce/liftlog/internal/logging"
	"github.com/meltforce/liftlog/internal/mcp"
	"github.com/meltforce/liftlog/internal/metrics"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/notify"
	"github.com/meltforce/liftlog/internal/server"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and LIFTLOG_* env when empty)")
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser, err := logging.Setup(logging.Params{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Stdout: cfg.Log.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	log.Info("LiftLog starting", "version", Version)

	if err := run(cfg, log, *migrateOnly); err != nil {
		log.Error("fatal", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
	if err := logCloser.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "closing log: %v\n", err)
	}
}

func run(cfg *config.Config, log *slog.Logger, migrateOnly bool) (err error) {
	ctx := context.Background()

	if migrateOnly {
		if cfg.Storage.Backend != "postgres" {
			return fmt.Errorf("migrate-only requires the postgres backend")
		}
		if err := storage.RunMigrations(cfg.Database.DSN()); err != nil {
			return err
		}
		log.Info("migrate-only: migrations applied, exiting")
		return nil
	}

	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
			return err
		}
		log.Info("catalog loaded", "path", cfg.Catalog.Path, "types", len(cat.Types()))
	}

	layout, err := storage.ParseLayout(cfg.Storage.Layout)
	if err != nil {
		return err
	}
	store, db, err := storage.Open(ctx, storage.Options{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
		Layout:  layout,
		DSN:     cfg.Database.DSN(),
	}, log)
	if err != nil {
		return err
	}

	var collectors []prometheus.Collector
	if db != nil {
		defer db.Close()
		collectors = append(collectors, db.Collector())
	}
	reg := metrics.NewRegistry(collectors...)
	m := metrics.NewManager("liftlog", "", reg)

	if err := store.Load(ctx); err != nil {
		var perr *storage.ParseError
		if !errors.As(err, &perr) {
			return err
		}
		log.Warn("stored workouts could not be parsed; starting empty", "error", err)
		m.CounterLoadFailures.Inc()
	}
	log.Info("workouts loaded", "count", store.Len(), "backend", cfg.Storage.Backend, "layout", layout)

	opts := server.Options{
		State:    session.New(cat, models.Today),
		Store:    store,
		Importer: alpha.NewImporter(store, log),
		Metrics:  m,
		Gatherer: reg,
	}

	if cfg.Webhook.Enabled {
		deliveries, derr := notify.OpenDeliveryLog(cfg.Deliveries.Dir)
		if derr != nil {
			return derr
		}
		defer func() { err = multierr.Append(err, deliveries.Close()) }()
		opts.Deliveries = deliveries
		opts.Notifier = notify.NewClient(cfg.Webhook.URL, cfg.Webhook.Timeout, deliveries, log)
		log.Info("webhook enabled", "url", cfg.Webhook.URL)
	}

	mcpSrv := mcp.New(mcp.StoreSource{Store: store, Templates: cat}, Version, log)
	opts.MCP = mcpserver.NewStreamableHTTPServer(mcpSrv)

	srv := server.New(opts, log)

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("tsnet start: %w", err)
		}
		defer func() { err = multierr.Append(err, tsServer.Close()) }()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "plain (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
	return nil
}
