package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/liftlog/internal/catalog"
	"github.com/meltforce/liftlog/internal/config"
	"github.com/meltforce/liftlog/internal/logging"
	"github.com/meltforce/liftlog/internal/mcp"
	"github.com/meltforce/liftlog/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode)")
	serverURL := flag.String("server", "", "LiftLog server URL; reads the local store when empty")
	logFile := flag.String("log-file", "", "log file (logs go to stderr when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser, err := logging.Setup(logging.Params{Level: cfg.Log.Level, Format: "json", File: *logFile, Stderr: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	var ds mcp.DataSource
	if *serverURL != "" {
		ds = mcp.NewHTTPClient(strings.TrimRight(*serverURL, "/"))
		log.Info("mcp reading from server", "url", *serverURL)
	} else {
		ctx := context.Background()
		cat := catalog.Default()
		if cfg.Catalog.Path != "" {
			if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
				fmt.Fprintf(os.Stderr, "loading catalog: %v\n", err)
				os.Exit(1)
			}
		}
		layout, err := storage.ParseLayout(cfg.Storage.Layout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		store, db, err := storage.Open(ctx, storage.Options{
			Backend: cfg.Storage.Backend,
			Path:    cfg.Storage.Path,
			Layout:  layout,
			DSN:     cfg.Database.DSN(),
		}, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening store: %v\n", err)
			os.Exit(1)
		}
		if db != nil {
			defer db.Close()
		}
		if err := store.Load(ctx); err != nil {
			var perr *storage.ParseError
			if !errors.As(err, &perr) {
				fmt.Fprintf(os.Stderr, "loading workouts: %v\n", err)
				os.Exit(1)
			}
			log.Warn("stored workouts could not be parsed; serving empty", "error", err)
		}
		ds = mcp.StoreSource{Store: store, Templates: cat}
	}

	if err := mcpserver.ServeStdio(mcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
