package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/meltforce/liftlog/internal/config"
	"github.com/meltforce/liftlog/internal/ingest/alpha"
	"github.com/meltforce/liftlog/internal/logging"
	"github.com/meltforce/liftlog/internal/storage"
	"github.com/meltforce/liftlog/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode)")
	serverURL := flag.String("server", "", "LiftLog server URL; imports into the local store when empty")
	exportPath := flag.String("path", "", "Alpha Progression CSV export, or a directory of them (required)")
	dryRun := flag.Bool("dry-run", false, "parse exports without importing")
	force := flag.Bool("force", false, "re-send exports that were already imported")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-import", Version)
		return
	}

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -path <export.csv|dir> [-server URL | -config config.yaml] [-dry-run] [-force]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, logCloser, err := logging.Setup(logging.Params{Level: cfg.Log.Level, Format: cfg.Log.Format, Stdout: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := run(ctx, cfg, log, strings.TrimRight(*serverURL, "/"), *exportPath, *dryRun, *force)
	if stats != nil {
		printStats(stats)
	}
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, serverURL, path string, dryRun, force bool) (*upload.Stats, error) {
	var state *upload.StateDB
	if !force && !dryRun {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("home directory: %w", err)
		}
		state, err = upload.OpenStateDB(filepath.Join(homeDir, ".liftlog-import"))
		if err != nil {
			return nil, err
		}
		defer state.Close()
	}

	var target upload.Target
	switch {
	case dryRun:
		log.Info("DRY RUN mode: exports are parsed but not imported")
	case serverURL != "":
		target = upload.NewClient(serverURL)
		log.Info("importing through server", "url", serverURL)
	default:
		layout, err := storage.ParseLayout(cfg.Storage.Layout)
		if err != nil {
			return nil, err
		}
		store, db, err := storage.Open(ctx, storage.Options{
			Backend: cfg.Storage.Backend,
			Path:    cfg.Storage.Path,
			Layout:  layout,
			DSN:     cfg.Database.DSN(),
		}, log)
		if err != nil {
			return nil, err
		}
		if db != nil {
			defer db.Close()
		}
		if err := store.Load(ctx); err != nil {
			var perr *storage.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("refusing to import over unreadable store: %w", err)
			}
			return nil, err
		}
		target = alpha.NewImporter(store, log)
		log.Info("importing into local store", "backend", cfg.Storage.Backend, "records", store.Len())
	}

	return upload.New(target, state, dryRun, log).Run(ctx, path)
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files imported:   %d\n", stats.FilesImported)
	fmt.Printf("  Files skipped:    %d (already imported)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Sessions:         %d\n", stats.SessionsReceived)
	fmt.Printf("  Records inserted: %d\n", stats.RecordsInserted)
	fmt.Printf("  Records skipped:  %d (already stored)\n", stats.RecordsSkipped)
	fmt.Printf("  Sessions merged:  %d (same day)\n", stats.SessionsMerged)
	fmt.Printf("  Values clamped:   %d\n", stats.ValuesClamped)
	fmt.Println()
}
