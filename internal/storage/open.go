package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Options selects and configures a store backend.
type Options struct {
	Backend string // "file" or "postgres"
	Path    string
	Layout  Layout
	DSN     string
}

// Open creates a store over the configured backend. The postgres backend is
// migrated before use and its DB is returned so the caller can close it and
// register its pool collector; for the file backend db is nil.
// Records are not read; call Load on the returned store.
func Open(ctx context.Context, opts Options, log *slog.Logger) (store *Store, db *DB, err error) {
	switch opts.Backend {
	case "", "file":
		return New(NewFileBackend(opts.Path, opts.Layout), opts.Layout, log), nil, nil

	case "postgres":
		if err := RunMigrations(opts.DSN); err != nil {
			return nil, nil, err
		}
		log.Info("migrations applied")

		db, err := NewDB(ctx, opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database connected")
		return New(db, opts.Layout, log), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
