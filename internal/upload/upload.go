// Package upload feeds Alpha Progression export files into LiftLog, either
// through a running server or straight into a local store.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/meltforce/liftlog/internal/ingest"
	"github.com/meltforce/liftlog/internal/ingest/alpha"
)

// Target imports one export. *Client and *alpha.Importer satisfy it.
type Target interface {
	Import(ctx context.Context, r io.Reader) (*ingest.Result, error)
}

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesImported int
	FilesSkipped  int
	FilesErrored  int

	SessionsReceived int
	RecordsInserted  int
	RecordsSkipped   int
	SessionsMerged   int
	ValuesClamped    int
}

// Uploader sends every export under a path to a Target.
type Uploader struct {
	target Target
	state  *StateDB
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. state may be nil to send every file. In dry-run
// mode files are only parsed and target may be nil.
func New(target Target, state *StateDB, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{target: target, state: state, dryRun: dryRun, log: log}
}

// Run imports path, a single CSV export or a directory of them. A failing
// file is logged and counted; the remaining files are still processed.
func (u *Uploader) Run(ctx context.Context, path string) (*Stats, error) {
	files, err := exportFiles(path)
	if err != nil {
		return &u.stats, err
	}
	u.stats.FilesTotal = len(files)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		if err := u.processFile(ctx, f); err != nil {
			u.stats.FilesErrored++
			u.log.Error("export failed", "file", f, "error", err)
		}
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	hash := HashBytes(data)

	if u.state != nil {
		done, err := u.state.IsImported(path, hash)
		if err != nil {
			return err
		}
		if done {
			u.stats.FilesSkipped++
			u.log.Debug("export already imported", "file", path)
			return nil
		}
	}

	if u.dryRun {
		sessions, err := alpha.Parse(bytes.NewReader(data))
		if err != nil {
			return err
		}
		u.stats.SessionsReceived += len(sessions)
		u.stats.FilesImported++
		u.log.Info("dry run: export parsed", "file", path, "sessions", len(sessions))
		return nil
	}

	res, err := u.target.Import(ctx, bytes.NewReader(data))
	if err != nil {
		return err
	}
	u.stats.FilesImported++
	u.stats.SessionsReceived += res.SessionsReceived
	u.stats.RecordsInserted += res.RecordsInserted
	u.stats.RecordsSkipped += res.RecordsSkipped
	u.stats.SessionsMerged += res.SessionsMerged
	u.stats.ValuesClamped += res.ValuesClamped
	u.log.Info("export imported", "file", path,
		"sessions", res.SessionsReceived, "inserted", res.RecordsInserted)

	if u.state != nil {
		return u.state.MarkImported(path, hash, res.RecordsInserted)
	}
	return nil
}

// exportFiles lists the CSV files to import, sorted by name.
func exportFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("export path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
