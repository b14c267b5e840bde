package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/ingest"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

// Importer adds Alpha Progression exports to a record store.
type Importer struct {
	store *storage.Store
	log   *slog.Logger
}

// NewImporter creates an importer writing to store.
func NewImporter(store *storage.Store, log *slog.Logger) *Importer {
	return &Importer{store: store, log: log}
}

// Import parses a CSV export and saves one record per session. Sessions
// already in the store (by ID) are skipped, so re-importing an export adds
// nothing. A daily store keeps one record per date, so sessions sharing a
// date are merged into the record of the first of them.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	existing := make(map[uuid.UUID]bool)
	for _, rec := range i.store.Records() {
		existing[rec.ID] = true
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	var records []models.WorkoutRecord
	byDate := make(map[string]int)
	for _, s := range sessions {
		rec, ok := ToRecord(s, result)
		if !ok {
			result.RecordsSkipped++
			continue
		}
		if i.store.Layout() == storage.LayoutDaily {
			key := rec.Date.String()
			if idx, seen := byDate[key]; seen {
				mergeSession(&records[idx], rec)
				result.SessionsMerged++
				continue
			}
			byDate[key] = len(records)
		}
		records = append(records, rec)
	}

	for _, rec := range records {
		if existing[rec.ID] {
			result.RecordsSkipped++
			continue
		}
		if err := i.store.Add(ctx, rec); err != nil {
			return result, fmt.Errorf("saving session %s %q: %w", rec.Date, rec.WorkoutType, err)
		}
		existing[rec.ID] = true
		result.RecordsInserted++
	}

	i.log.Info("alpha import",
		"sessions", result.SessionsReceived,
		"inserted", result.RecordsInserted,
		"skipped", result.RecordsSkipped,
		"merged", result.SessionsMerged,
		"clamped", result.ValuesClamped,
	)
	return result, nil
}

// mergeSession folds a later same-day session into dst. dst keeps its ID;
// the types are joined and a repeated exercise takes the later entry.
func mergeSession(dst *models.WorkoutRecord, src models.WorkoutRecord) {
	if src.WorkoutType != dst.WorkoutType {
		dst.WorkoutType += " + " + src.WorkoutType
	}
	for name, entry := range src.Exercises {
		dst.SetExercise(name, entry)
	}
}
