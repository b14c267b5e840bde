package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meltforce/liftlog/internal/models"
)

// Layout selects how a new record joins the collection and how the JSON
// file is shaped.
type Layout string

const (
	// LayoutDaily keys records by date; saving on an existing date replaces it.
	LayoutDaily Layout = "daily"
	// LayoutList keeps every saved record in order.
	LayoutList Layout = "list"
)

// ParseLayout validates a configured layout name. Empty means daily.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutDaily:
		return LayoutDaily, nil
	case LayoutList:
		return LayoutList, nil
	default:
		return "", fmt.Errorf("unknown storage layout %q (want daily or list)", s)
	}
}

// Backend persists the whole record collection.
type Backend interface {
	// Load returns every persisted record. It returns ErrNotFound when
	// nothing has been persisted and a *ParseError for undecodable data.
	Load(ctx context.Context) ([]models.WorkoutRecord, error)
	// Save replaces the persisted collection with records.
	Save(ctx context.Context, records []models.WorkoutRecord) error
}

// Store is the in-memory record collection backed by a Backend.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	layout  Layout
	log     *slog.Logger
	records []models.WorkoutRecord
}

// New creates an empty store. Call Load to read persisted records.
func New(backend Backend, layout Layout, log *slog.Logger) *Store {
	if layout == "" {
		layout = LayoutDaily
	}
	return &Store{backend: backend, layout: layout, log: log}
}

// Layout returns the store's layout.
func (s *Store) Layout() Layout {
	return s.layout
}

// Load replaces the in-memory collection with the persisted one. A missing
// backing file leaves the store empty and is not an error. Decode failures
// are returned as *ParseError and also leave the store empty.
func (s *Store) Load(ctx context.Context) error {
	records, err := s.backend.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		records, err = nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.records = nil
		return err
	}
	s.records = records
	s.log.Debug("workouts loaded", "count", len(records), "layout", s.layout)
	return nil
}

// Add validates rec, merges it into the collection and persists the result.
// The in-memory collection only changes once the backend save succeeds.
func (s *Store) Add(ctx context.Context, rec models.WorkoutRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec = rec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.WorkoutRecord, 0, len(s.records)+1)
	next = append(next, s.records...)
	replaced := false
	if s.layout == LayoutDaily {
		for i := range next {
			if next[i].Date.Equal(rec.Date) {
				next[i] = rec
				replaced = true
				break
			}
		}
	}
	if !replaced {
		next = append(next, rec)
	}

	if err := s.backend.Save(ctx, next); err != nil {
		return fmt.Errorf("saving workouts: %w", err)
	}
	s.records = next
	s.log.Info("workout saved", "id", rec.ID, "date", rec.Date, "type", rec.WorkoutType,
		"exercises", len(rec.Exercises), "replaced", replaced)
	return nil
}

// Records returns a deep copy of every record in collection order.
func (s *Store) Records() []models.WorkoutRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.WorkoutRecord, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
