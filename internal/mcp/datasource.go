package mcp

import (
	"context"

	"github.com/meltforce/liftlog/internal/catalog"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/progress"
	"github.com/meltforce/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both StoreSource (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, from, to models.Date, workoutType string) ([]models.WorkoutRecord, error)
	PersonalBests(ctx context.Context) ([]progress.PersonalBest, error)
	Summary(ctx context.Context) (progress.Summary, error)
	Series(ctx context.Context, exercise string) (progress.Series, error)
	Catalog(ctx context.Context) ([]catalog.Workout, error)
}

// StoreSource answers queries from an in-process record store.
type StoreSource struct {
	Store     *storage.Store
	Templates *catalog.Catalog
}

// Compile-time check: StoreSource satisfies DataSource.
var _ DataSource = StoreSource{}

func (s StoreSource) ListWorkouts(_ context.Context, from, to models.Date, workoutType string) ([]models.WorkoutRecord, error) {
	return progress.Filter(s.Store.Records(), from, to, workoutType), nil
}

func (s StoreSource) PersonalBests(_ context.Context) ([]progress.PersonalBest, error) {
	return progress.PersonalBests(s.Store.Records()), nil
}

func (s StoreSource) Summary(_ context.Context) (progress.Summary, error) {
	return progress.Summarize(s.Store.Records()), nil
}

func (s StoreSource) Series(_ context.Context, exercise string) (progress.Series, error) {
	return progress.SeriesFor(s.Store.Records(), exercise), nil
}

func (s StoreSource) Catalog(_ context.Context) ([]catalog.Workout, error) {
	return s.Templates.Workouts(), nil
}
