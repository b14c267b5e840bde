package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/meltforce/liftlog/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func benchRecord(date models.Date, weight float64) models.WorkoutRecord {
	r := models.NewRecord(date, "Upper Push")
	r.SetExercise("Bench Press", models.Standard(4, 6, weight))
	r.SetExercise("Farmer's Carry", models.Timed(3, "30-40s").WithNotes("heavy"))
	return r
}

func openStore(t *testing.T, path string, layout Layout) *Store {
	t.Helper()
	s := New(NewFileBackend(path, layout), layout, testLogger())
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func recordsEqual(a, b models.WorkoutRecord) bool {
	if a.ID != b.ID || !a.Date.Equal(b.Date) || a.WorkoutType != b.WorkoutType {
		return false
	}
	if len(a.Exercises) != len(b.Exercises) {
		return false
	}
	for name, e := range a.Exercises {
		if b.Exercises[name] != e {
			return false
		}
	}
	return true
}

// TestRoundTrip verifies a saved record reloads unchanged in both layouts.
func TestRoundTrip(t *testing.T) {
	for _, layout := range []Layout{LayoutDaily, LayoutList} {
		t.Run(string(layout), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "workouts.json")
			rec := benchRecord(models.NewDate(2025, 3, 1), 80)

			s := openStore(t, path, layout)
			if err := s.Add(context.Background(), rec); err != nil {
				t.Fatalf("Add: %v", err)
			}

			got := openStore(t, path, layout).Records()
			if len(got) != 1 {
				t.Fatalf("records = %d, want 1", len(got))
			}
			if !recordsEqual(got[0], rec) {
				t.Errorf("reloaded = %+v, want %+v", got[0], rec)
			}
		})
	}
}

// TestDailyUpsert verifies a second save on the same date replaces the first.
func TestDailyUpsert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.json")
	s := openStore(t, path, LayoutDaily)
	ctx := context.Background()

	day := models.NewDate(2025, 3, 1)
	if err := s.Add(ctx, benchRecord(day, 80)); err != nil {
		t.Fatal(err)
	}
	second := benchRecord(day, 85)
	if err := s.Add(ctx, second); err != nil {
		t.Fatal(err)
	}

	got := openStore(t, path, LayoutDaily).Records()
	if len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
	if !recordsEqual(got[0], second) {
		t.Errorf("record = %+v, want %+v", got[0], second)
	}
}

// TestListAppends verifies the list layout keeps both records of one date.
func TestListAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.json")
	s := openStore(t, path, LayoutList)
	ctx := context.Background()

	day := models.NewDate(2025, 3, 1)
	if err := s.Add(ctx, benchRecord(day, 80)); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, benchRecord(day, 85)); err != nil {
		t.Fatal(err)
	}

	got := openStore(t, path, LayoutList).Records()
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	if got[0].Exercises["Bench Press"].Weight != 80 || got[1].Exercises["Bench Press"].Weight != 85 {
		t.Errorf("records out of order: %+v", got)
	}
}

// TestLoadMissingFile verifies a missing file is an empty store, while the
// backend itself reports ErrNotFound.
func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	if _, err := NewFileBackend(path, LayoutDaily).Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("backend err = %v, want ErrNotFound", err)
	}
	if n := openStore(t, path, LayoutDaily).Len(); n != 0 {
		t.Errorf("records = %d, want 0", n)
	}
}

// TestLoadCorruptFile verifies undecodable content is a *ParseError and the
// file is left untouched.
func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := New(NewFileBackend(path, LayoutDaily), LayoutDaily, testLogger())
	err := s.Load(context.Background())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Path != path {
		t.Errorf("path = %q, want %q", pe.Path, path)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("parse error must not match ErrNotFound")
	}
	if s.Len() != 0 {
		t.Errorf("records = %d, want 0", s.Len())
	}

	data, _ := os.ReadFile(path)
	if string(data) != "{not json" {
		t.Error("corrupt file was overwritten by Load")
	}
}

// TestLegacyListRows verifies rows written without an id load as one record
// each and keep their textual reps.
func TestLegacyListRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.json")
	content := `[
  {"date": "2024-05-01", "type": "Upper Push", "exercise": "Bench Press", "sets": 4, "reps": 6, "weight": 80},
  {"date": "2024-05-01", "type": "Upper Push", "exercise": "Weighted Dips", "sets": 3, "reps": 8, "weight": 10},
  {"date": "2024-05-03", "type": "Lower Body (Posterior Chain Focus)", "exercise": "Farmer's Carry", "sets": 3, "reps": "30-40s", "weight": "Bodyweight"}
]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got := openStore(t, path, LayoutList).Records()
	if len(got) != 3 {
		t.Fatalf("records = %d, want 3", len(got))
	}
	carry := got[2].Exercises["Farmer's Carry"]
	if carry.Kind != models.KindTimed || carry.Duration != "30-40s" {
		t.Errorf("carry = %+v, want timed 30-40s", carry)
	}
}

// TestDailyFileShape verifies the daily layout is keyed by date.
func TestDailyFileShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.json")
	content := `{
  "2024-05-01": {"type": "Upper Pull", "exercises": {"Deadlift": {"sets": 4, "reps": 5, "weight": 140}}}
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got := openStore(t, path, LayoutDaily).Records()
	if len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
	if !got[0].Date.Equal(models.NewDate(2024, 5, 1)) {
		t.Errorf("date = %v, want 2024-05-01", got[0].Date)
	}
	if got[0].Exercises["Deadlift"].Weight != 140 {
		t.Errorf("deadlift = %+v", got[0].Exercises["Deadlift"])
	}
}

// TestAddRejectsInvalid verifies invalid records are not persisted.
func TestAddRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.json")
	s := openStore(t, path, LayoutDaily)

	empty := models.NewRecord(models.NewDate(2025, 1, 1), "Upper Push")
	if err := s.Add(context.Background(), empty); !errors.Is(err, models.ErrNoExercises) {
		t.Errorf("err = %v, want ErrNoExercises", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file written for an invalid record")
	}
}

type failingBackend struct{}

func (failingBackend) Load(context.Context) ([]models.WorkoutRecord, error) { return nil, ErrNotFound }
func (failingBackend) Save(context.Context, []models.WorkoutRecord) error {
	return errors.New("disk full")
}

// TestAddBackendFailure verifies the in-memory collection is unchanged when
// the backend cannot save.
func TestAddBackendFailure(t *testing.T) {
	s := New(failingBackend{}, LayoutList, testLogger())
	if err := s.Add(context.Background(), benchRecord(models.NewDate(2025, 1, 1), 60)); err == nil {
		t.Fatal("expected error")
	}
	if s.Len() != 0 {
		t.Errorf("records = %d, want 0", s.Len())
	}
}

// TestParseLayout verifies layout names.
func TestParseLayout(t *testing.T) {
	if l, err := ParseLayout(""); err != nil || l != LayoutDaily {
		t.Errorf("ParseLayout(\"\") = %q, %v; want daily", l, err)
	}
	if l, err := ParseLayout("list"); err != nil || l != LayoutList {
		t.Errorf("ParseLayout(list) = %q, %v; want list", l, err)
	}
	if _, err := ParseLayout("csv"); err == nil {
		t.Error("expected error for unknown layout")
	}
}

// TestOpen verifies backend selection without touching a database.
func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.json")
	s, db, err := Open(context.Background(), Options{Backend: "file", Path: path, Layout: LayoutList}, testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if db != nil {
		t.Error("file backend returned a DB")
	}
	if s.Layout() != LayoutList {
		t.Errorf("layout = %q, want list", s.Layout())
	}

	if _, _, err := Open(context.Background(), Options{Backend: "redis"}, testLogger()); err == nil {
		t.Error("expected error for unknown backend")
	}
}
