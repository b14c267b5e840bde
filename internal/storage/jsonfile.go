package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// FileBackend stores the collection in a single JSON file.
type FileBackend struct {
	Path   string
	Layout Layout
}

// NewFileBackend returns a backend for the JSON file at path.
func NewFileBackend(path string, layout Layout) *FileBackend {
	if layout == "" {
		layout = LayoutDaily
	}
	return &FileBackend{Path: path, Layout: layout}
}

func (f *FileBackend) Load(_ context.Context) ([]models.WorkoutRecord, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []models.WorkoutRecord
	if f.Layout == LayoutList {
		records, err = decodeList(data)
	} else {
		records, err = decodeDaily(data)
	}
	if err != nil {
		return nil, &ParseError{Path: f.Path, Err: err}
	}
	return records, nil
}

// Save writes the full collection to a temp file next to Path and renames
// it into place.
func (f *FileBackend) Save(_ context.Context, records []models.WorkoutRecord) error {
	var (
		data []byte
		err  error
	)
	if f.Layout == LayoutList {
		data, err = encodeList(records)
	} else {
		data, err = encodeDaily(records)
	}
	if err != nil {
		return fmt.Errorf("encoding workouts: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.Path, err)
	}
	return nil
}

// dayRecord is the value stored under each date key of the daily layout.
type dayRecord struct {
	ID        uuid.UUID                       `json:"id"`
	Type      string                          `json:"type"`
	Exercises map[string]models.ExerciseEntry `json:"exercises"`
}

func decodeDaily(data []byte) ([]models.WorkoutRecord, error) {
	var days map[string]dayRecord
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]models.WorkoutRecord, 0, len(days))
	for _, k := range keys {
		date, err := models.ParseDate(k)
		if err != nil {
			return nil, err
		}
		day := days[k]
		id := day.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		exercises := day.Exercises
		if exercises == nil {
			exercises = make(map[string]models.ExerciseEntry)
		}
		records = append(records, models.WorkoutRecord{
			ID:          id,
			Date:        date,
			WorkoutType: day.Type,
			Exercises:   exercises,
		})
	}
	return records, nil
}

func encodeDaily(records []models.WorkoutRecord) ([]byte, error) {
	days := make(map[string]dayRecord, len(records))
	for _, r := range records {
		days[r.Date.String()] = dayRecord{ID: r.ID, Type: r.WorkoutType, Exercises: r.Exercises}
	}
	return json.MarshalIndent(days, "", "  ")
}

// rowHeader holds the record fields repeated on every row of the list
// layout. The remaining row fields are the exercise entry itself.
type rowHeader struct {
	ID       uuid.UUID   `json:"id"`
	Date     models.Date `json:"date"`
	Type     string      `json:"type"`
	Exercise string      `json:"exercise"`
}

func decodeList(data []byte) ([]models.WorkoutRecord, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}

	var records []models.WorkoutRecord
	index := make(map[uuid.UUID]int)
	for i, raw := range rows {
		var h rowHeader
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		var entry models.ExerciseEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		// Rows written without an id are one record each.
		if h.ID == uuid.Nil {
			h.ID = uuid.New()
		}
		pos, ok := index[h.ID]
		if !ok {
			pos = len(records)
			index[h.ID] = pos
			records = append(records, models.WorkoutRecord{
				ID:          h.ID,
				Date:        h.Date,
				WorkoutType: h.Type,
				Exercises:   make(map[string]models.ExerciseEntry),
			})
		}
		records[pos].SetExercise(h.Exercise, entry)
	}
	return records, nil
}

func encodeList(records []models.WorkoutRecord) ([]byte, error) {
	rows := make([]map[string]json.RawMessage, 0, len(records))
	for _, r := range records {
		for _, name := range r.ExerciseNames() {
			entry, err := json.Marshal(r.Exercises[name])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			row := make(map[string]json.RawMessage)
			if err := json.Unmarshal(entry, &row); err != nil {
				return nil, err
			}
			header, err := json.Marshal(rowHeader{ID: r.ID, Date: r.Date, Type: r.WorkoutType, Exercise: name})
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(header, &row); err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
	}
	return json.MarshalIndent(rows, "", "  ")
}
