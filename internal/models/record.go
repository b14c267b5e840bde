package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrNoExercises is returned when a record without exercises is saved.
var ErrNoExercises = errors.New("workout has no exercises")

// WorkoutRecord is one logged workout session.
type WorkoutRecord struct {
	ID          uuid.UUID                `json:"id"`
	Date        Date                     `json:"date"`
	WorkoutType string                   `json:"type"`
	Exercises   map[string]ExerciseEntry `json:"exercises"`
}

// NewRecord creates an empty record with a fresh ID.
func NewRecord(date Date, workoutType string) WorkoutRecord {
	return WorkoutRecord{
		ID:          uuid.New(),
		Date:        date,
		WorkoutType: workoutType,
		Exercises:   make(map[string]ExerciseEntry),
	}
}

// SetExercise stores entry under name. A second entry with the same name
// replaces the first.
func (r *WorkoutRecord) SetExercise(name string, entry ExerciseEntry) {
	if r.Exercises == nil {
		r.Exercises = make(map[string]ExerciseEntry)
	}
	r.Exercises[strings.TrimSpace(name)] = entry
}

// ExerciseNames returns the record's exercise names in sorted order.
func (r WorkoutRecord) ExerciseNames() []string {
	names := make([]string, 0, len(r.Exercises))
	for name := range r.Exercises {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of r.
func (r WorkoutRecord) Clone() WorkoutRecord {
	out := r
	out.Exercises = make(map[string]ExerciseEntry, len(r.Exercises))
	for name, e := range r.Exercises {
		out.Exercises[name] = e
	}
	return out
}

// Validate checks that the record is complete and every entry is in range.
func (r WorkoutRecord) Validate() error {
	if r.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "is required"}
	}
	if strings.TrimSpace(r.WorkoutType) == "" {
		return &ValidationError{Field: "type", Message: "is required"}
	}
	if len(r.Exercises) == 0 {
		return ErrNoExercises
	}
	for _, name := range r.ExerciseNames() {
		if name == "" {
			return &ValidationError{Field: "exercise", Message: "name is required"}
		}
		if err := r.Exercises[name].Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
