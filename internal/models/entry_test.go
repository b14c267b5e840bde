package models

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestParseDate verifies the YYYY-MM-DD wire format and that two parses of
// the same day compare equal.
func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := NewDate(2025, 3, 9); got != want {
		t.Errorf("ParseDate = %v, want %v", got, want)
	}
	if got.String() != "2025-03-09" {
		t.Errorf("String() = %q, want 2025-03-09", got.String())
	}

	if _, err := ParseDate("09/03/2025"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

// TestDateJSON verifies dates serialize as plain day strings.
func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(NewDate(2024, 12, 31))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2024-12-31"` {
		t.Errorf("marshal = %s, want \"2024-12-31\"", data)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2024-01-02"`), &d); err != nil {
		t.Fatal(err)
	}
	if !d.Equal(NewDate(2024, 1, 2)) {
		t.Errorf("unmarshal = %v, want 2024-01-02", d)
	}
}

// TestEntryUnmarshalInfersKind verifies entries written without a kind tag
// are decoded into the right variant.
func TestEntryUnmarshalInfersKind(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ExerciseEntry
	}{
		{
			name: "standard",
			raw:  `{"sets": 4, "reps": 6, "weight": 80.5, "notes": "felt strong"}`,
			want: ExerciseEntry{Kind: KindStandard, Sets: 4, Reps: 6, Weight: 80.5, Notes: "felt strong"},
		},
		{
			name: "timed",
			raw:  `{"sets": 3, "reps": "30-40s", "weight": "Bodyweight"}`,
			want: ExerciseEntry{Kind: KindTimed, Sets: 3, Duration: "30-40s", Load: "Bodyweight"},
		},
		{
			name: "distance",
			raw:  `{"sets": 2, "reps": "500m", "weight": "Bodyweight"}`,
			want: ExerciseEntry{Kind: KindDistance, Sets: 2, Distance: "500m", Load: "Bodyweight"},
		},
		{
			name: "weighted carry",
			raw:  `{"sets": 3, "reps": "40s", "weight": 24}`,
			want: ExerciseEntry{Kind: KindTimed, Sets: 3, Duration: "40s", Load: "24"},
		},
		{
			name: "bodyweight reps",
			raw:  `{"sets": 4, "reps": 8, "weight": "Bodyweight"}`,
			want: ExerciseEntry{Kind: KindStandard, Sets: 4, Reps: 8, Load: "Bodyweight"},
		},
		{
			name: "explicit kind wins",
			raw:  `{"kind": "timed", "sets": 1, "reps": "2km", "weight": "Bodyweight"}`,
			want: ExerciseEntry{Kind: KindTimed, Sets: 1, Duration: "2km", Load: "Bodyweight"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ExerciseEntry
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("unmarshal error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestEntryUnmarshalFractionalReps verifies reps must be whole numbers; a
// whole number written with a decimal point is accepted.
func TestEntryUnmarshalFractionalReps(t *testing.T) {
	var e ExerciseEntry
	err := json.Unmarshal([]byte(`{"sets": 3, "reps": 8.7, "weight": 60}`), &e)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "reps" {
		t.Fatalf("err = %v, want a reps validation error", err)
	}

	if err := json.Unmarshal([]byte(`{"sets": 3, "reps": 8.0, "weight": 60}`), &e); err != nil {
		t.Fatalf("unmarshal 8.0: %v", err)
	}
	if e.Reps != 8 {
		t.Errorf("reps = %d, want 8", e.Reps)
	}
}

// TestEntryMarshalWireShape verifies timed entries put their duration in the
// reps field and their load label in the weight field.
func TestEntryMarshalWireShape(t *testing.T) {
	data, err := json.Marshal(Timed(3, "30-40s").WithNotes("grip gave out"))
	if err != nil {
		t.Fatal(err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatal(err)
	}
	if wire["reps"] != "30-40s" {
		t.Errorf("reps = %v, want 30-40s", wire["reps"])
	}
	if wire["weight"] != "Bodyweight" {
		t.Errorf("weight = %v, want Bodyweight", wire["weight"])
	}
	if wire["kind"] != "timed" {
		t.Errorf("kind = %v, want timed", wire["kind"])
	}
	if wire["notes"] != "grip gave out" {
		t.Errorf("notes = %v, want %q", wire["notes"], "grip gave out")
	}
}

// TestNumericWeight verifies only standard entries with a numeric weight
// contribute to weight charts.
func TestNumericWeight(t *testing.T) {
	if w, ok := Standard(3, 10, 60).NumericWeight(); !ok || w != 60 {
		t.Errorf("standard NumericWeight = %v, %v; want 60, true", w, ok)
	}
	if _, ok := Timed(3, "60s").NumericWeight(); ok {
		t.Error("timed entry should have no numeric weight")
	}
	bw := Standard(3, 8, 0)
	bw.Load = DefaultLoad
	if _, ok := bw.NumericWeight(); ok {
		t.Error("bodyweight standard entry should have no numeric weight")
	}
	if bw.WeightLabel() != "Bodyweight" {
		t.Errorf("WeightLabel = %q, want Bodyweight", bw.WeightLabel())
	}
}

// TestEntryValidate verifies the sets/reps/weight bounds.
func TestEntryValidate(t *testing.T) {
	tests := []struct {
		name  string
		entry ExerciseEntry
		field string
	}{
		{"valid", Standard(3, 10, 60), ""},
		{"zero sets", Standard(0, 10, 60), "sets"},
		{"too many sets", Standard(11, 10, 60), "sets"},
		{"too many reps", Standard(3, 51, 60), "reps"},
		{"negative weight", Standard(3, 10, -1), "weight"},
		{"too heavy", Standard(3, 10, 300.5), "weight"},
		{"max weight ok", Standard(10, 50, 300), ""},
		{"timed without duration", Timed(3, " "), "duration"},
		{"distance ok", Distance(1, "5km"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

// TestRecordSetExerciseLastWriteWins verifies exercise names are unique
// within a record.
func TestRecordSetExerciseLastWriteWins(t *testing.T) {
	r := NewRecord(NewDate(2025, 1, 6), "Upper Push")
	r.SetExercise("Bench Press", Standard(4, 6, 80))
	r.SetExercise(" Bench Press ", Standard(4, 5, 85))

	if len(r.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(r.Exercises))
	}
	if got := r.Exercises["Bench Press"].Weight; got != 85 {
		t.Errorf("weight = %v, want 85", got)
	}
}

// TestRecordValidate verifies that empty records are rejected.
func TestRecordValidate(t *testing.T) {
	r := NewRecord(NewDate(2025, 1, 6), "Upper Push")
	if err := r.Validate(); !errors.Is(err, ErrNoExercises) {
		t.Errorf("Validate() = %v, want ErrNoExercises", err)
	}

	r.SetExercise("Bench Press", Standard(4, 6, 80))
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	r.SetExercise("Dips", Standard(3, 60, 0))
	if err := r.Validate(); err == nil {
		t.Error("expected error for out-of-range reps")
	}
}

// TestRecordClone verifies a clone does not share its exercise map.
func TestRecordClone(t *testing.T) {
	r := NewRecord(NewDate(2025, 1, 6), "Upper Pull")
	r.SetExercise("Deadlift", Standard(4, 5, 140))

	c := r.Clone()
	c.SetExercise("Pull Ups", Standard(4, 8, 0))

	if len(r.Exercises) != 1 {
		t.Errorf("original exercises = %d, want 1", len(r.Exercises))
	}
}
