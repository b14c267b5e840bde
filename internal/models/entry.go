package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags which variant of ExerciseEntry is populated.
type Kind string

const (
	KindStandard Kind = "standard"
	KindTimed    Kind = "timed"
	KindDistance Kind = "distance"
)

// DefaultLoad is the weight label of timed and distance exercises.
const DefaultLoad = "Bodyweight"

// Input bounds for logged sets.
const (
	MinSets   = 1
	MaxSets   = 10
	MinReps   = 1
	MaxReps   = 50
	MinWeight = 0.0
	MaxWeight = 300.0
)

// ValidationError reports a field outside its allowed range.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// ExerciseEntry is one exercise's performance within a record.
//
// Standard entries carry Reps and Weight. Timed entries carry Duration and
// distance entries carry Distance; both use Load as their weight label. A
// standard entry with a Load label (a bodyweight set) has no numeric weight.
// Notes apply to every kind.
type ExerciseEntry struct {
	Kind     Kind
	Sets     int
	Reps     int
	Weight   float64
	Duration string
	Distance string
	Load     string
	Notes    string
}

// Standard returns a sets x reps @ weight entry.
func Standard(sets, reps int, weight float64) ExerciseEntry {
	return ExerciseEntry{Kind: KindStandard, Sets: sets, Reps: reps, Weight: weight}
}

// Timed returns an entry measured in time, e.g. "30-40s".
func Timed(sets int, duration string) ExerciseEntry {
	return ExerciseEntry{Kind: KindTimed, Sets: sets, Duration: duration, Load: DefaultLoad}
}

// Distance returns an entry measured in distance, e.g. "500m".
func Distance(sets int, distance string) ExerciseEntry {
	return ExerciseEntry{Kind: KindDistance, Sets: sets, Distance: distance, Load: DefaultLoad}
}

// WithNotes returns a copy of e carrying notes.
func (e ExerciseEntry) WithNotes(notes string) ExerciseEntry {
	e.Notes = notes
	return e
}

// NumericWeight returns the weight when the entry has a numeric one.
func (e ExerciseEntry) NumericWeight() (float64, bool) {
	if e.Kind != KindStandard || e.Load != "" {
		return 0, false
	}
	return e.Weight, true
}

// RepsLabel renders the reps column: a count, a duration or a distance.
func (e ExerciseEntry) RepsLabel() string {
	switch e.Kind {
	case KindTimed:
		return e.Duration
	case KindDistance:
		return e.Distance
	default:
		return strconv.Itoa(e.Reps)
	}
}

// WeightLabel renders the weight column: kilograms or the load label.
func (e ExerciseEntry) WeightLabel() string {
	if e.Kind == KindStandard && e.Load == "" {
		return formatWeight(e.Weight)
	}
	if e.Load == "" {
		return DefaultLoad
	}
	return e.Load
}

// Validate checks the entry against the input bounds.
func (e ExerciseEntry) Validate() error {
	if e.Sets < MinSets || e.Sets > MaxSets {
		return &ValidationError{Field: "sets", Message: fmt.Sprintf("must be between %d and %d", MinSets, MaxSets)}
	}
	switch e.Kind {
	case KindStandard:
		if e.Reps < MinReps || e.Reps > MaxReps {
			return &ValidationError{Field: "reps", Message: fmt.Sprintf("must be between %d and %d", MinReps, MaxReps)}
		}
		if e.Weight < MinWeight || e.Weight > MaxWeight {
			return &ValidationError{Field: "weight", Message: fmt.Sprintf("must be between %s and %s", formatWeight(MinWeight), formatWeight(MaxWeight))}
		}
	case KindTimed:
		if strings.TrimSpace(e.Duration) == "" {
			return &ValidationError{Field: "duration", Message: "is required"}
		}
	case KindDistance:
		if strings.TrimSpace(e.Distance) == "" {
			return &ValidationError{Field: "distance", Message: "is required"}
		}
	default:
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown kind %q", e.Kind)}
	}
	return nil
}

// entryWire is the JSON shape of an entry: reps and weight hold either a
// number or a label depending on the kind.
type entryWire struct {
	Kind   Kind            `json:"kind,omitempty"`
	Sets   int             `json:"sets"`
	Reps   json.RawMessage `json:"reps"`
	Weight json.RawMessage `json:"weight"`
	Notes  string          `json:"notes,omitempty"`
}

func (e ExerciseEntry) MarshalJSON() ([]byte, error) {
	w := entryWire{Kind: e.Kind, Sets: e.Sets, Notes: e.Notes}
	var err error
	if e.Kind == KindStandard {
		w.Reps, err = json.Marshal(e.Reps)
		if err != nil {
			return nil, err
		}
		if e.Load != "" {
			w.Weight, err = json.Marshal(e.Load)
		} else {
			w.Weight, err = json.Marshal(e.Weight)
		}
	} else {
		w.Reps, err = json.Marshal(e.RepsLabel())
		if err != nil {
			return nil, err
		}
		w.Weight, err = json.Marshal(e.WeightLabel())
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func (e *ExerciseEntry) UnmarshalJSON(data []byte) error {
	var w entryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	repsNum, repsIsNum := rawNumber(w.Reps)
	repsText := rawString(w.Reps)
	weightNum, weightIsNum := rawNumber(w.Weight)
	weightText := rawString(w.Weight)

	kind := w.Kind
	if kind == "" {
		kind = InferKind(repsText, repsIsNum)
	}

	out := ExerciseEntry{Kind: kind, Sets: w.Sets, Notes: w.Notes}
	switch kind {
	case KindStandard:
		if !repsIsNum {
			return fmt.Errorf("standard entry: reps %s is not a number", w.Reps)
		}
		if repsNum != math.Trunc(repsNum) {
			return &ValidationError{Field: "reps", Message: "must be a whole number"}
		}
		out.Reps = int(repsNum)
		if weightIsNum {
			out.Weight = weightNum
		} else {
			out.Load = weightText
		}
	case KindTimed, KindDistance:
		label := repsText
		if repsIsNum {
			label = formatWeight(repsNum)
		}
		if kind == KindTimed {
			out.Duration = label
		} else {
			out.Distance = label
		}
		out.Load = weightText
		if weightIsNum {
			out.Load = formatWeight(weightNum)
		}
		if out.Load == "" {
			out.Load = DefaultLoad
		}
	default:
		return fmt.Errorf("unknown entry kind %q", kind)
	}
	*e = out
	return nil
}

var distanceSuffixes = []string{"km", "mi", "mile", "miles", "yd", "meters", "metres", "m"}

// InferKind guesses the variant of an entry written without a kind tag.
// Numeric reps make a standard entry; textual reps are a distance when they
// end in a distance unit and a duration otherwise.
func InferKind(repsText string, repsIsNum bool) Kind {
	if repsIsNum {
		return KindStandard
	}
	lower := strings.ToLower(strings.TrimSpace(repsText))
	for _, suffix := range distanceSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return KindDistance
		}
	}
	return KindTimed
}

func rawNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
