// Package progress derives read-only views from the record collection:
// personal bests, summary statistics, weight series and history rows.
package progress

import (
	"sort"
	"strings"

	"github.com/meltforce/liftlog/internal/models"
)

// PersonalBest is the heaviest numeric weight logged for one exercise.
type PersonalBest struct {
	Exercise string      `json:"exercise"`
	Weight   float64     `json:"weight"`
	Date     models.Date `json:"date"`
}

// PersonalBests returns, per exercise, the maximum numeric weight and the
// date it was first achieved, sorted by exercise name. Entries without a
// numeric weight do not contribute. Returns nil when nothing qualifies.
func PersonalBests(records []models.WorkoutRecord) []PersonalBest {
	best := make(map[string]PersonalBest)
	for _, r := range records {
		for name, e := range r.Exercises {
			w, ok := e.NumericWeight()
			if !ok {
				continue
			}
			cur, seen := best[name]
			if !seen || w > cur.Weight || (w == cur.Weight && r.Date.Before(cur.Date)) {
				best[name] = PersonalBest{Exercise: name, Weight: w, Date: r.Date}
			}
		}
	}
	if len(best) == 0 {
		return nil
	}

	out := make([]PersonalBest, 0, len(best))
	for _, pb := range best {
		out = append(out, pb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Exercise < out[j].Exercise })
	return out
}

// TypeCount is the number of records of one workout type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Summary holds collection-wide statistics.
type Summary struct {
	Empty             bool         `json:"empty"`
	TotalWorkouts     int          `json:"total_workouts"`
	TotalEntries      int          `json:"total_entries"`
	DistinctExercises int          `json:"distinct_exercises"`
	MostFrequentType  string       `json:"most_frequent_type,omitempty"`
	LastWorkout       *models.Date `json:"last_workout,omitempty"`
	ByType            []TypeCount  `json:"by_type"`
}

// Summarize computes the summary statistics. Ties for the most frequent
// workout type go to the alphabetically first type.
func Summarize(records []models.WorkoutRecord) Summary {
	s := Summary{Empty: len(records) == 0, ByType: []TypeCount{}}
	if s.Empty {
		return s
	}

	exercises := make(map[string]struct{})
	counts := make(map[string]int)
	var last models.Date
	for _, r := range records {
		s.TotalWorkouts++
		s.TotalEntries += len(r.Exercises)
		for name := range r.Exercises {
			exercises[name] = struct{}{}
		}
		counts[r.WorkoutType]++
		if r.Date.After(last) {
			last = r.Date
		}
	}
	s.DistinctExercises = len(exercises)
	if !last.IsZero() {
		s.LastWorkout = &last
	}

	for t, n := range counts {
		s.ByType = append(s.ByType, TypeCount{Type: t, Count: n})
	}
	sort.Slice(s.ByType, func(i, j int) bool {
		if s.ByType[i].Count != s.ByType[j].Count {
			return s.ByType[i].Count > s.ByType[j].Count
		}
		return s.ByType[i].Type < s.ByType[j].Type
	})
	s.MostFrequentType = s.ByType[0].Type
	return s
}

// Point is one charted weight.
type Point struct {
	Date   models.Date `json:"date"`
	Weight float64     `json:"weight"`
}

// Series is the weight progression of one exercise.
type Series struct {
	Exercise string  `json:"exercise"`
	Points   []Point `json:"points"`
	// Skipped counts entries of the exercise without a numeric weight.
	Skipped int `json:"skipped"`
}

// Empty reports whether there is nothing to chart.
func (s Series) Empty() bool {
	return len(s.Points) == 0
}

// SeriesFor returns the date-ordered weights logged for exercise. Records on
// the same date keep their collection order.
func SeriesFor(records []models.WorkoutRecord, exercise string) Series {
	s := Series{Exercise: exercise, Points: []Point{}}
	for _, r := range records {
		e, ok := r.Exercises[exercise]
		if !ok {
			continue
		}
		w, ok := e.NumericWeight()
		if !ok {
			s.Skipped++
			continue
		}
		s.Points = append(s.Points, Point{Date: r.Date, Weight: w})
	}
	sort.SliceStable(s.Points, func(i, j int) bool { return s.Points[i].Date.Before(s.Points[j].Date) })
	return s
}

// Row is one exercise of one record, flattened for the history table.
type Row struct {
	Date     models.Date `json:"date"`
	Type     string      `json:"type"`
	Exercise string      `json:"exercise"`
	Kind     models.Kind `json:"kind"`
	Sets     int         `json:"sets"`
	Reps     string      `json:"reps"`
	Weight   string      `json:"weight"`
	Notes    string      `json:"notes,omitempty"`
}

// History flattens every record into rows, newest first. Within a record
// rows are ordered by exercise name.
func History(records []models.WorkoutRecord) []Row {
	ordered := make([]models.WorkoutRecord, len(records))
	copy(ordered, records)
	// Later saves on the same date come first.
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.After(ordered[j].Date) })

	rows := []Row{}
	for _, r := range ordered {
		for _, name := range r.ExerciseNames() {
			e := r.Exercises[name]
			rows = append(rows, Row{
				Date:     r.Date,
				Type:     r.WorkoutType,
				Exercise: name,
				Kind:     e.Kind,
				Sets:     e.Sets,
				Reps:     e.RepsLabel(),
				Weight:   e.WeightLabel(),
				Notes:    e.Notes,
			})
		}
	}
	return rows
}

// ExerciseNames returns every distinct exercise name, sorted.
func ExerciseNames(records []models.WorkoutRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for name := range r.Exercises {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ChartableExercises returns the sorted names of exercises with at least one
// numeric weight.
func ChartableExercises(records []models.WorkoutRecord) []string {
	bests := PersonalBests(records)
	names := make([]string, len(bests))
	for i, pb := range bests {
		names[i] = pb.Exercise
	}
	return names
}

// Filter returns the records dated within [from, to] whose type matches
// workoutType, in collection order. Zero bounds and an empty type do not
// filter.
func Filter(records []models.WorkoutRecord, from, to models.Date, workoutType string) []models.WorkoutRecord {
	out := []models.WorkoutRecord{}
	for _, r := range records {
		if !from.IsZero() && r.Date.Before(from) {
			continue
		}
		if !to.IsZero() && r.Date.After(to) {
			continue
		}
		if workoutType != "" && !strings.EqualFold(r.WorkoutType, workoutType) {
			continue
		}
		out = append(out, r)
	}
	return out
}
