package alpha

import (
	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/ingest"
	"github.com/meltforce/liftlog/internal/models"
)

// recordNamespace seeds the deterministic record IDs of imported sessions,
// so importing the same export twice yields the same IDs.
var recordNamespace = uuid.MustParse("7c1f4a52-2d7e-4f0b-9a59-3b8f6c0d9e21")

// RecordID returns the ID an imported session is stored under.
func RecordID(s Session) uuid.UUID {
	return uuid.NewSHA1(recordNamespace, []byte(s.Date.Format("2006-01-02 15:04")+"|"+s.Name))
}

// ToRecord collapses a session into one workout record. Each exercise's
// working sets become a single standard entry: the set count, and the reps
// and weight of the heaviest set. Warmups are ignored. Values outside the
// entry bounds are clamped and counted in res.
func ToRecord(s Session, res *ingest.Result) (models.WorkoutRecord, bool) {
	rec := models.NewRecord(models.DateOf(s.Date), s.Name)
	rec.ID = RecordID(s)

	for _, ex := range s.Exercises {
		var working []Set
		for _, set := range ex.Sets {
			res.SetsReceived++
			if !set.IsWarmup {
				working = append(working, set)
			}
		}
		if len(working) == 0 || ex.Name == "" {
			res.ExercisesSkipped++
			continue
		}

		top := working[0]
		for _, set := range working[1:] {
			if set.WeightKg > top.WeightKg || (set.WeightKg == top.WeightKg && set.Reps > top.Reps) {
				top = set
			}
		}

		sets := clampInt(len(working), models.MinSets, models.MaxSets, res)
		reps := clampInt(top.Reps, models.MinReps, models.MaxReps, res)
		weight := clampFloat(top.WeightKg, models.MinWeight, models.MaxWeight, res)

		entry := models.Standard(sets, reps, weight)
		if ex.Equipment != "" {
			entry = entry.WithNotes(ex.Equipment)
		}
		rec.SetExercise(ex.Name, entry)
		res.ExercisesImported++
	}

	return rec, len(rec.Exercises) > 0
}

func clampInt(v, lo, hi int, res *ingest.Result) int {
	if v < lo {
		res.ValuesClamped++
		return lo
	}
	if v > hi {
		res.ValuesClamped++
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64, res *ingest.Result) float64 {
	if v < lo {
		res.ValuesClamped++
		return lo
	}
	if v > hi {
		res.ValuesClamped++
		return hi
	}
	return v
}
