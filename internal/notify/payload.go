package notify

import (
	"github.com/meltforce/liftlog/internal/models"
)

// Payload is the webhook body. Field names are PascalCase on the wire.
type Payload struct {
	ID        string                  `json:"Id"`
	Date      string                  `json:"Date"`
	Type      string                  `json:"Type"`
	Exercises map[string]EntryPayload `json:"Exercises"`
}

// EntryPayload is one exercise of the webhook body. Reps and Weight hold a
// number for standard entries and a label otherwise.
type EntryPayload struct {
	Kind   string `json:"Kind"`
	Sets   int    `json:"Sets"`
	Reps   any    `json:"Reps"`
	Weight any    `json:"Weight"`
	Notes  string `json:"Notes,omitempty"`
}

// NewPayload converts a record into its webhook body.
func NewPayload(rec models.WorkoutRecord) Payload {
	p := Payload{
		ID:        rec.ID.String(),
		Date:      rec.Date.String(),
		Type:      rec.WorkoutType,
		Exercises: make(map[string]EntryPayload, len(rec.Exercises)),
	}
	for name, e := range rec.Exercises {
		ep := EntryPayload{Kind: string(e.Kind), Sets: e.Sets, Notes: e.Notes}
		if w, ok := e.NumericWeight(); ok {
			ep.Reps = e.Reps
			ep.Weight = w
		} else if e.Kind == models.KindStandard {
			ep.Reps = e.Reps
			ep.Weight = e.WeightLabel()
		} else {
			ep.Reps = e.RepsLabel()
			ep.Weight = e.WeightLabel()
		}
		p.Exercises[name] = ep
	}
	return p
}
