// Package session holds the process-wide UI state: the page being shown and
// the workout draft the user is filling in.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/meltforce/liftlog/internal/catalog"
	"github.com/meltforce/liftlog/internal/models"
)

// Page is one of the fixed navigation targets.
type Page string

const (
	PageAdd      Page = "add"
	PageHistory  Page = "history"
	PageProgress Page = "progress"
)

// Pages lists the navigation targets in menu order.
var Pages = []Page{PageAdd, PageHistory, PageProgress}

// Title is the human-readable page name.
func (p Page) Title() string {
	switch p {
	case PageHistory:
		return "Workout History"
	case PageProgress:
		return "Progress Overview"
	default:
		return "Add Workout"
	}
}

var ErrUnknownType = errors.New("unknown workout type")

// Draft is the in-progress workout.
type Draft struct {
	Date        models.Date                     `json:"date"`
	WorkoutType string                          `json:"type"`
	Exercises   map[string]models.ExerciseEntry `json:"exercises"`
}

// Flash levels.
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Level string
	Text  string
}

// State is the application state shared by every view. Handlers receive it
// explicitly; there are no package-level globals.
type State struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	today   func() models.Date
	page    Page
	draft   Draft
	dateSet bool // draft.Date was chosen by the user; otherwise it follows today
	flashes []Flash
}

// New creates state with an empty draft for today and the first catalog type.
func New(c *catalog.Catalog, today func() models.Date) *State {
	if today == nil {
		today = models.Today
	}
	s := &State{catalog: c, today: today, page: PageAdd}
	s.resetDraft("")
	return s
}

// resetDraft starts an empty draft dated today. Callers hold mu.
func (s *State) resetDraft(workoutType string) {
	s.draft = s.freshDraft(workoutType)
	s.dateSet = false
}

// date is the draft's effective date. Callers hold mu.
func (s *State) date() models.Date {
	if s.dateSet {
		return s.draft.Date
	}
	return s.today()
}

func (s *State) freshDraft(workoutType string) Draft {
	if workoutType == "" {
		if types := s.catalog.Types(); len(types) > 0 {
			workoutType = types[0]
		}
	}
	return Draft{
		Date:        s.today(),
		WorkoutType: workoutType,
		Exercises:   make(map[string]models.ExerciseEntry),
	}
}

// Page returns the last page shown; / returns there.
func (s *State) Page() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SetPage switches the current page.
func (s *State) SetPage(p Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = p
}

// Catalog returns the catalog the draft is built from.
func (s *State) Catalog() *catalog.Catalog {
	return s.catalog
}

// Draft returns a copy of the current draft.
func (s *State) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.draft
	out.Date = s.date()
	out.Exercises = make(map[string]models.ExerciseEntry, len(s.draft.Exercises))
	for name, e := range s.draft.Exercises {
		out.Exercises[name] = e
	}
	return out
}

// SetDate pins the draft's workout date. Until it is called the draft is
// dated today, whenever today is.
func (s *State) SetDate(d models.Date) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Date = d
	s.dateSet = true
}

// SetType changes the draft's workout type. Catalog types are required
// unless custom is set.
func (s *State) SetType(workoutType string, custom bool) error {
	workoutType = strings.TrimSpace(workoutType)
	if workoutType == "" {
		return &models.ValidationError{Field: "type", Message: "is required"}
	}
	if _, ok := s.catalog.Lookup(workoutType); !ok && !custom {
		return fmt.Errorf("%w: %q", ErrUnknownType, workoutType)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.WorkoutType = workoutType
	return nil
}

// SetExercise validates entry and stores it in the draft, replacing any
// entry with the same name.
func (s *State) SetExercise(name string, entry models.ExerciseEntry) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return catalog.ErrEmptyName
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Exercises[name] = entry
	return nil
}

// AddCustom merges a user-defined exercise into the draft. On error the
// draft is left unchanged.
func (s *State) AddCustom(name string, sets, reps int, weight float64, notes string) error {
	name, entry, err := catalog.Custom(name, sets, reps, weight, notes)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Exercises[name] = entry
	return nil
}

// RemoveExercise drops an exercise from the draft.
func (s *State) RemoveExercise(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.draft.Exercises, strings.TrimSpace(name))
}

// Record builds a record with a new ID from the draft. The draft itself is
// untouched; call Clear once the record is stored.
func (s *State) Record() (models.WorkoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := models.NewRecord(s.date(), s.draft.WorkoutType)
	for name, e := range s.draft.Exercises {
		rec.SetExercise(name, e)
	}
	if err := rec.Validate(); err != nil {
		return models.WorkoutRecord{}, err
	}
	return rec, nil
}

// Clear starts a fresh draft of the same type after a successful save.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetDraft(s.draft.WorkoutType)
}

// AddFlash queues a message for the next render.
func (s *State) AddFlash(level, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, Flash{Level: level, Text: text})
}

// TakeFlashes returns and clears the queued messages.
func (s *State) TakeFlashes() []Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes
	s.flashes = nil
	return out
}

// Reset discards the draft.
func (s *State) Reset() {
	s.Clear()
}
