package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/meltforce/liftlog/internal/catalog"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/progress"
	"github.com/meltforce/liftlog/internal/session"
)

// customTypeOption is the type selector value for a free-text workout type.
const customTypeOption = "__custom__"

type layoutData struct {
	Page    session.Page
	Pages   []session.Page
	Flashes []session.Flash
}

func (s *Server) layout(p session.Page) layoutData {
	s.state.SetPage(p)
	return layoutData{Page: p, Pages: session.Pages, Flashes: s.state.TakeFlashes()}
}

// exerciseRow is one template exercise on the Add Workout form, prefilled
// from the draft when the exercise is already in it.
type exerciseRow struct {
	Name    string
	Label   string
	Entry   models.ExerciseEntry
	InDraft bool
}

type draftRow struct {
	Name  string
	Entry models.ExerciseEntry
}

type limits struct {
	MinSets, MaxSets     int
	MinReps, MaxReps     int
	MinWeight, MaxWeight float64
}

type addData struct {
	layoutData
	Date       string
	Types      []string
	Type       string
	CustomType bool
	Rows       []exerciseRow
	Draft      []draftRow
	Limits     limits
}

type historyData struct {
	layoutData
	Summary progress.Summary
	Rows    []progress.Row
}

type progressData struct {
	layoutData
	Summary   progress.Summary
	Bests     []progress.PersonalBest
	Exercises []string
	Selected  string
	Series    progress.Series
}

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	draft := s.state.Draft()
	cat := s.state.Catalog()
	templates, known := cat.Lookup(draft.WorkoutType)

	data := addData{
		layoutData: s.layout(session.PageAdd),
		Date:       draft.Date.String(),
		Types:      cat.Types(),
		Type:       draft.WorkoutType,
		CustomType: !known,
		Limits: limits{
			MinSets: models.MinSets, MaxSets: models.MaxSets,
			MinReps: models.MinReps, MaxReps: models.MaxReps,
			MinWeight: models.MinWeight, MaxWeight: models.MaxWeight,
		},
	}

	for _, t := range templates {
		row := exerciseRow{Name: t.Name, Label: t.Label(), Entry: t.Entry()}
		if e, ok := draft.Exercises[t.Name]; ok {
			row.Entry, row.InDraft = e, true
		}
		data.Rows = append(data.Rows, row)
	}

	names := make([]string, 0, len(draft.Exercises))
	for name := range draft.Exercises {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		data.Draft = append(data.Draft, draftRow{Name: name, Entry: draft.Exercises[name]})
	}

	s.render(w, "add.html", data)
}

func (s *Server) handleAddType(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.flashError(err)
		s.redirectAdd(w, r)
		return
	}
	if err := s.applyDraftForm(r); err != nil {
		s.flashError(err)
	}
	s.redirectAdd(w, r)
}

// applyDraftForm copies the date and type fields of the draft header form
// into the draft. A date equal to the draft's current one is not pinned, so
// an untouched draft keeps following today.
func (s *Server) applyDraftForm(r *http.Request) error {
	if v := r.FormValue("date"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return err
		}
		if !d.Equal(s.state.Draft().Date) {
			s.state.SetDate(d)
		}
	}

	workoutType, custom := r.FormValue("type"), false
	if workoutType == customTypeOption {
		workoutType, custom = r.FormValue("custom_type"), true
	}
	if workoutType == "" {
		return nil
	}
	return s.state.SetType(workoutType, custom)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.flashError(err)
		s.redirectAdd(w, r)
		return
	}
	name := r.FormValue("name")
	if r.FormValue("action") == "remove" {
		s.state.RemoveExercise(name)
		s.redirectAdd(w, r)
		return
	}

	entry, err := parseEntryForm(r)
	if err == nil {
		err = s.state.SetExercise(name, entry)
	}
	if err != nil {
		s.flashError(fmt.Errorf("%s: %w", name, err))
	}
	s.redirectAdd(w, r)
}

func (s *Server) handleAddCustom(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.flashError(err)
		s.redirectAdd(w, r)
		return
	}
	sets, reps, weight, err := parseStandardNumbers(r)
	if err == nil {
		err = s.state.AddCustom(r.FormValue("name"), sets, reps, weight, r.FormValue("notes"))
	}
	switch {
	case errors.Is(err, catalog.ErrEmptyName):
		s.state.AddFlash(session.FlashError, "Please enter an exercise name.")
	case err != nil:
		s.flashError(err)
	default:
		s.state.AddFlash(session.FlashSuccess, "Added "+strings.TrimSpace(r.FormValue("name"))+" to workout.")
	}
	s.redirectAdd(w, r)
}

func (s *Server) handleAddSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.flashError(err)
		s.redirectAdd(w, r)
		return
	}
	if err := s.applyDraftForm(r); err != nil {
		s.flashError(err)
		s.redirectAdd(w, r)
		return
	}

	rec, err := s.state.Record()
	if err != nil {
		if errors.Is(err, models.ErrNoExercises) {
			s.state.AddFlash(session.FlashError, "Add at least one exercise before saving.")
		} else {
			s.flashError(err)
		}
		s.redirectAdd(w, r)
		return
	}

	res, err := s.saveRecord(r.Context(), rec, true)
	if err != nil {
		s.log.Error("save error", "error", err)
		s.flashError(err)
		s.redirectAdd(w, r)
		return
	}
	s.flashSave(res)
	s.redirectAdd(w, r)
}

func (s *Server) handleAddReset(w http.ResponseWriter, r *http.Request) {
	s.state.Reset()
	s.redirectAdd(w, r)
}

func (s *Server) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	records := s.store.Records()
	s.render(w, "history.html", historyData{
		layoutData: s.layout(session.PageHistory),
		Summary:    progress.Summarize(records),
		Rows:       progress.History(records),
	})
}

func (s *Server) handleProgressPage(w http.ResponseWriter, r *http.Request) {
	records := s.store.Records()
	data := progressData{
		layoutData: s.layout(session.PageProgress),
		Summary:    progress.Summarize(records),
		Bests:      progress.PersonalBests(records),
		Exercises:  progress.ExerciseNames(records),
		Selected:   r.URL.Query().Get("exercise"),
	}
	if data.Selected == "" {
		if charted := progress.ChartableExercises(records); len(charted) > 0 {
			data.Selected = charted[0]
		}
	}
	if data.Selected != "" {
		data.Series = progress.SeriesFor(records, data.Selected)
	}
	s.render(w, "progress.html", data)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.render(&buf, name, data); err != nil {
		s.log.Error("render error", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) redirectAdd(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/add", http.StatusSeeOther)
}

func (s *Server) flashError(err error) {
	s.state.AddFlash(session.FlashError, err.Error())
}

// flashSave queues the page messages for a save result.
func (s *Server) flashSave(res saveResult) {
	s.state.AddFlash(session.FlashSuccess, "Workout saved!")
	if res.Delivery == nil {
		return
	}
	level := session.FlashSuccess
	if !res.Delivery.OK {
		level = session.FlashWarning
	}
	s.state.AddFlash(level, res.Delivery.Message())
}

// parseEntryForm builds an entry from the exercise form fields.
func parseEntryForm(r *http.Request) (models.ExerciseEntry, error) {
	notes := strings.TrimSpace(r.FormValue("notes"))
	load := strings.TrimSpace(r.FormValue("load"))

	switch models.Kind(r.FormValue("kind")) {
	case models.KindTimed, models.KindDistance:
		sets, err := strconv.Atoi(r.FormValue("sets"))
		if err != nil {
			return models.ExerciseEntry{}, fmt.Errorf("sets must be a number")
		}
		var e models.ExerciseEntry
		if models.Kind(r.FormValue("kind")) == models.KindTimed {
			e = models.Timed(sets, strings.TrimSpace(r.FormValue("duration")))
		} else {
			e = models.Distance(sets, strings.TrimSpace(r.FormValue("distance")))
		}
		if load != "" {
			e.Load = load
		}
		return e.WithNotes(notes), nil
	default:
		sets, reps, weight, err := parseStandardNumbers(r)
		if err != nil {
			return models.ExerciseEntry{}, err
		}
		e := models.Standard(sets, reps, weight)
		e.Load = load
		return e.WithNotes(notes), nil
	}
}

func parseStandardNumbers(r *http.Request) (sets, reps int, weight float64, err error) {
	if sets, err = strconv.Atoi(r.FormValue("sets")); err != nil {
		return 0, 0, 0, fmt.Errorf("sets must be a number")
	}
	if reps, err = strconv.Atoi(r.FormValue("reps")); err != nil {
		return 0, 0, 0, fmt.Errorf("reps must be a number")
	}
	if w := r.FormValue("weight"); w != "" {
		if weight, err = strconv.ParseFloat(w, 64); err != nil {
			return 0, 0, 0, fmt.Errorf("weight must be a number")
		}
	}
	return sets, reps, weight, nil
}
