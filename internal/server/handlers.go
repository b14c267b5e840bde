package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/catalog"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/notify"
	"github.com/meltforce/liftlog/internal/progress"
)

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Catalog().Workouts())
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	records := progress.Filter(s.store.Records(), from, to, r.URL.Query().Get("type"))
	if records == nil {
		records = []models.WorkoutRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var rec models.WorkoutRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Date.IsZero() {
		rec.Date = models.Today()
	}
	if err := rec.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.writeSave(w, r, rec, false)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Draft())
}

// draftUpdate changes the draft header. Empty fields are left as they are.
type draftUpdate struct {
	Date   string `json:"date"`
	Type   string `json:"type"`
	Custom bool   `json:"custom"`
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Date != "" {
		d, err := models.ParseDate(req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.state.SetDate(d)
	}
	if req.Type != "" {
		if err := s.state.SetType(req.Type, req.Custom); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, s.state.Draft())
}

func (s *Server) handleResetDraft(w http.ResponseWriter, r *http.Request) {
	s.state.Reset()
	writeJSON(w, http.StatusOK, s.state.Draft())
}

func (s *Server) handlePutDraftExercise(w http.ResponseWriter, r *http.Request) {
	var entry models.ExerciseEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.state.SetExercise(chi.URLParam(r, "name"), entry); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.state.Draft())
}

func (s *Server) handleDeleteDraftExercise(w http.ResponseWriter, r *http.Request) {
	s.state.RemoveExercise(chi.URLParam(r, "name"))
	writeJSON(w, http.StatusOK, s.state.Draft())
}

type customRequest struct {
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
	Notes  string  `json:"notes"`
}

func (s *Server) handleDraftCustom(w http.ResponseWriter, r *http.Request) {
	var req customRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.state.AddCustom(req.Name, req.Sets, req.Reps, req.Weight, req.Notes); err != nil {
		if errors.Is(err, catalog.ErrEmptyName) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Please enter an exercise name."})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.state.Draft())
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	rec, err := s.state.Record()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.writeSave(w, r, rec, true)
}

// writeSave stores rec and answers 201 with the save result.
func (s *Server) writeSave(w http.ResponseWriter, r *http.Request, rec models.WorkoutRecord, fromDraft bool) {
	res, err := s.saveRecord(r.Context(), rec, fromDraft)
	if err != nil {
		s.log.Error("save error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handlePersonalBests(w http.ResponseWriter, r *http.Request) {
	bests := progress.PersonalBests(s.store.Records())
	if bests == nil {
		bests = []progress.PersonalBest{}
	}
	writeJSON(w, http.StatusOK, bests)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, progress.Summarize(s.store.Records()))
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}
	writeJSON(w, http.StatusOK, progress.SeriesFor(s.store.Records(), exercise))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	rows := progress.History(s.store.Records())
	if rows == nil {
		rows = []progress.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	if s.deliveries == nil {
		writeJSON(w, http.StatusOK, []notify.Outcome{})
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	outcomes, err := s.deliveries.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if outcomes == nil {
		outcomes = []notify.Outcome{}
	}
	writeJSON(w, http.StatusOK, outcomes)
}

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	result, err := s.importer.Import(r.Context(), r.Body)
	if result != nil {
		s.metrics.CounterWorkoutsSaved.Add(float64(result.RecordsInserted))
	}
	s.metrics.GaugeRecords.Set(float64(s.store.Len()))
	if err != nil {
		s.log.Error("alpha import error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseDateRange reads optional from/to query dates. Missing bounds are
// open.
func parseDateRange(r *http.Request) (from, to models.Date, err error) {
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = models.ParseDate(v); err != nil {
			return models.Date{}, models.Date{}, err
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = models.ParseDate(v); err != nil {
			return models.Date{}, models.Date{}, err
		}
	}
	return from, to, nil
}
