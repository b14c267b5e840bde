package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/liftlog/internal/ingest"
	"github.com/meltforce/liftlog/internal/metrics"
	"github.com/meltforce/liftlog/internal/notify"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DeliveryLister lists recent webhook delivery outcomes.
type DeliveryLister interface {
	Recent(ctx context.Context, limit int) ([]notify.Outcome, error)
}

// Importer adds an external export to the record store.
type Importer interface {
	Import(ctx context.Context, r io.Reader) (*ingest.Result, error)
}

// Options are the dependencies of a Server. Notifier, Deliveries, Importer,
// Gatherer and MCP are optional.
type Options struct {
	State      *session.State
	Store      *storage.Store
	Notifier   *notify.Client
	Deliveries DeliveryLister
	Importer   Importer
	Metrics    *metrics.Manager
	Gatherer   prometheus.Gatherer
	MCP        http.Handler
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	state      *session.State
	store      *storage.Store
	notifier   *notify.Client
	deliveries DeliveryLister
	importer   Importer
	metrics    *metrics.Manager
	gatherer   prometheus.Gatherer
	mcp        http.Handler
	pages      *templates
	log        *slog.Logger
	router     chi.Router
}

// New creates a new Server with all routes configured.
func New(opts Options, log *slog.Logger) *Server {
	s := &Server{
		state:      opts.State,
		store:      opts.Store,
		notifier:   opts.Notifier,
		deliveries: opts.Deliveries,
		importer:   opts.Importer,
		metrics:    opts.Metrics,
		gatherer:   opts.Gatherer,
		mcp:        opts.MCP,
		pages:      loadTemplates(),
		log:        log,
		router:     chi.NewRouter(),
	}
	s.metrics.GaugeRecords.Set(float64(s.store.Len()))
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(PanicRecovery(s.log, s.metrics))
	s.router.Use(RequestLogging(s.log))
	s.router.Use(Instrument(s.metrics))
	s.router.Use(CORS)

	// Pages
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/"+string(s.state.Page()), http.StatusSeeOther)
	})
	s.router.Route("/add", func(r chi.Router) {
		r.Get("/", s.handleAddPage)
		r.Post("/type", s.handleAddType)
		r.Post("/exercise", s.handleAddExercise)
		r.Post("/custom", s.handleAddCustom)
		r.Post("/save", s.handleAddSave)
		r.Post("/reset", s.handleAddReset)
	})
	s.router.Get("/history", s.handleHistoryPage)
	s.router.Get("/progress", s.handleProgressPage)
	s.router.Get("/progress/chart.svg", s.handleChart)

	// JSON API (no auth; tsnet handles access)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/workouts", s.handleQueryWorkouts)
		r.Post("/workouts", s.handleCreateWorkout)

		r.Get("/draft", s.handleGetDraft)
		r.Put("/draft", s.handleUpdateDraft)
		r.Delete("/draft", s.handleResetDraft)
		r.Put("/draft/exercises/{name}", s.handlePutDraftExercise)
		r.Delete("/draft/exercises/{name}", s.handleDeleteDraftExercise)
		r.Post("/draft/custom", s.handleDraftCustom)
		r.Post("/draft/save", s.handleSaveDraft)

		r.Get("/progress/bests", s.handlePersonalBests)
		r.Get("/progress/summary", s.handleSummary)
		r.Get("/progress/series", s.handleSeries)
		r.Get("/history", s.handleHistory)
		r.Get("/deliveries", s.handleDeliveries)

		if s.importer != nil {
			r.Post("/import/alpha", s.handleAlphaImport)
		}
	})

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.mcp != nil {
		s.router.Handle("/mcp", s.mcp)
	}
}
