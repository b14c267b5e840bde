package server

import (
	"context"
	"fmt"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/notify"
)

// saveResult is what a save reports back: the stored record and, when the
// webhook is enabled, the delivery outcome.
type saveResult struct {
	Record   models.WorkoutRecord `json:"record"`
	Delivery *notify.Outcome      `json:"delivery,omitempty"`
}

// saveRecord persists rec and then forwards it to the webhook. A failed
// delivery is reported in the result and never undoes the save. When
// fromDraft is set the draft is cleared once the store accepted rec; a failed
// store write leaves it for another attempt.
func (s *Server) saveRecord(ctx context.Context, rec models.WorkoutRecord, fromDraft bool) (saveResult, error) {
	if err := s.store.Add(ctx, rec); err != nil {
		return saveResult{}, fmt.Errorf("saving workout: %w", err)
	}
	if fromDraft {
		s.state.Clear()
	}
	s.metrics.CounterWorkoutsSaved.Inc()
	s.metrics.GaugeRecords.Set(float64(s.store.Len()))

	res := saveResult{Record: rec}
	if s.notifier.Enabled() {
		o := s.notifier.Notify(ctx, rec)
		s.metrics.ObserveDelivery(o.OK, o.Duration.Seconds())
		res.Delivery = &o
	}
	return res, nil
}
