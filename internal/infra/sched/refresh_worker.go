package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vaccine-tracker-bot/internal/domain/model"
)

// Refresher forces a new fetch cycle.
type Refresher interface {
	Refresh(ctx context.Context) (model.Dataset, error)
}

// RefreshWorker warms the dataset cache shortly before every daily trigger,
// so the report run finds a fresh fetch cycle.
type RefreshWorker struct {
	trigger model.DailyTrigger
	lead    time.Duration
	reports Refresher
	now     func() time.Time
	log     *zerolog.Logger
}

func NewRefreshWorker(trigger model.DailyTrigger, lead time.Duration, reports Refresher, logger *zerolog.Logger) *RefreshWorker {
	compLog := logger.With().Str("component", "RefreshWorker").Logger()
	return &RefreshWorker{
		trigger: trigger,
		lead:    lead,
		reports: reports,
		now:     time.Now,
		log:     &compLog,
	}
}

// NextRefresh returns the first warm-up instant strictly after now.
func (w *RefreshWorker) NextRefresh(now time.Time) time.Time {
	return w.trigger.Next(now.Add(w.lead)).Add(-w.lead)
}

func (w *RefreshWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("lead", w.lead).Msg("Starting refresh worker")
	// Warm once on startup so the first commands do not wait on the feed
	w.refresh(ctx)

	for {
		next := w.NextRefresh(w.now())
		timer := time.NewTimer(next.Sub(w.now()))
		w.log.Debug().Time("next", next).Msg("next dataset refresh")

		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Info().Msg("Stopping refresh worker")
			return ctx.Err()
		case <-timer.C:
			w.refresh(ctx)
		}
	}
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	ds, err := w.reports.Refresh(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("dataset refresh failed")
		return
	}
	w.log.Info().
		Str("cycle_id", ds.CycleID).
		Int("rows", len(ds.Rows)).
		Int("rejected", len(ds.Rejected)).
		Msg("dataset refreshed")
}
