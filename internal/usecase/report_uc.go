// File: internal/usecase/report_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/adapter"
	"vaccine-tracker-bot/internal/infra/i18n"
	"vaccine-tracker-bot/internal/infra/logging"
	"vaccine-tracker-bot/internal/infra/metrics"
	"vaccine-tracker-bot/internal/region"
	"vaccine-tracker-bot/internal/stats"
)

// Compile-time check
var _ ReportUseCase = (*reportUC)(nil)

// ReportUseCase turns one fetch cycle into snapshots, report text and chart attachments.
type ReportUseCase interface {
	// Dataset returns the current fetch cycle, fetching when the cached one is stale.
	Dataset(ctx context.Context) (model.Dataset, error)
	// Refresh forces a new fetch cycle.
	Refresh(ctx context.Context) (model.Dataset, error)
	Snapshot(ctx context.Context, regionCode string) (model.Snapshot, error)
	// LatestReport renders the national snapshot as a message.
	LatestReport(ctx context.Context) (string, error)
	// Charts renders the chart set of a scope; the first attachment carries caption.
	Charts(ctx context.Context, scope region.Region, caption string) ([]adapter.Attachment, error)
	// DailyReport renders the national text and the charts of scope from one fetch cycle.
	// When only the charts fail, the text is returned along with a domain.ErrRender error.
	DailyReport(ctx context.Context, scope region.Region, caption string) (string, []adapter.Attachment, error)
}

type ReportOptions struct {
	Projection   stats.ProjectionConfig
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	Location     *time.Location
	Now          func() time.Time // defaults to time.Now
}

type reportUC struct {
	feed    adapter.DoseFeed
	pop     adapter.PopulationSource
	charts  adapter.ChartRenderer
	regions *region.Resolver
	tr      *i18n.Translator
	opts    ReportOptions
	now     func() time.Time
	log     *zerolog.Logger

	mu     sync.Mutex
	cached *model.Dataset
	group  singleflight.Group
}

func NewReportUseCase(
	feed adapter.DoseFeed,
	pop adapter.PopulationSource,
	charts adapter.ChartRenderer,
	regions *region.Resolver,
	tr *i18n.Translator,
	opts ReportOptions,
	logger *zerolog.Logger,
) *reportUC {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	l := logger.With().Str("component", "ReportUC").Logger()
	return &reportUC{
		feed:    feed,
		pop:     pop,
		charts:  charts,
		regions: regions,
		tr:      tr,
		opts:    opts,
		now:     opts.Now,
		log:     &l,
	}
}

func (uc *reportUC) clock() time.Time { return uc.now().In(uc.opts.Location) }

func (uc *reportUC) Dataset(ctx context.Context) (model.Dataset, error) {
	uc.mu.Lock()
	cached := uc.cached
	uc.mu.Unlock()
	if cached != nil && uc.opts.CacheTTL > 0 && uc.now().Sub(cached.FetchedAt) < uc.opts.CacheTTL {
		metrics.IncCacheRequest("dataset", "hit")
		return *cached, nil
	}
	metrics.IncCacheRequest("dataset", "miss")
	return uc.Refresh(ctx)
}

// Refresh runs one fetch cycle. Concurrent callers share the in-flight fetch.
func (uc *reportUC) Refresh(ctx context.Context) (model.Dataset, error) {
	ch := uc.group.DoChan("dataset", func() (interface{}, error) {
		// detached from the first caller so its cancellation does not fail the others
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.opts.FetchTimeout)
		defer cancel()
		ds, err := uc.fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		uc.mu.Lock()
		uc.cached = &ds
		uc.mu.Unlock()
		return ds, nil
	})
	select {
	case <-ctx.Done():
		return model.Dataset{}, fmt.Errorf("%w: %v", domain.ErrFetchFailed, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return model.Dataset{}, res.Err
		}
		return res.Val.(model.Dataset), nil
	}
}

func (uc *reportUC) fetch(ctx context.Context) (model.Dataset, error) {
	defer logging.TraceDuration(uc.log, "ReportUC.fetch")()

	var (
		rows       []model.DoseRecord
		rejected   []error
		population int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, rejected, err = uc.feed.FetchDoseSeries(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		population, err = uc.pop.FetchPopulation(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		uc.log.Warn().Err(err).Msg("fetch cycle failed")
		if errors.Is(err, domain.ErrFetchFailed) {
			return model.Dataset{}, err
		}
		return model.Dataset{}, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	ds := model.Dataset{
		CycleID:    ulid.Make().String(),
		FetchedAt:  uc.now(),
		Rows:       rows,
		Population: population,
		Rejected:   rejected,
	}
	metrics.AddRejectedRows(len(rejected))
	uc.log.Info().
		Str("cycle_id", ds.CycleID).
		Int("rows", len(rows)).
		Int("rejected", len(rejected)).
		Int64("population", population).
		Msg("fetch cycle complete")
	return ds, nil
}

func (uc *reportUC) Snapshot(ctx context.Context, regionCode string) (model.Snapshot, error) {
	ds, err := uc.Dataset(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	return uc.snapshotOf(ds, regionCode)
}

// snapshotOf computes a snapshot from a single dataset. Population is only known nationally.
func (uc *reportUC) snapshotOf(ds model.Dataset, regionCode string) (model.Snapshot, error) {
	series, err := stats.BuildSeries(ds.Rows, regionCode)
	if err != nil {
		return model.Snapshot{}, err
	}
	series = series.WithRejected(ds.Rejected)
	var population int64
	scope := "regional"
	if series.Region() == model.NationalScope {
		population = ds.Population
		scope = "national"
	}
	snap := stats.BuildSnapshot(series, population, uc.clock(), uc.opts.Projection)
	snap.CycleID = ds.CycleID
	for _, e := range ds.Rejected {
		snap.Warnings = append(snap.Warnings, e.Error())
	}
	metrics.IncSnapshotBuild(scope)
	return snap, nil
}

func (uc *reportUC) LatestReport(ctx context.Context) (string, error) {
	ds, err := uc.Dataset(ctx)
	if err != nil {
		return "", err
	}
	return uc.reportOf(ds)
}

func (uc *reportUC) Charts(ctx context.Context, scope region.Region, caption string) ([]adapter.Attachment, error) {
	ds, err := uc.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return uc.chartsOf(ctx, ds, scope, caption)
}

func (uc *reportUC) DailyReport(ctx context.Context, scope region.Region, caption string) (string, []adapter.Attachment, error) {
	ds, err := uc.Dataset(ctx)
	if err != nil {
		return "", nil, err
	}
	text, err := uc.reportOf(ds)
	if err != nil {
		return "", nil, err
	}
	attachments, err := uc.chartsOf(ctx, ds, scope, caption)
	return text, attachments, err
}

func (uc *reportUC) reportOf(ds model.Dataset) (string, error) {
	snap, err := uc.snapshotOf(ds, model.NationalScope)
	if err != nil {
		return "", err
	}
	return FormatReport(uc.tr, snap, uc.tr.T("national")), nil
}

func (uc *reportUC) chartsOf(ctx context.Context, ds model.Dataset, scope region.Region, caption string) ([]adapter.Attachment, error) {
	series, err := stats.BuildSeries(ds.Rows, scope.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRender, err)
	}
	chartSeries := series.ChartSeries()

	kinds := []model.ChartKind{model.ChartTotal, model.ChartDaily}
	if scope.IsNational() {
		kinds = append(kinds, model.ChartMap)
	}
	out := make([]adapter.Attachment, 0, len(kinds))
	for i, kind := range kinds {
		ref, err := uc.charts.RenderChart(ctx, chartSeries, kind, scope.Code)
		if err != nil {
			if errors.Is(err, domain.ErrRender) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrRender, kind, err)
		}
		att := adapter.Attachment{Ref: ref}
		if i == 0 {
			att.Caption = caption
		}
		out = append(out, att)
	}
	return out, nil
}
