//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/adapter"
	"vaccine-tracker-bot/internal/domain/ports/repository"
	"vaccine-tracker-bot/internal/infra/i18n"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return tr
}

// -----------------------------
// Feed
// -----------------------------

type MockDoseFeed struct {
	Calls               atomic.Int32
	FetchDoseSeriesFunc func(ctx context.Context) ([]model.DoseRecord, []error, error)
}

var _ adapter.DoseFeed = (*MockDoseFeed)(nil)

func (m *MockDoseFeed) FetchDoseSeries(ctx context.Context) ([]model.DoseRecord, []error, error) {
	m.Calls.Add(1)
	if m.FetchDoseSeriesFunc != nil {
		return m.FetchDoseSeriesFunc(ctx)
	}
	return nil, nil, nil
}

type MockPopulation struct {
	FetchPopulationFunc func(ctx context.Context) (int64, error)
}

var _ adapter.PopulationSource = (*MockPopulation)(nil)

func (m *MockPopulation) FetchPopulation(ctx context.Context) (int64, error) {
	if m.FetchPopulationFunc != nil {
		return m.FetchPopulationFunc(ctx)
	}
	return 1000, nil
}

// dailyRows builds one national record per day ending at last, splitting each total
// into first and second doses.
func dailyRows(last time.Time, totals ...int64) []model.DoseRecord {
	rows := make([]model.DoseRecord, len(totals))
	start := last.AddDate(0, 0, -(len(totals) - 1))
	for i, tot := range totals {
		first := tot / 2
		rows[i] = model.DoseRecord{
			Date:       start.AddDate(0, 0, i),
			FirstDose:  first,
			SecondDose: tot - first,
			Total:      tot,
		}
	}
	return rows
}

// -----------------------------
// Charts and transport
// -----------------------------

type MockChartRenderer struct {
	RenderChartFunc func(ctx context.Context, series model.ChartSeries, kind model.ChartKind, region string) (string, error)
}

var _ adapter.ChartRenderer = (*MockChartRenderer)(nil)

func (m *MockChartRenderer) RenderChart(ctx context.Context, series model.ChartSeries, kind model.ChartKind, region string) (string, error) {
	if m.RenderChartFunc != nil {
		return m.RenderChartFunc(ctx, series, kind, region)
	}
	if region == "" {
		return "charts/latest-" + string(kind) + ".png", nil
	}
	return "charts/regions/" + region + "-" + string(kind) + ".png", nil
}

type Delivery struct {
	Recipient   model.RecipientID
	Text        string
	Attachments []adapter.Attachment
}

type MockDeliverer struct {
	mu          sync.Mutex
	Sent        []Delivery
	DeliverFunc func(ctx context.Context, recipient model.RecipientID, text string, attachments []adapter.Attachment) error
}

var _ adapter.Deliverer = (*MockDeliverer)(nil)

func (m *MockDeliverer) Deliver(ctx context.Context, recipient model.RecipientID, text string, attachments []adapter.Attachment) error {
	if m.DeliverFunc != nil {
		if err := m.DeliverFunc(ctx, recipient, text, attachments); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, Delivery{Recipient: recipient, Text: text, Attachments: attachments})
	return nil
}

// -----------------------------
// Registry persistence
// -----------------------------

// MockRegistryRepo keeps the registry in memory; SaveFunc/LoadFunc override behavior.
type MockRegistryRepo struct {
	mu       sync.Mutex
	stored   []model.Subscription
	Saves    int
	LoadFunc func(ctx context.Context) ([]model.Subscription, error)
	SaveFunc func(ctx context.Context, subs []model.Subscription) error
}

var _ repository.RegistryRepository = (*MockRegistryRepo)(nil)

func (m *MockRegistryRepo) Load(ctx context.Context) ([]model.Subscription, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Subscription(nil), m.stored...), nil
}

func (m *MockRegistryRepo) Save(ctx context.Context, subs []model.Subscription) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, subs); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	m.stored = append([]model.Subscription(nil), subs...)
	return nil
}

func (m *MockRegistryRepo) Stored() []model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Subscription(nil), m.stored...)
}

type MockLocker struct {
	mu          sync.Mutex
	Locks       int
	Unlocks     int
	TryLockFunc func(ctx context.Context, key string) (string, error)
}

var _ repository.Locker = (*MockLocker)(nil)

func (m *MockLocker) TryLock(ctx context.Context, key string) (string, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Locks++
	return "token", nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Unlocks++
	return nil
}

type recordingListener struct {
	mu      sync.Mutex
	Added   []model.Subscription
	Removed []model.RecipientID
}

func (l *recordingListener) Add(sub model.Subscription) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Added = append(l.Added, sub)
}

func (l *recordingListener) Remove(r model.RecipientID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Removed = append(l.Removed, r)
}
