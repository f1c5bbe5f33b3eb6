//go:build !integration

package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/adapter"
	"vaccine-tracker-bot/internal/infra/adapters/chart"
	"vaccine-tracker-bot/internal/infra/adapters/feed"
	"vaccine-tracker-bot/internal/infra/i18n"
	"vaccine-tracker-bot/internal/infra/logging"
	"vaccine-tracker-bot/internal/region"
	"vaccine-tracker-bot/internal/stats"
	"vaccine-tracker-bot/internal/usecase"
)

const pipelineCSV = "data_somministrazione,area,totale,prima_dose,seconda_dose\n" +
	"2021-05-08,LIG,100,60,40\n" +
	"2021-05-09,LIG,120,70,50\n" +
	"2021-05-10,LIG,80,50,30\n"

var _ adapter.Deliverer = (*recordingDeliverer)(nil)

type recordingDeliverer struct {
	mu   sync.Mutex
	sent []model.RecipientID
}

func (d *recordingDeliverer) Deliver(ctx context.Context, recipient model.RecipientID, text string, attachments []adapter.Attachment) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, recipient)
	return nil
}

func TestScheduler_FeedOutageDuringRun(t *testing.T) {
	// Arrange: the dose feed answers 503 once, then recovers
	var doseHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/doses.csv"):
			if doseHits.Add(1) == 1 {
				http.Error(w, "upstream busy", http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(pipelineCSV))
		case strings.HasSuffix(r.URL.Path, "/population"):
			_, _ = w.Write([]byte("<p>Population: <b>59,000,000</b></p>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	logger := logging.Nop()
	trigger := romeTrigger(t)
	fireTime := time.Date(2021, 5, 10, 20, 0, 0, 0, trigger.Location)

	client := feed.NewClient(5*time.Second, "test")
	doses := feed.NewDoseFeed(client, srv.URL+"/doses.csv", logger)
	population, err := feed.NewPopulationScraper(client, srv.URL+"/population", `<b>([\d,]+)</b>`, 0, logger)
	if err != nil {
		t.Fatalf("NewPopulationScraper: %v", err)
	}
	renderer, err := chart.NewURLRenderer(srv.URL, trigger.Location, logger)
	if err != nil {
		t.Fatalf("NewURLRenderer: %v", err)
	}
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}
	regions := region.NewDefaultResolver()
	reports := usecase.NewReportUseCase(doses, population, renderer, regions, tr, usecase.ReportOptions{
		Projection: stats.DefaultProjectionConfig(),
		CacheTTL:   10 * time.Minute,
		Location:   trigger.Location,
		Now:        func() time.Time { return fireTime },
	}, logger)
	bot := &recordingDeliverer{}
	notifications := usecase.NewNotificationUseCase(reports, regions, bot, tr, trigger.Location, logger)

	s := newTestScheduler(t, notifications, fireTime.Add(-11*time.Hour))
	s.Rebuild([]model.Subscription{{Recipient: "1"}, {Recipient: "2", Region: "LIG"}})

	// Act
	sent := s.RunDue(context.Background(), fireTime.Add(30*time.Second))

	// Assert
	if sent != 1 {
		t.Errorf("expected 1 delivered report, got %d", sent)
	}
	if len(bot.sent) != 1 || bot.sent[0] != "2" {
		t.Errorf("expected only recipient 2 to be served, got %v", bot.sent)
	}
	if got := doseHits.Load(); got != 2 {
		t.Errorf("expected the second job to fetch again, got %d feed requests", got)
	}

	// the failed recipient is not retried today
	if again := s.RunDue(context.Background(), fireTime.Add(time.Hour)); again != 0 {
		t.Errorf("expected no second run today, got %d", again)
	}
}
