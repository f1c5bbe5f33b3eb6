//go:build !integration

package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/infra/logging"
)

type MockSender struct {
	mu                  sync.Mutex
	Calls               []model.Subscription
	SendDailyReportFunc func(ctx context.Context, sub model.Subscription) error
}

func (m *MockSender) SendDailyReport(ctx context.Context, sub model.Subscription) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, sub)
	m.mu.Unlock()
	if m.SendDailyReportFunc != nil {
		return m.SendDailyReportFunc(ctx, sub)
	}
	return nil
}

func (m *MockSender) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func romeTrigger(t *testing.T) model.DailyTrigger {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return model.DailyTrigger{Hour: 20, Location: loc}
}

func newTestScheduler(t *testing.T, sender Sender, at time.Time) *Scheduler {
	t.Helper()
	s := NewScheduler(romeTrigger(t), time.Minute, time.Second, sender, logging.Nop(), true)
	s.now = func() time.Time { return at }
	return s
}

func TestScheduler_RunDue(t *testing.T) {
	ctx := context.Background()
	trigger := romeTrigger(t)
	morning := time.Date(2021, 5, 10, 9, 0, 0, 0, trigger.Location)
	fireTime := time.Date(2021, 5, 10, 20, 0, 0, 0, trigger.Location)

	t.Run("should keep running the next recipient when one job fails", func(t *testing.T) {
		// Arrange
		sender := &MockSender{
			SendDailyReportFunc: func(ctx context.Context, sub model.Subscription) error {
				if sub.Recipient == "1" {
					return domain.ErrFetchFailed
				}
				return nil
			},
		}
		s := newTestScheduler(t, sender, morning)
		s.Rebuild([]model.Subscription{{Recipient: "1"}, {Recipient: "2"}})

		// Act
		sent := s.RunDue(ctx, fireTime.Add(30*time.Second))

		// Assert
		if sent != 1 {
			t.Errorf("expected 1 delivered report, got %d", sent)
		}
		if sender.Count() != 2 {
			t.Errorf("expected both jobs to run, got %d calls", sender.Count())
		}
	})

	t.Run("should keep running after a panicking job", func(t *testing.T) {
		sender := &MockSender{
			SendDailyReportFunc: func(ctx context.Context, sub model.Subscription) error {
				if sub.Recipient == "1" {
					panic("boom")
				}
				return nil
			},
		}
		s := newTestScheduler(t, sender, morning)
		s.Rebuild([]model.Subscription{{Recipient: "1"}, {Recipient: "2"}})

		if sent := s.RunDue(ctx, fireTime); sent != 1 {
			t.Errorf("expected 1 delivered report, got %d", sent)
		}
	})

	t.Run("should never fire twice on the same calendar day", func(t *testing.T) {
		sender := &MockSender{}
		s := newTestScheduler(t, sender, morning)
		s.Rebuild([]model.Subscription{{Recipient: "1"}})

		s.RunDue(ctx, fireTime.Add(time.Second))
		s.RunDue(ctx, fireTime.Add(time.Minute))
		s.Rebuild([]model.Subscription{{Recipient: "1"}})
		s.RunDue(ctx, fireTime.Add(2*time.Hour))

		if sender.Count() != 1 {
			t.Fatalf("expected exactly one report today, got %d", sender.Count())
		}

		s.RunDue(ctx, fireTime.AddDate(0, 0, 1))
		if sender.Count() != 2 {
			t.Errorf("expected the next day's report, got %d calls", sender.Count())
		}
	})

	t.Run("should not fire before the trigger time", func(t *testing.T) {
		sender := &MockSender{}
		s := newTestScheduler(t, sender, morning)
		s.Rebuild([]model.Subscription{{Recipient: "1"}})

		if sent := s.RunDue(ctx, fireTime.Add(-time.Second)); sent != 0 {
			t.Errorf("expected nothing due, got %d", sent)
		}
	})

	t.Run("should deliver late runs once", func(t *testing.T) {
		sender := &MockSender{}
		s := newTestScheduler(t, sender, morning)
		s.Rebuild([]model.Subscription{{Recipient: "1"}})

		// the process was busy for three days
		s.RunDue(ctx, fireTime.AddDate(0, 0, 3).Add(time.Hour))
		s.RunDue(ctx, fireTime.AddDate(0, 0, 3).Add(2*time.Hour))

		if sender.Count() != 1 {
			t.Errorf("expected a single catch-up report, got %d", sender.Count())
		}
		next, _ := s.NextRun("1")
		if !next.Equal(fireTime.AddDate(0, 0, 4)) {
			t.Errorf("expected the next run tomorrow at 20:00, got %v", next)
		}
	})

	t.Run("should honour registry changes", func(t *testing.T) {
		sender := &MockSender{}
		s := newTestScheduler(t, sender, morning)
		s.Rebuild([]model.Subscription{{Recipient: "1"}, {Recipient: "2"}})

		s.Remove("1")
		s.Add(model.Subscription{Recipient: "2", Region: "LIG"})
		s.Add(model.Subscription{Recipient: "3"})
		s.RunDue(ctx, fireTime)

		if sender.Count() != 2 {
			t.Fatalf("expected 2 reports, got %+v", sender.Calls)
		}
		if sender.Calls[0].Recipient != "2" || sender.Calls[0].Region != "LIG" || sender.Calls[1].Recipient != "3" {
			t.Errorf("unexpected calls %+v", sender.Calls)
		}
		if s.Len() != 2 {
			t.Errorf("expected 2 jobs, got %d", s.Len())
		}
	})

	t.Run("should bound every job with a timeout", func(t *testing.T) {
		sender := &MockSender{
			SendDailyReportFunc: func(ctx context.Context, sub model.Subscription) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}
		s := newTestScheduler(t, sender, morning)
		s.jobTimeout = 20 * time.Millisecond
		s.Rebuild([]model.Subscription{{Recipient: "1"}, {Recipient: "2"}})

		start := time.Now()
		s.RunDue(ctx, fireTime)
		if sender.Count() != 2 || time.Since(start) > time.Second {
			t.Errorf("jobs did not time out as expected: %d calls in %v", sender.Count(), time.Since(start))
		}
	})
}

func TestScheduler_StartStop(t *testing.T) {
	trigger := romeTrigger(t)
	fired := make(chan struct{}, 1)
	sender := &MockSender{
		SendDailyReportFunc: func(ctx context.Context, sub model.Subscription) error {
			select {
			case fired <- struct{}{}:
			default:
			}
			return errors.New("ignored")
		},
	}
	s := NewScheduler(trigger, 5*time.Millisecond, time.Second, sender, logging.Nop(), false)
	clock := time.Date(2021, 5, 10, 19, 59, 0, 0, trigger.Location)
	var mu sync.Mutex
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}
	s.Rebuild([]model.Subscription{{Recipient: "1"}})

	s.Start(context.Background())
	mu.Lock()
	clock = clock.Add(2 * time.Minute)
	mu.Unlock()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never fired")
	}
	s.Stop()
	s.Stop()
}
