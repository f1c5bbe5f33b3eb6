package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/infra/logging"
	"vaccine-tracker-bot/internal/infra/metrics"
)

// Sender is the minimal interface the scheduler needs from the notification use-case.
type Sender interface {
	SendDailyReport(ctx context.Context, sub model.Subscription) error
}

type job struct {
	sub     model.Subscription
	next    time.Time
	lastDay string // trigger-local calendar day of the last fired run
}

// Scheduler fires one daily report per subscribed recipient at the configured local time.
//
// Jobs are a map recipient → next fire time, derived from the registry and rebuilt from it on
// start. A run that comes late is still sent; a calendar day is never fired twice for the
// same recipient. Jobs run one after another, each under its own timeout, and one failing
// job never stops the others.
type Scheduler struct {
	trigger    model.DailyTrigger
	interval   time.Duration
	jobTimeout time.Duration
	sender     Sender
	now        func() time.Time
	log        *zerolog.Logger
	dev        bool

	mu   sync.Mutex
	jobs map[model.RecipientID]*job

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler constructs a scheduler checking for due jobs every interval.
// If interval <= 0 it defaults to 30 seconds.
func NewScheduler(trigger model.DailyTrigger, interval, jobTimeout time.Duration, sender Sender, logger *zerolog.Logger, dev bool) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if jobTimeout <= 0 {
		jobTimeout = 2 * time.Minute
	}
	l := logger.With().Str("component", "DailyScheduler").Logger()
	return &Scheduler{
		trigger:    trigger,
		interval:   interval,
		jobTimeout: jobTimeout,
		sender:     sender,
		now:        time.Now,
		log:        &l,
		dev:        dev,
		jobs:       map[model.RecipientID]*job{},
		done:       make(chan struct{}),
	}
}

// Rebuild replaces every job with one per subscription. Recipients that were already
// scheduled keep their fire state.
func (s *Scheduler) Rebuild(subs []model.Subscription) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make(map[model.RecipientID]*job, len(subs))
	for _, sub := range subs {
		if old, ok := s.jobs[sub.Recipient]; ok {
			old.sub = sub
			jobs[sub.Recipient] = old
			continue
		}
		jobs[sub.Recipient] = &job{sub: sub, next: s.trigger.Next(now)}
	}
	s.jobs = jobs
	metrics.SetSchedulerJobs(len(jobs))
	s.log.Info().Int("jobs", len(jobs)).Msg("jobs rebuilt from registry")
}

// Add schedules sub, or updates its region scope when already scheduled.
func (s *Scheduler) Add(sub model.Subscription) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[sub.Recipient]; ok {
		j.sub = sub
		return
	}
	s.jobs[sub.Recipient] = &job{sub: sub, next: s.trigger.Next(now)}
	metrics.SetSchedulerJobs(len(s.jobs))
}

func (s *Scheduler) Remove(recipient model.RecipientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, recipient)
	metrics.SetSchedulerJobs(len(s.jobs))
}

// NextRun returns the next fire time of recipient's job.
func (s *Scheduler) NextRun(recipient model.RecipientID) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[recipient]
	if !ok {
		return time.Time{}, false
	}
	return j.next, true
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// claimDue marks every due job as fired for its calendar day and returns them in fire order.
func (s *Scheduler) claimDue(now time.Time) []model.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Subscription
	for _, j := range s.jobs {
		if j.next.After(now) {
			continue
		}
		day := s.trigger.CalendarDay(j.next)
		fire := j.lastDay != day
		j.lastDay = day
		j.next = s.trigger.Next(now)
		if fire {
			out = append(out, j.sub)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Recipient < out[b].Recipient })
	return out
}

// RunDue sends every report due at now and returns how many were delivered.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) int {
	subs := s.claimDue(now)
	if len(subs) == 0 {
		return 0
	}
	defer logging.TraceDuration(s.log, "Scheduler.RunDue")()

	sent := 0
	for _, sub := range subs {
		if ctx.Err() != nil {
			s.log.Warn().Int("skipped", len(subs)-sent).Msg("run cancelled")
			break
		}
		if !s.stillScheduled(sub.Recipient) {
			continue
		}
		if err := s.runJob(ctx, sub); err != nil {
			s.log.Error().Err(err).
				Str("recipient", logging.Redact(string(sub.Recipient), s.dev)).
				Msg("daily report failed")
			continue
		}
		sent++
	}
	s.log.Info().Int("due", len(subs)).Int("sent", sent).Msg("daily run finished")
	return sent
}

func (s *Scheduler) stillScheduled(r model.RecipientID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[r]
	return ok
}

func (s *Scheduler) runJob(ctx context.Context, sub model.Subscription) (err error) {
	runCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("daily report panicked: %v", r)
		}
	}()
	return s.sender.SendDailyReport(runCtx, sub)
}

// Start begins the scheduler loop in a background goroutine.
// Calling Start multiple times has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	if s.ctx != nil {
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	s.ctx = ctx
	s.cancel = cancel

	go s.loop()
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	s.log.Info().
		Dur("interval", s.interval).
		Int("hour", s.trigger.Hour).
		Int("minute", s.trigger.Minute).
		Msg("scheduler started")
	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("context cancelled; stopping")
			return
		case <-ticker.C:
			s.RunDue(s.ctx, s.now())
		}
	}
}

// Stop cancels the scheduler and waits for the loop to finish. It is idempotent.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.ctx = nil
	s.cancel = nil
	s.done = make(chan struct{})
	s.log.Info().Msg("scheduler stopped")
}
