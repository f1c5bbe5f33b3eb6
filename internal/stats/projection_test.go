//go:build !integration

package stats_test

import (
	"testing"

	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/stats"
)

func TestProject(t *testing.T) {
	cfg := stats.ProjectionConfig{Threshold: 0.7, DosesPerPerson: 2}
	totals := model.CategoryTotals{FirstDose: 300, SecondDose: 100, Booster: 50, Total: 450}

	t.Run("should be non-decreasing as the rate decreases", func(t *testing.T) {
		var prev model.Projection
		for i, r := range []float64{400, 200, 100, 50, 10, 1, 0.1} {
			f := stats.Project(totals, model.CategoryAverages{FirstDose: r}, 1000, lastDay, cfg)
			p, ok := f.Get()
			if !ok {
				t.Fatalf("rate %v: unexpected %+v", r, f)
			}
			if i > 0 && (p.Date.Before(prev.Date) || p.Days < prev.Days) {
				t.Errorf("rate %v: projection moved earlier (%s < %s)", r, p.Date, prev.Date)
			}
			prev = p
		}
	})

	t.Run("should be unavailable for a zero or negative rate", func(t *testing.T) {
		for _, r := range []float64{0, -3} {
			f := stats.Project(totals, model.CategoryAverages{FirstDose: r}, 1000, lastDay, cfg)
			if f.Valid || f.Reason != model.ReasonNoRate {
				t.Errorf("rate %v: expected no projection, got %+v", r, f)
			}
		}
	})

	t.Run("should report the threshold as reached", func(t *testing.T) {
		f := stats.Project(model.CategoryTotals{FirstDose: 800, SecondDose: 800}, model.CategoryAverages{FirstDose: 1}, 1000, lastDay, cfg)
		p, ok := f.Get()
		if !ok || !p.Reached || p.Days != 0 || !p.Date.Equal(lastDay) {
			t.Errorf("expected reached on last day, got %+v", f)
		}
	})

	t.Run("should count boosters only when configured", func(t *testing.T) {
		rate := model.CategoryAverages{FirstDose: 10, Booster: 10}
		without, _ := stats.Project(totals, rate, 1000, lastDay, cfg).Get()
		withCfg := cfg
		withCfg.IncludeBoosters = true
		with, _ := stats.Project(totals, rate, 1000, lastDay, withCfg).Get()
		// without: (700 - 200) / 5 = 100 days; with: (700 - 225) / 10 = 47.5 days
		if !approx(without.Days, 100) || !approx(with.Days, 47.5) {
			t.Errorf("got %v and %v days", without.Days, with.Days)
		}
	})

	t.Run("should reject a horizon that cannot be represented", func(t *testing.T) {
		f := stats.Project(totals, model.CategoryAverages{FirstDose: 1e-9}, 1000, lastDay, cfg)
		if f.Valid || f.Reason != model.ReasonOutOfRange {
			t.Errorf("expected out of range, got %+v", f)
		}
	})
}
