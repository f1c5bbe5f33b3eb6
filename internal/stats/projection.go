package stats

import (
	"math"
	"time"

	"vaccine-tracker-bot/internal/domain/model"
)

// maxHorizonDays bounds the projection so the date stays representable.
const maxHorizonDays = 365 * 1000

// ProjectionConfig selects the coverage threshold and which doses qualify.
type ProjectionConfig struct {
	Threshold             float64 // fraction of the population, e.g. 0.7
	DosesPerPerson        float64 // qualifying doses each person needs
	IncludeBoosters       bool
	IncludePriorInfection bool
}

// DefaultProjectionConfig is the two-dose regimen towards 90% coverage.
func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{Threshold: 0.9, DosesPerPerson: 2}
}

func (c ProjectionConfig) qualifyingTotal(t model.CategoryTotals) float64 {
	v := float64(t.FirstDose + t.SecondDose)
	if c.IncludeBoosters {
		v += float64(t.Booster)
	}
	if c.IncludePriorInfection {
		v += float64(t.PriorInfection)
	}
	return v
}

func (c ProjectionConfig) qualifyingRate(a model.CategoryAverages) float64 {
	v := a.FirstDose + a.SecondDose
	if c.IncludeBoosters {
		v += a.Booster
	}
	if c.IncludePriorInfection {
		v += a.PriorInfection
	}
	return v
}

// Project extrapolates linearly from the latest 7-day rate:
//
//	days = (threshold × population − qualifying / dosesPerPerson) / (rate / dosesPerPerson)
//
// and adds the whole days to lastDate. A rate ≤ 0 yields "no projection available".
func Project(totals model.CategoryTotals, rate model.CategoryAverages, population int64, lastDate time.Time, cfg ProjectionConfig) model.Figure[model.Projection] {
	if population <= 0 {
		return model.Unavailable[model.Projection](model.ReasonNoPopulation)
	}
	dpp := cfg.DosesPerPerson
	if dpp <= 0 {
		dpp = 2
	}
	daily := cfg.qualifyingRate(rate) / dpp
	if daily <= 0 || math.IsNaN(daily) {
		return model.Unavailable[model.Projection](model.ReasonNoRate)
	}

	remaining := cfg.Threshold*float64(population) - cfg.qualifyingTotal(totals)/dpp
	if remaining <= 0 {
		return model.Available(model.Projection{
			Threshold: cfg.Threshold,
			Date:      model.Day(lastDate),
			Reached:   true,
		})
	}

	days := remaining / daily
	if math.IsInf(days, 0) || math.IsNaN(days) || days > maxHorizonDays {
		return model.Unavailable[model.Projection](model.ReasonOutOfRange)
	}
	return model.Available(model.Projection{
		Threshold: cfg.Threshold,
		Days:      days,
		Date:      model.Day(lastDate).AddDate(0, 0, int(math.Floor(days))),
	})
}
