package stats

import (
	"time"

	"vaccine-tracker-bot/internal/domain/model"
)

// BuildSnapshot runs one aggregation/projection pass. It is a pure function of its inputs:
// now only selects the day-over-day pair (D−1 against D−2, D being now's calendar day).
// Figures covering a day that lost rows to rejection (see WithRejected) are unavailable.
func BuildSnapshot(series TimeSeries, population int64, now time.Time, cfg ProjectionConfig) model.Snapshot {
	snap := model.Snapshot{
		Region:      series.Region(),
		GeneratedAt: now,
		Records:     series.Len(),
		Population:  population,
	}
	if last, ok := series.Last(); ok {
		snap.AsOf = last.Date
	}

	totals := series.Totals()
	pop := float64(population)
	if series.Incomplete() {
		snap.Totals = model.Unavailable[model.CategoryTotals](model.ReasonDataQuality)
		snap.Coverage = model.Coverage{
			FirstDose:  model.Unavailable[float64](model.ReasonDataQuality),
			SecondDose: model.Unavailable[float64](model.ReasonDataQuality),
			Booster:    model.Unavailable[float64](model.ReasonDataQuality),
		}
	} else {
		snap.Totals = model.Available(totals)
		snap.Coverage = model.Coverage{
			FirstDose:  Percent(float64(totals.FirstDose), pop),
			SecondDose: Percent(float64(totals.SecondDose), pop),
			Booster:    Percent(float64(totals.Booster), pop),
		}
	}

	if w, err := series.TrailingWindow(); err != nil {
		snap.ThisWeek = model.Unavailable[model.WindowStats](model.ReasonInsufficientData)
		snap.PreviousWeek = model.Unavailable[model.WindowStats](model.ReasonInsufficientData)
		snap.WeekOverWeekPct = model.Unavailable[float64](model.ReasonInsufficientData)
		snap.WeeklyAvgPopulationPct = model.Unavailable[float64](model.ReasonInsufficientData)
		snap.Projection = model.Unavailable[model.Projection](model.ReasonInsufficientData)
	} else {
		thisBad := series.TaintedBetween(w.ThisWeek.From, time.Time{})
		prevBad := series.TaintedBetween(w.PreviousWeek.From, w.ThisWeek.From.AddDate(0, 0, -1))

		if thisBad {
			snap.ThisWeek = model.Unavailable[model.WindowStats](model.ReasonDataQuality)
			snap.WeeklyAvgPopulationPct = model.Unavailable[float64](model.ReasonDataQuality)
		} else {
			snap.ThisWeek = model.Available(w.ThisWeek)
			snap.WeeklyAvgPopulationPct = Percent(w.ThisWeek.Averages.Total, pop)
		}
		if prevBad {
			snap.PreviousWeek = model.Unavailable[model.WindowStats](model.ReasonDataQuality)
		} else {
			snap.PreviousWeek = model.Available(w.PreviousWeek)
		}
		if thisBad || prevBad {
			snap.WeekOverWeekPct = model.Unavailable[float64](model.ReasonDataQuality)
		} else {
			snap.WeekOverWeekPct = PercentChange(float64(w.ThisWeek.Sums.Total), float64(w.PreviousWeek.Sums.Total))
		}
		if series.Incomplete() {
			snap.Projection = model.Unavailable[model.Projection](model.ReasonDataQuality)
		} else {
			snap.Projection = Project(totals, w.ThisWeek.Averages, population, snap.AsOf, cfg)
		}
	}

	today := model.Day(now)
	snap.LastDay = dayFigure(series, today.AddDate(0, 0, -1))
	snap.PreviousDay = dayFigure(series, today.AddDate(0, 0, -2))
	last, okLast := snap.LastDay.Get()
	prev, okPrev := snap.PreviousDay.Get()
	switch {
	case okLast && okPrev:
		snap.DayOverDayPct = PercentChange(float64(last.Total), float64(prev.Total))
	case snap.LastDay.Reason == model.ReasonDataQuality || snap.PreviousDay.Reason == model.ReasonDataQuality:
		snap.DayOverDayPct = model.Unavailable[float64](model.ReasonDataQuality)
	default:
		snap.DayOverDayPct = model.Unavailable[float64](model.ReasonMissingDay)
	}

	return snap
}

func dayFigure(series TimeSeries, day time.Time) model.Figure[model.CategoryTotals] {
	if series.TaintedBetween(day, day) {
		return model.Unavailable[model.CategoryTotals](model.ReasonDataQuality)
	}
	rec, ok := series.At(day)
	if !ok {
		return model.Unavailable[model.CategoryTotals](model.ReasonMissingDay)
	}
	return model.Available(totalsOf(rec))
}
