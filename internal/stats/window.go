package stats

import (
	"fmt"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
)

// WindowDays is the length of a trailing window in records.
const WindowDays = 7

// MinWindowRecords is the minimum series length for any trailing-week figure.
const MinWindowRecords = WindowDays + 1

// TrailingWindow holds "this week" (the last 7 records, provisional one included)
// and "previous week" (up to 7 records immediately preceding it).
type TrailingWindow struct {
	ThisWeek     model.WindowStats
	PreviousWeek model.WindowStats
}

// TrailingWindow fails with domain.ErrInsufficientData when the series has fewer than 8 records.
// It never truncates silently.
func (s TimeSeries) TrailingWindow() (TrailingWindow, error) {
	n := len(s.records)
	if n < MinWindowRecords {
		return TrailingWindow{}, fmt.Errorf("%w: %d records, need %d", domain.ErrInsufficientData, n, MinWindowRecords)
	}
	start := n - 2*WindowDays
	if start < 0 {
		start = 0
	}
	return TrailingWindow{
		ThisWeek:     windowStats(s.records[n-WindowDays:]),
		PreviousWeek: windowStats(s.records[start : n-WindowDays]),
	}, nil
}

// windowStats averages over the records actually present in the window.
func windowStats(records []model.DoseRecord) model.WindowStats {
	sums := sumRecords(records)
	days := float64(len(records))
	return model.WindowStats{
		From: records[0].Date,
		To:   records[len(records)-1].Date,
		Days: len(records),
		Sums: sums,
		Averages: model.CategoryAverages{
			Total:          float64(sums.Total) / days,
			FirstDose:      float64(sums.FirstDose) / days,
			SecondDose:     float64(sums.SecondDose) / days,
			PriorInfection: float64(sums.PriorInfection) / days,
			Booster:        float64(sums.Booster) / days,
		},
	}
}
