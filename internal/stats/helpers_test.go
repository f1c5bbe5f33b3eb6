//go:build !integration

package stats_test

import (
	"math"
	"testing"
	"time"

	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/stats"
)

var lastDay = time.Date(2021, time.May, 10, 0, 0, 0, 0, time.UTC)

// dailySeries builds consecutive national records ending on lastDay,
// splitting each total evenly between first and second doses.
func dailySeries(t *testing.T, totals ...int64) stats.TimeSeries {
	t.Helper()
	rows := make([]model.DoseRecord, len(totals))
	start := lastDay.AddDate(0, 0, -(len(totals) - 1))
	for i, tot := range totals {
		first := tot / 2
		rows[i] = model.DoseRecord{
			Date:       start.AddDate(0, 0, i),
			FirstDose:  first,
			SecondDose: tot - first,
			Total:      tot,
		}
	}
	s, err := stats.BuildSeries(rows, model.NationalScope)
	if err != nil {
		t.Fatalf("BuildSeries: %v", err)
	}
	return s
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
