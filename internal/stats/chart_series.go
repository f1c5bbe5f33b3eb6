package stats

import "vaccine-tracker-bot/internal/domain/model"

// ChartSeries returns the chart-ready view of the series.
//
// The final record is treated as provisional and left out of every chart line: daily bars,
// cumulative totals and the moving average. Headline figures in the Snapshot still count it.
func (s TimeSeries) ChartSeries() model.ChartSeries {
	out := model.ChartSeries{Region: s.region}
	if len(s.records) < 2 {
		return out
	}
	trimmed := s.records[:len(s.records)-1]

	totals := make([]float64, len(trimmed))
	for i, r := range trimmed {
		totals[i] = float64(r.Total)
	}
	ma := CenteredMovingAverage(totals, WindowDays)

	out.Points = make([]model.ChartPoint, len(trimmed))
	var cumFirst, cumSecond, cumTotal int64
	for i, r := range trimmed {
		cumFirst += r.FirstDose
		cumSecond += r.SecondDose
		cumTotal += r.Total
		out.Points[i] = model.ChartPoint{
			Date:          r.Date,
			FirstDose:     r.FirstDose,
			SecondDose:    r.SecondDose,
			Booster:       r.Booster,
			Total:         r.Total,
			CumFirstDose:  cumFirst,
			CumSecondDose: cumSecond,
			CumTotal:      cumTotal,
			MovingAverage: ma[i],
		}
	}
	return out
}
