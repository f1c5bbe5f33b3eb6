package model

import "time"

// ChartKind names one of the rendered chart types.
type ChartKind string

const (
	ChartTotal ChartKind = "total" // cumulative doses per category
	ChartDaily ChartKind = "daily" // daily bars with the 7-day moving average
	ChartMap   ChartKind = "map"   // doses per 100 people by region
)

// ChartPoint is one day of a chart series.
type ChartPoint struct {
	Date          time.Time
	FirstDose     int64
	SecondDose    int64
	Booster       int64
	Total         int64
	CumFirstDose  int64
	CumSecondDose int64
	CumTotal      int64
	MovingAverage float64
}

// ChartSeries is the chart-ready view of a time series. The provisional final record is never part of it.
type ChartSeries struct {
	Region string
	Points []ChartPoint
}
