package model

import "time"

// CategoryTotals holds per-category dose counts.
type CategoryTotals struct {
	Total          int64 `json:"total"`
	FirstDose      int64 `json:"first_dose"`
	SecondDose     int64 `json:"second_dose"`
	PriorInfection int64 `json:"prior_infection"`
	Booster        int64 `json:"booster"`
}

// CategoryAverages holds per-day averages of each category over a window.
type CategoryAverages struct {
	Total          float64 `json:"total"`
	FirstDose      float64 `json:"first_dose"`
	SecondDose     float64 `json:"second_dose"`
	PriorInfection float64 `json:"prior_infection"`
	Booster        float64 `json:"booster"`
}

// WindowStats summarizes one trailing 7-record window.
type WindowStats struct {
	From     time.Time        `json:"from"`
	To       time.Time        `json:"to"`
	Days     int              `json:"days"`
	Sums     CategoryTotals   `json:"sums"`
	Averages CategoryAverages `json:"averages"`
}

// Coverage is the share of the population reached per category, in percent.
type Coverage struct {
	FirstDose  Figure[float64] `json:"first_dose"`
	SecondDose Figure[float64] `json:"second_dose"`
	Booster    Figure[float64] `json:"booster"`
}

// Projection is the naive linear estimate of when a coverage threshold is reached.
type Projection struct {
	Threshold float64   `json:"threshold"`
	Days      float64   `json:"days"`
	Date      time.Time `json:"date"`
	Reached   bool      `json:"reached"`
}

// Snapshot is the immutable result of one aggregation/projection pass over one fetch cycle.
type Snapshot struct {
	CycleID     string    `json:"cycle_id"`
	Region      string    `json:"region,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	AsOf        time.Time `json:"as_of"` // date of the last record
	Records     int       `json:"records"`
	Population  int64     `json:"population"`

	Totals   Figure[CategoryTotals] `json:"totals"`
	Coverage Coverage               `json:"coverage"`

	ThisWeek               Figure[WindowStats] `json:"this_week"`
	PreviousWeek           Figure[WindowStats] `json:"previous_week"`
	WeekOverWeekPct        Figure[float64]     `json:"week_over_week_pct"`
	WeeklyAvgPopulationPct Figure[float64]     `json:"weekly_avg_population_pct"`

	LastDay       Figure[CategoryTotals] `json:"last_day"`     // D-1
	PreviousDay   Figure[CategoryTotals] `json:"previous_day"` // D-2
	DayOverDayPct Figure[float64]        `json:"day_over_day_pct"`

	Projection Figure[Projection] `json:"projection"`

	// Warnings lists rows dropped for data-quality reasons in this cycle.
	Warnings []string `json:"warnings,omitempty"`
}
