package model

import (
	"fmt"
	"time"

	"vaccine-tracker-bot/internal/domain"
)

// NationalScope is the empty region code used for the country-wide aggregate.
const NationalScope = ""

// DoseRecord is one row of vaccination counts for a calendar day, optionally scoped to a region.
type DoseRecord struct {
	Date           time.Time // calendar day at 00:00 UTC
	Region         string    // canonical region code, NationalScope for the aggregate
	FirstDose      int64
	SecondDose     int64
	PriorInfection int64 // single dose given to people with a previous infection
	Booster        int64
	Total          int64
}

// CategorySum is the sum of every dose category; a valid record has Total == CategorySum().
func (r DoseRecord) CategorySum() int64 {
	return r.FirstDose + r.SecondDose + r.PriorInfection + r.Booster
}

// Validate reports a data-quality problem with the record. Nothing is corrected.
func (r DoseRecord) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("%w: missing date", domain.ErrDataQuality)
	}
	if r.FirstDose < 0 || r.SecondDose < 0 || r.PriorInfection < 0 || r.Booster < 0 || r.Total < 0 {
		return fmt.Errorf("%w: negative dose count", domain.ErrDataQuality)
	}
	if sum := r.CategorySum(); sum != r.Total {
		return fmt.Errorf("%w: total %d does not match category sum %d", domain.ErrDataQuality, r.Total, sum)
	}
	return nil
}

// Plus adds the counts of o to r, keeping r's date and region.
func (r DoseRecord) Plus(o DoseRecord) DoseRecord {
	r.FirstDose += o.FirstDose
	r.SecondDose += o.SecondDose
	r.PriorInfection += o.PriorInfection
	r.Booster += o.Booster
	r.Total += o.Total
	return r
}

// Day truncates t to its calendar day (in t's location) and returns it as 00:00 UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
