package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
)

// TimeSeries is an ordered, per-date view of dose records for a single scope.
// It is built once per fetch cycle and never modified afterwards.
type TimeSeries struct {
	region  string
	records []model.DoseRecord
	summed  bool // national series built from regional rows

	tainted  map[time.Time]struct{}
	taintAll bool
}

// BuildSeries aggregates raw feed rows into one record per date for the given scope.
//
// For the national scope, rows without a region are used as-is when the feed provides them;
// otherwise every regional row is summed per date. For a regional scope only rows of that
// region are kept. Gaps between dates are tolerated and never filled.
func BuildSeries(rows []model.DoseRecord, region string) (TimeSeries, error) {
	region = strings.ToUpper(strings.TrimSpace(region))

	selected := make([]model.DoseRecord, 0, len(rows))
	summed := false
	if region == model.NationalScope {
		for _, r := range rows {
			if r.Region == model.NationalScope {
				selected = append(selected, r)
			}
		}
		if len(selected) == 0 {
			selected = append(selected, rows...)
			summed = true
		}
	} else {
		for _, r := range rows {
			if strings.EqualFold(r.Region, region) {
				selected = append(selected, r)
			}
		}
	}
	if len(selected) == 0 {
		if region == model.NationalScope {
			return TimeSeries{}, domain.ErrEmptySeries
		}
		return TimeSeries{}, fmt.Errorf("%w: no records for region %s", domain.ErrEmptySeries, region)
	}

	byDate := make(map[time.Time]model.DoseRecord, len(selected))
	for _, r := range selected {
		day := model.Day(r.Date)
		acc, ok := byDate[day]
		if !ok {
			acc = model.DoseRecord{Date: day, Region: region}
		}
		byDate[day] = acc.Plus(r)
	}

	records := make([]model.DoseRecord, 0, len(byDate))
	for _, r := range byDate {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

	return TimeSeries{region: region, records: records, summed: summed}, nil
}

// Region returns the scope of the series, model.NationalScope for the aggregate.
func (s TimeSeries) Region() string { return s.region }

// Len returns the number of dated records.
func (s TimeSeries) Len() int { return len(s.records) }

// Records returns a copy of the records in date order.
func (s TimeSeries) Records() []model.DoseRecord {
	out := make([]model.DoseRecord, len(s.records))
	copy(out, s.records)
	return out
}

// First returns the earliest record.
func (s TimeSeries) First() (model.DoseRecord, bool) {
	if len(s.records) == 0 {
		return model.DoseRecord{}, false
	}
	return s.records[0], true
}

// Last returns the latest record, which is often a same-day provisional entry.
func (s TimeSeries) Last() (model.DoseRecord, bool) {
	if len(s.records) == 0 {
		return model.DoseRecord{}, false
	}
	return s.records[len(s.records)-1], true
}

// At returns the record for a calendar day, if present.
func (s TimeSeries) At(day time.Time) (model.DoseRecord, bool) {
	day = model.Day(day)
	i := sort.Search(len(s.records), func(i int) bool { return !s.records[i].Date.Before(day) })
	if i < len(s.records) && s.records[i].Date.Equal(day) {
		return s.records[i], true
	}
	return model.DoseRecord{}, false
}

// Totals returns running totals per category over the whole series, provisional record included.
func (s TimeSeries) Totals() model.CategoryTotals {
	return sumRecords(s.records)
}

func sumRecords(records []model.DoseRecord) model.CategoryTotals {
	var t model.CategoryTotals
	for _, r := range records {
		t.Total += r.Total
		t.FirstDose += r.FirstDose
		t.SecondDose += r.SecondDose
		t.PriorInfection += r.PriorInfection
		t.Booster += r.Booster
	}
	return t
}

func totalsOf(r model.DoseRecord) model.CategoryTotals {
	return sumRecords([]model.DoseRecord{r})
}
