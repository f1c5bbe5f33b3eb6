package stats

import (
	"errors"
	"strings"
	"time"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
)

// WithRejected returns a copy of s that knows which of its days lost feed rows.
//
// A rejection counts against the series when it belongs to the same scope: the national
// rows, or any region when the national series is a sum of regions. A rejection with
// neither a readable date nor a region, or one that is not a *domain.DataQualityError,
// could belong anywhere and taints every day.
func (s TimeSeries) WithRejected(rejected []error) TimeSeries {
	out := s
	out.tainted = make(map[time.Time]struct{}, len(s.tainted))
	for d := range s.tainted {
		out.tainted[d] = struct{}{}
	}
	for _, err := range rejected {
		var q *domain.DataQualityError
		if !errors.As(err, &q) {
			out.taintAll = true
			continue
		}
		if !s.affectedBy(q) {
			continue
		}
		if q.Day.IsZero() {
			out.taintAll = true
			continue
		}
		out.tainted[model.Day(q.Day)] = struct{}{}
	}
	return out
}

func (s TimeSeries) affectedBy(q *domain.DataQualityError) bool {
	region := strings.ToUpper(strings.TrimSpace(q.Region))
	if region == model.NationalScope && q.Day.IsZero() {
		return true
	}
	if s.region == model.NationalScope {
		return region == model.NationalScope || s.summed
	}
	return region == s.region
}

// Incomplete reports whether any rejected row counts against the series.
func (s TimeSeries) Incomplete() bool {
	return s.taintAll || len(s.tainted) > 0
}

// TaintedBetween reports whether a rejected row falls on a day in [from, to].
// A zero to leaves the range open-ended.
func (s TimeSeries) TaintedBetween(from, to time.Time) bool {
	if s.taintAll {
		return true
	}
	from = model.Day(from)
	for d := range s.tainted {
		if d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(model.Day(to)) {
			continue
		}
		return true
	}
	return false
}
