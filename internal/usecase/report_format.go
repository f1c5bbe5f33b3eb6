package usecase

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/infra/i18n"
)

// FormatReport renders a snapshot as an HTML message in the translator's language.
// Unavailable figures are printed with their reason, never as zero.
func FormatReport(tr *i18n.Translator, snap model.Snapshot, scopeName string) string {
	f := reportFormatter{tr: tr, p: message.NewPrinter(language.Make(tr.Lang()))}

	lines := []string{
		tr.T("report_title", scopeName, snap.GeneratedAt.Format(tr.T("time_layout"))),
		"",
	}
	if totals, ok := snap.Totals.Get(); ok {
		lines = append(lines,
			tr.T("report_total", f.count(totals.Total)),
			tr.T("report_first", f.count(totals.FirstDose), f.percent(snap.Coverage.FirstDose)),
			tr.T("report_second", f.count(totals.SecondDose), f.percent(snap.Coverage.SecondDose)),
		)
		if totals.Booster > 0 {
			lines = append(lines, tr.T("report_booster", f.count(totals.Booster), f.percent(snap.Coverage.Booster)))
		}
	} else {
		lines = append(lines, tr.T("report_total", f.unavailable(snap.Totals.Reason)))
	}
	lines = append(lines, "")

	if w, ok := snap.ThisWeek.Get(); ok {
		lines = append(lines, tr.T("report_week", f.count(w.Sums.Total), f.rate(w.Averages.Total), f.change(snap.WeekOverWeekPct)))
	} else {
		lines = append(lines, tr.T("report_week_na", f.unavailable(snap.ThisWeek.Reason)))
	}
	lines = append(lines, tr.T("report_week_pct", f.percent(snap.WeeklyAvgPopulationPct)))

	yesterday := model.Day(snap.GeneratedAt).AddDate(0, 0, -1).Format(tr.T("date_layout"))
	if d, ok := snap.LastDay.Get(); ok {
		lines = append(lines, tr.T("report_day", yesterday, f.count(d.Total), f.change(snap.DayOverDayPct)))
	} else {
		lines = append(lines, tr.T("report_day_na", yesterday, f.unavailable(snap.LastDay.Reason)))
	}
	lines = append(lines, "")

	if p, ok := snap.Projection.Get(); ok {
		threshold := f.p.Sprintf("%.0f%%", p.Threshold*100)
		if p.Reached {
			lines = append(lines, tr.T("report_projection_reached", threshold))
		} else {
			lines = append(lines, tr.T("report_projection", threshold, p.Date.Format(tr.T("date_layout")), int(math.Floor(p.Days))))
		}
	} else {
		lines = append(lines, tr.T("report_projection_na", f.unavailable(snap.Projection.Reason)))
	}

	if n := len(snap.Warnings); n > 0 {
		lines = append(lines, "", tr.T("report_warnings", n))
	}
	return strings.Join(lines, "\n")
}

type reportFormatter struct {
	tr *i18n.Translator
	p  *message.Printer
}

func (f reportFormatter) count(n int64) string { return f.p.Sprintf("%d", n) }

func (f reportFormatter) rate(v float64) string { return f.p.Sprintf("%.0f", v) }

func (f reportFormatter) unavailable(reason string) string {
	return f.tr.T("report_unavailable", reason)
}

func (f reportFormatter) percent(v model.Figure[float64]) string {
	if !v.Valid {
		return f.unavailable(v.Reason)
	}
	return f.p.Sprintf("%.2f%%", v.Value)
}

func (f reportFormatter) change(v model.Figure[float64]) string {
	if !v.Valid {
		return f.unavailable(v.Reason)
	}
	return f.p.Sprintf("%+.1f%%", v.Value)
}
