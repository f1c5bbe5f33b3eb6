package model

import "time"

// RecipientID is an opaque, stable notification target (a Telegram chat id in practice).
type RecipientID string

// Subscription registers a recipient for the daily report.
// The trigger time is global configuration, not part of the record.
type Subscription struct {
	Recipient RecipientID
	Region    string // optional region scope for the attached charts
}

// SubscribeOutcome reports what a registry mutation did.
type SubscribeOutcome string

const (
	OutcomeSubscribed        SubscribeOutcome = "subscribed"
	OutcomeAlreadySubscribed SubscribeOutcome = "already_subscribed"
	OutcomeUnsubscribed      SubscribeOutcome = "unsubscribed"
	OutcomeNotSubscribed     SubscribeOutcome = "not_subscribed"
)

// DailyTrigger is the local time of day at which reports go out.
type DailyTrigger struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// Next returns the first trigger instant strictly after `after`.
func (t DailyTrigger) Next(after time.Time) time.Time {
	loc := t.Location
	if loc == nil {
		loc = time.UTC
	}
	local := after.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), t.Hour, t.Minute, 0, 0, loc)
	if !at.After(local) {
		at = time.Date(local.Year(), local.Month(), local.Day()+1, t.Hour, t.Minute, 0, 0, loc)
	}
	return at
}

// CalendarDay returns the trigger-local calendar day of an instant, e.g. "2021-05-03".
func (t DailyTrigger) CalendarDay(at time.Time) string {
	loc := t.Location
	if loc == nil {
		loc = time.UTC
	}
	return at.In(loc).Format("2006-01-02")
}
