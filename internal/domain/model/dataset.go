package model

import "time"

// Dataset is everything one fetch cycle produced. Every Snapshot is computed from exactly one Dataset.
type Dataset struct {
	CycleID    string
	FetchedAt  time.Time
	Rows       []DoseRecord
	Population int64
	// Rejected holds rows the feed could not turn into valid records.
	Rejected []error
}
