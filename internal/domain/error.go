package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlreadyExists   = errors.New("entity already exists")

	// Source feed
	ErrFetchFailed      = errors.New("data unavailable")
	ErrDataQuality      = errors.New("data quality error")
	ErrInsufficientData = errors.New("insufficient data")
	ErrEmptySeries      = errors.New("empty time series")

	// Registry / blob store
	ErrStore = errors.New("registry store failure")

	// Collaborators
	ErrRender   = errors.New("chart render failed")
	ErrDelivery = errors.New("delivery failed")

	// Region resolver
	ErrUnknownRegion   = errors.New("unknown region")
	ErrAmbiguousRegion = errors.New("ambiguous region")
)

// DataQualityError describes a single feed row rejected during series construction.
// Day is the parsed calendar day of the row, zero when the date itself was unreadable.
type DataQualityError struct {
	Row    int
	Date   string
	Day    time.Time
	Region string
	Reason string
}

func (e *DataQualityError) Error() string {
	scope := e.Region
	if scope == "" {
		scope = "national"
	}
	return fmt.Sprintf("row %d (%s, %s): %s", e.Row, e.Date, scope, e.Reason)
}

func (e *DataQualityError) Unwrap() error { return ErrDataQuality }

// AmbiguousRegionError lists every region that tied for the best match, in fixed code order.
type AmbiguousRegionError struct {
	Input      string
	Candidates []string
}

func (e *AmbiguousRegionError) Error() string {
	return fmt.Sprintf("%q matches %s", e.Input, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousRegionError) Unwrap() error { return ErrAmbiguousRegion }
