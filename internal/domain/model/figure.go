package model

// Reasons attached to unavailable figures.
const (
	ReasonInsufficientData = "insufficient data"
	ReasonZeroDenominator  = "division by zero"
	ReasonMissingDay       = "no record for day"
	ReasonNoPopulation     = "population unavailable"
	ReasonNoRate           = "no projection available"
	ReasonOutOfRange       = "projection out of range"
	ReasonDataQuality      = "invalid source rows"
)

// Figure is a derived value that may be unavailable. Unavailability is a first-class
// result carrying its reason, never a zero or an infinity.
type Figure[T any] struct {
	Value  T      `json:"value"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Available wraps a computed value.
func Available[T any](v T) Figure[T] {
	return Figure[T]{Value: v, Valid: true}
}

// Unavailable marks a figure as not computable.
func Unavailable[T any](reason string) Figure[T] {
	return Figure[T]{Reason: reason}
}

// Get returns the value and whether it is available.
func (f Figure[T]) Get() (T, bool) {
	return f.Value, f.Valid
}
