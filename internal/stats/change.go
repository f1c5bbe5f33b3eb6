package stats

import (
	"math"

	"vaccine-tracker-bot/internal/domain/model"
)

// PercentChange returns 100 × (current − previous) / previous.
// A zero previous value yields an unavailable figure instead of an infinity.
func PercentChange(current, previous float64) model.Figure[float64] {
	if previous == 0 {
		return model.Unavailable[float64](model.ReasonZeroDenominator)
	}
	v := 100 * (current - previous) / previous
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return model.Unavailable[float64](model.ReasonZeroDenominator)
	}
	return model.Available(v)
}

// Percent returns 100 × part / whole, unavailable when whole is not positive.
func Percent(part, whole float64) model.Figure[float64] {
	if whole <= 0 {
		return model.Unavailable[float64](model.ReasonNoPopulation)
	}
	return model.Available(100 * part / whole)
}
