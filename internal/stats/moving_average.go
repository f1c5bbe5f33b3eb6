package stats

// CenteredMovingAverage computes a centered rolling mean with a minimum of one period,
// so edges average over the values that exist.
func CenteredMovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		lo := i - window/2
		hi := lo + window - 1
		if lo < 0 {
			lo = 0
		}
		if hi > len(values)-1 {
			hi = len(values) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
