package calculator

import (
	"errors"
	"slices"
)

// Box is the five-number summary drawn for one bucket.
type Box struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// BoxStats computes the five-number summary with linearly interpolated quartiles.
func BoxStats(values []float64) (Box, error) {
	if len(values) == 0 {
		return Box{}, errors.New("no values provided")
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return Box{
		Min:    sorted[0],
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}, nil
}

// Quantile returns the q-th quantile of an ascending slice by linear interpolation
// between closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
