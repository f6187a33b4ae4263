package calculator

import (
	"errors"
	"math"

	"PriceBox/internal/model"
)

// ValueRange scans every value of every series and returns the overall low and high.
func ValueRange(series []model.ChartSeries) (low, high float64, err error) {
	low = math.Inf(1)
	high = math.Inf(-1)
	n := 0
	for _, s := range series {
		for _, v := range s.Values {
			if v < low {
				low = v
			}
			if v > high {
				high = v
			}
			n++
		}
	}
	if n == 0 {
		return 0, 0, errors.New("no values provided")
	}
	return low, high, nil
}

// PaddedRange widens [low, high] by frac of its span on both sides.
// A zero span is widened by frac of the magnitude so the axis never collapses.
func PaddedRange(low, high, frac float64) (float64, float64) {
	span := high - low
	if span == 0 {
		span = math.Abs(high)
		if span == 0 {
			span = 1
		}
	}
	return low - span*frac, high + span*frac
}
