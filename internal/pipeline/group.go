package pipeline

import (
	"slices"

	"PriceBox/internal/model"
)

// GroupByTime partitions records into buckets keyed by exact time of day.
// Buckets are ordered by ascending time; members keep their input order.
func GroupByTime(records []model.Record) []model.Bucket {
	pos := make(map[model.Clock]int)
	var buckets []model.Bucket
	for _, r := range records {
		i, ok := pos[r.Time]
		if !ok {
			i = len(buckets)
			pos[r.Time] = i
			buckets = append(buckets, model.Bucket{Time: r.Time})
		}
		buckets[i].Records = append(buckets[i].Records, r)
	}
	slices.SortStableFunc(buckets, func(a, b model.Bucket) int {
		return int(a.Time) - int(b.Time)
	})
	return buckets
}

// Colorize tags a bucket from its first record only: up when close > open, otherwise down.
func Colorize(b model.Bucket) model.Tag {
	if len(b.Records) == 0 {
		return model.TagDown
	}
	first := b.Records[0]
	if first.Close > first.Open {
		return model.TagUp
	}
	return model.TagDown
}

// Flatten concatenates open, high, low, close of each record in order.
func Flatten(records []model.Record) []float64 {
	values := make([]float64, 0, len(records)*4)
	for _, r := range records {
		values = append(values, r.Open, r.High, r.Low, r.Close)
	}
	return values
}

// BuildSeries turns buckets into chart series.
func BuildSeries(buckets []model.Bucket) []model.ChartSeries {
	series := make([]model.ChartSeries, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, model.ChartSeries{
			Label:  b.Time.String(),
			Values: Flatten(b.Records),
			Tag:    Colorize(b),
		})
	}
	return series
}
