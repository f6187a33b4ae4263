package pipeline

import (
	"time"

	"PriceBox/internal/model"
)

// FilterDate returns the records of ds dated date, in file order.
func FilterDate(ds *model.Dataset, date time.Time) []model.Record {
	var out []model.Record
	for r := range ds.All() {
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out
}

// FilterTimeRange keeps records with start <= Time <= end. start > end yields nothing.
func FilterTimeRange(records []model.Record, start, end model.Clock) []model.Record {
	var out []model.Record
	for _, r := range records {
		if start <= r.Time && r.Time <= end {
			out = append(out, r)
		}
	}
	return out
}
