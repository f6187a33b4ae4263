package model

import "time"

// Selection is one user request: a date and an inclusive time-of-day window.
// Start after End is allowed and selects nothing.
type Selection struct {
	Date  time.Time
	Start Clock
	End   Clock
}

// Tag is the up/down classification of a bucket.
type Tag string

const (
	TagUp   Tag = "up"
	TagDown Tag = "down"
)

// Bucket groups the records sharing one time of day, in input order.
type Bucket struct {
	Time    Clock
	Records []Record
}

// ChartSeries is one box in the distribution chart.
type ChartSeries struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
	Tag    Tag       `json:"tag"`
}
