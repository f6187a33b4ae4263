package model

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the source file and all inputs.
const DateLayout = "2006-01-02"

// Clock is a time of day at minute resolution, stored as minutes since midnight.
type Clock int

// ParseClock parses "HH:MM" (hour 0-23, minute 00-59). A one-digit hour is accepted.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// MustClock is ParseClock for constants and tests.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// String formats the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// ParseDate parses a YYYY-MM-DD date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// Record is one row of the source file.
type Record struct {
	Date  time.Time // UTC midnight
	Time  Clock
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Dataset is the full source file, ordered as read. It is never mutated after NewDataset.
type Dataset struct {
	records []Record
	dates   []time.Time
}

// NewDataset takes ownership of records.
func NewDataset(records []Record) *Dataset {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, r := range records {
		if !seen[r.Date] {
			seen[r.Date] = true
			dates = append(dates, r.Date)
		}
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return &Dataset{records: records, dates: dates}
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// All yields records in file order.
func (d *Dataset) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, r := range d.records {
			if !yield(r) {
				return
			}
		}
	}
}

// Dates returns the distinct dates in ascending order.
func (d *Dataset) Dates() []time.Time {
	return slices.Clone(d.dates)
}

// MinDate returns the earliest date, or the zero time for an empty dataset.
func (d *Dataset) MinDate() time.Time {
	if len(d.dates) == 0 {
		return time.Time{}
	}
	return d.dates[0]
}

// MaxDate returns the latest date, or the zero time for an empty dataset.
func (d *Dataset) MaxDate() time.Time {
	if len(d.dates) == 0 {
		return time.Time{}
	}
	return d.dates[len(d.dates)-1]
}
