package pipeline

import (
	"fmt"

	"PriceBox/internal/model"
)

// Result is the output of one successful run.
type Result struct {
	Selection model.Selection
	Series    []model.ChartSeries
	Records   int
}

// Up and Down count series by tag.
func (r *Result) Up() int   { return r.count(model.TagUp) }
func (r *Result) Down() int { return r.count(model.TagDown) }

func (r *Result) count(tag model.Tag) int {
	n := 0
	for _, s := range r.Series {
		if s.Tag == tag {
			n++
		}
	}
	return n
}

// ParseSelection validates raw user input before any filtering happens.
func ParseSelection(date, start, end string) (model.Selection, error) {
	var sel model.Selection
	d, err := model.ParseDate(date)
	if err != nil {
		return sel, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	s, err := model.ParseClock(start)
	if err != nil {
		return sel, fmt.Errorf("%w: start: %v", ErrInvalidTime, err)
	}
	e, err := model.ParseClock(end)
	if err != nil {
		return sel, fmt.Errorf("%w: end: %v", ErrInvalidTime, err)
	}
	return model.Selection{Date: d, Start: s, End: e}, nil
}

// Run filters ds by sel, groups by time and builds one series per bucket.
// An empty date or range stops the run with ErrEmptyDate or ErrEmptyRange.
func Run(ds *model.Dataset, sel model.Selection) (*Result, error) {
	day := FilterDate(ds, sel.Date)
	if len(day) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDate, sel.Date.Format(model.DateLayout))
	}
	window := FilterTimeRange(day, sel.Start, sel.End)
	if len(window) == 0 {
		return nil, fmt.Errorf("%w: %s %s-%s", ErrEmptyRange, sel.Date.Format(model.DateLayout), sel.Start, sel.End)
	}
	return &Result{
		Selection: sel,
		Series:    BuildSeries(GroupByTime(window)),
		Records:   len(window),
	}, nil
}
