package model

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"00:00", 0, false},
		{"23:55", 23*60 + 55, false},
		{"09:05", 9*60 + 5, false},
		{"9:05", 9*60 + 5, false},
		{" 12:30 ", 12*60 + 30, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12:5", 0, true},
		{"1230", 0, true},
		{"", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClockString(t *testing.T) {
	if s := MustClock("9:05").String(); s != "09:05" {
		t.Errorf("expected 09:05, got %s", s)
	}
	if s := Clock(0).String(); s != "00:00" {
		t.Errorf("expected 00:00, got %s", s)
	}
}

func TestDatasetDates(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	ds := NewDataset([]Record{
		{Date: d2, Time: MustClock("09:00")},
		{Date: d1, Time: MustClock("09:00")},
		{Date: d2, Time: MustClock("09:05")},
	})
	if ds.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", ds.Len())
	}
	dates := ds.Dates()
	if len(dates) != 2 || !dates[0].Equal(d1) || !dates[1].Equal(d2) {
		t.Errorf("unexpected dates: %v", dates)
	}
	if !ds.MinDate().Equal(d1) || !ds.MaxDate().Equal(d2) {
		t.Errorf("unexpected bounds: %v..%v", ds.MinDate(), ds.MaxDate())
	}

	var order []Clock
	for r := range ds.All() {
		order = append(order, r.Time)
	}
	if len(order) != 3 || order[2] != MustClock("09:05") {
		t.Errorf("records not yielded in file order: %v", order)
	}
}

func TestEmptyDataset(t *testing.T) {
	ds := NewDataset(nil)
	if !ds.MinDate().IsZero() || !ds.MaxDate().IsZero() {
		t.Error("expected zero bounds for empty dataset")
	}
}
