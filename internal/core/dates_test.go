package core

import (
	"testing"
	"time"
)

func TestDueDateIn(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   time.Month
		dueDay  int
		wantDay int
	}{
		{
			name:    "day within month",
			year:    2024,
			month:   time.March,
			dueDay:  25,
			wantDay: 25,
		},
		{
			name:    "day 31 in 30-day month clamps to 30",
			year:    2024,
			month:   time.April,
			dueDay:  31,
			wantDay: 30,
		},
		{
			name:    "day 31 in leap february clamps to 29",
			year:    2024,
			month:   time.February,
			dueDay:  31,
			wantDay: 29,
		},
		{
			name:    "day 30 in non-leap february clamps to 28",
			year:    2023,
			month:   time.February,
			dueDay:  30,
			wantDay: 28,
		},
		{
			name:    "first of month",
			year:    2024,
			month:   time.January,
			dueDay:  1,
			wantDay: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueDateIn(tt.year, tt.month, tt.dueDay)
			if got.Day() != tt.wantDay {
				t.Errorf("DueDateIn(%d, %v, %d).Day() = %d, want %d",
					tt.year, tt.month, tt.dueDay, got.Day(), tt.wantDay)
			}
			if got.Month() != int(tt.month) {
				t.Errorf("DueDateIn() resolved into month %d, want %d (must never roll over)",
					got.Month(), int(tt.month))
			}
			if got.Year() != tt.year {
				t.Errorf("DueDateIn() resolved into year %d, want %d", got.Year(), tt.year)
			}
		})
	}
}

func TestLastDayOfMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.January, 31},
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		if got := LastDayOfMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("LastDayOfMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestDate_SameMonth(t *testing.T) {
	d := NewDate(2024, 3, 25)

	if !d.SameMonth(2024, time.March) {
		t.Error("expected date to be in March 2024")
	}
	if d.SameMonth(2024, time.April) {
		t.Error("date should not match April 2024")
	}
	if d.SameMonth(2023, time.March) {
		t.Error("date should not match March 2023")
	}
	if (Date{}).SameMonth(2024, time.March) {
		t.Error("zero date should never match a month")
	}
}
