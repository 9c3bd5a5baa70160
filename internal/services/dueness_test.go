package services

import (
	"testing"
	"time"

	"kas/internal/core"
)

func TestDueThisMonth(t *testing.T) {
	tests := []struct {
		name   string
		dueDay int
		now    time.Time
		want   bool
	}{
		{
			name:   "day before due day - not due",
			dueDay: 15,
			now:    time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC),
			want:   false,
		},
		{
			name:   "on due day - due",
			dueDay: 15,
			now:    time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			want:   true,
		},
		{
			name:   "after due day - due",
			dueDay: 15,
			now:    time.Date(2024, 3, 28, 12, 0, 0, 0, time.UTC),
			want:   true,
		},
		{
			name:   "due day 1 is due all month",
			dueDay: 1,
			now:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			want:   true,
		},
		{
			name:   "due day 31 in april clamps to the 30th",
			dueDay: 31,
			now:    time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC),
			want:   true,
		},
		{
			name:   "due day 31 in april not due on the 29th",
			dueDay: 31,
			now:    time.Date(2024, 4, 29, 12, 0, 0, 0, time.UTC),
			want:   false,
		},
		{
			name:   "due day 30 in leap february clamps to the 29th",
			dueDay: 30,
			now:    time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := core.Subscription{Name: "sub", DueDay: tt.dueDay}
			if got := DueThisMonth(sub, tt.now); got != tt.want {
				t.Errorf("DueThisMonth(dueDay=%d, %s) = %v, want %v",
					tt.dueDay, tt.now.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestPaidThisMonth(t *testing.T) {
	now := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lastPaid core.Date
		want     bool
	}{
		{
			name: "never paid",
			want: false,
		},
		{
			name:     "paid this month",
			lastPaid: core.NewDate(2024, 4, 25),
			want:     true,
		},
		{
			name:     "paid last month - re-armed",
			lastPaid: core.NewDate(2024, 3, 25),
			want:     false,
		},
		{
			name:     "paid same month last year",
			lastPaid: core.NewDate(2023, 4, 25),
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := core.Subscription{LastPaidDate: tt.lastPaid}
			if got := PaidThisMonth(sub, now); got != tt.want {
				t.Errorf("PaidThisMonth() = %v, want %v", got, tt.want)
			}
		})
	}
}
