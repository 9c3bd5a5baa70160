package core

import "time"

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DueDateIn resolves a nominal due day to a concrete date inside the given
// month. A due day that exceeds the month's length is clamped to the last
// day of that month (dueDay 31 in February resolves to Feb 28/29), never
// rolled over into the next month.
func DueDateIn(year int, month time.Month, dueDay int) Date {
	last := LastDayOfMonth(year, month)
	if dueDay > last {
		dueDay = last
	}
	if dueDay < 1 {
		dueDay = 1
	}
	return NewDate(year, int(month), dueDay)
}
