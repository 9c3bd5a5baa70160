// Package services holds the business logic layered over storage: the
// billing cycle reconciler and the transaction service.
package services

import (
	"time"

	"kas/internal/core"
)

// DueThisMonth reports whether a subscription's charge has come due in the
// month of now: the current day-of-month is on or after the due day,
// normalized so that a due day past the end of a short month falls on the
// month's last day instead of rolling into the next month.
func DueThisMonth(sub core.Subscription, now time.Time) bool {
	target := core.DueDateIn(now.Year(), now.Month(), sub.DueDay)
	return now.Day() >= target.Day()
}

// PaidThisMonth reports whether the subscription was already charged in the
// month of now. A zero last paid date means never charged.
func PaidThisMonth(sub core.Subscription, now time.Time) bool {
	return sub.LastPaidDate.SameMonth(now.Year(), now.Month())
}
