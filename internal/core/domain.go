package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// CategorySubscription is the ledger category of auto-deducted charges.
const CategorySubscription = "Subscription"

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Money is an amount in minor currency units. Amounts are stored
	// unsigned; the transaction type carries the direction.
	Money struct {
		Units int64
	}

	Subscription struct {
		ID           string
		Name         string
		Cost         Money
		DueDay       int  // nominal day-of-month, 1-31
		LastPaidDate Date // zero when never charged
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	Transaction struct {
		ID        string
		Title     string
		Category  string
		Type      TransactionType
		Amount    Money
		Currency  string
		Date      Date
		CreatedAt time.Time
		UpdatedAt time.Time
	}
)

var (
	ErrInvalidDueDay = errors.New("due day must be between 1 and 31")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("transaction type must be income or expense")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyCurrency = errors.New("empty currency")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty returns true if the date is unset.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// SameMonth reports whether d falls in the given year and month.
func (d Date) SameMonth(year int, month time.Month) bool {
	return !d.IsZero() && d.Time.Year() == year && d.Time.Month() == month
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Units <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s Subscription) Validate() error {
	if len(strings.TrimSpace(s.Name)) == 0 {
		return ErrEmptyName
	}
	if len(s.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := s.Cost.Validate(); err != nil {
		return err
	}
	// Out-of-range due days are rejected here, at creation time. The
	// reconciler never sees them.
	if s.DueDay < 1 || s.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	switch t.Type {
	case Income, Expense:
	default:
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Currency) == "" {
		return ErrEmptyCurrency
	}
	return t.Date.Validate()
}
