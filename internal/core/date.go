package core

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Date is a calendar date (no time-of-day component). The zero value means
// "not set" and serializes as null.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// MonthKey returns the accounting month this date falls in.
func (d Date) MonthKey() MonthKey {
	if d.IsZero() {
		return ""
	}
	return MonthKey(d.Format(monthLayout))
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthKey identifies an accounting or statement month as YYYY-MM.
// The empty string means "not set".
type MonthKey string

// NewMonthKey creates a MonthKey from year and month (1-12).
func NewMonthKey(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, month))
}

// ParseMonthKey validates and returns a YYYY-MM month key.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return "", fmt.Errorf("parse month key %q: %w", s, err)
	}
	return MonthKey(t.Format(monthLayout)), nil
}

// YearMonth splits the key into its year and month parts.
// Returns zeros for an invalid or empty key.
func (m MonthKey) YearMonth() (year, month int) {
	t, err := time.Parse(monthLayout, string(m))
	if err != nil {
		return 0, 0
	}
	return t.Year(), int(t.Month())
}

// AddMonths shifts the key by n months (n may be negative).
func (m MonthKey) AddMonths(n int) MonthKey {
	year, month := m.YearMonth()
	if year == 0 {
		return m
	}
	total := year*12 + (month - 1) + n
	return NewMonthKey(total/12, total%12+1)
}

// DateOn returns the calendar date of the given day within this month.
// The day is used as-is; callers clamp it first.
func (m MonthKey) DateOn(day int) Date {
	year, month := m.YearMonth()
	if year == 0 {
		return Date{}
	}
	return NewDate(year, month, day)
}

func (m MonthKey) Valid() bool {
	_, err := ParseMonthKey(string(m))
	return err == nil
}

func (m MonthKey) Validate() error {
	if !m.Valid() {
		return ErrInvalidMonthKey
	}
	return nil
}
