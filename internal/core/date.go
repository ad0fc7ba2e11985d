package core

import (
	"time"
)

// Wire formats shared with the store. These must stay bit-exact: dates and
// months are compared and range-queried as strings.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

type (
	// Date is a calendar date at day precision in UTC.
	Date struct {
		time.Time
	}

	// YearMonth identifies one calendar month.
	YearMonth struct {
		Year  int
		Month time.Month
	}
)

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDateFormat
	}
	return Date{Time: t}, nil
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// IsWorkday reports whether the date falls on Monday through Friday.
func (d Date) IsWorkday() bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

// ParseYearMonth parses a "YYYY-MM" string.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return YearMonth{}, ErrInvalidMonthFormat
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func (m YearMonth) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(MonthLayout)
}

func (m YearMonth) FirstDay() Date {
	return NewDate(m.Year, m.Month, 1)
}

func (m YearMonth) LastDay() Date {
	return Date{Time: m.FirstDay().AddDate(0, 1, -1)}
}

func (m YearMonth) Next() YearMonth {
	return DateOf(m.FirstDay().AddDate(0, 1, 0)).YearMonth()
}

func (m YearMonth) Prev() YearMonth {
	return DateOf(m.FirstDay().AddDate(0, -1, 0)).YearMonth()
}

// Compare returns -1, 0 or 1 like strings.Compare on the "YYYY-MM" form.
func (m YearMonth) Compare(other YearMonth) int {
	switch {
	case m.Year != other.Year:
		if m.Year < other.Year {
			return -1
		}
		return 1
	case m.Month != other.Month:
		if m.Month < other.Month {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// WorkingDays counts the Monday-Friday dates in the month.
func (m YearMonth) WorkingDays() int {
	n := 0
	last := m.LastDay()
	for d := m.FirstDay(); !d.After(last); d = d.AddDays(1) {
		if d.IsWorkday() {
			n++
		}
	}
	return n
}
