// Package core defines the planner's domain types and the wall-clock
// arithmetic the monthly balance computation is built on.
//
// This file contains the time arithmetic: converting "HH:MM" pairs plus a
// break into worked minutes, and formatting minute balances for display.
package core

import (
	"fmt"
)

const minutesPerDay = 24 * 60

// ParseClock parses a strict 24-hour "HH:MM" string and returns minutes
// since midnight. Rejects anything else, including "24:00" and "9:30".
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidTimeFormat
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, ErrInvalidTimeFormat
	}
	return h*60 + m, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// WorkMinutes computes the worked minutes between start and end minus the
// break. An end earlier than start wraps past midnight (overnight shift).
// The result never goes below zero even when the break exceeds the span.
func WorkMinutes(start, end string, breakMinutes int) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}

	minutes := e - s
	if minutes < 0 {
		minutes += minutesPerDay
	}
	minutes -= breakMinutes
	if minutes < 0 {
		minutes = 0
	}
	return minutes, nil
}

// OvertimeMinutes returns actual minus planned worked minutes. Positive
// means more was worked than planned.
func OvertimeMinutes(plannedStart, plannedEnd string, plannedBreak int, actualStart, actualEnd string, actualBreak int) (int, error) {
	planned, err := WorkMinutes(plannedStart, plannedEnd, plannedBreak)
	if err != nil {
		return 0, err
	}
	actual, err := WorkMinutes(actualStart, actualEnd, actualBreak)
	if err != nil {
		return 0, err
	}
	return actual - planned, nil
}

// FormatSigned renders minutes as a signed hour:minute string, e.g.
// "+2:30 h" or "-0:15 h". Zero formats as "+0:00 h".
func FormatSigned(minutes int) string {
	sign := "+"
	abs := minutes
	if minutes < 0 {
		sign = "-"
		abs = -minutes
	}
	return fmt.Sprintf("%s%d:%02d h", sign, abs/60, abs%60)
}

// FormatDecimal renders minutes as decimal hours, e.g. "2.50 h".
func FormatDecimal(minutes int) string {
	return fmt.Sprintf("%.2f h", float64(minutes)/60.0)
}
