package core

import (
	"errors"
	"strings"
)

// DefaultWeeklyHours applies when no working-hours setting was ever configured.
const DefaultWeeklyHours = 40.0

var (
	ErrInvalidTimeFormat  = errors.New("invalid time format, expected HH:MM")
	ErrInvalidDateFormat  = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidMonthFormat = errors.New("invalid month format, expected YYYY-MM")
	ErrInvalidHoursValue  = errors.New("weekly hours must be greater than zero")
	ErrEmptyShiftName     = errors.New("empty shift name")
	ErrNegativeBreak      = errors.New("break duration cannot be negative")
	ErrNotFound           = errors.New("not found")
)

type (
	// Shift is a reusable template: a named wall-clock time range plus a
	// break. Begin and end carry no date; an end before begin means the
	// shift crosses midnight.
	Shift struct {
		ID            int64  `json:"id"`
		Name          string `json:"name"`
		BeginTime     string `json:"begin_time"` // "HH:MM"
		EndTime       string `json:"end_time"`   // "HH:MM"
		BreakDuration int    `json:"break_duration"` // minutes
	}

	// ShiftAssignment binds a shift to a calendar date. At most one
	// assignment exists per date. CalendarEventID is set only after a
	// successful external calendar sync.
	ShiftAssignment struct {
		ID              int64  `json:"id"`
		Date            string `json:"date"` // "YYYY-MM-DD"
		ShiftID         int64  `json:"shift_id"`
		CalendarEventID string `json:"calendar_event_id,omitempty"`
	}

	// ActualWorkTime overrides the planned shift for one date. At most one
	// record exists per date, independent of whether a shift is assigned.
	ActualWorkTime struct {
		ID            int64  `json:"id"`
		Date          string `json:"date"`
		StartTime     string `json:"start_time"`
		EndTime       string `json:"end_time"`
		BreakDuration int    `json:"break_duration"`
	}

	// WorkingHoursSetting is a manually configured weekly-hours target that
	// applies from its month onward until superseded by a later setting.
	WorkingHoursSetting struct {
		ID          int64   `json:"id"`
		YearMonth   string  `json:"year_month"` // "YYYY-MM"
		WeeklyHours float64 `json:"weekly_hours"`
	}

	// MonthlySummary is derived on demand and never persisted. All values
	// are integer minutes; positive means surplus, negative deficit.
	MonthlySummary struct {
		PreviousMonthBalance int `json:"previous_month_balance"`
		TargetMinutes        int `json:"target_minutes"`
		PlannedMinutes       int `json:"planned_minutes"`
		ActualMinutes        int `json:"actual_minutes"`
		Difference           int `json:"difference"` // planned - target
	}

	// MonthWorkingHours is one row of the working-hours history view.
	// Hours is nil only for months before the first-ever setting.
	MonthWorkingHours struct {
		YearMonth string   `json:"year_month"`
		Hours     *float64 `json:"hours"`
		IsManual  bool     `json:"is_manual"`
	}
)

func (s Shift) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyShiftName
	}
	if _, err := ParseClock(s.BeginTime); err != nil {
		return err
	}
	if _, err := ParseClock(s.EndTime); err != nil {
		return err
	}
	if s.BreakDuration < 0 {
		return ErrNegativeBreak
	}
	return nil
}

func (a ShiftAssignment) Validate() error {
	if _, err := ParseDate(a.Date); err != nil {
		return err
	}
	if a.ShiftID <= 0 {
		return errors.New("assignment must reference a shift")
	}
	return nil
}

func (t ActualWorkTime) Validate() error {
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	if _, err := ParseClock(t.StartTime); err != nil {
		return err
	}
	if _, err := ParseClock(t.EndTime); err != nil {
		return err
	}
	if t.BreakDuration < 0 {
		return ErrNegativeBreak
	}
	return nil
}

func (w WorkingHoursSetting) Validate() error {
	if _, err := ParseYearMonth(w.YearMonth); err != nil {
		return err
	}
	if w.WeeklyHours <= 0 {
		return ErrInvalidHoursValue
	}
	return nil
}
