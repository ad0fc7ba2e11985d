package calendar

import (
	"fmt"
	"time"

	"shiftplan/internal/core"
)

// Event is the provider-independent payload for one assignment.
type Event struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
}

// BuildEvent combines an assignment date with the shift's wall-clock times.
// When the end time is numerically before the begin time the shift crosses
// midnight and the end lands on the following day. The description carries
// the assignment id so events can be reconciled with local records.
func BuildEvent(assignmentID int64, date string, shift core.Shift, loc *time.Location) (Event, error) {
	day, err := core.ParseDate(date)
	if err != nil {
		return Event{}, err
	}
	begin, err := core.ParseClock(shift.BeginTime)
	if err != nil {
		return Event{}, fmt.Errorf("shift begin time: %w", err)
	}
	end, err := core.ParseClock(shift.EndTime)
	if err != nil {
		return Event{}, fmt.Errorf("shift end time: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), begin/60, begin%60, 0, 0, loc)
	endDay := day
	if end < begin {
		endDay = day.AddDays(1)
	}
	finish := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), end/60, end%60, 0, 0, loc)

	return Event{
		Title: shift.Name,
		Description: fmt.Sprintf("Shift: %s\nTime: %s - %s\nBreak: %d min\nAssignment ID: %d",
			shift.Name, shift.BeginTime, shift.EndTime, shift.BreakDuration, assignmentID),
		Start: start,
		End:   finish,
	}, nil
}
