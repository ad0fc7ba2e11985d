package planner

import (
	"context"

	"shiftplan/internal/core"
)

// Ports for the store the calculator reads from. Results of range queries
// are keyed by the ISO date string, one entry per date.
type (
	AssignmentReader interface {
		// AssignmentsInRange returns the shift assigned to each date in
		// [start, end] inclusive, joined with the shift template.
		AssignmentsInRange(ctx context.Context, start, end core.Date) (map[string]core.Shift, error)
	}

	ActualTimeReader interface {
		// ActualTimesInRange returns the actual-time override per date in
		// [start, end] inclusive.
		ActualTimesInRange(ctx context.Context, start, end core.Date) (map[string]core.ActualWorkTime, error)
	}

	WorkingHoursReader interface {
		// WorkingHoursByMonth returns the setting recorded exactly for the
		// month, or nil when none exists.
		WorkingHoursByMonth(ctx context.Context, month core.YearMonth) (*core.WorkingHoursSetting, error)

		// PreviousWorkingHours returns the most recent setting strictly
		// before the month, or nil.
		PreviousWorkingHours(ctx context.Context, month core.YearMonth) (*core.WorkingHoursSetting, error)

		// EarliestWorkingHours returns the oldest setting ever recorded,
		// or nil when nothing was configured.
		EarliestWorkingHours(ctx context.Context) (*core.WorkingHoursSetting, error)

		// AllWorkingHours returns every setting ascending by month.
		AllWorkingHours(ctx context.Context) ([]core.WorkingHoursSetting, error)
	}

	// Store is the full read surface the calculator depends on.
	Store interface {
		AssignmentReader
		ActualTimeReader
		WorkingHoursReader
	}
)
