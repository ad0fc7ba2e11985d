// Package services orchestrates mutations: validate at the boundary, write
// the local store first, then hand sync work to the broker without letting
// a broker failure surface to the caller.
package services

import (
	"context"

	"shiftplan/internal/core"
)

type (
	// Store is the mutation and lookup surface the services write through.
	// Both the SQLite repository and the in-memory store implement it.
	Store interface {
		CreateShift(ctx context.Context, s core.Shift) (core.Shift, error)
		UpdateShift(ctx context.Context, s core.Shift) error
		DeleteShift(ctx context.Context, id int64) error
		ShiftByID(ctx context.Context, id int64) (*core.Shift, error)
		ListShifts(ctx context.Context) ([]core.Shift, error)

		UpsertAssignment(ctx context.Context, a core.ShiftAssignment) (core.ShiftAssignment, error)
		AssignmentByDate(ctx context.Context, date core.Date) (*core.ShiftAssignment, error)
		AssignmentsByShift(ctx context.Context, shiftID int64) ([]core.ShiftAssignment, error)
		DeleteAssignmentByDate(ctx context.Context, date core.Date) error

		UpsertActualTime(ctx context.Context, t core.ActualWorkTime) (core.ActualWorkTime, error)
		DeleteActualTimeByDate(ctx context.Context, date core.Date) error

		UpsertWorkingHours(ctx context.Context, w core.WorkingHoursSetting) (core.WorkingHoursSetting, error)
		DeleteWorkingHours(ctx context.Context, month core.YearMonth) error
		DeleteWorkingHoursFrom(ctx context.Context, month core.YearMonth) error
	}

	// Publisher hands sync work to the calendar worker. A nil Publisher
	// means sync is disabled; publish failures are logged, never returned.
	Publisher interface {
		PublishAssignmentSync(ctx context.Context, assignmentID int64) error
		PublishEventDelete(ctx context.Context, eventID string) error
	}
)
