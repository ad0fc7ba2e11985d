// Package calendar defines the outbound port for mirroring shift
// assignments into an external calendar, and the event payload shared by
// its adapters.
package calendar

import (
	"context"

	"shiftplan/internal/core"
)

// EventWriter is the external calendar service. Sync is best effort: a
// failure here never blocks or rolls back the local assignment write.
type EventWriter interface {
	// CreateEvent inserts an event for the assignment and returns the
	// provider's event id.
	CreateEvent(ctx context.Context, calendarID string, assignmentID int64, date string, shift core.Shift) (string, error)

	// UpdateEvent rewrites an existing event in place.
	UpdateEvent(ctx context.Context, calendarID, eventID string, assignmentID int64, date string, shift core.Shift) error

	// DeleteEvent removes an event by its provider id.
	DeleteEvent(ctx context.Context, eventID string) error
}
