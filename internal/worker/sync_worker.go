// Package worker mirrors shift assignments into the external calendar
// service, consuming sync tasks published by the API server.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"shiftplan/internal/amqp"
	"shiftplan/internal/calendar"
	"shiftplan/internal/core"
)

// Store is the slice of the repository the worker needs.
type Store interface {
	AssignmentByID(ctx context.Context, id int64) (*core.ShiftAssignment, error)
	ShiftByID(ctx context.Context, id int64) (*core.Shift, error)
	SetAssignmentEventID(ctx context.Context, id int64, eventID string) error
	PendingSyncAssignments(ctx context.Context) ([]core.ShiftAssignment, error)
	SelectedCalendar(ctx context.Context) (id, name string, err error)
}

// CalendarSyncWorker turns sync messages into calendar events. The local
// store is the source of truth: every message triggers a fresh read, and a
// calendar that is not configured or not reachable just leaves assignments
// unsynced.
type CalendarSyncWorker struct {
	store  Store
	events calendar.EventWriter
}

func NewCalendarSyncWorker(store Store, events calendar.EventWriter) *CalendarSyncWorker {
	return &CalendarSyncWorker{store: store, events: events}
}

// HandleMessage processes one queued task. Returning an error requeues the
// message, so only transient conditions propagate; everything the retry
// cannot fix is logged and acknowledged.
func (w *CalendarSyncWorker) HandleMessage(ctx context.Context, msg *amqp.Message) error {
	switch msg.Kind {
	case amqp.KindSync:
		return w.syncAssignment(ctx, msg.AssignmentID)
	case amqp.KindDelete:
		w.deleteEvent(ctx, msg.EventID)
		return nil
	default:
		slog.WarnContext(ctx, "Unknown message kind", "kind", msg.Kind)
		return nil
	}
}

func (w *CalendarSyncWorker) syncAssignment(ctx context.Context, assignmentID int64) error {
	calendarID, ok, err := w.calendarID(ctx)
	if err != nil {
		return err
	}
	if !ok {
		slog.InfoContext(ctx, "Calendar unavailable, skipping sync", "assignment_id", assignmentID)
		return nil
	}

	assignment, err := w.store.AssignmentByID(ctx, assignmentID)
	if err != nil {
		return fmt.Errorf("get assignment %d: %w", assignmentID, err)
	}
	if assignment == nil {
		// Deleted before the message arrived.
		slog.InfoContext(ctx, "Assignment gone, skipping sync", "assignment_id", assignmentID)
		return nil
	}

	shift, err := w.store.ShiftByID(ctx, assignment.ShiftID)
	if err != nil {
		return fmt.Errorf("get shift %d: %w", assignment.ShiftID, err)
	}
	if shift == nil {
		slog.InfoContext(ctx, "Shift gone, skipping sync", "assignment_id", assignmentID)
		return nil
	}

	if assignment.CalendarEventID != "" {
		err := w.events.UpdateEvent(ctx, calendarID, assignment.CalendarEventID, assignment.ID, assignment.Date, *shift)
		if err == nil {
			return nil
		}
		// Downgrade to unsynced and fall through to a fresh create.
		slog.ErrorContext(ctx, "Event update failed, recreating",
			"assignment_id", assignment.ID,
			"event_id", assignment.CalendarEventID,
			"error", err)
		if err := w.store.SetAssignmentEventID(ctx, assignment.ID, ""); err != nil {
			return fmt.Errorf("detach event id: %w", err)
		}
	}

	eventID, err := w.events.CreateEvent(ctx, calendarID, assignment.ID, assignment.Date, *shift)
	if err != nil {
		// Non-fatal: the assignment stays local-only until a later sync.
		slog.ErrorContext(ctx, "Event create failed",
			"assignment_id", assignment.ID,
			"date", assignment.Date,
			"error", err)
		return nil
	}

	if err := w.store.SetAssignmentEventID(ctx, assignment.ID, eventID); err != nil {
		return fmt.Errorf("store event id: %w", err)
	}

	slog.InfoContext(ctx, "Assignment synced",
		"assignment_id", assignment.ID,
		"date", assignment.Date,
		"event_id", eventID)
	return nil
}

func (w *CalendarSyncWorker) deleteEvent(ctx context.Context, eventID string) {
	if eventID == "" {
		return
	}
	if _, ok, err := w.calendarID(ctx); err != nil || !ok {
		slog.InfoContext(ctx, "Calendar unavailable, skipping event delete", "event_id", eventID)
		return
	}

	if err := w.events.DeleteEvent(ctx, eventID); err != nil {
		// The orphaned event is cosmetic; do not loop on it.
		slog.ErrorContext(ctx, "Event delete failed", "event_id", eventID, "error", err)
	}
}

// SyncPending pushes every assignment that has no synced event yet. The
// worker binary runs this periodically to catch messages lost while the
// queue or the calendar was down.
func (w *CalendarSyncWorker) SyncPending(ctx context.Context) error {
	pending, err := w.store.PendingSyncAssignments(ctx)
	if err != nil {
		return fmt.Errorf("pending assignments: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Resyncing pending assignments", "count", len(pending))
	for _, a := range pending {
		if err := w.syncAssignment(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

func (w *CalendarSyncWorker) calendarID(ctx context.Context) (string, bool, error) {
	if w.events == nil {
		return "", false, nil
	}
	id, _, err := w.store.SelectedCalendar(ctx)
	if err != nil {
		return "", false, fmt.Errorf("selected calendar: %w", err)
	}
	if id == "" {
		return "", false, nil
	}
	return id, true, nil
}
