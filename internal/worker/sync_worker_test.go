package worker

import (
	"context"
	"testing"

	"shiftplan/internal/amqp"
	calmem "shiftplan/internal/calendar/memory"
	"shiftplan/internal/core"
	"shiftplan/internal/planner"
)

func setup(t *testing.T) (*planner.MemStore, *calmem.Store, *CalendarSyncWorker, core.ShiftAssignment) {
	t.Helper()
	ctx := context.Background()
	store := planner.NewMemStore()
	if err := store.SaveSelectedCalendar(ctx, "cal-1", "Work"); err != nil {
		t.Fatalf("save calendar: %v", err)
	}
	shift, err := store.CreateShift(ctx, core.Shift{Name: "Day", BeginTime: "08:00", EndTime: "16:00", BreakDuration: 30})
	if err != nil {
		t.Fatalf("create shift: %v", err)
	}
	assignment, err := store.UpsertAssignment(ctx, core.ShiftAssignment{Date: "2024-06-10", ShiftID: shift.ID})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	events := calmem.New()
	return store, events, NewCalendarSyncWorker(store, events), assignment
}

func TestSyncCreatesEventAndStoresID(t *testing.T) {
	ctx := context.Background()
	store, events, w, assignment := setup(t)

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(assignment.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, err := store.AssignmentByID(ctx, assignment.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.CalendarEventID == "" {
		t.Fatal("event id not stored")
	}
	ev, ok := events.Event(got.CalendarEventID)
	if !ok {
		t.Fatal("event not created")
	}
	if ev.Title != "Day" {
		t.Errorf("event title = %q, want Day", ev.Title)
	}
}

func TestSyncUpdatesExistingEvent(t *testing.T) {
	ctx := context.Background()
	store, events, w, assignment := setup(t)

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(assignment.ID)); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	first, _ := store.AssignmentByID(ctx, assignment.ID)

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(assignment.ID)); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	second, _ := store.AssignmentByID(ctx, assignment.ID)

	if first.CalendarEventID != second.CalendarEventID {
		t.Errorf("resync created a new event: %s -> %s", first.CalendarEventID, second.CalendarEventID)
	}
	if events.Len() != 1 {
		t.Errorf("event count = %d, want 1", events.Len())
	}
}

func TestSyncRecreatesAfterLostEvent(t *testing.T) {
	ctx := context.Background()
	store, events, w, assignment := setup(t)

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(assignment.ID)); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	first, _ := store.AssignmentByID(ctx, assignment.ID)
	if err := events.DeleteEvent(ctx, first.CalendarEventID); err != nil {
		t.Fatalf("drop event: %v", err)
	}

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(assignment.ID)); err != nil {
		t.Fatalf("resync: %v", err)
	}
	second, _ := store.AssignmentByID(ctx, assignment.ID)
	if second.CalendarEventID == "" || second.CalendarEventID == first.CalendarEventID {
		t.Errorf("event not recreated, id = %q", second.CalendarEventID)
	}
	if events.Len() != 1 {
		t.Errorf("event count = %d, want 1", events.Len())
	}
}

func TestSyncSkipsWhenCalendarUnconfigured(t *testing.T) {
	ctx := context.Background()
	store, events, w, assignment := setup(t)
	if err := store.ClearSelectedCalendar(ctx); err != nil {
		t.Fatalf("clear calendar: %v", err)
	}

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(assignment.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if events.Len() != 0 {
		t.Errorf("event created without a selected calendar")
	}
	got, _ := store.AssignmentByID(ctx, assignment.ID)
	if got.CalendarEventID != "" {
		t.Errorf("event id set without a selected calendar")
	}
}

func TestSyncFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	store, events, w, assignment := setup(t)
	events.Fail = true

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(assignment.ID)); err != nil {
		t.Fatalf("create failure must not requeue: %v", err)
	}
	got, _ := store.AssignmentByID(ctx, assignment.ID)
	if got.CalendarEventID != "" {
		t.Errorf("assignment marked synced after failure")
	}
}

func TestSyncSkipsDeletedAssignment(t *testing.T) {
	ctx := context.Background()
	store, events, w, assignment := setup(t)
	if err := store.DeleteAssignmentByDate(ctx, mustDate(t, "2024-06-10")); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(assignment.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if events.Len() != 0 {
		t.Errorf("event created for deleted assignment")
	}
}

func TestDeleteMessageRemovesEvent(t *testing.T) {
	ctx := context.Background()
	store, events, w, assignment := setup(t)

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(assignment.ID)); err != nil {
		t.Fatalf("sync: %v", err)
	}
	got, _ := store.AssignmentByID(ctx, assignment.ID)

	if err := w.HandleMessage(ctx, amqp.NewDeleteMessage(got.CalendarEventID)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if events.Len() != 0 {
		t.Errorf("event count = %d, want 0", events.Len())
	}
}

func TestSyncPending(t *testing.T) {
	ctx := context.Background()
	store, events, w, _ := setup(t)
	shift, err := store.CreateShift(ctx, core.Shift{Name: "Late", BeginTime: "14:00", EndTime: "22:00"})
	if err != nil {
		t.Fatalf("create shift: %v", err)
	}
	if _, err := store.UpsertAssignment(ctx, core.ShiftAssignment{Date: "2024-06-11", ShiftID: shift.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := w.SyncPending(ctx); err != nil {
		t.Fatalf("sync pending: %v", err)
	}
	if events.Len() != 2 {
		t.Errorf("event count = %d, want 2", events.Len())
	}
	pending, err := store.PendingSyncAssignments(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}
