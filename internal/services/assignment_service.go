package services

import (
	"context"
	"fmt"
	"log/slog"

	"shiftplan/internal/core"
)

// AssignmentService maintains the one-assignment-per-date invariant and
// keeps the external calendar loosely in sync.
type AssignmentService struct {
	store     Store
	publisher Publisher
}

func NewAssignmentService(store Store, publisher Publisher) *AssignmentService {
	return &AssignmentService{store: store, publisher: publisher}
}

// Assign points the date at the shift, replacing any previous assignment
// for that date, and requests a calendar sync.
func (s *AssignmentService) Assign(ctx context.Context, date string, shiftID int64) (core.ShiftAssignment, error) {
	assignment := core.ShiftAssignment{Date: date, ShiftID: shiftID}
	if err := assignment.Validate(); err != nil {
		return core.ShiftAssignment{}, err
	}

	shift, err := s.store.ShiftByID(ctx, shiftID)
	if err != nil {
		return core.ShiftAssignment{}, fmt.Errorf("look up shift: %w", err)
	}
	if shift == nil {
		return core.ShiftAssignment{}, core.ErrNotFound
	}

	day, err := core.ParseDate(date)
	if err != nil {
		return core.ShiftAssignment{}, err
	}

	// Carry the existing event id forward so the worker updates the event
	// instead of creating a duplicate.
	existing, err := s.store.AssignmentByDate(ctx, day)
	if err != nil {
		return core.ShiftAssignment{}, fmt.Errorf("look up assignment: %w", err)
	}
	if existing != nil {
		assignment.CalendarEventID = existing.CalendarEventID
	}

	saved, err := s.store.UpsertAssignment(ctx, assignment)
	if err != nil {
		return core.ShiftAssignment{}, fmt.Errorf("save assignment: %w", err)
	}

	s.publishSync(ctx, saved.ID)
	return saved, nil
}

// Unassign removes the date's assignment and requests deletion of its
// calendar event if one was synced.
func (s *AssignmentService) Unassign(ctx context.Context, date string) error {
	day, err := core.ParseDate(date)
	if err != nil {
		return err
	}

	existing, err := s.store.AssignmentByDate(ctx, day)
	if err != nil {
		return fmt.Errorf("look up assignment: %w", err)
	}
	if existing == nil {
		return nil
	}

	if err := s.store.DeleteAssignmentByDate(ctx, day); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}

	if existing.CalendarEventID != "" {
		s.publishEventDelete(ctx, existing.CalendarEventID)
	}
	return nil
}

func (s *AssignmentService) publishSync(ctx context.Context, assignmentID int64) {
	publishSync(ctx, s.publisher, assignmentID)
}

func (s *AssignmentService) publishEventDelete(ctx context.Context, eventID string) {
	publishEventDelete(ctx, s.publisher, eventID)
}

func publishSync(ctx context.Context, p Publisher, assignmentID int64) {
	if p == nil {
		return
	}
	if err := p.PublishAssignmentSync(ctx, assignmentID); err != nil {
		// The assignment is saved locally; sync catches up later.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"assignment_id", assignmentID, "error", err)
	}
}

func publishEventDelete(ctx context.Context, p Publisher, eventID string) {
	if p == nil {
		return
	}
	if err := p.PublishEventDelete(ctx, eventID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"event_id", eventID, "error", err)
	}
}
