package services

import (
	"context"
	"fmt"

	"shiftplan/internal/core"
)

// ShiftService manages shift templates.
type ShiftService struct {
	store     Store
	publisher Publisher
}

func NewShiftService(store Store, publisher Publisher) *ShiftService {
	return &ShiftService{store: store, publisher: publisher}
}

func (s *ShiftService) Create(ctx context.Context, shift core.Shift) (core.Shift, error) {
	if err := shift.Validate(); err != nil {
		return core.Shift{}, err
	}
	created, err := s.store.CreateShift(ctx, shift)
	if err != nil {
		return core.Shift{}, fmt.Errorf("create shift: %w", err)
	}
	return created, nil
}

// Update rewrites the template and re-syncs every assignment using it, so
// mirrored events pick up the new times.
func (s *ShiftService) Update(ctx context.Context, shift core.Shift) error {
	if err := shift.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateShift(ctx, shift); err != nil {
		return fmt.Errorf("update shift: %w", err)
	}

	if s.publisher != nil {
		assignments, err := s.store.AssignmentsByShift(ctx, shift.ID)
		if err != nil {
			return fmt.Errorf("assignments for shift: %w", err)
		}
		for _, a := range assignments {
			publishSync(ctx, s.publisher, a.ID)
		}
	}
	return nil
}

// Delete removes the shift; the store cascades to its assignments. Synced
// calendar events are detached first so the worker can clean them up.
func (s *ShiftService) Delete(ctx context.Context, id int64) error {
	assignments, err := s.store.AssignmentsByShift(ctx, id)
	if err != nil {
		return fmt.Errorf("assignments for shift: %w", err)
	}

	if err := s.store.DeleteShift(ctx, id); err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}

	for _, a := range assignments {
		if a.CalendarEventID != "" {
			publishEventDelete(ctx, s.publisher, a.CalendarEventID)
		}
	}
	return nil
}

func (s *ShiftService) Get(ctx context.Context, id int64) (*core.Shift, error) {
	return s.store.ShiftByID(ctx, id)
}

func (s *ShiftService) List(ctx context.Context) ([]core.Shift, error) {
	return s.store.ListShifts(ctx)
}
