package services

import (
	"context"
	"fmt"

	"shiftplan/internal/core"
)

// ActualTimeService records what was actually worked on a date.
type ActualTimeService struct {
	store Store
}

func NewActualTimeService(store Store) *ActualTimeService {
	return &ActualTimeService{store: store}
}

// Save inserts or replaces the override for the record's date.
func (s *ActualTimeService) Save(ctx context.Context, t core.ActualWorkTime) (core.ActualWorkTime, error) {
	if err := t.Validate(); err != nil {
		return core.ActualWorkTime{}, err
	}
	saved, err := s.store.UpsertActualTime(ctx, t)
	if err != nil {
		return core.ActualWorkTime{}, fmt.Errorf("save actual time: %w", err)
	}
	return saved, nil
}

func (s *ActualTimeService) Delete(ctx context.Context, date string) error {
	day, err := core.ParseDate(date)
	if err != nil {
		return err
	}
	if err := s.store.DeleteActualTimeByDate(ctx, day); err != nil {
		return fmt.Errorf("delete actual time: %w", err)
	}
	return nil
}
