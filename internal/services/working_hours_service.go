package services

import (
	"context"
	"fmt"
	"time"

	"shiftplan/internal/core"
)

// WorkingHoursService maintains the weekly-hours history.
type WorkingHoursService struct {
	store Store
	now   func() time.Time
}

func NewWorkingHoursService(store Store) *WorkingHoursService {
	return &WorkingHoursService{store: store, now: time.Now}
}

func NewWorkingHoursServiceAt(store Store, now func() time.Time) *WorkingHoursService {
	return &WorkingHoursService{store: store, now: now}
}

// Save records the weekly hours for the month. Saving the current or a
// future month also clears manual records from the following month onward,
// so the new value inherits forward. Editing a past month deliberately
// leaves every other month untouched: later records already reflect what
// was in force then.
func (s *WorkingHoursService) Save(ctx context.Context, month string, hours float64) (core.WorkingHoursSetting, error) {
	setting := core.WorkingHoursSetting{YearMonth: month, WeeklyHours: hours}
	if err := setting.Validate(); err != nil {
		return core.WorkingHoursSetting{}, err
	}

	ym, err := core.ParseYearMonth(month)
	if err != nil {
		return core.WorkingHoursSetting{}, err
	}

	saved, err := s.store.UpsertWorkingHours(ctx, setting)
	if err != nil {
		return core.WorkingHoursSetting{}, fmt.Errorf("save working hours: %w", err)
	}

	current := core.DateOf(s.now()).YearMonth()
	if ym.Compare(current) >= 0 {
		if err := s.store.DeleteWorkingHoursFrom(ctx, ym.Next()); err != nil {
			return core.WorkingHoursSetting{}, fmt.Errorf("clear future overrides: %w", err)
		}
	}
	return saved, nil
}

func (s *WorkingHoursService) Delete(ctx context.Context, month string) error {
	ym, err := core.ParseYearMonth(month)
	if err != nil {
		return err
	}
	if err := s.store.DeleteWorkingHours(ctx, ym); err != nil {
		return fmt.Errorf("delete working hours: %w", err)
	}
	return nil
}
