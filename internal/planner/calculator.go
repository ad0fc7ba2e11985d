// Package planner computes the monthly work-time balance: target minutes
// from the weekly-hours history, planned minutes from shift assignments,
// actual minutes from overrides and past planned shifts, and the balance
// carried over from the preceding month.
package planner

import (
	"context"
	"fmt"
	"time"

	"shiftplan/internal/core"
)

// Calculator derives monthly summaries from the store. It keeps no state of
// its own: every call re-reads the store, so results always reflect the
// current assignments, overrides and settings.
type Calculator struct {
	store Store
	now   func() time.Time
}

func NewCalculator(store Store) *Calculator {
	return &Calculator{store: store, now: time.Now}
}

// NewCalculatorAt uses the given clock instead of time.Now. Tests use this
// to pin the past/future boundary of actual minutes.
func NewCalculatorAt(store Store, now func() time.Time) *Calculator {
	return &Calculator{store: store, now: now}
}

// Summary computes the full monthly summary.
func (c *Calculator) Summary(ctx context.Context, month core.YearMonth) (core.MonthlySummary, error) {
	balance, err := c.PreviousMonthBalance(ctx, month)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("previous month balance: %w", err)
	}

	target, err := c.TargetMinutes(ctx, month)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("target minutes: %w", err)
	}

	planned, err := c.PlannedMinutes(ctx, month)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("planned minutes: %w", err)
	}

	actual, err := c.ActualMinutes(ctx, month)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("actual minutes: %w", err)
	}

	return core.MonthlySummary{
		PreviousMonthBalance: balance,
		TargetMinutes:        target,
		PlannedMinutes:       planned,
		ActualMinutes:        actual,
		Difference:           planned - target,
	}, nil
}

// ResolveWeeklyHours returns the weekly-hours target effective for the
// month: the exact setting if one exists, else the nearest earlier one,
// else the system default. Never fails on missing configuration.
func (c *Calculator) ResolveWeeklyHours(ctx context.Context, month core.YearMonth) (float64, error) {
	setting, err := c.store.WorkingHoursByMonth(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("working hours for %s: %w", month, err)
	}
	if setting == nil {
		setting, err = c.store.PreviousWorkingHours(ctx, month)
		if err != nil {
			return 0, fmt.Errorf("previous working hours before %s: %w", month, err)
		}
	}
	if setting == nil {
		return core.DefaultWeeklyHours, nil
	}
	return setting.WeeklyHours, nil
}

// TargetMinutes computes the expected work minutes for the month:
// weeklyHours / 5 per working day, over the month's Monday-Friday count.
// The fractional-hours product is truncated, not rounded; rounding would
// shift historical balances.
func (c *Calculator) TargetMinutes(ctx context.Context, month core.YearMonth) (int, error) {
	weeklyHours, err := c.ResolveWeeklyHours(ctx, month)
	if err != nil {
		return 0, err
	}

	dailyHours := weeklyHours / 5.0
	targetHours := dailyHours * float64(month.WorkingDays())
	return int(targetHours * 60), nil
}

// PlannedMinutes sums the assigned shift durations over the whole month,
// regardless of whether the dates are past or future.
func (c *Calculator) PlannedMinutes(ctx context.Context, month core.YearMonth) (int, error) {
	assignments, err := c.store.AssignmentsInRange(ctx, month.FirstDay(), month.LastDay())
	if err != nil {
		return 0, fmt.Errorf("assignments in %s: %w", month, err)
	}

	total := 0
	for date, shift := range assignments {
		minutes, err := core.WorkMinutes(shift.BeginTime, shift.EndTime, shift.BreakDuration)
		if err != nil {
			return 0, fmt.Errorf("shift %q on %s: %w", shift.Name, date, err)
		}
		total += minutes
	}
	return total, nil
}

// ActualMinutes sums the worked minutes over the month: the actual-time
// override where one exists, otherwise the planned shift for dates up to
// and including today. Future dates without an override contribute zero.
func (c *Calculator) ActualMinutes(ctx context.Context, month core.YearMonth) (int, error) {
	first, last := month.FirstDay(), month.LastDay()

	assignments, err := c.store.AssignmentsInRange(ctx, first, last)
	if err != nil {
		return 0, fmt.Errorf("assignments in %s: %w", month, err)
	}
	actualTimes, err := c.store.ActualTimesInRange(ctx, first, last)
	if err != nil {
		return 0, fmt.Errorf("actual times in %s: %w", month, err)
	}

	today := core.DateOf(c.now())
	total := 0
	for date := first; !date.After(last); date = date.AddDays(1) {
		key := date.String()

		if actual, ok := actualTimes[key]; ok {
			minutes, err := core.WorkMinutes(actual.StartTime, actual.EndTime, actual.BreakDuration)
			if err != nil {
				return 0, fmt.Errorf("actual time on %s: %w", key, err)
			}
			total += minutes
			continue
		}

		if shift, ok := assignments[key]; ok && !date.After(today) {
			minutes, err := core.WorkMinutes(shift.BeginTime, shift.EndTime, shift.BreakDuration)
			if err != nil {
				return 0, fmt.Errorf("shift %q on %s: %w", shift.Name, key, err)
			}
			total += minutes
		}
	}
	return total, nil
}

// PreviousMonthBalance returns the actual-vs-target gap of the immediately
// preceding month. It is a single-level lookback: months before the first
// recorded working-hours setting carry nothing, which also bounds the chain
// when successive summaries walk backwards month by month.
func (c *Calculator) PreviousMonthBalance(ctx context.Context, month core.YearMonth) (int, error) {
	prev := month.Prev()

	earliest, err := c.store.EarliestWorkingHours(ctx)
	if err != nil {
		return 0, fmt.Errorf("earliest working hours: %w", err)
	}
	if earliest == nil {
		return 0, nil
	}
	if prev.String() < earliest.YearMonth {
		return 0, nil
	}

	actual, err := c.ActualMinutes(ctx, prev)
	if err != nil {
		return 0, err
	}
	target, err := c.TargetMinutes(ctx, prev)
	if err != nil {
		return 0, err
	}
	return actual - target, nil
}
