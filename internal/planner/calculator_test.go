package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"shiftplan/internal/core"
)

// fixedNow pins "today" so past/future fallback behavior is deterministic.
func fixedNow(date string) func() time.Time {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return d.Time }
}

func mustAssign(t *testing.T, store *MemStore, date string, shift core.Shift) {
	t.Helper()
	ctx := context.Background()
	created, err := store.CreateShift(ctx, shift)
	if err != nil {
		t.Fatalf("create shift: %v", err)
	}
	if _, err := store.UpsertAssignment(ctx, core.ShiftAssignment{Date: date, ShiftID: created.ID}); err != nil {
		t.Fatalf("assign %s: %v", date, err)
	}
}

func mustSetHours(t *testing.T, store *MemStore, month string, hours float64) {
	t.Helper()
	if _, err := store.UpsertWorkingHours(context.Background(), core.WorkingHoursSetting{YearMonth: month, WeeklyHours: hours}); err != nil {
		t.Fatalf("set hours %s: %v", month, err)
	}
}

func month(t *testing.T, s string) core.YearMonth {
	t.Helper()
	m, err := core.ParseYearMonth(s)
	if err != nil {
		t.Fatalf("parse month %q: %v", s, err)
	}
	return m
}

func TestResolveWeeklyHours(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	mustSetHours(t, store, "2024-01", 38.0)
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	// Inherited from the nearest earlier month.
	got, err := calc.ResolveWeeklyHours(ctx, month(t, "2024-03"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 38.0 {
		t.Errorf("ResolveWeeklyHours(2024-03) = %v, want 38.0", got)
	}

	// Nothing configured before 2024-01: system default.
	got, err = calc.ResolveWeeklyHours(ctx, month(t, "2023-12"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != core.DefaultWeeklyHours {
		t.Errorf("ResolveWeeklyHours(2023-12) = %v, want %v", got, core.DefaultWeeklyHours)
	}

	// Exact month wins over inheritance.
	got, err = calc.ResolveWeeklyHours(ctx, month(t, "2024-01"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 38.0 {
		t.Errorf("ResolveWeeklyHours(2024-01) = %v, want 38.0", got)
	}
}

func TestTargetMinutesTruncates(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	// 38.5 weekly over April 2024 (22 working days): 38.5/5*22*60 = 10164.0,
	// but fractional settings must truncate, not round.
	mustSetHours(t, store, "2024-01", 37.7)
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	got, err := calc.TargetMinutes(ctx, month(t, "2024-04"))
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	// 37.7/5 = 7.54 h/day, * 22 days = 165.88 h, * 60 = 9952.8 -> 9952.
	if got != 9952 {
		t.Errorf("TargetMinutes = %d, want 9952 (truncated)", got)
	}
}

func TestSummaryEndToEnd(t *testing.T) {
	// February 2024: leap year, 29 days, 21 working days, weekly hours 40
	// -> target 21*8*60 = 10080. One past assignment 08:00-16:00 with a
	// 30-minute break -> planned 450, actual 450 (planned fallback).
	ctx := context.Background()
	store := NewMemStore()
	mustSetHours(t, store, "2024-02", 40.0)
	mustAssign(t, store, "2024-02-05", core.Shift{Name: "Day", BeginTime: "08:00", EndTime: "16:00", BreakDuration: 30})
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	got, err := calc.Summary(ctx, month(t, "2024-02"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	want := core.MonthlySummary{
		PreviousMonthBalance: 0, // 2024-01 precedes the earliest setting
		TargetMinutes:        10080,
		PlannedMinutes:       450,
		ActualMinutes:        450,
		Difference:           450 - 10080,
	}
	if got != want {
		t.Errorf("Summary = %+v, want %+v", got, want)
	}
}

func TestSummaryIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	mustSetHours(t, store, "2024-01", 40.0)
	mustAssign(t, store, "2024-02-05", core.Shift{Name: "Day", BeginTime: "08:00", EndTime: "16:00", BreakDuration: 30})
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	first, err := calc.Summary(ctx, month(t, "2024-02"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	second, err := calc.Summary(ctx, month(t, "2024-02"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if first != second {
		t.Errorf("summaries differ without intervening writes: %+v vs %+v", first, second)
	}
}

func TestActualMinutesFutureExclusion(t *testing.T) {
	// An assignment dated after "today" with no override contributes its
	// full duration to planned minutes but nothing to actual minutes.
	ctx := context.Background()
	store := NewMemStore()
	mustAssign(t, store, "2024-06-20", core.Shift{Name: "Late", BeginTime: "14:00", EndTime: "22:00", BreakDuration: 0})
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	planned, err := calc.PlannedMinutes(ctx, month(t, "2024-06"))
	if err != nil {
		t.Fatalf("planned: %v", err)
	}
	if planned != 480 {
		t.Errorf("PlannedMinutes = %d, want 480", planned)
	}

	actual, err := calc.ActualMinutes(ctx, month(t, "2024-06"))
	if err != nil {
		t.Fatalf("actual: %v", err)
	}
	if actual != 0 {
		t.Errorf("ActualMinutes = %d, want 0 for a future assignment", actual)
	}
}

func TestActualMinutesTodayCounts(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	mustAssign(t, store, "2024-06-15", core.Shift{Name: "Day", BeginTime: "08:00", EndTime: "16:00", BreakDuration: 30})
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	actual, err := calc.ActualMinutes(ctx, month(t, "2024-06"))
	if err != nil {
		t.Fatalf("actual: %v", err)
	}
	if actual != 450 {
		t.Errorf("ActualMinutes = %d, want 450 for today's assignment", actual)
	}
}

func TestActualMinutesOverridesPlanned(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	mustAssign(t, store, "2024-06-10", core.Shift{Name: "Day", BeginTime: "08:00", EndTime: "16:00", BreakDuration: 30})
	// Override on the assigned date: the override wins.
	if _, err := store.UpsertActualTime(ctx, core.ActualWorkTime{Date: "2024-06-10", StartTime: "08:00", EndTime: "18:00", BreakDuration: 30}); err != nil {
		t.Fatalf("upsert actual: %v", err)
	}
	// Override on a date without any assignment still counts.
	if _, err := store.UpsertActualTime(ctx, core.ActualWorkTime{Date: "2024-06-11", StartTime: "10:00", EndTime: "12:00", BreakDuration: 0}); err != nil {
		t.Fatalf("upsert actual: %v", err)
	}
	// A future override counts too: it is an explicit record.
	if _, err := store.UpsertActualTime(ctx, core.ActualWorkTime{Date: "2024-06-25", StartTime: "09:00", EndTime: "10:00", BreakDuration: 0}); err != nil {
		t.Fatalf("upsert actual: %v", err)
	}
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	actual, err := calc.ActualMinutes(ctx, month(t, "2024-06"))
	if err != nil {
		t.Fatalf("actual: %v", err)
	}
	// 570 (override) + 120 + 60.
	if actual != 750 {
		t.Errorf("ActualMinutes = %d, want 750", actual)
	}
}

func TestPreviousMonthBalance(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	mustSetHours(t, store, "2024-05", 40.0)
	// One worked day in May 2024 (23 working days, target 11040).
	mustAssign(t, store, "2024-05-06", core.Shift{Name: "Day", BeginTime: "08:00", EndTime: "16:00", BreakDuration: 0})
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	balance, err := calc.PreviousMonthBalance(ctx, month(t, "2024-06"))
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if want := 480 - 11040; balance != want {
		t.Errorf("PreviousMonthBalance = %d, want %d", balance, want)
	}
}

func TestPreviousMonthBalanceTerminates(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	mustSetHours(t, store, "2024-05", 40.0)
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	// The month equal to the earliest configured month looks back at a
	// month before configuration began: nothing is carried in.
	balance, err := calc.PreviousMonthBalance(ctx, month(t, "2024-05"))
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Errorf("PreviousMonthBalance at earliest month = %d, want 0", balance)
	}
}

func TestPreviousMonthBalanceUnconfigured(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	balance, err := calc.PreviousMonthBalance(ctx, month(t, "2024-06"))
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Errorf("PreviousMonthBalance with no settings = %d, want 0", balance)
	}

	// Without configuration the summary still produces a default target.
	sum, err := calc.Summary(ctx, month(t, "2024-06"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// June 2024 has 20 working days: 40/5*20*60.
	if sum.TargetMinutes != 9600 {
		t.Errorf("default TargetMinutes = %d, want 9600", sum.TargetMinutes)
	}
	if sum.PreviousMonthBalance != 0 {
		t.Errorf("default PreviousMonthBalance = %d, want 0", sum.PreviousMonthBalance)
	}
}

func TestEmptyMonthSumsToZero(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	planned, err := calc.PlannedMinutes(ctx, month(t, "2024-06"))
	if err != nil {
		t.Fatalf("planned: %v", err)
	}
	actual, err := calc.ActualMinutes(ctx, month(t, "2024-06"))
	if err != nil {
		t.Fatalf("actual: %v", err)
	}
	if planned != 0 || actual != 0 {
		t.Errorf("empty month sums = (%d, %d), want (0, 0)", planned, actual)
	}
}

func TestDeletedShiftLeavesNoPlannedMinutes(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	shift, err := store.CreateShift(ctx, core.Shift{Name: "Day", BeginTime: "08:00", EndTime: "16:00", BreakDuration: 0})
	if err != nil {
		t.Fatalf("create shift: %v", err)
	}
	if _, err := store.UpsertAssignment(ctx, core.ShiftAssignment{Date: "2024-06-10", ShiftID: shift.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := store.DeleteShift(ctx, shift.ID); err != nil {
		t.Fatalf("delete shift: %v", err)
	}
	calc := NewCalculatorAt(store, fixedNow("2024-06-15"))

	planned, err := calc.PlannedMinutes(ctx, month(t, "2024-06"))
	if err != nil {
		t.Fatalf("planned: %v", err)
	}
	if planned != 0 {
		t.Errorf("PlannedMinutes after cascade delete = %d, want 0", planned)
	}
}

// faultyStore fails selected reads so error propagation can be checked.
type faultyStore struct {
	*MemStore
	assignErr error
	actualErr error
	hoursErr  error
}

func (s *faultyStore) AssignmentsInRange(ctx context.Context, start, end core.Date) (map[string]core.Shift, error) {
	if s.assignErr != nil {
		return nil, s.assignErr
	}
	return s.MemStore.AssignmentsInRange(ctx, start, end)
}

func (s *faultyStore) ActualTimesInRange(ctx context.Context, start, end core.Date) (map[string]core.ActualWorkTime, error) {
	if s.actualErr != nil {
		return nil, s.actualErr
	}
	return s.MemStore.ActualTimesInRange(ctx, start, end)
}

func (s *faultyStore) WorkingHoursByMonth(ctx context.Context, m core.YearMonth) (*core.WorkingHoursSetting, error) {
	if s.hoursErr != nil {
		return nil, s.hoursErr
	}
	return s.MemStore.WorkingHoursByMonth(ctx, m)
}

func TestSummaryPropagatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("store unavailable")

	tests := []struct {
		name  string
		store *faultyStore
	}{
		{"assignments", &faultyStore{MemStore: NewMemStore(), assignErr: sentinel}},
		{"actual times", &faultyStore{MemStore: NewMemStore(), actualErr: sentinel}},
		{"working hours", &faultyStore{MemStore: NewMemStore(), hoursErr: sentinel}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculatorAt(tt.store, fixedNow("2024-06-15"))
			_, err := calc.Summary(ctx, month(t, "2024-06"))
			if err == nil {
				t.Fatal("Summary returned nil error on failing store")
			}
			if !errors.Is(err, sentinel) {
				t.Errorf("Summary error = %v, want wrapped %v", err, sentinel)
			}
		})
	}
}
