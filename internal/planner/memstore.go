package planner

import (
	"context"
	"sort"
	"sync"

	"shiftplan/internal/core"
)

// MemStore is a mutex-guarded in-memory implementation of the store
// contract. It backs the memory data backend and substitutes the SQLite
// repository in tests.
type MemStore struct {
	mu           sync.Mutex
	nextID       int64
	shifts       map[int64]core.Shift
	assignments  map[string]core.ShiftAssignment     // keyed by date
	actualTimes  map[string]core.ActualWorkTime      // keyed by date
	workingHours map[string]core.WorkingHoursSetting // keyed by year-month
	calendarID   string
	calendarName string
}

func NewMemStore() *MemStore {
	return &MemStore{
		nextID:       1,
		shifts:       make(map[int64]core.Shift),
		assignments:  make(map[string]core.ShiftAssignment),
		actualTimes:  make(map[string]core.ActualWorkTime),
		workingHours: make(map[string]core.WorkingHoursSetting),
	}
}

var _ Store = (*MemStore)(nil)

func (s *MemStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// CreateShift stores a shift and returns it with its assigned id.
func (s *MemStore) CreateShift(_ context.Context, shift core.Shift) (core.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shift.ID = s.id()
	s.shifts[shift.ID] = shift
	return shift, nil
}

func (s *MemStore) UpdateShift(_ context.Context, shift core.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[shift.ID]; !ok {
		return core.ErrNotFound
	}
	s.shifts[shift.ID] = shift
	return nil
}

// DeleteShift removes the shift and cascades to its assignments.
func (s *MemStore) DeleteShift(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.shifts, id)
	for date, a := range s.assignments {
		if a.ShiftID == id {
			delete(s.assignments, date)
		}
	}
	return nil
}

func (s *MemStore) ShiftByID(_ context.Context, id int64) (*core.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if shift, ok := s.shifts[id]; ok {
		return &shift, nil
	}
	return nil, nil
}

// ListShifts returns all shifts ordered by name.
func (s *MemStore) ListShifts(_ context.Context) ([]core.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Shift, 0, len(s.shifts))
	for _, shift := range s.shifts {
		out = append(out, shift)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpsertAssignment inserts or replaces the assignment for its date.
func (s *MemStore) UpsertAssignment(_ context.Context, a core.ShiftAssignment) (core.ShiftAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.assignments[a.Date]; ok {
		a.ID = existing.ID
	} else {
		a.ID = s.id()
	}
	s.assignments[a.Date] = a
	return a, nil
}

func (s *MemStore) AssignmentByDate(_ context.Context, date core.Date) (*core.ShiftAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.assignments[date.String()]; ok {
		return &a, nil
	}
	return nil, nil
}

func (s *MemStore) DeleteAssignmentByDate(_ context.Context, date core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments, date.String())
	return nil
}

func (s *MemStore) SetAssignmentEventID(_ context.Context, id int64, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for date, a := range s.assignments {
		if a.ID == id {
			a.CalendarEventID = eventID
			s.assignments[date] = a
			return nil
		}
	}
	return core.ErrNotFound
}

// PendingSyncAssignments returns assignments without a calendar event.
func (s *MemStore) PendingSyncAssignments(_ context.Context) ([]core.ShiftAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ShiftAssignment
	for _, a := range s.assignments {
		if a.CalendarEventID == "" {
			out = append(out, a)
		}
	}
	return out, nil
}

// AssignmentByID returns the assignment with the id, or nil.
func (s *MemStore) AssignmentByID(_ context.Context, id int64) (*core.ShiftAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

// AssignmentsByShift returns every assignment referencing the shift.
func (s *MemStore) AssignmentsByShift(_ context.Context, shiftID int64) ([]core.ShiftAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ShiftAssignment
	for _, a := range s.assignments {
		if a.ShiftID == shiftID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemStore) AssignmentsInRange(_ context.Context, start, end core.Date) (map[string]core.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to := start.String(), end.String()
	out := make(map[string]core.Shift)
	for date, a := range s.assignments {
		if date < from || date > to {
			continue
		}
		shift, ok := s.shifts[a.ShiftID]
		if !ok {
			// Orphaned assignment; the cascade should prevent this.
			continue
		}
		out[date] = shift
	}
	return out, nil
}

// UpsertActualTime inserts or replaces the override for its date.
func (s *MemStore) UpsertActualTime(_ context.Context, t core.ActualWorkTime) (core.ActualWorkTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.actualTimes[t.Date]; ok {
		t.ID = existing.ID
	} else {
		t.ID = s.id()
	}
	s.actualTimes[t.Date] = t
	return t, nil
}

func (s *MemStore) ActualTimeByDate(_ context.Context, date core.Date) (*core.ActualWorkTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.actualTimes[date.String()]; ok {
		return &t, nil
	}
	return nil, nil
}

func (s *MemStore) DeleteActualTimeByDate(_ context.Context, date core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.actualTimes, date.String())
	return nil
}

func (s *MemStore) ActualTimesInRange(_ context.Context, start, end core.Date) (map[string]core.ActualWorkTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to := start.String(), end.String()
	out := make(map[string]core.ActualWorkTime)
	for date, t := range s.actualTimes {
		if date >= from && date <= to {
			out[date] = t
		}
	}
	return out, nil
}

// UpsertWorkingHours inserts or replaces the setting for its month.
func (s *MemStore) UpsertWorkingHours(_ context.Context, w core.WorkingHoursSetting) (core.WorkingHoursSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.workingHours[w.YearMonth]; ok {
		w.ID = existing.ID
	} else {
		w.ID = s.id()
	}
	s.workingHours[w.YearMonth] = w
	return w, nil
}

func (s *MemStore) DeleteWorkingHours(_ context.Context, month core.YearMonth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workingHours, month.String())
	return nil
}

// DeleteWorkingHoursFrom removes every setting for the month and later.
func (s *MemStore) DeleteWorkingHoursFrom(_ context.Context, month core.YearMonth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := month.String()
	for key := range s.workingHours {
		if key >= from {
			delete(s.workingHours, key)
		}
	}
	return nil
}

func (s *MemStore) WorkingHoursByMonth(_ context.Context, month core.YearMonth) (*core.WorkingHoursSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.workingHours[month.String()]; ok {
		return &w, nil
	}
	return nil, nil
}

func (s *MemStore) PreviousWorkingHours(_ context.Context, month core.YearMonth) (*core.WorkingHoursSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := month.String()
	var best *core.WorkingHoursSetting
	for key, w := range s.workingHours {
		if key >= before {
			continue
		}
		if best == nil || key > best.YearMonth {
			w := w
			best = &w
		}
	}
	return best, nil
}

func (s *MemStore) EarliestWorkingHours(_ context.Context) (*core.WorkingHoursSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *core.WorkingHoursSetting
	for key, w := range s.workingHours {
		if best == nil || key < best.YearMonth {
			w := w
			best = &w
		}
	}
	return best, nil
}

func (s *MemStore) AllWorkingHours(_ context.Context) ([]core.WorkingHoursSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.WorkingHoursSetting, 0, len(s.workingHours))
	for _, w := range s.workingHours {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].YearMonth < out[j].YearMonth })
	return out, nil
}

// Selected-calendar preference.
func (s *MemStore) SelectedCalendar(_ context.Context) (id, name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calendarID, s.calendarName, nil
}

func (s *MemStore) SaveSelectedCalendar(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendarID, s.calendarName = id, name
	return nil
}

func (s *MemStore) ClearSelectedCalendar(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendarID, s.calendarName = "", ""
	return nil
}
