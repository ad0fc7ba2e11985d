// Package storage persists shifts, assignments, actual work times and
// working-hours settings in SQLite and implements the planner's store
// contract.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shiftplan/internal/core"
	"shiftplan/internal/planner"

	_ "modernc.org/sqlite"
)

const (
	prefCalendarID   = "selected_calendar_id"
	prefCalendarName = "selected_calendar_name"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ planner.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// The pragma goes in the DSN so every pooled connection enforces the
	// assignment cascade, not just the one that ran a PRAGMA statement.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Shifts.

func (r *SQLiteRepository) CreateShift(ctx context.Context, s core.Shift) (core.Shift, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shifts (name, begin_time, end_time, break_duration) VALUES (?, ?, ?, ?)`,
		s.Name, s.BeginTime, s.EndTime, s.BreakDuration)
	if err != nil {
		return core.Shift{}, fmt.Errorf("create shift: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Shift{}, fmt.Errorf("shift insert id: %w", err)
	}
	s.ID = id

	slog.InfoContext(ctx, "Shift created", "id", s.ID, "name", s.Name)
	return s, nil
}

func (r *SQLiteRepository) UpdateShift(ctx context.Context, s core.Shift) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE shifts SET name = ?, begin_time = ?, end_time = ?, break_duration = ? WHERE id = ?`,
		s.Name, s.BeginTime, s.EndTime, s.BreakDuration, s.ID)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shift rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteShift removes the shift; dependent assignments go with it through
// the foreign-key cascade.
func (r *SQLiteRepository) DeleteShift(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shifts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	slog.InfoContext(ctx, "Shift deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) ShiftByID(ctx context.Context, id int64) (*core.Shift, error) {
	var s core.Shift
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, begin_time, end_time, break_duration FROM shifts WHERE id = ?`, id).
		Scan(&s.ID, &s.Name, &s.BeginTime, &s.EndTime, &s.BreakDuration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shift %d: %w", id, err)
	}
	return &s, nil
}

func (r *SQLiteRepository) ListShifts(ctx context.Context) ([]core.Shift, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, begin_time, end_time, break_duration FROM shifts ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []core.Shift
	for rows.Next() {
		var s core.Shift
		if err := rows.Scan(&s.ID, &s.Name, &s.BeginTime, &s.EndTime, &s.BreakDuration); err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

// Shift assignments.

func (r *SQLiteRepository) UpsertAssignment(ctx context.Context, a core.ShiftAssignment) (core.ShiftAssignment, error) {
	eventID := sql.NullString{String: a.CalendarEventID, Valid: a.CalendarEventID != ""}
	// RETURNING yields the surviving row's id on both the insert and the
	// conflict-update path; last_insert_rowid() does not move on the latter.
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO shift_assignments (date, shift_id, calendar_event_id) VALUES (?, ?, ?)
		 ON CONFLICT (date) DO UPDATE SET shift_id = excluded.shift_id, calendar_event_id = excluded.calendar_event_id
		 RETURNING id`,
		a.Date, a.ShiftID, eventID).Scan(&a.ID)
	if err != nil {
		return core.ShiftAssignment{}, fmt.Errorf("upsert assignment: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) AssignmentByDate(ctx context.Context, date core.Date) (*core.ShiftAssignment, error) {
	return r.AssignmentByDateString(ctx, date.String())
}

func (r *SQLiteRepository) AssignmentByDateString(ctx context.Context, date string) (*core.ShiftAssignment, error) {
	var a core.ShiftAssignment
	var eventID sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, date, shift_id, calendar_event_id FROM shift_assignments WHERE date = ?`, date).
		Scan(&a.ID, &a.Date, &a.ShiftID, &eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment %s: %w", date, err)
	}
	a.CalendarEventID = eventID.String
	return &a, nil
}

func (r *SQLiteRepository) AssignmentByID(ctx context.Context, id int64) (*core.ShiftAssignment, error) {
	var a core.ShiftAssignment
	var eventID sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, date, shift_id, calendar_event_id FROM shift_assignments WHERE id = ?`, id).
		Scan(&a.ID, &a.Date, &a.ShiftID, &eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment %d: %w", id, err)
	}
	a.CalendarEventID = eventID.String
	return &a, nil
}

func (r *SQLiteRepository) DeleteAssignmentByDate(ctx context.Context, date core.Date) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shift_assignments WHERE date = ?`, date.String()); err != nil {
		return fmt.Errorf("delete assignment %s: %w", date, err)
	}
	return nil
}

func (r *SQLiteRepository) SetAssignmentEventID(ctx context.Context, id int64, eventID string) error {
	value := sql.NullString{String: eventID, Valid: eventID != ""}
	res, err := r.db.ExecContext(ctx,
		`UPDATE shift_assignments SET calendar_event_id = ? WHERE id = ?`, value, id)
	if err != nil {
		return fmt.Errorf("set assignment event id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set assignment event id rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// AssignmentsByShift returns every assignment referencing the shift.
func (r *SQLiteRepository) AssignmentsByShift(ctx context.Context, shiftID int64) ([]core.ShiftAssignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, shift_id, calendar_event_id FROM shift_assignments WHERE shift_id = ? ORDER BY date ASC`,
		shiftID)
	if err != nil {
		return nil, fmt.Errorf("assignments by shift: %w", err)
	}
	defer rows.Close()

	var out []core.ShiftAssignment
	for rows.Next() {
		var a core.ShiftAssignment
		var eventID sql.NullString
		if err := rows.Scan(&a.ID, &a.Date, &a.ShiftID, &eventID); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.CalendarEventID = eventID.String
		out = append(out, a)
	}
	return out, rows.Err()
}

// PendingSyncAssignments returns assignments that never got a calendar
// event, oldest first.
func (r *SQLiteRepository) PendingSyncAssignments(ctx context.Context) ([]core.ShiftAssignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, shift_id, calendar_event_id FROM shift_assignments
		 WHERE calendar_event_id IS NULL OR calendar_event_id = ''
		 ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("pending assignments: %w", err)
	}
	defer rows.Close()

	var out []core.ShiftAssignment
	for rows.Next() {
		var a core.ShiftAssignment
		var eventID sql.NullString
		if err := rows.Scan(&a.ID, &a.Date, &a.ShiftID, &eventID); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.CalendarEventID = eventID.String
		out = append(out, a)
	}
	return out, rows.Err()
}

// AssignmentsInRange joins assignments with their shifts over [start, end]
// inclusive. The inner join drops rows whose shift vanished, which the
// cascade should already prevent.
func (r *SQLiteRepository) AssignmentsInRange(ctx context.Context, start, end core.Date) (map[string]core.Shift, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.date, s.id, s.name, s.begin_time, s.end_time, s.break_duration
		 FROM shift_assignments a
		 JOIN shifts s ON s.id = a.shift_id
		 WHERE a.date BETWEEN ? AND ?
		 ORDER BY a.date ASC`,
		start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("assignments in range: %w", err)
	}
	defer rows.Close()

	out := make(map[string]core.Shift)
	for rows.Next() {
		var date string
		var s core.Shift
		if err := rows.Scan(&date, &s.ID, &s.Name, &s.BeginTime, &s.EndTime, &s.BreakDuration); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out[date] = s
	}
	return out, rows.Err()
}

// Actual work times.

func (r *SQLiteRepository) UpsertActualTime(ctx context.Context, t core.ActualWorkTime) (core.ActualWorkTime, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO actual_work_times (date, start_time, end_time, break_duration) VALUES (?, ?, ?, ?)
		 ON CONFLICT (date) DO UPDATE SET start_time = excluded.start_time, end_time = excluded.end_time, break_duration = excluded.break_duration
		 RETURNING id`,
		t.Date, t.StartTime, t.EndTime, t.BreakDuration).Scan(&t.ID)
	if err != nil {
		return core.ActualWorkTime{}, fmt.Errorf("upsert actual time: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ActualTimeByDate(ctx context.Context, date core.Date) (*core.ActualWorkTime, error) {
	var t core.ActualWorkTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, date, start_time, end_time, break_duration FROM actual_work_times WHERE date = ?`,
		date.String()).
		Scan(&t.ID, &t.Date, &t.StartTime, &t.EndTime, &t.BreakDuration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get actual time %s: %w", date, err)
	}
	return &t, nil
}

func (r *SQLiteRepository) DeleteActualTimeByDate(ctx context.Context, date core.Date) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM actual_work_times WHERE date = ?`, date.String()); err != nil {
		return fmt.Errorf("delete actual time %s: %w", date, err)
	}
	return nil
}

func (r *SQLiteRepository) ActualTimesInRange(ctx context.Context, start, end core.Date) (map[string]core.ActualWorkTime, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, start_time, end_time, break_duration
		 FROM actual_work_times
		 WHERE date BETWEEN ? AND ?
		 ORDER BY date ASC`,
		start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("actual times in range: %w", err)
	}
	defer rows.Close()

	out := make(map[string]core.ActualWorkTime)
	for rows.Next() {
		var t core.ActualWorkTime
		if err := rows.Scan(&t.ID, &t.Date, &t.StartTime, &t.EndTime, &t.BreakDuration); err != nil {
			return nil, fmt.Errorf("scan actual time: %w", err)
		}
		out[t.Date] = t
	}
	return out, rows.Err()
}

// Working hours.

func (r *SQLiteRepository) UpsertWorkingHours(ctx context.Context, w core.WorkingHoursSetting) (core.WorkingHoursSetting, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO working_hours (year_month, weekly_hours) VALUES (?, ?)
		 ON CONFLICT (year_month) DO UPDATE SET weekly_hours = excluded.weekly_hours
		 RETURNING id`,
		w.YearMonth, w.WeeklyHours).Scan(&w.ID)
	if err != nil {
		return core.WorkingHoursSetting{}, fmt.Errorf("upsert working hours: %w", err)
	}
	slog.InfoContext(ctx, "Working hours saved", "month", w.YearMonth, "weekly_hours", w.WeeklyHours)
	return w, nil
}

func (r *SQLiteRepository) DeleteWorkingHours(ctx context.Context, month core.YearMonth) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM working_hours WHERE year_month = ?`, month.String()); err != nil {
		return fmt.Errorf("delete working hours %s: %w", month, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteWorkingHoursFrom(ctx context.Context, month core.YearMonth) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM working_hours WHERE year_month >= ?`, month.String()); err != nil {
		return fmt.Errorf("delete working hours from %s: %w", month, err)
	}
	return nil
}

func (r *SQLiteRepository) WorkingHoursByMonth(ctx context.Context, month core.YearMonth) (*core.WorkingHoursSetting, error) {
	return r.scanWorkingHours(r.db.QueryRowContext(ctx,
		`SELECT id, year_month, weekly_hours FROM working_hours WHERE year_month = ?`, month.String()))
}

func (r *SQLiteRepository) PreviousWorkingHours(ctx context.Context, month core.YearMonth) (*core.WorkingHoursSetting, error) {
	return r.scanWorkingHours(r.db.QueryRowContext(ctx,
		`SELECT id, year_month, weekly_hours FROM working_hours WHERE year_month < ? ORDER BY year_month DESC LIMIT 1`,
		month.String()))
}

func (r *SQLiteRepository) EarliestWorkingHours(ctx context.Context) (*core.WorkingHoursSetting, error) {
	return r.scanWorkingHours(r.db.QueryRowContext(ctx,
		`SELECT id, year_month, weekly_hours FROM working_hours ORDER BY year_month ASC LIMIT 1`))
}

func (r *SQLiteRepository) scanWorkingHours(row *sql.Row) (*core.WorkingHoursSetting, error) {
	var w core.WorkingHoursSetting
	err := row.Scan(&w.ID, &w.YearMonth, &w.WeeklyHours)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan working hours: %w", err)
	}
	return &w, nil
}

func (r *SQLiteRepository) AllWorkingHours(ctx context.Context) ([]core.WorkingHoursSetting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, year_month, weekly_hours FROM working_hours ORDER BY year_month ASC`)
	if err != nil {
		return nil, fmt.Errorf("all working hours: %w", err)
	}
	defer rows.Close()

	var out []core.WorkingHoursSetting
	for rows.Next() {
		var w core.WorkingHoursSetting
		if err := rows.Scan(&w.ID, &w.YearMonth, &w.WeeklyHours); err != nil {
			return nil, fmt.Errorf("scan working hours: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Selected-calendar preference.

func (r *SQLiteRepository) SelectedCalendar(ctx context.Context) (id, name string, err error) {
	id, err = r.preference(ctx, prefCalendarID)
	if err != nil {
		return "", "", err
	}
	name, err = r.preference(ctx, prefCalendarName)
	if err != nil {
		return "", "", err
	}
	return id, name, nil
}

func (r *SQLiteRepository) SaveSelectedCalendar(ctx context.Context, id, name string) error {
	if err := r.setPreference(ctx, prefCalendarID, id); err != nil {
		return err
	}
	return r.setPreference(ctx, prefCalendarName, name)
}

func (r *SQLiteRepository) ClearSelectedCalendar(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM preferences WHERE key IN (?, ?)`, prefCalendarID, prefCalendarName); err != nil {
		return fmt.Errorf("clear selected calendar: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) preference(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) setPreference(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}
