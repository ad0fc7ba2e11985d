package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"shiftplan/internal/core"
)

// nowFunc is swapped out in tests to pin the default month.
var nowFunc = time.Now

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFromErr maps domain errors onto HTTP statuses. Validation failures
// are the client's fault; everything else is a server-side problem.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidTimeFormat),
		errors.Is(err, core.ErrInvalidDateFormat),
		errors.Is(err, core.ErrInvalidMonthFormat),
		errors.Is(err, core.ErrInvalidHoursValue),
		errors.Is(err, core.ErrEmptyShiftName),
		errors.Is(err, core.ErrNegativeBreak):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFromErr(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "operation", op, "error", err)
	}
	writeError(w, status, err.Error())
}

// pathDate parses the {date} path segment.
func pathDate(r *http.Request) (core.Date, error) {
	return core.ParseDate(r.PathValue("date"))
}

type summaryResponse struct {
	Month string `json:"month"`
	core.MonthlySummary
	PreviousMonthBalanceText string `json:"previous_month_balance_text"`
	TargetHoursText          string `json:"target_hours_text"`
	PlannedHoursText         string `json:"planned_hours_text"`
	ActualHoursText          string `json:"actual_hours_text"`
	DifferenceText           string `json:"difference_text"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month := core.DateOf(nowFunc()).YearMonth()
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := core.ParseYearMonth(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		month = parsed
	}

	summary, err := s.calculator.Summary(r.Context(), month)
	if err != nil {
		s.respondErr(w, r, err, "summary")
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Month:                    month.String(),
		MonthlySummary:           summary,
		PreviousMonthBalanceText: core.FormatSigned(summary.PreviousMonthBalance),
		TargetHoursText:          core.FormatDecimal(summary.TargetMinutes),
		PlannedHoursText:         core.FormatDecimal(summary.PlannedMinutes),
		ActualHoursText:          core.FormatDecimal(summary.ActualMinutes),
		DifferenceText:           core.FormatSigned(summary.Difference),
	})
}

func (s *Server) handleMonthList(w http.ResponseWriter, r *http.Request) {
	months, err := s.calculator.MonthList(r.Context())
	if err != nil {
		s.respondErr(w, r, err, "month list")
		return
	}
	writeJSON(w, http.StatusOK, months)
}

type saveWorkingHoursRequest struct {
	WeeklyHours float64 `json:"weekly_hours"`
}

func (s *Server) handleSaveWorkingHours(w http.ResponseWriter, r *http.Request) {
	var req saveWorkingHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := s.workingHours.Save(r.Context(), r.PathValue("month"), req.WeeklyHours)
	if err != nil {
		s.respondErr(w, r, err, "save working hours")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteWorkingHours(w http.ResponseWriter, r *http.Request) {
	if err := s.workingHours.Delete(r.Context(), r.PathValue("month")); err != nil {
		s.respondErr(w, r, err, "delete working hours")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
