package http

import (
	"encoding/json"
	"net/http"

	"shiftplan/internal/core"
)

// parseRange reads the start/end query parameters, defaulting to the
// current month when absent.
func parseRange(r *http.Request) (start, end core.Date, err error) {
	q := r.URL.Query()
	if q.Get("start") == "" && q.Get("end") == "" {
		month := core.DateOf(nowFunc()).YearMonth()
		return month.FirstDay(), month.LastDay(), nil
	}
	start, err = core.ParseDate(q.Get("start"))
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	end, err = core.ParseDate(q.Get("end"))
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	return start, end, nil
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	assigned, err := s.reader.AssignmentsInRange(r.Context(), start, end)
	if err != nil {
		s.respondErr(w, r, err, "list assignments")
		return
	}
	if assigned == nil {
		assigned = map[string]core.Shift{}
	}
	writeJSON(w, http.StatusOK, assigned)
}

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	assignment, err := s.reader.AssignmentByDate(r.Context(), date)
	if err != nil {
		s.respondErr(w, r, err, "get assignment")
		return
	}
	if assignment == nil {
		writeError(w, http.StatusNotFound, "no assignment on this date")
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

type assignRequest struct {
	ShiftID int64 `json:"shift_id"`
}

func (s *Server) handleAssignShift(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assignment, err := s.assignments.Assign(r.Context(), r.PathValue("date"), req.ShiftID)
	if err != nil {
		s.respondErr(w, r, err, "assign shift")
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

func (s *Server) handleUnassignShift(w http.ResponseWriter, r *http.Request) {
	if err := s.assignments.Unassign(r.Context(), r.PathValue("date")); err != nil {
		s.respondErr(w, r, err, "unassign shift")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListActualTimes(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	times, err := s.reader.ActualTimesInRange(r.Context(), start, end)
	if err != nil {
		s.respondErr(w, r, err, "list actual times")
		return
	}
	if times == nil {
		times = map[string]core.ActualWorkTime{}
	}
	writeJSON(w, http.StatusOK, times)
}

func (s *Server) handleGetActualTime(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	actual, err := s.reader.ActualTimeByDate(r.Context(), date)
	if err != nil {
		s.respondErr(w, r, err, "get actual time")
		return
	}
	if actual == nil {
		writeError(w, http.StatusNotFound, "no actual time on this date")
		return
	}
	writeJSON(w, http.StatusOK, actual)
}

type actualTimeRequest struct {
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	BreakDuration int    `json:"break_duration"`
}

func (s *Server) handleSaveActualTime(w http.ResponseWriter, r *http.Request) {
	var req actualTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := s.actualTimes.Save(r.Context(), core.ActualWorkTime{
		Date:          r.PathValue("date"),
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		BreakDuration: req.BreakDuration,
	})
	if err != nil {
		s.respondErr(w, r, err, "save actual time")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteActualTime(w http.ResponseWriter, r *http.Request) {
	if err := s.actualTimes.Delete(r.Context(), r.PathValue("date")); err != nil {
		s.respondErr(w, r, err, "delete actual time")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
