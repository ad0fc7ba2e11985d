package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"shiftplan/internal/core"
)

type shiftRequest struct {
	Name          string `json:"name"`
	BeginTime     string `json:"begin_time"`
	EndTime       string `json:"end_time"`
	BreakDuration int    `json:"break_duration"`
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (s *Server) handleListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := s.shifts.List(r.Context())
	if err != nil {
		s.respondErr(w, r, err, "list shifts")
		return
	}
	if shifts == nil {
		shifts = []core.Shift{}
	}
	writeJSON(w, http.StatusOK, shifts)
}

func (s *Server) handleGetShift(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shift id")
		return
	}

	shift, err := s.shifts.Get(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, err, "get shift")
		return
	}
	if shift == nil {
		writeError(w, http.StatusNotFound, "shift not found")
		return
	}
	writeJSON(w, http.StatusOK, shift)
}

func (s *Server) handleCreateShift(w http.ResponseWriter, r *http.Request) {
	var req shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.shifts.Create(r.Context(), core.Shift{
		Name:          req.Name,
		BeginTime:     req.BeginTime,
		EndTime:       req.EndTime,
		BreakDuration: req.BreakDuration,
	})
	if err != nil {
		s.respondErr(w, r, err, "create shift")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateShift(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shift id")
		return
	}

	var req shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	shift := core.Shift{
		ID:            id,
		Name:          req.Name,
		BeginTime:     req.BeginTime,
		EndTime:       req.EndTime,
		BreakDuration: req.BreakDuration,
	}
	if err := s.shifts.Update(r.Context(), shift); err != nil {
		s.respondErr(w, r, err, "update shift")
		return
	}
	writeJSON(w, http.StatusOK, shift)
}

func (s *Server) handleDeleteShift(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shift id")
		return
	}

	if err := s.shifts.Delete(r.Context(), id); err != nil {
		s.respondErr(w, r, err, "delete shift")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
