package http

import (
	"encoding/json"
	"net/http"
	"strings"
)

type calendarSetting struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	id, name, err := s.reader.SelectedCalendar(r.Context())
	if err != nil {
		s.respondErr(w, r, err, "get calendar setting")
		return
	}
	if id == "" {
		writeError(w, http.StatusNotFound, "no calendar selected")
		return
	}
	writeJSON(w, http.StatusOK, calendarSetting{ID: id, Name: name})
}

func (s *Server) handleSaveCalendar(w http.ResponseWriter, r *http.Request) {
	var req calendarSetting
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusUnprocessableEntity, "calendar id cannot be empty")
		return
	}

	if err := s.reader.SaveSelectedCalendar(r.Context(), req.ID, req.Name); err != nil {
		s.respondErr(w, r, err, "save calendar setting")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleClearCalendar(w http.ResponseWriter, r *http.Request) {
	if err := s.reader.ClearSelectedCalendar(r.Context()); err != nil {
		s.respondErr(w, r, err, "clear calendar setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
