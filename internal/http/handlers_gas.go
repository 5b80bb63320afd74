package http

import (
	"net/http"
	"strings"

	"daybook/internal/core"
)

func (s *Server) handleGasStatus(w http.ResponseWriter, r *http.Request) {
	asOf := today()
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeError(w, r, core.ErrDateRequired)
			return
		}
		asOf = d
	}

	status, err := s.svc.GasStatus(r.Context(), asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type gasEventRequest struct {
	Count int       `json:"count"`
	Date  core.Date `json:"date"`
}

func (req *gasEventRequest) date() core.Date {
	if req.Date.IsZero() {
		return today()
	}
	return req.Date
}

func (s *Server) handleGasSwap(w http.ResponseWriter, r *http.Request) {
	var req gasEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state, err := s.svc.GasSwap(r.Context(), req.Count, req.date())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleGasRefill(w http.ResponseWriter, r *http.Request) {
	var req gasEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state, err := s.svc.GasRefill(r.Context(), req.Count, req.date())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
