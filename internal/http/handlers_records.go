package http

import (
	"net/http"

	"daybook/internal/core"
)

type createRecordRequest struct {
	Date core.Date `json:"date"`
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date.IsZero() {
		writeError(w, r, core.ErrDateRequired)
		return
	}

	rec, err := s.svc.CreateRecord(r.Context(), req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards()
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.ListRecords(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []core.DailyRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleSaveRecord replaces the whole record. The path id wins over any
// id in the body.
func (s *Server) handleSaveRecord(w http.ResponseWriter, r *http.Request) {
	var rec core.DailyRecord
	if !decodeJSON(w, r, &rec) {
		return
	}
	rec.ID = r.PathValue("id")

	if _, err := s.svc.SaveRecord(r.Context(), rec); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards()
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteRecord(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards()
	writeJSON(w, http.StatusNoContent, nil)
}

type amountEditRequest struct {
	CategoryID string `json:"categoryId"`
	ItemID     string `json:"itemId"`
	Value      string `json:"value"`
}

func (s *Server) handleEditAmount(w http.ResponseWriter, r *http.Request) {
	var req amountEditRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := s.svc.UpdateItemAmount(r.Context(), r.PathValue("id"), req.CategoryID, req.ItemID, req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards()
	writeJSON(w, http.StatusOK, rec)
}

type photoEditRequest struct {
	CategoryID string   `json:"categoryId"`
	ItemID     string   `json:"itemId"`
	Photos     []string `json:"photos"`
}

func (s *Server) handleEditPhotos(w http.ResponseWriter, r *http.Request) {
	var req photoEditRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := s.svc.UpdateItemPhotos(r.Context(), r.PathValue("id"), req.CategoryID, req.ItemID, req.Photos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type customItemRequest struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	// Persist registers the item in the taxonomy for future records.
	Persist bool `json:"persist"`
}

func (s *Server) handleAddCustomItem(w http.ResponseWriter, r *http.Request) {
	var req customItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := s.svc.AddCustomItem(r.Context(), r.PathValue("id"), req.CategoryID, req.Name, req.Persist)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
