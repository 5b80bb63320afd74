package http

import (
	"net/http"

	"daybook/internal/core"
)

func (s *Server) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	structure, err := s.svc.GetStructure(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, structure)
}

func (s *Server) respondStructure(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	structure, err := s.svc.GetStructure(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, structure)
}

// handleReplaceStructure commits an edited working copy wholesale. The
// granular endpoints below stay the primary write path; this exists for
// clients that edit offline and submit the result in one shot.
func (s *Server) handleReplaceStructure(w http.ResponseWriter, r *http.Request) {
	var req core.Structure
	if !decodeJSON(w, r, &req) {
		return
	}
	structure, err := s.svc.ReplaceStructure(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, structure)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := s.svc.EditStructure(r.Context(), func(e *core.StructureEditor) error {
		return e.AddCategory(req.Name)
	})
	s.respondStructure(w, r, http.StatusCreated, err)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	err := s.svc.EditStructure(r.Context(), func(e *core.StructureEditor) error {
		e.DeleteCategory(name)
		return nil
	})
	s.respondStructure(w, r, http.StatusOK, err)
}

type itemRequest struct {
	Name         string `json:"name"`
	DefaultValue string `json:"defaultValue"`
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	defaultValue, err := core.ParseAmount(req.DefaultValue)
	if err != nil {
		writeError(w, r, err)
		return
	}

	category := r.PathValue("name")
	err = s.svc.EditStructure(r.Context(), func(e *core.StructureEditor) error {
		return e.AddItem(category, req.Name, defaultValue)
	})
	s.respondStructure(w, r, http.StatusCreated, err)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("name")
	item := r.PathValue("item")
	err := s.svc.EditStructure(r.Context(), func(e *core.StructureEditor) error {
		e.DeleteItem(category, item)
		return nil
	})
	s.respondStructure(w, r, http.StatusOK, err)
}

// reorderRequest moves one element from index From to index To. Both
// single arrow steps and drags submit the same shape.
type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (s *Server) handleReorderCategories(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := s.svc.EditStructure(r.Context(), func(e *core.StructureEditor) error {
		return e.ReorderCategories(req.From, req.To)
	})
	s.respondStructure(w, r, http.StatusOK, err)
}

func (s *Server) handleReorderItems(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category := r.PathValue("name")
	err := s.svc.EditStructure(r.Context(), func(e *core.StructureEditor) error {
		return e.ReorderItems(category, req.From, req.To)
	})
	s.respondStructure(w, r, http.StatusOK, err)
}

type uploadRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleSetBillUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category := r.PathValue("name")
	err := s.svc.EditStructure(r.Context(), func(e *core.StructureEditor) error {
		e.SetBillUpload(category, req.Enabled)
		return nil
	})
	s.respondStructure(w, r, http.StatusOK, err)
}
