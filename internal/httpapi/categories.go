package httpapi

import (
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"spokoj/internal/core"
)

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	toJSON(w, http.StatusOK, s.svc.Categories())
}

func (s *Server) postCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, core.ErrEmptyName.Error())
		return
	}
	cat := s.svc.AddCategory(req.Name, req.Limit, req.Icon)
	toJSON(w, http.StatusCreated, cat)
}

func (s *Server) patchCategory(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, core.ErrEmptyName.Error())
		return
	}
	s.svc.UpdateCategory(chi.URLParam(r, "id"), req.Name, req.Icon)
	w.WriteHeader(http.StatusNoContent)
}

// deleteCategory always answers 204. Protected categories are silently kept;
// clients reconcile against the category list, not the delete response.
func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	s.svc.DeleteCategory(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putCategoryLimit(w http.ResponseWriter, r *http.Request) {
	var req updateLimitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	s.svc.UpdateCategoryLimit(chi.URLParam(r, "id"), req.Limit)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putCategoryLimits(w http.ResponseWriter, r *http.Request) {
	var req updateLimitsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	s.svc.UpdateAllCategoryLimits(req.Limits)
	w.WriteHeader(http.StatusNoContent)
}
