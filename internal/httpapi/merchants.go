package httpapi

import (
	"net/http"

	"spokoj/internal/core"
)

func (s *Server) listMerchants(w http.ResponseWriter, _ *http.Request) {
	toJSON(w, http.StatusOK, s.svc.MerchantMappings())
}

func (s *Server) putMerchant(w http.ResponseWriter, r *http.Request) {
	var m core.MerchantMapping
	if err := decode(r, &m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := m.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.svc.SaveMerchantMapping(m)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) matchMerchant(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeError(w, http.StatusBadRequest, "missing text parameter")
		return
	}
	id, ok := s.svc.CategoryForMerchant(text)
	toJSON(w, http.StatusOK, matchResponse{CategoryID: id, Matched: ok})
}
