package httpapi

import (
	"net/http"

	"spokoj/internal/core"
)

// queryMonth resolves the optional month parameter, defaulting to the
// current wall-clock month.
func (s *Server) queryMonth(r *http.Request) (string, bool) {
	month := r.URL.Query().Get("month")
	if month == "" {
		return s.svc.CurrentMonthID(), true
	}
	return month, core.ValidMonthID(month)
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	month, ok := s.queryMonth(r)
	if !ok {
		writeError(w, http.StatusBadRequest, core.ErrInvalidMonthID.Error())
		return
	}
	toJSON(w, http.StatusOK, toDashboardResponse(s.svc.Summary(month)))
}

func (s *Server) getStatistics(w http.ResponseWriter, r *http.Request) {
	month, ok := s.queryMonth(r)
	if !ok {
		writeError(w, http.StatusBadRequest, core.ErrInvalidMonthID.Error())
		return
	}
	toJSON(w, http.StatusOK, toStatisticsResponse(s.svc.Review(month)))
}
