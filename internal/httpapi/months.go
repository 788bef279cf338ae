package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"spokoj/internal/core"
)

func monthID(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	return id, core.ValidMonthID(id)
}

func (s *Server) getMonthConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := monthID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, core.ErrInvalidMonthID.Error())
		return
	}
	toJSON(w, http.StatusOK, s.svc.GetCreateMonthConfig(id))
}

func (s *Server) putMonthConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := monthID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, core.ErrInvalidMonthID.Error())
		return
	}
	var cfg core.MonthConfig
	if err := decode(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	cfg.ID = id
	if cfg.SavingsGoals == nil {
		cfg.SavingsGoals = []core.SavingsGoal{}
	}
	s.svc.UpdateMonthConfig(cfg)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := monthID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, core.ErrInvalidMonthID.Error())
		return
	}
	toJSON(w, http.StatusOK, toPlanResponse(s.svc.Plan(id)))
}

// postPlan commits income plus limit edits atomically. An over-allocated
// plan is refused with 422 and the rejected plan in the body, so the client
// can show what still needs trimming.
func (s *Server) postPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := monthID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, core.ErrInvalidMonthID.Error())
		return
	}
	var req commitPlanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	plan, committed := s.svc.CommitPlan(id, req.Income, req.Limits)
	if !committed {
		toJSON(w, http.StatusUnprocessableEntity, toPlanResponse(plan))
		return
	}
	toJSON(w, http.StatusOK, toPlanResponse(plan))
}
