// Package httpapi exposes the budgeting service over a JSON API using Chi.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spokoj/internal/budget"
)

// Options carries the server's cross-cutting settings.
type Options struct {
	// AllowedEmails restricts mutating access to these addresses. Empty
	// means the allow-list is disabled.
	AllowedEmails []string

	// Ready reports whether the persistence pipeline is reachable. Nil
	// means always ready.
	Ready func() bool

	Logger *slog.Logger
}

// Server wires handlers and middleware around the budget service.
type Server struct {
	svc     *budget.Service
	log     *slog.Logger
	ready   func() bool
	allowed map[string]struct{}
	limiter *rateLimiter
	rt      *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(svc *budget.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allowed := make(map[string]struct{}, len(opts.AllowedEmails))
	for _, email := range opts.AllowedEmails {
		allowed[email] = struct{}{}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(securityHeaders)
	r.Use(metricsMiddleware)

	s := &Server{svc: svc, log: logger, ready: opts.Ready, allowed: allowed, limiter: newRateLimiter(), rt: r}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

func (s *Server) routes() {
	s.rt.Get("/healthz", s.handleHealth)
	s.rt.Get("/readyz", s.handleReady)
	s.rt.Handle("/metrics", promhttp.Handler())

	s.rt.Route("/v1", func(r chi.Router) {
		r.Use(s.requireAllowedEmail)
		r.Use(s.rateLimit)

		r.Get("/categories", s.listCategories)
		r.Post("/categories", s.postCategory)
		r.Patch("/categories/{id}", s.patchCategory)
		r.Delete("/categories/{id}", s.deleteCategory)
		r.Put("/categories/{id}/limit", s.putCategoryLimit)
		r.Put("/categories/limits", s.putCategoryLimits)

		r.Get("/months/{id}", s.getMonthConfig)
		r.Put("/months/{id}", s.putMonthConfig)
		r.Get("/months/{id}/plan", s.getPlan)
		r.Post("/months/{id}/plan", s.postPlan)

		r.Get("/transactions", s.listTransactions)
		r.Post("/transactions", s.postTransaction)
		r.Post("/transactions/import", s.importTransactions)
		r.Patch("/transactions/{id}", s.patchTransaction)
		r.Delete("/transactions/{id}", s.deleteTransaction)

		r.Get("/merchants", s.listMerchants)
		r.Put("/merchants", s.putMerchant)
		r.Get("/merchants/match", s.matchMerchant)

		r.Get("/dashboard", s.getDashboard)
		r.Get("/statistics", s.getStatistics)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports degraded (not failing) persistence: local writes still
// succeed while the syncer is offline, so readiness stays 200 with a flag.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	online := true
	if s.ready != nil {
		online = s.ready()
	}
	toJSON(w, http.StatusOK, readyResponse{Status: "ready", SyncOnline: online})
}
