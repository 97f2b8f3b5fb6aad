package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

type Handlers struct {
	Votes     *VoteHandler
	Elections *ElectionHandler
	Admin     *AdminHandler
	Auth      *AdminAuth
	Metrics   http.Handler
	Ping      Pinger
}

func NewHandler(logger zerolog.Logger, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(h.Ping))
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Post("/votes", h.Votes.SubmitVote)
		r.Get("/receipts/{hash}", h.Votes.VerifyReceipt)

		r.Route("/elections", func(r chi.Router) {
			r.Get("/", h.Elections.ListElections)
			r.Get("/{id}", h.Elections.GetElection)
			r.Get("/{id}/candidates", h.Elections.ListCandidates)
			r.Get("/{id}/results", h.Elections.GetResults)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.Auth.RequireAdmin)
			r.Post("/elections", h.Admin.CreateElection)
			r.Patch("/elections/{id}/status", h.Admin.UpdateElectionStatus)
			r.Post("/elections/{id}/candidates", h.Admin.AddCandidate)
			r.Patch("/candidates/{id}/active", h.Admin.SetCandidateActive)
			r.Get("/audit-logs", h.Admin.ListAuditLogs)
		})
	})

	return r
}

func healthz(ping Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "detail": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
