package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type ElectionHandler struct {
	elections ports.ElectionService
	results   ports.ResultService
}

func NewElectionHandler(elections ports.ElectionService, results ports.ResultService) *ElectionHandler {
	return &ElectionHandler{
		elections: elections,
		results:   results,
	}
}

func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	elections, err := h.elections.ListElections(r.Context(), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, elections)
}

func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	election, err := h.elections.GetElection(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, election)
}

func (h *ElectionHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	candidates, err := h.elections.ListCandidates(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

func (h *ElectionHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	results, err := h.results.GetResults(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
