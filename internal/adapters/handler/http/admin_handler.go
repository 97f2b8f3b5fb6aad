package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type AdminHandler struct {
	elections ports.ElectionService
	audit     ports.AuditService
}

func NewAdminHandler(elections ports.ElectionService, audit ports.AuditService) *AdminHandler {
	return &AdminHandler{
		elections: elections,
		audit:     audit,
	}
}

type createElectionRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.ElectionStatus `json:"status"`
	StartDate   time.Time             `json:"start_date"`
	EndDate     time.Time             `json:"end_date"`
}

func (h *AdminHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req createElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}

	election, err := h.elections.CreateElection(r.Context(), ports.CreateElectionInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ActorID:     actorID(r),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, election)
}

type updateStatusRequest struct {
	Status domain.ElectionStatus `json:"status"`
}

func (h *AdminHandler) UpdateElectionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}

	election, err := h.elections.UpdateElectionStatus(r.Context(), id, req.Status, actorID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, election)
}

type addCandidateRequest struct {
	Name     string `json:"name"`
	Party    string `json:"party"`
	PhotoURL string `json:"photo_url"`
	Bio      string `json:"bio"`
}

func (h *AdminHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	electionID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req addCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}

	candidate, err := h.elections.AddCandidate(r.Context(), ports.AddCandidateInput{
		ElectionID: electionID,
		Name:       req.Name,
		Party:      req.Party,
		PhotoURL:   req.PhotoURL,
		Bio:        req.Bio,
		ActorID:    actorID(r),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, candidate)
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

func (h *AdminHandler) SetCandidateActive(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "is_active is required")
		return
	}

	candidate, err := h.elections.SetCandidateActive(r.Context(), id, *req.IsActive, actorID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidate)
}

func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	events, err := h.audit.ListEvents(r.Context(), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
