package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type rejectionResponse struct {
	Error string `json:"error"`
	*domain.EligibilityError
}

type candidateRejectionResponse struct {
	Error  string                 `json:"error"`
	Reason domain.CandidateReason `json:"reason"`
}

type failureResponse struct {
	ErrorKind string `json:"errorKind"`
	Detail    string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Error: code, Detail: detail})
}

// writeServiceError maps core errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		rejection *domain.EligibilityError
		candidate *domain.CandidateError
		failure   *domain.PipelineError
	)

	switch {
	case errors.As(err, &rejection):
		writeJSON(w, http.StatusBadRequest, rejectionResponse{Error: "election_not_accepting_votes", EligibilityError: rejection})
	case errors.As(err, &candidate):
		writeJSON(w, http.StatusBadRequest, candidateRejectionResponse{Error: "invalid_candidate", Reason: candidate.Reason})
	case errors.As(err, &failure):
		writeJSON(w, http.StatusInternalServerError, failureResponse{ErrorKind: failure.ErrorKind(), Detail: failure.Detail})
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrElectionNotFound),
		errors.Is(err, domain.ErrCandidateNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, failureResponse{ErrorKind: "StorageUnavailable", Detail: err.Error()})
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
