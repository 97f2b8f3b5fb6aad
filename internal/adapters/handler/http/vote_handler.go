package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type submitVoteRequest struct {
	ElectionID   string          `json:"electionId"`
	CandidateID  string          `json:"candidateId"`
	VoterAddress string          `json:"voterAddress"`
	VotePayload  json.RawMessage `json:"votePayload"`
	Signature    string          `json:"signature"`
}

type submitVoteResponse struct {
	TransactionHash string              `json:"transactionHash"`
	Receipt         *domain.VoteReceipt `json:"receipt"`
}

func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req submitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}

	receipt, err := h.service.SubmitVote(r.Context(), ports.SubmitVoteInput{
		ElectionID:   req.ElectionID,
		CandidateID:  req.CandidateID,
		VoterAddress: req.VoterAddress,
		VotePayload:  req.VotePayload,
		Signature:    req.Signature,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitVoteResponse{
		TransactionHash: receipt.TransactionHash,
		Receipt:         receipt,
	})
}

func (h *VoteHandler) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	code := r.URL.Query().Get("code")

	verification, err := h.service.VerifyReceipt(r.Context(), hash, code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verification)
}
