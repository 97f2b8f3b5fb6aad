package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type SubmitVoteInput struct {
	ElectionID   string
	CandidateID  string
	VoterAddress string
	VotePayload  json.RawMessage
	Signature    string
}

type VoteService interface {
	SubmitVote(ctx context.Context, input SubmitVoteInput) (*domain.VoteReceipt, error)
	VerifyReceipt(ctx context.Context, transactionHash, verificationCode string) (*domain.ReceiptVerification, error)
}

type ResultService interface {
	GetResults(ctx context.Context, electionID uuid.UUID) (*domain.ElectionResults, error)
}

type Eligibility struct {
	Allowed     bool
	Reason      domain.EligibilityReason
	EvaluatedAt time.Time
}

type CandidateCheck struct {
	Allowed bool
	Reason  domain.CandidateReason
}

type EligibilityChecker interface {
	CheckEligibility(ctx context.Context, electionID uuid.UUID) (Eligibility, *domain.Election, error)
	CheckCandidate(ctx context.Context, candidateID, electionID uuid.UUID) (CandidateCheck, error)
}
