package domain

import (
	"time"

	"github.com/google/uuid"
)

type ActorType string

const (
	ActorVoter  ActorType = "voter"
	ActorAdmin  ActorType = "admin"
	ActorSystem ActorType = "system"
)

const (
	ActionVoteCast            = "VOTE_CAST"
	ActionVoteRejected        = "VOTE_REJECTED"
	ActionTransactionFailed   = "TRANSACTION_FAILED"
	ActionVoteRecordingFailed = "VOTE_RECORDING_FAILED"
	ActionOrphanedTransaction = "ORPHANED_TRANSACTION"
	ActionElectionCreated     = "ELECTION_CREATED"
	ActionElectionUpdated     = "ELECTION_UPDATED"
	ActionCandidateCreated    = "CANDIDATE_CREATED"
	ActionCandidateUpdated    = "CANDIDATE_UPDATED"
)

const (
	ResourceVote        = "vote"
	ResourceTransaction = "transaction"
	ResourceElection    = "election"
	ResourceCandidate   = "candidate"
)

type AuditEvent struct {
	ID           uuid.UUID      `json:"id"`
	ActorType    ActorType      `json:"actor_type"`
	ActorID      string         `json:"actor_id,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Details      map[string]any `json:"details"`
	CreatedAt    time.Time      `json:"created_at"`
}
