package domain

import (
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const VerificationStatusVerified VerificationStatus = "verified"

// Vote is the anonymized counterpart of a confirmed transaction.
type Vote struct {
	ID                 uuid.UUID          `json:"id"`
	TransactionID      uuid.UUID          `json:"transaction_id"`
	ElectionID         uuid.UUID          `json:"election_id"`
	CandidateID        uuid.UUID          `json:"candidate_id"`
	VoterToken         string             `json:"-"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CreatedAt          time.Time          `json:"created_at"`
}

type VoteReceipt struct {
	TransactionID    uuid.UUID `json:"transactionId"`
	TransactionHash  string    `json:"transactionHash"`
	Timestamp        time.Time `json:"timestamp"`
	ElectionID       uuid.UUID `json:"electionId"`
	VerificationCode string    `json:"verificationCode"`
}

type ReceiptVerification struct {
	TransactionHash    string             `json:"transactionHash"`
	ElectionID         uuid.UUID          `json:"electionId"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	RecordedAt         time.Time          `json:"recordedAt"`
	Valid              bool               `json:"valid"`
}
