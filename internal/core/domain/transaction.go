package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// TransactionHashLength is the fixed capacity of the ledger's tx_hash column.
	TransactionHashLength = 64
	TransactionHashPrefix = "0x"

	// MaxVoterAddressLength is the capacity of the ledger's voter_address column.
	MaxVoterAddressLength = 255
)

type TransactionStatus string

const TransactionStatusConfirmed TransactionStatus = "confirmed"

// Transaction is one ledger entry. It is written once and never mutated.
type Transaction struct {
	ID           uuid.UUID         `json:"id"`
	Hash         string            `json:"transaction_hash"`
	ElectionID   uuid.UUID         `json:"election_id"`
	CandidateID  uuid.UUID         `json:"candidate_id"`
	VoterAddress string            `json:"voter_address"`
	Payload      json.RawMessage   `json:"vote_data"`
	Signature    string            `json:"signature"`
	Status       TransactionStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}
