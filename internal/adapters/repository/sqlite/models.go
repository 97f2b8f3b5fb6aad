package sqlite

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type electionModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"not null;default:''"`
	Status      string `gorm:"size:20;not null"`
	StartDate   time.Time
	EndDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (electionModel) TableName() string { return "elections" }

func (m electionModel) toDomain() *domain.Election {
	return &domain.Election{
		ID:          uuid.MustParse(m.ID),
		Title:       m.Title,
		Description: m.Description,
		Status:      domain.ElectionStatus(m.Status),
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type candidateModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	ElectionID string `gorm:"size:36;not null;index"`
	Name       string `gorm:"size:255;not null"`
	Party      string
	PhotoURL   string
	Bio        string
	IsActive   bool `gorm:"not null"`
	CreatedAt  time.Time
}

func (candidateModel) TableName() string { return "candidates" }

func (m candidateModel) toDomain() *domain.Candidate {
	return &domain.Candidate{
		ID:         uuid.MustParse(m.ID),
		ElectionID: uuid.MustParse(m.ElectionID),
		Name:       m.Name,
		Party:      m.Party,
		PhotoURL:   m.PhotoURL,
		Bio:        m.Bio,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
	}
}

type transactionModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	TxHash       string `gorm:"column:tx_hash;size:64;not null;uniqueIndex:transactions_tx_hash_key;check:chk_transactions_tx_hash_length,length(tx_hash) <= 64"`
	ElectionID   string `gorm:"size:36;not null;index:idx_transactions_election_voter"`
	CandidateID  string `gorm:"size:36;not null"`
	VoterAddress string `gorm:"size:255;not null;index:idx_transactions_election_voter"`
	VoteData     string `gorm:"not null"`
	Signature    string `gorm:"not null"`
	Status       string `gorm:"size:20;not null"`
	CreatedAt    time.Time
}

func (transactionModel) TableName() string { return "transactions" }

func (m transactionModel) toDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:           uuid.MustParse(m.ID),
		Hash:         m.TxHash,
		ElectionID:   uuid.MustParse(m.ElectionID),
		CandidateID:  uuid.MustParse(m.CandidateID),
		VoterAddress: m.VoterAddress,
		Payload:      json.RawMessage(m.VoteData),
		Signature:    m.Signature,
		Status:       domain.TransactionStatus(m.Status),
		CreatedAt:    m.CreatedAt,
	}
}

type voteModel struct {
	ID                 string `gorm:"primaryKey;size:36"`
	TransactionID      string `gorm:"size:36;not null;uniqueIndex"`
	ElectionID         string `gorm:"size:36;not null;index:idx_votes_election_status"`
	CandidateID        string `gorm:"size:36;not null"`
	VoterToken         string `gorm:"size:64;not null"`
	VerificationStatus string `gorm:"size:20;not null;index:idx_votes_election_status"`
	CreatedAt          time.Time
}

func (voteModel) TableName() string { return "votes" }

func (m voteModel) toDomain() *domain.Vote {
	return &domain.Vote{
		ID:                 uuid.MustParse(m.ID),
		TransactionID:      uuid.MustParse(m.TransactionID),
		ElectionID:         uuid.MustParse(m.ElectionID),
		CandidateID:        uuid.MustParse(m.CandidateID),
		VoterToken:         m.VoterToken,
		VerificationStatus: domain.VerificationStatus(m.VerificationStatus),
		CreatedAt:          m.CreatedAt,
	}
}

type auditModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	ActorType    string `gorm:"size:20;not null"`
	ActorID      string
	Action       string `gorm:"size:64;not null"`
	ResourceType string `gorm:"size:64;not null"`
	ResourceID   string
	Details      string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"index"`
}

func (auditModel) TableName() string { return "audit_logs" }
