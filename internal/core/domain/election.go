package domain

import (
	"time"

	"github.com/google/uuid"
)

type ElectionStatus string

const (
	ElectionStatusDraft    ElectionStatus = "draft"
	ElectionStatusActive   ElectionStatus = "active"
	ElectionStatusClosed   ElectionStatus = "closed"
	ElectionStatusInactive ElectionStatus = "inactive"
)

// Valid reports whether s is one of the statuses an admin may assign.
func (s ElectionStatus) Valid() bool {
	switch s {
	case ElectionStatusDraft, ElectionStatusActive, ElectionStatusClosed, ElectionStatusInactive:
		return true
	default:
		return false
	}
}

type Election struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      ElectionStatus `json:"status"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Candidate struct {
	ID         uuid.UUID `json:"id"`
	ElectionID uuid.UUID `json:"election_id"`
	Name       string    `json:"name"`
	Party      string    `json:"party,omitempty"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
