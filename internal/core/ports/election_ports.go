package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type ElectionRepository interface {
	Save(ctx context.Context, election *domain.Election) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Election, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Election, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ElectionStatus) error
}

type CandidateRepository interface {
	Save(ctx context.Context, candidate *domain.Candidate) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error)
	ListByElection(ctx context.Context, electionID uuid.UUID, activeOnly bool) ([]*domain.Candidate, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type CreateElectionInput struct {
	Title       string
	Description string
	Status      domain.ElectionStatus
	StartDate   time.Time
	EndDate     time.Time
	ActorID     string
}

type AddCandidateInput struct {
	ElectionID uuid.UUID
	Name       string
	Party      string
	PhotoURL   string
	Bio        string
	ActorID    string
}

type ElectionService interface {
	CreateElection(ctx context.Context, input CreateElectionInput) (*domain.Election, error)
	GetElection(ctx context.Context, id uuid.UUID) (*domain.Election, error)
	ListElections(ctx context.Context, page int) ([]*domain.Election, error)
	UpdateElectionStatus(ctx context.Context, id uuid.UUID, status domain.ElectionStatus, actorID string) (*domain.Election, error)
	AddCandidate(ctx context.Context, input AddCandidateInput) (*domain.Candidate, error)
	ListCandidates(ctx context.Context, electionID uuid.UUID) ([]*domain.Candidate, error)
	SetCandidateActive(ctx context.Context, id uuid.UUID, active bool, actorID string) (*domain.Candidate, error)
}
