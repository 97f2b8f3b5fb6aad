package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const electionPageSize = 10

type electionService struct {
	electionRepo  ports.ElectionRepository
	candidateRepo ports.CandidateRepository
	audit         ports.AuditSink
	now           func() time.Time
}

func NewElectionService(electionRepo ports.ElectionRepository, candidateRepo ports.CandidateRepository, audit ports.AuditSink) ports.ElectionService {
	return &electionService{
		electionRepo:  electionRepo,
		candidateRepo: candidateRepo,
		audit:         audit,
		now:           time.Now,
	}
}

func (s *electionService) CreateElection(ctx context.Context, input ports.CreateElectionInput) (*domain.Election, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", domain.ErrInvalidInput)
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", domain.ErrInvalidInput)
	}

	status := input.Status
	if status == "" {
		status = domain.ElectionStatusDraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	now := s.now()
	election := &domain.Election{
		ID:          uuid.New(),
		Title:       title,
		Description: input.Description,
		Status:      status,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.electionRepo.Save(ctx, election); err != nil {
		return nil, err
	}

	s.recordAdmin(ctx, input.ActorID, domain.ActionElectionCreated, domain.ResourceElection, election.ID, map[string]any{
		"title":  election.Title,
		"status": string(election.Status),
	})
	return election, nil
}

func (s *electionService) GetElection(ctx context.Context, id uuid.UUID) (*domain.Election, error) {
	return s.electionRepo.GetByID(ctx, id)
}

func (s *electionService) ListElections(ctx context.Context, page int) ([]*domain.Election, error) {
	if page < 1 {
		page = 1
	}
	return s.electionRepo.List(ctx, electionPageSize, (page-1)*electionPageSize)
}

func (s *electionService) UpdateElectionStatus(ctx context.Context, id uuid.UUID, status domain.ElectionStatus, actorID string) (*domain.Election, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	election, err := s.electionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := election.Status

	if err := s.electionRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	election.Status = status
	election.UpdatedAt = s.now()

	s.recordAdmin(ctx, actorID, domain.ActionElectionUpdated, domain.ResourceElection, id, map[string]any{
		"previous_status": string(previous),
		"status":          string(status),
	})
	return election, nil
}

func (s *electionService) AddCandidate(ctx context.Context, input ports.AddCandidateInput) (*domain.Candidate, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: candidate name is required", domain.ErrInvalidInput)
	}

	if _, err := s.electionRepo.GetByID(ctx, input.ElectionID); err != nil {
		return nil, err
	}

	candidate := &domain.Candidate{
		ID:         uuid.New(),
		ElectionID: input.ElectionID,
		Name:       name,
		Party:      input.Party,
		PhotoURL:   input.PhotoURL,
		Bio:        input.Bio,
		IsActive:   true,
		CreatedAt:  s.now(),
	}
	if err := s.candidateRepo.Save(ctx, candidate); err != nil {
		return nil, err
	}

	s.recordAdmin(ctx, input.ActorID, domain.ActionCandidateCreated, domain.ResourceCandidate, candidate.ID, map[string]any{
		"election_id": input.ElectionID.String(),
		"name":        candidate.Name,
	})
	return candidate, nil
}

func (s *electionService) ListCandidates(ctx context.Context, electionID uuid.UUID) ([]*domain.Candidate, error) {
	if _, err := s.electionRepo.GetByID(ctx, electionID); err != nil {
		return nil, err
	}
	return s.candidateRepo.ListByElection(ctx, electionID, false)
}

// SetCandidateActive flips the soft active flag. Candidates are never
// deleted so past votes stay attributable.
func (s *electionService) SetCandidateActive(ctx context.Context, id uuid.UUID, active bool, actorID string) (*domain.Candidate, error) {
	candidate, err := s.candidateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCandidateNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	if err := s.candidateRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	candidate.IsActive = active

	s.recordAdmin(ctx, actorID, domain.ActionCandidateUpdated, domain.ResourceCandidate, id, map[string]any{
		"election_id": candidate.ElectionID.String(),
		"is_active":   active,
	})
	return candidate, nil
}

func (s *electionService) recordAdmin(ctx context.Context, actorID, action, resourceType string, resourceID uuid.UUID, details map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, domain.AuditEvent{
		ActorType:    domain.ActorAdmin,
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID.String(),
		Details:      details,
	})
}
