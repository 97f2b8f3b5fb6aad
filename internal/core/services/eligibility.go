package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type eligibilityChecker struct {
	electionRepo  ports.ElectionRepository
	candidateRepo ports.CandidateRepository
	now           func() time.Time
}

func NewEligibilityChecker(electionRepo ports.ElectionRepository, candidateRepo ports.CandidateRepository, now func() time.Time) ports.EligibilityChecker {
	if now == nil {
		now = time.Now
	}
	return &eligibilityChecker{
		electionRepo:  electionRepo,
		candidateRepo: candidateRepo,
		now:           now,
	}
}

// CheckEligibility evaluates the election window before its status, so an
// election that has not started reports not_started whatever its status is.
func (c *eligibilityChecker) CheckEligibility(ctx context.Context, electionID uuid.UUID) (ports.Eligibility, *domain.Election, error) {
	election, err := c.electionRepo.GetByID(ctx, electionID)
	if err != nil {
		if errors.Is(err, domain.ErrElectionNotFound) {
			return ports.Eligibility{}, nil, err
		}
		return ports.Eligibility{}, nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	return evaluateElection(election, c.now()), election, nil
}

func evaluateElection(election *domain.Election, now time.Time) ports.Eligibility {
	result := ports.Eligibility{EvaluatedAt: now}
	switch {
	case now.Before(election.StartDate):
		result.Reason = domain.ReasonNotStarted
	case now.After(election.EndDate):
		result.Reason = domain.ReasonEnded
	case election.Status != domain.ElectionStatusActive:
		result.Reason = domain.ReasonInactive
	default:
		result.Allowed = true
	}
	return result
}

func (c *eligibilityChecker) CheckCandidate(ctx context.Context, candidateID, electionID uuid.UUID) (ports.CandidateCheck, error) {
	candidate, err := c.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, domain.ErrCandidateNotFound) {
			return ports.CandidateCheck{Reason: domain.ReasonInvalidCandidate}, nil
		}
		return ports.CandidateCheck{}, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	if candidate.ElectionID != electionID {
		return ports.CandidateCheck{Reason: domain.ReasonCandidateWrongElection}, nil
	}
	if !candidate.IsActive {
		return ports.CandidateCheck{Reason: domain.ReasonCandidateInactive}, nil
	}
	return ports.CandidateCheck{Allowed: true}, nil
}
