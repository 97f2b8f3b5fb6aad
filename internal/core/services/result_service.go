package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type resultService struct {
	electionRepo  ports.ElectionRepository
	candidateRepo ports.CandidateRepository
	voteRepo      ports.VoteRepository
	logger        zerolog.Logger
}

func NewResultService(electionRepo ports.ElectionRepository, candidateRepo ports.CandidateRepository, voteRepo ports.VoteRepository, logger zerolog.Logger) ports.ResultService {
	return &resultService{
		electionRepo:  electionRepo,
		candidateRepo: candidateRepo,
		voteRepo:      voteRepo,
		logger:        logger,
	}
}

// GetResults tallies verified votes for the active candidates of an
// election. TotalVotes is the sum of the returned counts.
func (s *resultService) GetResults(ctx context.Context, electionID uuid.UUID) (*domain.ElectionResults, error) {
	if _, err := s.electionRepo.GetByID(ctx, electionID); err != nil {
		if errors.Is(err, domain.ErrElectionNotFound) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	candidates, err := s.candidateRepo.ListByElection(ctx, electionID, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	tally, err := s.voteRepo.TallyVerified(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	results := &domain.ElectionResults{
		ElectionID: electionID,
		Candidates: make([]domain.CandidateResult, 0, len(candidates)),
	}
	for _, c := range candidates {
		count := tally[c.ID]
		results.TotalVotes += count
		results.Candidates = append(results.Candidates, domain.CandidateResult{
			ID:        c.ID,
			Name:      c.Name,
			Party:     c.Party,
			PhotoURL:  c.PhotoURL,
			VoteCount: count,
		})
	}

	for i := range results.Candidates {
		results.Candidates[i].Percentage = percentage(results.Candidates[i].VoteCount, results.TotalVotes)
	}

	sort.SliceStable(results.Candidates, func(i, j int) bool {
		a, b := results.Candidates[i], results.Candidates[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return a.ID.String() < b.ID.String()
	})

	var verified int64
	for _, n := range tally {
		verified += n
	}
	if verified != results.TotalVotes {
		s.logger.Warn().
			Str("election_id", electionID.String()).
			Int64("verified_votes", verified).
			Int64("tallied_votes", results.TotalVotes).
			Msg("verified votes recorded for candidates outside the active set")
	}

	return results, nil
}

// percentage is count*100/total rounded to two decimals, or nil for an
// empty election.
func percentage(count, total int64) *float64 {
	if total == 0 {
		return nil
	}
	p, _ := decimal.NewFromInt(count).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(total), 2).
		Float64()
	return &p
}
