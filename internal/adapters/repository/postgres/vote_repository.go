package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type voteRepository struct {
	db dbtx
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) InsertVote(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (id, transaction_id, election_id, candidate_id, voter_token, verification_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		vote.ID, vote.TransactionID, vote.ElectionID, vote.CandidateID,
		vote.VoterToken, vote.VerificationStatus, vote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save vote: %w", translateError(err))
	}
	return nil
}

func (r *voteRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*domain.Vote, error) {
	query := `
		SELECT id, transaction_id, election_id, candidate_id, voter_token, verification_status, created_at
		FROM votes
		WHERE transaction_id = $1
	`
	var v domain.Vote
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&v.ID, &v.TransactionID, &v.ElectionID, &v.CandidateID, &v.VoterToken, &v.VerificationStatus, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &v, nil
}

func (r *voteRepository) CountVerified(ctx context.Context, electionID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM votes WHERE election_id = $1 AND verification_status = $2`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, electionID, domain.VerificationStatusVerified).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

func (r *voteRepository) TallyVerified(ctx context.Context, electionID uuid.UUID) (map[uuid.UUID]int64, error) {
	query := `
		SELECT candidate_id, COUNT(*)
		FROM votes
		WHERE election_id = $1 AND verification_status = $2
		GROUP BY candidate_id
	`
	rows, err := r.db.QueryContext(ctx, query, electionID, domain.VerificationStatusVerified)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	defer rows.Close()

	tally := make(map[uuid.UUID]int64)
	for rows.Next() {
		var candidateID uuid.UUID
		var count int64
		if err := rows.Scan(&candidateID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tally[candidateID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tally: %w", err)
	}
	return tally, nil
}
