package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) ports.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	m := transactionModel{
		ID:           tx.ID.String(),
		TxHash:       tx.Hash,
		ElectionID:   tx.ElectionID.String(),
		CandidateID:  tx.CandidateID.String(),
		VoterAddress: tx.VoterAddress,
		VoteData:     string(tx.Payload),
		Signature:    tx.Signature,
		Status:       string(tx.Status),
		CreatedAt:    tx.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to insert transaction: %w", translateError(err))
	}
	return nil
}

func (r *ledgerRepository) GetByHash(ctx context.Context, hash string) (*domain.Transaction, error) {
	var m transactionModel
	if err := r.db.WithContext(ctx).First(&m, "tx_hash = ?", hash).Error; err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	return m.toDomain(), nil
}

func (r *ledgerRepository) HasVoted(ctx context.Context, electionID uuid.UUID, voterAddress string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&transactionModel{}).
		Where("election_id = ? AND voter_address = ?", electionID.String(), voterAddress).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) ListOrphaned(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	var models []transactionModel
	err := r.db.WithContext(ctx).
		Table("transactions AS t").
		Select("t.*").
		Joins("LEFT JOIN votes v ON v.transaction_id = t.id").
		Where("t.status = ? AND v.id IS NULL", string(domain.TransactionStatusConfirmed)).
		Order("t.created_at").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned transactions: %w", err)
	}
	txs := make([]*domain.Transaction, 0, len(models))
	for _, m := range models {
		txs = append(txs, m.toDomain())
	}
	return txs, nil
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) ports.VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) InsertVote(ctx context.Context, vote *domain.Vote) error {
	m := voteModel{
		ID:                 vote.ID.String(),
		TransactionID:      vote.TransactionID.String(),
		ElectionID:         vote.ElectionID.String(),
		CandidateID:        vote.CandidateID.String(),
		VoterToken:         vote.VoterToken,
		VerificationStatus: string(vote.VerificationStatus),
		CreatedAt:          vote.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to save vote: %w", translateError(err))
	}
	return nil
}

func (r *voteRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*domain.Vote, error) {
	var m voteModel
	if err := r.db.WithContext(ctx).First(&m, "transaction_id = ?", transactionID.String()).Error; err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return m.toDomain(), nil
}

func (r *voteRepository) CountVerified(ctx context.Context, electionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("election_id = ? AND verification_status = ?", electionID.String(), string(domain.VerificationStatusVerified)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

func (r *voteRepository) TallyVerified(ctx context.Context, electionID uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		CandidateID string
		Total       int64
	}
	err := r.db.WithContext(ctx).Model(&voteModel{}).
		Select("candidate_id, COUNT(*) AS total").
		Where("election_id = ? AND verification_status = ?", electionID.String(), string(domain.VerificationStatusVerified)).
		Group("candidate_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}

	tally := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.CandidateID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse candidate id %q: %w", row.CandidateID, err)
		}
		tally[id] = row.Total
	}
	return tally, nil
}
