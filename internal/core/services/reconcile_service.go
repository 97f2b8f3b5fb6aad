package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultReconcileBatchSize = 500
	reconcileConcurrency      = 8
)

type reconcileService struct {
	ledgerRepo ports.LedgerRepository
	voteRepo   ports.VoteRepository
	auditRepo  ports.AuditRepository
	tokenizer  *VoterTokenizer
	logger     zerolog.Logger
	metrics    *Metrics
	batchSize  int
}

func NewReconcileService(
	ledgerRepo ports.LedgerRepository,
	voteRepo ports.VoteRepository,
	auditRepo ports.AuditRepository,
	tokenizer *VoterTokenizer,
	logger zerolog.Logger,
	metrics *Metrics,
	batchSize int,
) ports.ReconcileService {
	if batchSize <= 0 {
		batchSize = DefaultReconcileBatchSize
	}
	return &reconcileService{
		ledgerRepo: ledgerRepo,
		voteRepo:   voteRepo,
		auditRepo:  auditRepo,
		tokenizer:  tokenizer,
		logger:     logger,
		metrics:    metrics,
		batchSize:  batchSize,
	}
}

// Reconcile flags confirmed transactions that have no vote record. With
// backfill set the missing vote record is written, its token derived from
// the transaction's voter address and timestamp. Flagged counts only flags
// that were persisted.
func (s *reconcileService) Reconcile(ctx context.Context, backfill bool) (ports.ReconcileReport, error) {
	orphans, err := s.ledgerRepo.ListOrphaned(ctx, s.batchSize)
	if err != nil {
		return ports.ReconcileReport{}, fmt.Errorf("failed to list orphaned transactions: %w", err)
	}
	s.metrics.incOrphans(len(orphans))

	var flagged, backfilled atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)

	for _, tx := range orphans {
		tx := tx
		g.Go(func() error {
			if s.flag(gctx, tx, backfill) {
				flagged.Add(1)
			}
			if !backfill {
				return nil
			}

			token, err := s.tokenizer.Token(tx.VoterAddress, tx.CreatedAt)
			if err != nil {
				return err
			}
			vote := &domain.Vote{
				ID:                 uuid.New(),
				TransactionID:      tx.ID,
				ElectionID:         tx.ElectionID,
				CandidateID:        tx.CandidateID,
				VoterToken:         token,
				VerificationStatus: domain.VerificationStatusVerified,
				CreatedAt:          tx.CreatedAt,
			}
			if err := s.voteRepo.InsertVote(gctx, vote); err != nil {
				return fmt.Errorf("failed to backfill vote for transaction %s: %w", tx.Hash, err)
			}
			backfilled.Add(1)
			s.logger.Info().Str("transaction_hash", tx.Hash).Msg("backfilled vote record")
			return nil
		})
	}

	err = g.Wait()
	report := ports.ReconcileReport{
		Scanned:    len(orphans),
		Flagged:    int(flagged.Load()),
		Backfilled: int(backfilled.Load()),
	}
	return report, err
}

// flag saves the ORPHANED_TRANSACTION event synchronously and reports
// whether it was persisted.
func (s *reconcileService) flag(ctx context.Context, tx *domain.Transaction, backfill bool) bool {
	event := &domain.AuditEvent{
		ID:           uuid.New(),
		ActorType:    domain.ActorSystem,
		Action:       domain.ActionOrphanedTransaction,
		ResourceType: domain.ResourceTransaction,
		ResourceID:   tx.Hash,
		Details: map[string]any{
			"transaction_id": tx.ID.String(),
			"election_id":    tx.ElectionID.String(),
			"candidate_id":   tx.CandidateID.String(),
			"created_at":     tx.CreatedAt,
			"backfill":       backfill,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.auditRepo.Save(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("transaction_hash", tx.Hash).Msg("failed to persist orphaned transaction flag")
		s.metrics.incAuditFailed()
		return false
	}
	return true
}
