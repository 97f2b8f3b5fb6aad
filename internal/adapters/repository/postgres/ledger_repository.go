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

type ledgerRepository struct {
	db dbtx
}

func NewLedgerRepository(db *sql.DB) ports.LedgerRepository {
	return &ledgerRepository{
		db: db,
	}
}

func (r *ledgerRepository) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, tx_hash, election_id, candidate_id, voter_address, vote_data, signature, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.Hash, tx.ElectionID, tx.CandidateID, tx.VoterAddress,
		[]byte(tx.Payload), tx.Signature, tx.Status, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", translateError(err))
	}
	return nil
}

func (r *ledgerRepository) GetByHash(ctx context.Context, hash string) (*domain.Transaction, error) {
	query := `
		SELECT id, tx_hash, election_id, candidate_id, voter_address, vote_data, signature, status, created_at
		FROM transactions
		WHERE tx_hash = $1
	`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, hash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

func (r *ledgerRepository) HasVoted(ctx context.Context, electionID uuid.UUID, voterAddress string) (bool, error) {
	query := `SELECT 1 FROM transactions WHERE election_id = $1 AND voter_address = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, electionID, voterAddress).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return true, nil
}

func (r *ledgerRepository) ListOrphaned(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	query := `
		SELECT t.id, t.tx_hash, t.election_id, t.candidate_id, t.voter_address, t.vote_data, t.signature, t.status, t.created_at
		FROM transactions t
		LEFT JOIN votes v ON v.transaction_id = t.id
		WHERE t.status = $1 AND v.id IS NULL
		ORDER BY t.created_at
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, domain.TransactionStatusConfirmed, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var payload []byte
	err := row.Scan(
		&tx.ID, &tx.Hash, &tx.ElectionID, &tx.CandidateID, &tx.VoterAddress,
		&payload, &tx.Signature, &tx.Status, &tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Payload = payload
	return &tx, nil
}
