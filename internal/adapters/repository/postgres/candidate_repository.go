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

type candidateRepository struct {
	db *sql.DB
}

func NewCandidateRepository(db *sql.DB) ports.CandidateRepository {
	return &candidateRepository{
		db: db,
	}
}

func (r *candidateRepository) Save(ctx context.Context, c *domain.Candidate) error {
	query := `
		INSERT INTO candidates (id, election_id, name, party, photo_url, bio, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.ElectionID, c.Name, c.Party, c.PhotoURL, c.Bio, c.IsActive, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	query := `
		SELECT id, election_id, name, party, photo_url, bio, is_active, created_at
		FROM candidates
		WHERE id = $1
	`
	var c domain.Candidate
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.ElectionID, &c.Name, &c.Party, &c.PhotoURL, &c.Bio, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return &c, nil
}

func (r *candidateRepository) ListByElection(ctx context.Context, electionID uuid.UUID, activeOnly bool) ([]*domain.Candidate, error) {
	query := `
		SELECT id, election_id, name, party, photo_url, bio, is_active, created_at
		FROM candidates
		WHERE election_id = $1 AND ($2 = FALSE OR is_active)
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, electionID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Party, &c.PhotoURL, &c.Bio, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE candidates SET is_active = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrCandidateNotFound
	}
	return nil
}
