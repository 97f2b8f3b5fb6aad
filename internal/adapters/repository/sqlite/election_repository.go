package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"gorm.io/gorm"
)

type electionRepository struct {
	db *gorm.DB
}

func NewElectionRepository(db *gorm.DB) ports.ElectionRepository {
	return &electionRepository{db: db}
}

func (r *electionRepository) Save(ctx context.Context, e *domain.Election) error {
	m := electionModel{
		ID:          e.ID.String(),
		Title:       e.Title,
		Description: e.Description,
		Status:      string(e.Status),
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to insert election: %w", err)
	}
	return nil
}

func (r *electionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Election, error) {
	var m electionModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error; err != nil {
		return nil, notFound(err, domain.ErrElectionNotFound)
	}
	return m.toDomain(), nil
}

func (r *electionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Election, error) {
	var models []electionModel
	err := r.db.WithContext(ctx).
		Order("start_date DESC").Order("id").
		Limit(limit).Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list elections: %w", err)
	}
	elections := make([]*domain.Election, 0, len(models))
	for _, m := range models {
		elections = append(elections, m.toDomain())
	}
	return elections, nil
}

func (r *electionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ElectionStatus) error {
	res := r.db.WithContext(ctx).Model(&electionModel{}).
		Where("id = ?", id.String()).
		Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("failed to update election status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrElectionNotFound
	}
	return nil
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) ports.CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Save(ctx context.Context, c *domain.Candidate) error {
	m := candidateModel{
		ID:         c.ID.String(),
		ElectionID: c.ElectionID.String(),
		Name:       c.Name,
		Party:      c.Party,
		PhotoURL:   c.PhotoURL,
		Bio:        c.Bio,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	var m candidateModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error; err != nil {
		return nil, notFound(err, domain.ErrCandidateNotFound)
	}
	return m.toDomain(), nil
}

func (r *candidateRepository) ListByElection(ctx context.Context, electionID uuid.UUID, activeOnly bool) ([]*domain.Candidate, error) {
	q := r.db.WithContext(ctx).Where("election_id = ?", electionID.String())
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var models []candidateModel
	if err := q.Order("created_at").Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	candidates := make([]*domain.Candidate, 0, len(models))
	for _, m := range models {
		candidates = append(candidates, m.toDomain())
	}
	return candidates, nil
}

func (r *candidateRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&candidateModel{}).
		Where("id = ?", id.String()).
		Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update candidate: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCandidateNotFound
	}
	return nil
}
