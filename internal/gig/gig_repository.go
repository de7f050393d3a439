package gig

import (
	"context"
	"time"

	"gigwork-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GigRepository interface {
	Create(ctx context.Context, gig *models.Gig) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Gig, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Gig, error)
	// List returns a page of gigs ordered newest first, keyed by a
	// (created_at, id) cursor so pages stay stable while new gigs arrive.
	List(ctx context.Context, limit int, category *models.Category, cursorCreatedAt *time.Time, cursorID *uuid.UUID) ([]*models.Gig, error)
	Update(ctx context.Context, gig *models.Gig) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type gigRepository struct {
	db *gorm.DB
}

func NewGigRepository(db *gorm.DB) GigRepository {
	return &gigRepository{db: db}
}

func (r *gigRepository) Create(ctx context.Context, gig *models.Gig) error {
	return r.db.WithContext(ctx).Create(gig).Error
}

func (r *gigRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	err := r.db.WithContext(ctx).First(&gig, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &gig, nil
}

func (r *gigRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Gig, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var gigs []*models.Gig
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&gigs).Error
	return gigs, err
}

func (r *gigRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Gig, error) {
	var gigs []*models.Gig
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&gigs).Error
	return gigs, err
}

func (r *gigRepository) List(ctx context.Context, limit int, category *models.Category, cursorCreatedAt *time.Time, cursorID *uuid.UUID) ([]*models.Gig, error) {
	query := r.db.WithContext(ctx).Model(&models.Gig{})

	if category != nil {
		query = query.Where("category = ?", *category)
	}
	if cursorCreatedAt != nil && cursorID != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			*cursorCreatedAt, *cursorCreatedAt, *cursorID,
		)
	}

	var gigs []*models.Gig
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&gigs).Error
	return gigs, err
}

func (r *gigRepository) Update(ctx context.Context, gig *models.Gig) error {
	return r.db.WithContext(ctx).Save(gig).Error
}

func (r *gigRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Gig{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *gigRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Gig{}, "user_id = ?", userID).Error
}
