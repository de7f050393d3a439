package portfolio

import (
	"context"
	"errors"

	"gigwork-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PortfolioRepository interface {
	Create(ctx context.Context, item *models.Portfolio) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Portfolio, error)
	FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*models.Portfolio, error)
	Update(ctx context.Context, item *models.Portfolio) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type portfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) Create(ctx context.Context, item *models.Portfolio) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *portfolioRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Portfolio, error) {
	var item models.Portfolio
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *portfolioRepository) FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*models.Portfolio, error) {
	var items []*models.Portfolio
	err := r.db.WithContext(ctx).
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *portfolioRepository) Update(ctx context.Context, item *models.Portfolio) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *portfolioRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Portfolio{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
