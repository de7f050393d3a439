package contract

import (
	"context"

	"gigwork-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractRepository interface {
	Create(ctx context.Context, contract *models.Contract) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	FindByGigID(ctx context.Context, gigID uuid.UUID) ([]*models.Contract, error)
	FindByGigIDs(ctx context.Context, gigIDs []uuid.UUID) ([]*models.Contract, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error)
	ExistsForGigAndUser(ctx context.Context, gigID, userID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ContractStatus) (*models.Contract, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type contractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *contractRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByGigID(ctx context.Context, gigID uuid.UUID) ([]*models.Contract, error) {
	var contracts []*models.Contract
	err := r.db.WithContext(ctx).Where("gig_id = ?", gigID).Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindByGigIDs(ctx context.Context, gigIDs []uuid.UUID) ([]*models.Contract, error) {
	if len(gigIDs) == 0 {
		return nil, nil
	}
	var contracts []*models.Contract
	err := r.db.WithContext(ctx).Where("gig_id IN ?", gigIDs).Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	var contracts []*models.Contract
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) ExistsForGigAndUser(ctx context.Context, gigID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("gig_id = ? AND user_id = ?", gigID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *contractRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ContractStatus) (*models.Contract, error) {
	if err := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *contractRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Contract{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
