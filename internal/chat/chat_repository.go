package chat

import (
	"context"
	"errors"
	"time"

	"gigwork-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepository interface {
	Insert(ctx context.Context, msg *models.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	FindByContract(ctx context.Context, contractID uuid.UUID, limit int, cursorCreatedAt *time.Time, cursorID *uuid.UUID) ([]*models.Message, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*models.Message, error)
	MarkAllRead(ctx context.Context, contractID, readerID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, contractID, userID uuid.UUID) (int64, error)
	CountUnreadForContracts(ctx context.Context, contractIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]int64, error)
	LatestForContracts(ctx context.Context, contractIDs []uuid.UUID) (map[uuid.UUID]*models.Message, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Insert(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *chatRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// FindByContract returns a contract's messages newest first. The cursor is
// the (created_at, id) pair of the last row the caller already has.
func (r *chatRepository) FindByContract(ctx context.Context, contractID uuid.UUID, limit int, cursorCreatedAt *time.Time, cursorID *uuid.UUID) ([]*models.Message, error) {
	q := r.db.WithContext(ctx).Where("contract_id = ?", contractID)
	if cursorCreatedAt != nil && cursorID != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", *cursorCreatedAt, *cursorCreatedAt, *cursorID)
	}

	var msgs []*models.Message
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&msgs).Error
	return msgs, err
}

func (r *chatRepository) MarkRead(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// MarkAllRead flips every unread message in the contract that the reader
// did not send.
func (r *chatRepository) MarkAllRead(ctx context.Context, contractID, readerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("contract_id = ? AND sender_id <> ? AND is_read = ?", contractID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *chatRepository) CountUnread(ctx context.Context, contractID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("contract_id = ? AND sender_id <> ? AND is_read = ?", contractID, userID, false).
		Count(&count).Error
	return count, err
}

func (r *chatRepository) CountUnreadForContracts(ctx context.Context, contractIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64)
	if len(contractIDs) == 0 {
		return counts, nil
	}

	type row struct {
		ContractID uuid.UUID
		Total      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Select("contract_id, COUNT(*) AS total").
		Where("contract_id IN ? AND sender_id <> ? AND is_read = ?", contractIDs, userID, false).
		Group("contract_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.ContractID] = r.Total
	}
	return counts, nil
}

// LatestForContracts returns the newest message per contract in one query.
func (r *chatRepository) LatestForContracts(ctx context.Context, contractIDs []uuid.UUID) (map[uuid.UUID]*models.Message, error) {
	latest := make(map[uuid.UUID]*models.Message)
	if len(contractIDs) == 0 {
		return latest, nil
	}

	var msgs []*models.Message
	err := r.db.WithContext(ctx).
		Where("contract_id IN ?", contractIDs).
		Order("contract_id ASC, created_at DESC, id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		if _, ok := latest[m.ContractID]; !ok {
			latest[m.ContractID] = m
		}
	}
	return latest, nil
}
