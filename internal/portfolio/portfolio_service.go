package portfolio

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"time"

	"gigwork-service/internal/cache"
	"gigwork-service/internal/models"

	"github.com/google/uuid"
)

var (
	ErrPortfolioNotFound = errors.New("portfolio item not found")
	ErrNotPortfolioOwner = errors.New("you do not own this portfolio item")
)

// ImageUploader stores an uploaded image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, file *multipart.FileHeader) (string, error)
}

type PortfolioService interface {
	CreateItem(ctx context.Context, freelancerID uuid.UUID, req *models.CreatePortfolioRequest) (*models.Portfolio, error)
	GetItemsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Portfolio, error)
	UpdateItem(ctx context.Context, id, freelancerID uuid.UUID, req *models.UpdatePortfolioRequest) (*models.Portfolio, error)
	DeleteItem(ctx context.Context, id, freelancerID uuid.UUID) error
	UploadThumbnail(ctx context.Context, id, freelancerID uuid.UUID, file *multipart.FileHeader) (*models.Portfolio, error)
}

type portfolioService struct {
	repo     PortfolioRepository
	cache    *cache.Cache
	uploader ImageUploader
	logger   *slog.Logger
}

func NewPortfolioService(repo PortfolioRepository, c *cache.Cache, uploader ImageUploader, logger *slog.Logger) PortfolioService {
	return &portfolioService{repo: repo, cache: c, uploader: uploader, logger: logger}
}

func (s *portfolioService) CreateItem(ctx context.Context, freelancerID uuid.UUID, req *models.CreatePortfolioRequest) (*models.Portfolio, error) {
	item := &models.Portfolio{
		ID:           uuid.New(),
		FreelancerID: freelancerID,
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, freelancerID)
	return item, nil
}

func (s *portfolioService) GetItemsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Portfolio, error) {
	key := cache.PortfolioKey(freelancerID)
	if s.cache != nil {
		var cached []*models.Portfolio
		if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
			s.logger.Warn("portfolio cache read failed", "key", key, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	items, err := s.repo.FindByFreelancerID(ctx, freelancerID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, items, cache.UserTTL); err != nil {
			s.logger.Warn("portfolio cache write failed", "key", key, "error", err)
		}
	}
	return items, nil
}

func (s *portfolioService) UpdateItem(ctx context.Context, id, freelancerID uuid.UUID, req *models.UpdatePortfolioRequest) (*models.Portfolio, error) {
	item, err := s.ownedItem(ctx, id, freelancerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.ThumbnailURL != nil {
		item.ThumbnailURL = req.ThumbnailURL
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, freelancerID)
	return item, nil
}

func (s *portfolioService) DeleteItem(ctx context.Context, id, freelancerID uuid.UUID) error {
	if _, err := s.ownedItem(ctx, id, freelancerID); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPortfolioNotFound
	}
	s.invalidate(ctx, freelancerID)
	return nil
}

func (s *portfolioService) UploadThumbnail(ctx context.Context, id, freelancerID uuid.UUID, file *multipart.FileHeader) (*models.Portfolio, error) {
	item, err := s.ownedItem(ctx, id, freelancerID)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.UploadImage(ctx, file)
	if err != nil {
		return nil, err
	}
	item.ThumbnailURL = &url
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, freelancerID)
	return item, nil
}

func (s *portfolioService) ownedItem(ctx context.Context, id, freelancerID uuid.UUID) (*models.Portfolio, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrPortfolioNotFound
	}
	if item.FreelancerID != freelancerID {
		return nil, ErrNotPortfolioOwner
	}
	return item, nil
}

func (s *portfolioService) invalidate(ctx context.Context, freelancerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.PortfolioKey(freelancerID)); err != nil {
		s.logger.Warn("portfolio cache invalidation failed", "freelancer_id", freelancerID, "error", err)
	}
}
