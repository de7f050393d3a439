package gig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"gigwork-service/internal/cache"
	"gigwork-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrGigNotFound = errors.New("gig not found")
	ErrNotGigOwner = errors.New("you do not own this gig")
)

// ThumbnailUploader stores an uploaded image and returns its public URL.
// Backed by MinIO in production.
type ThumbnailUploader interface {
	UploadImage(ctx context.Context, file *multipart.FileHeader) (string, error)
}

type GigService interface {
	CreateGig(ctx context.Context, userID uuid.UUID, req *models.CreateGigRequest) (*models.Gig, error)
	GetGig(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	ListGigs(ctx context.Context, query *models.GigListQuery) ([]*models.Gig, error)
	GetGigsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Gig, error)
	UpdateGig(ctx context.Context, id, userID uuid.UUID, req *models.UpdateGigRequest) (*models.Gig, error)
	DeleteGig(ctx context.Context, id, userID uuid.UUID) error
	DeleteGigsByUser(ctx context.Context, userID uuid.UUID) error
	UploadThumbnail(ctx context.Context, id, userID uuid.UUID, file *multipart.FileHeader) (*models.Gig, error)
}

type gigService struct {
	repo     GigRepository
	cache    *cache.Cache
	uploader ThumbnailUploader
	logger   *slog.Logger
}

// NewGigService builds the gig service. cache and uploader may be nil; the
// service then skips caching and rejects thumbnail uploads.
func NewGigService(repo GigRepository, c *cache.Cache, uploader ThumbnailUploader, logger *slog.Logger) GigService {
	if logger == nil {
		logger = slog.Default()
	}
	return &gigService{repo: repo, cache: c, uploader: uploader, logger: logger}
}

func (s *gigService) CreateGig(ctx context.Context, userID uuid.UUID, req *models.CreateGigRequest) (*models.Gig, error) {
	category := models.CategoryOther
	if req.Category != nil {
		category = *req.Category
	}

	gig := &models.Gig{
		ID:           uuid.New(),
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		ThumbnailURL: req.ThumbnailURL,
		Category:     category,
		UserID:       userID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, gig); err != nil {
		return nil, fmt.Errorf("create gig: %w", err)
	}

	s.invalidateListCaches(ctx, userID)
	return gig, nil
}

func (s *gigService) GetGig(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	key := cache.GigKey(id)
	if s.cache != nil {
		var cached models.Gig
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("gig cache read failed", "key", key, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	gig, err := s.findGig(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, gig, cache.GigTTL); err != nil {
			s.logger.Warn("gig cache write failed", "key", key, "error", err)
		}
	}
	return gig, nil
}

func (s *gigService) ListGigs(ctx context.Context, query *models.GigListQuery) ([]*models.Gig, error) {
	filters := listCacheFilters(query)
	key := cache.GigListKey(filters)

	if s.cache != nil {
		var cached []*models.Gig
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("gig list cache read failed", "key", key, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	gigs, err := s.repo.List(ctx, query.PageLimit(), query.Category, query.CursorCreatedAt, query.CursorID)
	if err != nil {
		return nil, fmt.Errorf("list gigs: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, gigs, cache.GigListTTL); err != nil {
			s.logger.Warn("gig list cache write failed", "key", key, "error", err)
		}
	}
	return gigs, nil
}

func (s *gigService) GetGigsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Gig, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *gigService) UpdateGig(ctx context.Context, id, userID uuid.UUID, req *models.UpdateGigRequest) (*models.Gig, error) {
	gig, err := s.findGig(ctx, id)
	if err != nil {
		return nil, err
	}
	if gig.UserID != userID {
		return nil, ErrNotGigOwner
	}

	if req.Title != nil {
		gig.Title = *req.Title
	}
	if req.Description != nil {
		gig.Description = *req.Description
	}
	if req.Price != nil {
		gig.Price = *req.Price
	}
	if req.ThumbnailURL != nil {
		gig.ThumbnailURL = req.ThumbnailURL
	}
	if req.Category != nil {
		gig.Category = *req.Category
	}

	if err := s.repo.Update(ctx, gig); err != nil {
		return nil, fmt.Errorf("update gig: %w", err)
	}

	s.invalidateGigCaches(ctx, id, userID)
	return gig, nil
}

func (s *gigService) DeleteGig(ctx context.Context, id, userID uuid.UUID) error {
	gig, err := s.findGig(ctx, id)
	if err != nil {
		return err
	}
	if gig.UserID != userID {
		return ErrNotGigOwner
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete gig: %w", err)
	}
	if affected == 0 {
		return ErrGigNotFound
	}

	s.invalidateGigCaches(ctx, id, userID)
	return nil
}

func (s *gigService) DeleteGigsByUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("delete gigs for user: %w", err)
	}
	s.invalidateListCaches(ctx, userID)
	return nil
}

func (s *gigService) UploadThumbnail(ctx context.Context, id, userID uuid.UUID, file *multipart.FileHeader) (*models.Gig, error) {
	if s.uploader == nil {
		return nil, errors.New("thumbnail storage is not configured")
	}

	gig, err := s.findGig(ctx, id)
	if err != nil {
		return nil, err
	}
	if gig.UserID != userID {
		return nil, ErrNotGigOwner
	}

	url, err := s.uploader.UploadImage(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("upload thumbnail: %w", err)
	}

	gig.ThumbnailURL = &url
	if err := s.repo.Update(ctx, gig); err != nil {
		return nil, fmt.Errorf("save thumbnail url: %w", err)
	}

	s.invalidateGigCaches(ctx, id, userID)
	return gig, nil
}

func (s *gigService) findGig(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	gig, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		return nil, fmt.Errorf("look up gig: %w", err)
	}
	return gig, nil
}

func (s *gigService) invalidateGigCaches(ctx context.Context, id, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.GigKey(id)); err != nil {
		s.logger.Warn("gig cache invalidation failed", "gigID", id, "error", err)
	}
	s.invalidateListCaches(ctx, userID)
}

func (s *gigService) invalidateListCaches(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.UserGigsKey(userID)); err != nil {
		s.logger.Warn("user gigs cache invalidation failed", "userID", userID, "error", err)
	}
	if err := s.cache.DeletePattern(ctx, "gigs:list:*"); err != nil {
		s.logger.Warn("gig list cache invalidation failed", "error", err)
	}
}

func listCacheFilters(query *models.GigListQuery) string {
	category := "all"
	if query.Category != nil {
		category = string(*query.Category)
	}
	cursor := "start"
	if query.CursorCreatedAt != nil && query.CursorID != nil {
		cursor = fmt.Sprintf("c%d:%s", query.CursorCreatedAt.UnixNano(), query.CursorID)
	}
	return fmt.Sprintf("%s:%d:%s", category, query.PageLimit(), cursor)
}
