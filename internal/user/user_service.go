package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gigwork-service/internal/cache"
	"gigwork-service/internal/models"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username is already taken")
	ErrNotSelf       = errors.New("you can only modify your own account")
)

type UserService interface {
	// FindOrCreateFromAuth resolves a verified token subject to a user row,
	// creating one from the claims on first sight.
	FindOrCreateFromAuth(ctx context.Context, auth *models.CreateUserFromAuth) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	CompleteProfile(ctx context.Context, id uuid.UUID, req *models.CompleteProfileRequest) (*models.User, error)
	UpdateUser(ctx context.Context, id, callerID uuid.UUID, req *models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id, callerID uuid.UUID) error
}

type userService struct {
	repo   UserRepository
	cache  *cache.Cache
	logger *slog.Logger
}

func NewUserService(repo UserRepository, c *cache.Cache, logger *slog.Logger) UserService {
	return &userService{repo: repo, cache: c, logger: logger}
}

func (s *userService) FindOrCreateFromAuth(ctx context.Context, auth *models.CreateUserFromAuth) (*models.User, error) {
	existing, err := s.repo.FindByID(ctx, auth.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	role := auth.Role
	if role == "" {
		role = models.RoleClient
	}
	u := &models.User{
		ID:           auth.ID,
		Email:        auth.Email,
		DisplayName:  auth.DisplayName,
		AvatarURL:    auth.AvatarURL,
		AuthProvider: auth.AuthProvider,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// Concurrent first requests can race the insert; the row is there
		// either way.
		if fetched, ferr := s.repo.FindByID(ctx, auth.ID); ferr == nil && fetched != nil {
			return fetched, nil
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	key := cache.UserKey(id)
	if s.cache != nil {
		var cached models.User
		if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
			s.logger.Warn("user cache read failed", "key", key, "error", err)
		} else if ok {
			return &cached, nil
		}
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, u, cache.UserTTL); err != nil {
			s.logger.Warn("user cache write failed", "key", key, "error", err)
		}
	}
	return u, nil
}

func (s *userService) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	users, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.FindAll(ctx)
}

func (s *userService) CompleteProfile(ctx context.Context, id uuid.UUID, req *models.CompleteProfileRequest) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	if req.Username != nil {
		taken, err := s.repo.UsernameTaken(ctx, *req.Username, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		u.Username = req.Username
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.DisplayName != nil {
		u.DisplayName = req.DisplayName
	}
	if req.AvatarURL != nil {
		u.AvatarURL = req.AvatarURL
	}
	now := time.Now().UTC()
	u.UpdatedAt = &now

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return u, nil
}

func (s *userService) UpdateUser(ctx context.Context, id, callerID uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	if id != callerID {
		return nil, ErrNotSelf
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	if req.Username != nil {
		taken, err := s.repo.UsernameTaken(ctx, *req.Username, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		u.Username = req.Username
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.DisplayName != nil {
		u.DisplayName = req.DisplayName
	}
	if req.AvatarURL != nil {
		u.AvatarURL = req.AvatarURL
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	now := time.Now().UTC()
	u.UpdatedAt = &now

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return u, nil
}

func (s *userService) DeleteUser(ctx context.Context, id, callerID uuid.UUID) error {
	if id != callerID {
		return ErrNotSelf
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *userService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.UserKey(id)); err != nil {
		s.logger.Warn("user cache invalidation failed", "user_id", id, "error", err)
	}
}
