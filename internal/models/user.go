package models

import (
	"time"

	"github.com/google/uuid"
)

// enum
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
)

/** --------------------ENTITIES-------------------- */
// User represents a marketplace account. Rows are created lazily from
// verified auth claims; the id is the identity provider's subject UUID.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Username     *string    `gorm:"uniqueIndex" json:"username,omitempty"`
	DisplayName  *string    `json:"display_name,omitempty"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	AuthProvider string     `gorm:"not null" json:"auth_provider"`
	Role         Role       `gorm:"type:text;not null;default:client" json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

/** -------------------- DTOs -------------------- */
// CreateUserFromAuth carries the profile fields extracted from a verified
// token when a user row does not exist yet.
type CreateUserFromAuth struct {
	ID           uuid.UUID
	Email        string
	DisplayName  *string
	AvatarURL    *string
	AuthProvider string
	Role         Role
}

// CompleteProfileRequest is the body of POST /auth/complete-profile.
type CompleteProfileRequest struct {
	Username    *string `json:"username,omitempty" binding:"omitempty,min=3,max=50"`
	Role        *Role   `json:"role,omitempty" binding:"omitempty,oneof=client freelancer"`
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// UpdateUserRequest is the body of PUT /users/:id.
type UpdateUserRequest struct {
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	Username    *string `json:"username,omitempty" binding:"omitempty,min=3,max=50"`
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Role        *Role   `json:"role,omitempty" binding:"omitempty,oneof=client freelancer admin"`
}

// Response
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Username    *string    `json:"username,omitempty"`
	DisplayName *string    `json:"display_name,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Role        Role       `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
