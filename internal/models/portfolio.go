package models

import (
	"time"

	"github.com/google/uuid"
)

/** --------------------ENTITIES-------------------- */
// Portfolio is a work sample a freelancer showcases on their profile.
type Portfolio struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index" json:"freelancer_id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  *string   `gorm:"type:text" json:"description,omitempty"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	Freelancer User `gorm:"foreignKey:FreelancerID" json:"-"`
}

/** -------------------- DTOs -------------------- */
// Request
type CreatePortfolioRequest struct {
	Title        string  `json:"title" binding:"required,min=3,max=120"`
	Description  *string `json:"description,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}

type UpdatePortfolioRequest struct {
	Title        *string `json:"title,omitempty" binding:"omitempty,min=3,max=120"`
	Description  *string `json:"description,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}
