package models

import (
	"time"

	"github.com/google/uuid"
)

// enum
type Category string

const (
	CategoryWebDevelopment    Category = "web_development"
	CategoryMobileDevelopment Category = "mobile_development"
	CategoryDataScience       Category = "data_science"
	CategoryDesign            Category = "design"
	CategoryVideoEditing      Category = "video_editing"
	CategoryContentWriting    Category = "content_writing"
	CategoryOther             Category = "other"
)

/** --------------------ENTITIES-------------------- */
// Gig represents a service a freelancer offers.
type Gig struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	Price        float64   `gorm:"not null" json:"price"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Category     Category  `gorm:"type:text;not null;default:other;index" json:"category"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

/** -------------------- DTOs -------------------- */
// Request
type CreateGigRequest struct {
	Title        string    `json:"title" binding:"required,min=3,max=120"`
	Description  string    `json:"description" binding:"required"`
	Price        float64   `json:"price" binding:"required,gt=0"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Category     *Category `json:"category,omitempty" binding:"omitempty,oneof=web_development mobile_development data_science design video_editing content_writing other"`
}

type UpdateGigRequest struct {
	Title        *string   `json:"title,omitempty" binding:"omitempty,min=3,max=120"`
	Description  *string   `json:"description,omitempty"`
	Price        *float64  `json:"price,omitempty" binding:"omitempty,gt=0"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Category     *Category `json:"category,omitempty" binding:"omitempty,oneof=web_development mobile_development data_science design video_editing content_writing other"`
}

// GigListQuery carries cursor pagination parameters for gig listings. The
// cursor is the (created_at, id) pair of the last row of the previous page.
type GigListQuery struct {
	Limit           *int       `form:"limit" binding:"omitempty,min=1,max=100"`
	Category        *Category  `form:"category" binding:"omitempty,oneof=web_development mobile_development data_science design video_editing content_writing other"`
	CursorCreatedAt *time.Time `form:"cursor_created_at" time_format:"2006-01-02T15:04:05.999999999Z07:00"`
	CursorID        *uuid.UUID `form:"cursor_id"`
}

func (q *GigListQuery) PageLimit() int {
	if q.Limit == nil || *q.Limit <= 0 {
		return 20
	}
	if *q.Limit > 100 {
		return 100
	}
	return *q.Limit
}
