package models

import (
	"time"

	"github.com/google/uuid"
)

/** --------------------ENTITIES-------------------- */
// Message is one durable chat message inside a contract conversation.
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_contract_created" json:"contract_id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"index:idx_messages_contract_created" json:"created_at"`

	Contract Contract `gorm:"foreignKey:ContractID" json:"-"`
	Sender   User     `gorm:"foreignKey:SenderID" json:"-"`
}

/** -------------------- DTOs -------------------- */
// MessageQuery carries cursor pagination for message history, newest first.
type MessageQuery struct {
	Limit           *int       `form:"limit" binding:"omitempty,min=1,max=100"`
	CursorCreatedAt *time.Time `form:"cursor_created_at" time_format:"2006-01-02T15:04:05.999999999Z07:00"`
	CursorID        *uuid.UUID `form:"cursor_id"`
}

func (q *MessageQuery) PageLimit() int {
	if q.Limit == nil || *q.Limit <= 0 {
		return 50
	}
	if *q.Limit > 100 {
		return 100
	}
	return *q.Limit
}

// Response
type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		ContractID: m.ContractID,
		SenderID:   m.SenderID,
		Content:    m.Content,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
	}
}

// ConversationSummary is one row of the conversations list: the contract,
// the other party, the latest message and the unread count.
type ConversationSummary struct {
	ContractID    uuid.UUID  `json:"contract_id"`
	OtherUserID   uuid.UUID  `json:"other_user_id"`
	OtherUserName *string    `json:"other_user_name,omitempty"`
	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	UnreadCount   int64      `json:"unread_count"`
}
