package models

import (
	"time"

	"github.com/google/uuid"
)

// enum
type ContractStatus string

const (
	ContractPending  ContractStatus = "pending"
	ContractAccepted ContractStatus = "accepted"
	ContractRejected ContractStatus = "rejected"
)

/** --------------------ENTITIES-------------------- */
// Contract is a client's request to hire a gig. Chat unlocks when the gig
// owner accepts it.
type Contract struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	GigID     uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_contract_gig_user" json:"gig_id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_contract_gig_user" json:"user_id"`
	Status    ContractStatus `gorm:"type:text;not null;default:pending" json:"status"`
	CreatedAt time.Time      `json:"created_at"`

	Gig  Gig  `gorm:"foreignKey:GigID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}

/** -------------------- DTOs -------------------- */
// Request
type CreateContractRequest struct {
	GigID uuid.UUID `json:"gig_id" binding:"required"`
}

type UpdateContractStatusRequest struct {
	Status ContractStatus `json:"status" binding:"required,oneof=pending accepted rejected"`
}
