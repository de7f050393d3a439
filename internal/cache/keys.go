package cache

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Default TTLs per key family.
const (
	GigListTTL       = 5 * time.Minute
	GigTTL           = 10 * time.Minute
	UserTTL          = 15 * time.Minute
	ConversationsTTL = 5 * time.Minute
	MessagesTTL      = time.Minute
)

// Key builders. Every cached key in the service goes through one of these so
// invalidation patterns stay in one place.

func GigListKey(filters string) string {
	return fmt.Sprintf("gigs:list:%s", filters)
}

func GigKey(id uuid.UUID) string {
	return fmt.Sprintf("gig:%s", id)
}

func UserKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

func UserGigsKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:gigs", userID)
}

func PortfolioKey(userID uuid.UUID) string {
	return fmt.Sprintf("portfolio:%s", userID)
}

func ConversationsKey(userID uuid.UUID) string {
	return fmt.Sprintf("conversations:%s", userID)
}

func MessagesKey(contractID uuid.UUID, cursor string) string {
	return fmt.Sprintf("messages:%s:%s", contractID, cursor)
}

// MessagesPattern matches every cached history page of a contract.
func MessagesPattern(contractID uuid.UUID) string {
	return fmt.Sprintf("messages:%s:*", contractID)
}
