package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the fields carried by the identity provider's access tokens.
// The sub claim is the auth user's UUID; user_metadata holds the profile
// fields populated by the OAuth provider.
type Claims struct {
	jwt.RegisteredClaims
	Email        string        `json:"email,omitempty"`
	Role         string        `json:"role,omitempty"`
	UserMetadata *UserMetadata `json:"user_metadata,omitempty"`
}

type UserMetadata struct {
	FullName      *string `json:"full_name,omitempty"`
	Name          *string `json:"name,omitempty"`
	AvatarURL     *string `json:"avatar_url,omitempty"`
	Picture       *string `json:"picture,omitempty"`
	Email         *string `json:"email,omitempty"`
	EmailVerified *bool   `json:"email_verified,omitempty"`
}

// UserID parses the sub claim as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uuid in sub claim: %w", err)
	}
	return id, nil
}

// DisplayName returns the best-effort display name from metadata.
func (c *Claims) DisplayName() *string {
	if c.UserMetadata == nil {
		return nil
	}
	if c.UserMetadata.FullName != nil {
		return c.UserMetadata.FullName
	}
	return c.UserMetadata.Name
}

// Avatar returns the best-effort avatar URL from metadata.
func (c *Claims) Avatar() *string {
	if c.UserMetadata == nil {
		return nil
	}
	if c.UserMetadata.AvatarURL != nil {
		return c.UserMetadata.AvatarURL
	}
	return c.UserMetadata.Picture
}

// UserEmail prefers the top-level email claim and falls back to metadata.
func (c *Claims) UserEmail() string {
	if c.Email != "" {
		return c.Email
	}
	if c.UserMetadata != nil && c.UserMetadata.Email != nil {
		return *c.UserMetadata.Email
	}
	return ""
}
