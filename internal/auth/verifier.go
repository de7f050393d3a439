package auth

import (
	"context"

	"github.com/google/uuid"
)

// Verifier turns bearer tokens into user identities. The websocket layer
// consumes it as its token verifier.
type Verifier struct {
	jwks *JWKSCache
}

func NewVerifier(jwks *JWKSCache) *Verifier {
	return &Verifier{jwks: jwks}
}

// Verify validates token and returns the subject user id.
func (v *Verifier) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := v.jwks.ValidateToken(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID()
}

// VerifyClaims validates token and returns the full claim set, for callers
// that need profile metadata as well as the identity.
func (v *Verifier) VerifyClaims(ctx context.Context, token string) (*Claims, error) {
	return v.jwks.ValidateToken(ctx, token)
}
