package middleware

import (
	"net/http"
	"strings"

	"gigwork-service/internal/auth"
	"gigwork-service/internal/models"
	"gigwork-service/internal/user"
	"gigwork-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	verifier *auth.Verifier
	users    user.UserService
}

func NewAuthMiddleware(verifier *auth.Verifier, users user.UserService) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, users: users}
}

// RequireAuth validates the bearer token against the provider's JWKS,
// lazily creates the user row on first sight, and stores the identity on
// the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be a bearer token"})
			c.Abort()
			return
		}

		claims, err := am.verifier.VerifyClaims(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			c.Abort()
			return
		}

		u, err := am.users.FindOrCreateFromAuth(c.Request.Context(), &models.CreateUserFromAuth{
			ID:           userID,
			Email:        claims.UserEmail(),
			DisplayName:  claims.DisplayName(),
			AvatarURL:    claims.Avatar(),
			AuthProvider: "supabase",
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			c.Abort()
			return
		}

		c.Set(response.ContextUserIDKey, userID)
		c.Set(response.ContextUserKey, u)
		c.Next()
	}
}
