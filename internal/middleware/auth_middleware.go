package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/auth"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key holding the auth.Identity.
const IdentityKey = "identity"

// UserLookup resolves users for role checks.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

type AuthMiddleware struct {
	jwtSecret string
	users     UserLookup
}

func NewAuthMiddleware(jwtSecret string, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		users:     users,
	}
}

// Authenticate requires a valid access token in the Authorization header and
// attaches the caller's identity to both the gin and the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(parts[1], m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if errors.Is(err, util.ErrExpiredToken) {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Token has expired")
			} else {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Token is invalid")
			}
			c.Abort()
			return
		}
		if claims.TokenType != util.TokenTypeAccess {
			log.Warn("Non-access token used for authentication", map[string]interface{}{
				"path":       c.Request.URL.Path,
				"token_type": claims.TokenType,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Token is not an access token")
			c.Abort()
			return
		}

		identity := auth.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
		}
		c.Set(IdentityKey, identity)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
		})

		c.Next()
	}
}

// RequireRole lets the request through only if the authenticated user
// currently holds one of roles. Must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		identity, ok := GetIdentity(c)
		if !ok {
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzRoleNotFound, "Role information not available")
			c.Abort()
			return
		}

		user, err := m.users.FindByID(c.Request.Context(), identity.UserID)
		if err != nil {
			log.Warn("Role lookup failed", map[string]interface{}{
				"user_id": identity.UserID,
				"error":   err.Error(),
			})
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzRoleNotFound, "Role information not available")
			c.Abort()
			return
		}

		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        identity.UserID,
			"user_role":      user.Role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		apperrors.Forbidden(c, "")
		c.Abort()
	}
}

// GetIdentity returns the identity set by Authenticate.
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok && identity.Authenticated()
}
