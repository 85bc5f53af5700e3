package middleware

import (
	"net/http"
	"strings"

	"github.com/pharmacy/backend/internal/domain/identity"
	"github.com/pharmacy/backend/internal/infrastructure/auth"
	"github.com/pharmacy/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by the auth middleware
const (
	UserIDKey     = "auth_user_id"
	RoleKey       = "auth_role"
	authHeaderKey = "Authorization"
	bearerPrefix  = "Bearer "
)

// Auth validates the bearer token and stores the principal on the context
func Auth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authHeaderKey)
		if !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c, "Missing or malformed authorization header")
			return
		}

		userID, role, err := jwtService.Validate(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(RoleKey, role)
		c.Next()
	}
}

// RequireRole rejects requests whose principal lacks one of the given roles
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFrom(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.ErrCodeForbidden, "Insufficient role for this operation"))
	}
}

// UserIDFrom returns the authenticated user's ID from the context
func UserIDFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// RoleFrom returns the authenticated user's role from the context
func RoleFrom(c *gin.Context) (identity.Role, bool) {
	v, ok := c.Get(RoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(identity.Role)
	return role, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
