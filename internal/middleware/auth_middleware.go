package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/roster/internal/app/models/dto"
	"github.com/yigit/roster/internal/pkg/apperrors"
	"github.com/yigit/roster/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextAccountID = "accountID"
	ContextUsername  = "username"
)

// AuthMiddleware for authentication
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth middleware for JWT token validation.
// A missing or malformed header is 401; a token that fails verification is 400.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.jwtService.Authorize(c.GetHeader("Authorization"))
		if err != nil {
			status, errorDetail := tokenErrorDetail(err)
			c.AbortWithStatusJSON(status, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextUsername, claims.Username)

		c.Next()
	}
}

func tokenErrorDetail(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrTokenMissing):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
			WithDetails("Authorization header missing")
	case errors.Is(err, apperrors.ErrTokenMalformed):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
			WithDetails("Authorization header must be 'Bearer <token>'")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Invalid token").
			WithDetails("Token has expired")
	default:
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token").
			WithDetails("Token signature or payload is invalid")
	}
}

// AccountIDFrom returns the authenticated account id stored by JWTAuth
func AccountIDFrom(c *gin.Context) string {
	return c.GetString(ContextAccountID)
}
