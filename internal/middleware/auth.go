package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/observability"
	"go.uber.org/zap"
)

// Authenticator resolves a portal token to its session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

// SessionAuth validates the portal token and puts the session in the context
func SessionAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authorization header is required"})
			return
		}

		// Check if it's a Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid authorization header format"})
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			message := "Invalid token"
			switch {
			case errors.Is(err, models.ErrSessionExpired):
				message = "Session expired"
			case errors.Is(err, models.ErrSessionNotFound):
				message = "Session not found"
			case !errors.Is(err, models.ErrInvalidToken):
				// Store failure rather than a bad token
				observability.Logger().Error("failed to load session", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "Session store unavailable"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: message})
			return
		}

		c.Set(models.SessionContextKey, session)
		c.Next()
	}
}

// SessionFromContext returns the session set by SessionAuth
func SessionFromContext(c *gin.Context) (*models.Session, bool) {
	value, exists := c.Get(models.SessionContextKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*models.Session)
	return session, ok && session != nil
}

// RequireReviewer rejects sessions whose role is below threshold
func RequireReviewer(threshold int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Session not found"})
			return
		}
		if !session.IsReviewer(threshold) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Error: "Reviewer role required"})
			return
		}
		c.Next()
	}
}
