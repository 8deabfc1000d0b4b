// Package jwtmw issues session tokens and guards routes that require them.
package jwtmw

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"task_backend/internal/platform/apperr"
)

const (
	// ContextUserID is the gin context key holding the authenticated user ID.
	ContextUserID = "userID"
	// ContextEmail is the gin context key holding the authenticated email.
	ContextEmail = "email"
)

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(tokenStr string) (Identity, error)
}

// AuthRequired returns a Gin middleware function that validates bearer tokens
// and restricts access to authenticated users only.
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		identity, err := verifier.Verify(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			slog.Warn("token rejected", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
			apperr.Abort(c, classify(err))
			return
		}

		// 2. Attach identity for downstream handlers
		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextEmail, identity.Email)
		c.Next()
	}
}

// UserID returns the authenticated user ID set by AuthRequired.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}

// MustUserID is UserID for handlers mounted behind AuthRequired.
// If no identity is present it writes a 401 and returns false.
func MustUserID(c *gin.Context) (string, bool) {
	id, ok := UserID(c)
	if !ok {
		apperr.Abort(c, classify(ErrTokenMissing))
	}
	return id, ok
}

// bearerToken extracts the token from "Bearer <token>". Any other form yields "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || scheme != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return apperr.Unauthenticated(ErrTokenMissing.Error())
	case errors.Is(err, ErrTokenExpired):
		return apperr.Unauthenticated(ErrTokenExpired.Error())
	default:
		return apperr.Forbidden(ErrTokenInvalid.Error())
	}
}
