// Package auth resolves bearer session tokens to local user identities.
// Token issuance belongs to the hosted auth provider; the portal only
// verifies tokens and threads the resolved user id through request context.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/miragepark/community-portal/internal/db/models"
	"gorm.io/gorm"
)

type contextKey string

const userIDKey contextKey = "userId"

// VerifyToken resolves a bearer session token to a local user id.
func VerifyToken(database *gorm.DB, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("empty session token")
	}

	var session models.Session
	if err := database.Where("token = ?", token).First(&session).Error; err != nil {
		return "", fmt.Errorf("invalid session token")
	}
	if time.Now().After(session.ExpiresAt) {
		return "", fmt.Errorf("session expired")
	}
	return session.UserID, nil
}

// WithUserID injects the resolved user id into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the resolved user id from the context.
// Returns empty string if the request was not authenticated.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
