package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// Context keys populated by the auth middleware
const (
	ContextKeyUserID contextKey = "user_id"
	ContextKeyEmail  contextKey = "email"
)

// WithUserContext returns a context carrying the authenticated user identity
func WithUserContext(ctx context.Context, userID uuid.UUID, email string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	return context.WithValue(ctx, ContextKeyEmail, email)
}

// GetUserIDFromContext extracts the authenticated user id set by the middleware
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return id, ok
}

// GetEmailFromContext extracts the authenticated email set by the middleware
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(ContextKeyEmail).(string)
	return email, ok
}
