package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// userIDContextKey is the context key for the authenticated user ID.
	userIDContextKey contextKey = "user_id"
)

// ContextWithUser adds the authenticated user ID to the context.
func ContextWithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext retrieves the authenticated user ID from the context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(userIDContextKey).(string)
	if !ok {
		return ""
	}
	return id
}

// MustUserIDFromContext retrieves the authenticated user ID from the context.
// Panics if not present (use only when auth middleware has run).
func MustUserIDFromContext(ctx context.Context) string {
	id := UserIDFromContext(ctx)
	if id == "" {
		panic("user ID not found in context - ensure auth middleware is applied")
	}
	return id
}
