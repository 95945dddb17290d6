package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// DropCollections removes the given collections so each integration test
// starts from an empty database.
func DropCollections(ctx context.Context, db *mongo.Database, names ...string) error {
	for _, name := range names {
		if err := db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop collection %s: %w", name, err)
		}
	}
	return nil
}

// CountDocuments returns the number of documents in a collection.
func CountDocuments(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	return db.Collection(name).CountDocuments(ctx, bson.M{})
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:           fmt.Sprintf("user-%d", now.UnixNano()),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$testhashtesthashtesthashtesthashtesthashtesthashtest",
		CreatedAt:    now,
	}
}

// NewTestLink creates a test link with sensible defaults.
func NewTestLink(t testing.TB, shortCode string) *model.Link {
	t.Helper()
	now := time.Now().UTC()
	return &model.Link{
		ID:        fmt.Sprintf("link-%d", now.UnixNano()),
		ShortCode: shortCode,
		FullURL:   "https://example.com/" + shortCode,
		OwnerID:   "test-user",
		CreatedAt: now,
	}
}

// NewTestClickEvent creates a click event with sensible defaults.
func NewTestClickEvent(t testing.TB, ip string) model.ClickEvent {
	t.Helper()
	return model.ClickEvent{
		Timestamp: time.Now().UTC(),
		IP:        ip,
		City:      "Hyderabad",
		Region:    "Telangana",
		Country:   "India",
		Browser:   "Chrome",
		OS:        "Linux",
		Device:    "Desktop",
	}
}

// UniqueShortCode generates a unique short code for tests.
func UniqueShortCode(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
