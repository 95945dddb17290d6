// Package repository provides database access layer.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Index names, referenced when classifying duplicate-key errors.
const (
	idxShortCode    = "uniq_short_code"
	idxOwnerFullURL = "uniq_owner_full_url"
	idxEmail        = "uniq_email"
)

// Repository provides database access methods backed by MongoDB.
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
	links  *mongo.Collection
	users  *mongo.Collection
}

// New connects to MongoDB and ensures the indexes the application relies on.
func New(ctx context.Context, mongoURL, database string) (*Repository, error) {
	opts := options.Client().
		ApplyURI(mongoURL).
		SetConnectTimeout(10 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	r := &Repository{
		client: client,
		db:     db,
		links:  db.Collection("links"),
		users:  db.Collection("users"),
	}

	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return r, nil
}

// ensureIndexes creates the unique indexes the service depends on:
// short codes are globally unique, emails are unique per user, and the
// compound (owner_id, full_url) index closes the create idempotency race.
func (r *Repository) ensureIndexes(ctx context.Context) error {
	linkIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "short_code", Value: 1}},
			Options: options.Index().SetName(idxShortCode).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "full_url", Value: 1}},
			Options: options.Index().SetName(idxOwnerFullURL).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created_at"),
		},
	}

	if _, err := r.links.Indexes().CreateMany(ctx, linkIndexes); err != nil {
		return fmt.Errorf("failed to create link indexes: %w", err)
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(idxEmail).SetUnique(true),
		},
	}

	if _, err := r.users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	return nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the MongoDB client.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// Database returns the underlying database handle.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Database() *mongo.Database {
	return r.db
}
