package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/model"
)

// Common errors for link repository operations.
var (
	ErrLinkNotFound = errors.New("link not found")
	ErrAliasExists  = errors.New("alias already exists")
	ErrDuplicateURL = errors.New("owner already shortened this URL")
)

// CreateLink inserts a new link document.
// A duplicate short code maps to ErrAliasExists; a duplicate
// (owner_id, full_url) pair maps to ErrDuplicateURL so callers can fall
// back to the existing document.
func (r *Repository) CreateLink(ctx context.Context, link *model.Link) error {
	if link.ClickEvents == nil {
		link.ClickEvents = []model.ClickEvent{}
	}

	_, err := r.links.InsertOne(ctx, link)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return classifyLinkDuplicate(err)
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetLinkByID retrieves a link by its ID.
func (r *Repository) GetLinkByID(ctx context.Context, id string) (*model.Link, error) {
	var link model.Link
	err := r.links.FindOne(ctx, bson.M{"_id": id}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by ID: %w", err)
	}

	return &link, nil
}

// GetLinkByShortCode retrieves a link by its short code.
// This is the hot path for redirects.
func (r *Repository) GetLinkByShortCode(ctx context.Context, shortCode string) (*model.Link, error) {
	var link model.Link
	err := r.links.FindOne(ctx, bson.M{"short_code": shortCode}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by short code: %w", err)
	}

	return &link, nil
}

// GetLinkByOwnerAndURL retrieves the link a given owner created for a full URL.
// Used for the idempotent create short-circuit.
func (r *Repository) GetLinkByOwnerAndURL(ctx context.Context, ownerID, fullURL string) (*model.Link, error) {
	var link model.Link
	err := r.links.FindOne(ctx, bson.M{"owner_id": ownerID, "full_url": fullURL}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by owner and URL: %w", err)
	}

	return &link, nil
}

// ListLinksByOwner retrieves all links owned by a user, newest first.
func (r *Repository) ListLinksByOwner(ctx context.Context, ownerID string) ([]*model.Link, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.links.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer cursor.Close(ctx)

	var links []*model.Link
	if err := cursor.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("failed to decode links: %w", err)
	}

	return links, nil
}

// DeleteLink hard-deletes a link by ID.
func (r *Repository) DeleteLink(ctx context.Context, id string) error {
	result, err := r.links.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// AppendClickEvent appends a click event and increments the click counter
// in a single atomic document update. The store-level atomicity is what
// keeps click_count equal to len(click_events) under concurrent redirects.
func (r *Repository) AppendClickEvent(ctx context.Context, id string, event model.ClickEvent) error {
	update := bson.M{
		"$push": bson.M{"click_events": event},
		"$inc":  bson.M{"click_count": 1},
	}

	result, err := r.links.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to append click event: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// ShortCodeExists checks if a short code is already taken.
func (r *Repository) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	count, err := r.links.CountDocuments(ctx, bson.M{"short_code": shortCode}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check short code existence: %w", err)
	}

	return count > 0, nil
}

// classifyLinkDuplicate maps a duplicate-key error to the violated constraint
// by the index name embedded in the server message.
func classifyLinkDuplicate(err error) error {
	if strings.Contains(err.Error(), idxOwnerFullURL) {
		return ErrDuplicateURL
	}
	return ErrAliasExists
}
