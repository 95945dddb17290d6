// Package service provides business logic for the application.
package service

import (
	"context"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/model"
)

// Store is the persistence surface the services depend on.
// *repository.Repository satisfies it; tests substitute an in-memory fake.
type Store interface {
	// Links
	CreateLink(ctx context.Context, link *model.Link) error
	GetLinkByID(ctx context.Context, id string) (*model.Link, error)
	GetLinkByShortCode(ctx context.Context, shortCode string) (*model.Link, error)
	GetLinkByOwnerAndURL(ctx context.Context, ownerID, fullURL string) (*model.Link, error)
	ListLinksByOwner(ctx context.Context, ownerID string) ([]*model.Link, error)
	DeleteLink(ctx context.Context, id string) error
	AppendClickEvent(ctx context.Context, id string, event model.ClickEvent) error
	ShortCodeExists(ctx context.Context, shortCode string) (bool, error)

	// Users
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}
