package service

import (
	"context"
	"sort"
	"sync"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/model"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/repository"
)

// fakeStore is an in-memory Store for service tests.
// It mirrors the repository's duplicate-key behavior so conflict paths
// can be exercised without a database.
type fakeStore struct {
	mu    sync.Mutex
	links map[string]*model.Link // keyed by ID
	users map[string]*model.User // keyed by ID

	// Optional error overrides, checked before normal behavior.
	createLinkErr error
	existsErr     error
	appendErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		links: make(map[string]*model.Link),
		users: make(map[string]*model.User),
	}
}

func (f *fakeStore) CreateLink(ctx context.Context, link *model.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createLinkErr != nil {
		return f.createLinkErr
	}

	for _, existing := range f.links {
		if existing.ShortCode == link.ShortCode {
			return repository.ErrAliasExists
		}
		if existing.OwnerID == link.OwnerID && existing.FullURL == link.FullURL {
			return repository.ErrDuplicateURL
		}
	}

	cp := *link
	f.links[link.ID] = &cp
	return nil
}

func (f *fakeStore) GetLinkByID(ctx context.Context, id string) (*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	link, ok := f.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	cp := *link
	return &cp, nil
}

func (f *fakeStore) GetLinkByShortCode(ctx context.Context, shortCode string) (*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, link := range f.links {
		if link.ShortCode == shortCode {
			cp := *link
			return &cp, nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (f *fakeStore) GetLinkByOwnerAndURL(ctx context.Context, ownerID, fullURL string) (*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, link := range f.links {
		if link.OwnerID == ownerID && link.FullURL == fullURL {
			cp := *link
			return &cp, nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (f *fakeStore) ListLinksByOwner(ctx context.Context, ownerID string) ([]*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*model.Link
	for _, link := range f.links {
		if link.OwnerID == ownerID {
			cp := *link
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeStore) DeleteLink(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.links[id]; !ok {
		return repository.ErrLinkNotFound
	}
	delete(f.links, id)
	return nil
}

func (f *fakeStore) AppendClickEvent(ctx context.Context, id string, event model.ClickEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.appendErr != nil {
		return f.appendErr
	}

	link, ok := f.links[id]
	if !ok {
		return repository.ErrLinkNotFound
	}
	link.ClickEvents = append(link.ClickEvents, event)
	link.ClickCount++
	return nil
}

func (f *fakeStore) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.existsErr != nil {
		return false, f.existsErr
	}

	for _, link := range f.links {
		if link.ShortCode == shortCode {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// linkCount reports how many links the store holds.
func (f *fakeStore) linkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.links)
}
