package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/auth"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/geoip"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/middleware"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/model"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/repository"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/service"
)

// memStore is an in-memory service.Store used to run the full HTTP stack
// in tests without a database.
type memStore struct {
	mu    sync.Mutex
	links map[string]*model.Link
	users map[string]*model.User
}

func newMemStore() *memStore {
	return &memStore{
		links: make(map[string]*model.Link),
		users: make(map[string]*model.User),
	}
}

func (m *memStore) CreateLink(ctx context.Context, link *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.links {
		if existing.ShortCode == link.ShortCode {
			return repository.ErrAliasExists
		}
		if existing.OwnerID == link.OwnerID && existing.FullURL == link.FullURL {
			return repository.ErrDuplicateURL
		}
	}
	cp := *link
	m.links[link.ID] = &cp
	return nil
}

func (m *memStore) GetLinkByID(ctx context.Context, id string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	cp := *link
	return &cp, nil
}

func (m *memStore) GetLinkByShortCode(ctx context.Context, shortCode string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range m.links {
		if link.ShortCode == shortCode {
			cp := *link
			return &cp, nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (m *memStore) GetLinkByOwnerAndURL(ctx context.Context, ownerID, fullURL string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range m.links {
		if link.OwnerID == ownerID && link.FullURL == fullURL {
			cp := *link
			return &cp, nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (m *memStore) ListLinksByOwner(ctx context.Context, ownerID string) ([]*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Link
	for _, link := range m.links {
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

func (m *memStore) DeleteLink(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[id]; !ok {
		return repository.ErrLinkNotFound
	}
	delete(m.links, id)
	return nil
}

func (m *memStore) AppendClickEvent(ctx context.Context, id string, event model.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok {
		return repository.ErrLinkNotFound
	}
	link.ClickEvents = append(link.ClickEvents, event)
	link.ClickCount++
	return nil
}

func (m *memStore) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range m.links {
		if link.ShortCode == shortCode {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type staticGeo struct{}

func (staticGeo) Lookup(ctx context.Context, ip string) (geoip.Location, error) {
	return geoip.Location{City: "Sydney", Region: "NSW", Country: "Australia"}, nil
}

// testServer bundles the wired HTTP stack for handler tests.
type testServer struct {
	router *chi.Mux
	store  *memStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := newMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	linkService := service.NewLinkService(service.LinkServiceConfig{
		Store:     store,
		Geo:       staticGeo{},
		Logger:    logger,
		BaseURL:   "http://localhost:8080",
		QREnabled: true,
		QRSize:    64,
	})
	authService := service.NewAuthService(store, tokens, bcrypt.MinCost, logger, nil)

	h := New()
	authHandler := NewAuthHandler(authService, logger)
	linkHandler := NewLinkHandler(linkService, logger)
	redirectHandler := NewRedirectHandler(linkService, logger, nil)

	r := chi.NewRouter()
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{Logger: logger, Tokens: tokens}))
		r.Post("/", linkHandler.Create)
		r.Get("/", linkHandler.List)
		r.Get("/analytics/{id}", linkHandler.Analytics)
		r.Delete("/{id}", linkHandler.Delete)
	})

	r.Get("/{shortCode}", redirectHandler.Redirect)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return &testServer{router: r, store: store}
}

// do executes a request against the router and returns the recorder.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its bearer token.
func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "hunter22",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed with status %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	if body["token"] == "" {
		t.Fatal("expected token in register response")
	}
	return body["token"]
}

// waitForClicks polls until the link shows at least n recorded clicks.
// Click recording is asynchronous, so tests cannot assert immediately
// after a redirect.
func waitForClicks(t *testing.T, ts *testServer, linkID string, n int64) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		link, err := ts.store.GetLinkByID(context.Background(), linkID)
		if err == nil && link.ClickCount >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("link %s did not reach %d clicks within deadline", linkID, n)
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}
