package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/analytics"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/geoip"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/metrics"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/middleware"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/model"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/repository"
)

// Service errors.
var (
	ErrInvalidDestination = errors.New("invalid destination URL")
	ErrInvalidAlias       = errors.New("invalid alias format")
	ErrAliasExists        = errors.New("alias already exists")
	ErrLinkNotFound       = errors.New("link not found")
	ErrNotOwner           = errors.New("link is owned by another user")
)

const (
	shortCodeLength = 7
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	maxCodeRetries  = 3

	// clickRecordTimeout bounds the whole click-capture path, geolocation
	// included. Capture runs off the redirect path and must never hold a
	// request open.
	clickRecordTimeout = 5 * time.Second
)

// GeoLocator resolves an IP address to a location, best effort.
type GeoLocator interface {
	Lookup(ctx context.Context, ip string) (geoip.Location, error)
}

// LinkService handles link business logic.
type LinkService struct {
	store     Store
	geo       GeoLocator
	logger    *slog.Logger
	metrics   metrics.Recorder
	baseURL   string
	qrEnabled bool
	qrSize    int
}

// LinkServiceConfig bundles the LinkService dependencies.
type LinkServiceConfig struct {
	Store     Store
	Geo       GeoLocator
	Logger    *slog.Logger
	Metrics   metrics.Recorder
	BaseURL   string
	QREnabled bool
	QRSize    int
}

// NewLinkService creates a new LinkService.
func NewLinkService(cfg LinkServiceConfig) *LinkService {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QRSize <= 0 {
		cfg.QRSize = 256
	}
	return &LinkService{
		store:     cfg.Store,
		geo:       cfg.Geo,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		qrEnabled: cfg.QREnabled,
		qrSize:    cfg.QRSize,
	}
}

// CreateLinkInput defines input for creating a link.
type CreateLinkInput struct {
	OwnerID     string
	FullURL     string
	CustomAlias string
}

// CreateLink creates a new short link.
// When the owner already shortened the same URL and no custom alias is
// given, the existing link is returned with existing=true instead of
// creating a duplicate.
func (s *LinkService) CreateLink(ctx context.Context, input CreateLinkInput) (link *model.Link, existing bool, err error) {
	if err := middleware.ValidateDestination(input.FullURL); err != nil {
		return nil, false, ErrInvalidDestination
	}

	alias := input.CustomAlias
	if alias != "" {
		if err := middleware.ValidateShortCode(alias); err != nil {
			return nil, false, ErrInvalidAlias
		}
		taken, err := s.store.ShortCodeExists(ctx, alias)
		if err != nil {
			return nil, false, fmt.Errorf("check alias: %w", err)
		}
		if taken {
			return nil, false, ErrAliasExists
		}
	} else {
		// Idempotent short-circuit: resubmitting the same URL returns
		// the prior link. Deliberate de-duplication, not a cache.
		prior, err := s.store.GetLinkByOwnerAndURL(ctx, input.OwnerID, input.FullURL)
		if err == nil {
			return prior, true, nil
		}
		if !errors.Is(err, repository.ErrLinkNotFound) {
			return nil, false, err
		}

		alias, err = s.generateUniqueCode(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("generate short code: %w", err)
		}
	}

	link = &model.Link{
		ID:          ulid.Make().String(),
		ShortCode:   alias,
		FullURL:     input.FullURL,
		OwnerID:     input.OwnerID,
		ClickCount:  0,
		ClickEvents: []model.ClickEvent{},
		CreatedAt:   time.Now().UTC(),
	}

	if s.qrEnabled {
		png, err := qrcode.Encode(s.ShortURL(link.ShortCode), qrcode.Medium, s.qrSize)
		if err != nil {
			// QR rendering is a nice-to-have; the link is still created.
			s.logger.Warn("qr_render_failed", "short_code", link.ShortCode, "error", err)
		} else {
			link.QRCode = png
		}
	}

	if err := s.store.CreateLink(ctx, link); err != nil {
		switch {
		case errors.Is(err, repository.ErrAliasExists):
			return nil, false, ErrAliasExists
		case errors.Is(err, repository.ErrDuplicateURL):
			// Lost the race with a concurrent create of the same URL;
			// the unique index kept one row, return it.
			prior, ferr := s.store.GetLinkByOwnerAndURL(ctx, input.OwnerID, input.FullURL)
			if ferr != nil {
				return nil, false, fmt.Errorf("fetch existing link after race: %w", ferr)
			}
			return prior, true, nil
		default:
			return nil, false, fmt.Errorf("create link: %w", err)
		}
	}

	s.metrics.IncLinkCreated()

	return link, false, nil
}

// Resolve looks up a link by exact short code.
func (s *LinkService) Resolve(ctx context.Context, shortCode string) (*model.Link, error) {
	link, err := s.store.GetLinkByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

// RecordClickAsync records a click without blocking the caller.
// Errors are logged, never propagated; the redirect must not depend on
// analytics capture.
func (s *LinkService) RecordClickAsync(link *model.Link, meta analytics.RequestMeta) {
	go func() {
		defer func() {
			if rvr := recover(); rvr != nil {
				s.logger.Error("panic in click recording", "short_code", link.ShortCode, "panic", rvr)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), clickRecordTimeout)
		defer cancel()

		if err := s.RecordClick(ctx, link, meta); err != nil {
			s.metrics.IncClickRecorded("failed")
			s.logger.Warn("failed to record click",
				"short_code", link.ShortCode,
				"error", err,
			)
			return
		}
		s.metrics.IncClickRecorded("success")
	}()
}

// RecordClick appends a click event and increments the counter.
// Geolocation is best effort: any lookup error degrades to Unknown fields
// and is logged at debug level.
func (s *LinkService) RecordClick(ctx context.Context, link *model.Link, meta analytics.RequestMeta) error {
	loc, err := s.geo.Lookup(ctx, meta.IP)
	if err != nil {
		s.metrics.IncGeoLookup("fallback")
		s.logger.Debug("geolocation lookup failed",
			"short_code", link.ShortCode,
			"error", err,
		)
		loc = geoip.Unknown()
	} else {
		s.metrics.IncGeoLookup("success")
	}

	browser, osName, device := analytics.ParseUserAgent(meta.UserAgent)

	event := model.ClickEvent{
		Timestamp: time.Now().UTC(),
		IP:        meta.IP,
		City:      loc.City,
		Region:    loc.Region,
		Country:   loc.Country,
		Browser:   browser,
		OS:        osName,
		Device:    device,
		Referrer:  meta.Referrer,
	}

	return s.store.AppendClickEvent(ctx, link.ID, event)
}

// ListForOwner returns all links owned by the caller, newest first.
func (s *LinkService) ListForOwner(ctx context.Context, ownerID string) ([]*model.Link, error) {
	return s.store.ListLinksByOwner(ctx, ownerID)
}

// DeleteLink hard-deletes a link after checking ownership.
func (s *LinkService) DeleteLink(ctx context.Context, linkID, userID string) error {
	link, err := s.store.GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	if link.OwnerID != userID {
		return ErrNotOwner
	}

	if err := s.store.DeleteLink(ctx, linkID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	s.metrics.IncLinkDeleted()

	return nil
}

// GetAnalytics returns the full click history for a link after checking
// ownership.
func (s *LinkService) GetAnalytics(ctx context.Context, linkID, userID string) (*model.Link, error) {
	link, err := s.store.GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	if link.OwnerID != userID {
		return nil, ErrNotOwner
	}

	return link, nil
}

// BaseURL returns the configured base URL.
func (s *LinkService) BaseURL() string {
	return s.baseURL
}

// ShortURL renders a short code as a fully-qualified URL.
func (s *LinkService) ShortURL(shortCode string) string {
	return s.baseURL + "/" + shortCode
}

// generateUniqueCode generates a short code with collision retry.
// The 62^7 code space makes collisions unlikely; the retry loop makes
// them harmless.
func (s *LinkService) generateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeRetries; i++ {
		code := randomShortCode()
		exists, err := s.store.ShortCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("failed to generate unique short code after retries")
}

// randomShortCode generates a random short code using crypto/rand.
func randomShortCode() string {
	b := make([]byte, shortCodeLength)
	for i := range b {
		idx, err := cryptoRandInt(len(codeAlphabet))
		if err != nil {
			// Fallback (should never happen in practice)
			idx = 0
		}
		b[i] = codeAlphabet[idx]
	}
	return string(b)
}

// cryptoRandInt returns a cryptographically secure random integer in [0, max).
func cryptoRandInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
