package handler

import (
	"net/http"
	"testing"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/handler/dto"
)

func TestRedirect(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "owner@example.com")

	created := decodeJSON[dto.LinkResponse](t, ts.do(t, http.MethodPost, "/", token, map[string]string{
		"url": "https://example.com/landing",
	}))

	rec := ts.do(t, http.MethodGet, "/"+created.ShortCode, "", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://example.com/landing" {
		t.Errorf("expected redirect to destination, got %q", loc)
	}
}

func TestRedirect_NoAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "owner@example.com")

	created := decodeJSON[dto.LinkResponse](t, ts.do(t, http.MethodPost, "/", token, map[string]string{
		"url": "https://example.com/landing",
	}))

	// No Authorization header on purpose.
	rec := ts.do(t, http.MethodGet, "/"+created.ShortCode, "", nil)
	if rec.Code != http.StatusFound {
		t.Errorf("redirect must be public, got %d", rec.Code)
	}
}

func TestRedirect_UnknownCode(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/zzzzzzz", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeJSON[dto.ErrorResponse](t, rec)
	if body.Code != "LINK_NOT_FOUND" {
		t.Errorf("expected code LINK_NOT_FOUND, got %q", body.Code)
	}
}

func TestRedirect_RecordsClicks(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "owner@example.com")

	created := decodeJSON[dto.LinkResponse](t, ts.do(t, http.MethodPost, "/", token, map[string]string{
		"url": "https://example.com/landing",
	}))

	for i := 0; i < 3; i++ {
		if rec := ts.do(t, http.MethodGet, "/"+created.ShortCode, "", nil); rec.Code != http.StatusFound {
			t.Fatalf("redirect %d failed: %d", i, rec.Code)
		}
	}
	waitForClicks(t, ts, created.ID, 3)

	rec := ts.do(t, http.MethodGet, "/analytics/"+created.ID, token, nil)
	body := decodeJSON[dto.AnalyticsResponse](t, rec)
	if body.ClickCount != 3 {
		t.Errorf("expected 3 clicks, got %d", body.ClickCount)
	}
	if int64(len(body.ClickEvents)) != body.ClickCount {
		t.Error("click count must equal the number of click events")
	}
}
