package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/analytics"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/handler/dto"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/metrics"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/service"
)

// RedirectHandler serves the public short-link redirect endpoint.
type RedirectHandler struct {
	svc     *service.LinkService
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewRedirectHandler creates a new RedirectHandler.
func NewRedirectHandler(svc *service.LinkService, logger *slog.Logger, recorder metrics.Recorder) *RedirectHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RedirectHandler{
		svc:     svc,
		logger:  logger,
		metrics: recorder,
	}
}

// Redirect handles GET /{shortCode}.
// Click recording happens off the request path so the redirect is never
// delayed by geolocation.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	shortCode := chi.URLParam(r, "shortCode")
	if shortCode == "" {
		h.notFound(w)
		return
	}

	link, err := h.svc.Resolve(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			h.notFound(w)
			return
		}
		h.logger.Error("redirect_lookup_failed", "short_code", shortCode, "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	h.svc.RecordClickAsync(link, analytics.FromRequest(r))

	h.metrics.IncRedirect()
	h.metrics.ObserveRedirectDuration(time.Since(start))

	http.Redirect(w, r, link.FullURL, http.StatusFound)
}

func (h *RedirectHandler) notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, dto.ErrorResponse{
		Error: "URL not found",
		Code:  "LINK_NOT_FOUND",
	})
}
