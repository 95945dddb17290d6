package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/auth"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/handler/dto"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/middleware"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/service"
)

// LinkHandler handles HTTP requests for link operations.
type LinkHandler struct {
	svc    *service.LinkService
	logger *slog.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *service.LinkService, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /.
// Returns 201 for a new link, 200 when the idempotent short-circuit
// returned an existing one.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if fields := validateCreateLink(req); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
			Error:  "Validation failed",
			Code:   "VALIDATION_ERROR",
			Errors: fields,
		})
		return
	}

	userID := auth.MustUserIDFromContext(r.Context())

	input := service.CreateLinkInput{
		OwnerID:     userID,
		FullURL:     req.URL,
		CustomAlias: req.CustomURL,
	}

	link, existing, err := h.svc.CreateLink(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if existing {
		status = http.StatusOK
	} else {
		h.logger.Info("link_created",
			"link_id", link.ID,
			"short_code", link.ShortCode,
			"has_custom_alias", req.CustomURL != "",
		)
	}

	writeJSON(w, status, dto.ToLinkResponse(link, h.svc.BaseURL()))
}

// List handles GET /.
// Returns all of the caller's links, newest first.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	links, err := h.svc.ListForOwner(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkListResponse(links, h.svc.BaseURL()))
}

// Analytics handles GET /analytics/{id}.
func (h *LinkHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	userID := auth.MustUserIDFromContext(r.Context())

	link, err := h.svc.GetAnalytics(r.Context(), id, userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAnalyticsResponse(link, h.svc.BaseURL()))
}

// Delete handles DELETE /{id}.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	userID := auth.MustUserIDFromContext(r.Context())

	if err := h.svc.DeleteLink(r.Context(), id, userID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_deleted", "link_id", id, "user_id", userID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "URL deleted"})
}

// validateCreateLink returns field-level errors for a create request.
// The service re-validates; this layer exists to report per-field messages.
func validateCreateLink(req dto.CreateLinkRequest) []dto.FieldError {
	var fields []dto.FieldError

	if err := middleware.ValidateDestination(req.URL); err != nil {
		fields = append(fields, dto.FieldError{Field: "url", Message: "Please provide a valid URL"})
	}

	if req.CustomURL != "" {
		if err := middleware.ValidateShortCode(req.CustomURL); err != nil {
			fields = append(fields, dto.FieldError{Field: "customUrl", Message: customAliasMessage(err)})
		}
	}

	return fields
}

func customAliasMessage(err error) string {
	switch {
	case errors.Is(err, middleware.ErrAliasTooShort), errors.Is(err, middleware.ErrAliasTooLong):
		return "Custom URL must be between 3 and 30 characters"
	case errors.Is(err, middleware.ErrAliasReserved):
		return "Custom URL is reserved"
	default:
		return "Custom URL can only contain letters, numbers, hyphens, and underscores"
	}
}

// handleServiceError maps service errors to HTTP responses.
func (h *LinkHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		h.writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "URL not found")
	case errors.Is(err, service.ErrNotOwner):
		h.writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not own this URL")
	case errors.Is(err, service.ErrAliasExists):
		h.writeError(w, http.StatusConflict, "ALIAS_TAKEN", "Custom URL is already taken")
	case errors.Is(err, service.ErrInvalidDestination):
		h.writeError(w, http.StatusBadRequest, "INVALID_URL", "Please provide a valid URL")
	case errors.Is(err, service.ErrInvalidAlias):
		h.writeError(w, http.StatusBadRequest, "INVALID_ALIAS", "Invalid custom URL format")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *LinkHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
