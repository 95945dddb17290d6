package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/handler/dto"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/service"
)

const minPasswordLength = 6

// Good enough for boundary validation; real verification happens when the
// address receives mail.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if fields := validateRegister(req); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
			Error:  "Validation failed",
			Code:   "VALIDATION_ERROR",
			Errors: fields,
		})
		return
	}

	token, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			h.writeError(w, http.StatusConflict, "USER_EXISTS", "User already exists")
			return
		}
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusCreated, dto.TokenResponse{Token: token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_CREDENTIALS", "Please provide email and password")
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
			return
		}
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

// validateRegister returns field-level errors for a registration request.
func validateRegister(req dto.RegisterRequest) []dto.FieldError {
	var fields []dto.FieldError

	if req.Name == "" {
		fields = append(fields, dto.FieldError{Field: "name", Message: "Name is required"})
	}
	if req.Email == "" {
		fields = append(fields, dto.FieldError{Field: "email", Message: "Email is required"})
	} else if !emailPattern.MatchString(req.Email) {
		fields = append(fields, dto.FieldError{Field: "email", Message: "Email is not valid"})
	}
	if len(req.Password) < minPasswordLength {
		fields = append(fields, dto.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}

	return fields
}

// writeError writes an error response.
func (h *AuthHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
