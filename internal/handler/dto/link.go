// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"encoding/base64"
	"time"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/model"
)

// CreateLinkRequest represents the request body for creating a short link.
type CreateLinkRequest struct {
	URL       string `json:"url"`
	CustomURL string `json:"customUrl,omitempty"`
}

// LinkResponse represents a link in API responses.
// ShortURL is fully qualified (base URL + code); QRCode is a base64 PNG
// when rendering was enabled at creation time.
type LinkResponse struct {
	ID         string    `json:"id"`
	ShortCode  string    `json:"short_code"`
	ShortURL   string    `json:"short_url"`
	FullURL    string    `json:"full_url"`
	ClickCount int64     `json:"click_count"`
	QRCode     string    `json:"qr_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClickEventResponse represents one recorded click.
type ClickEventResponse struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	City      string    `json:"city"`
	Region    string    `json:"region"`
	Country   string    `json:"country"`
	Browser   string    `json:"browser,omitempty"`
	OS        string    `json:"os,omitempty"`
	Device    string    `json:"device,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
}

// AnalyticsResponse represents the click history for a single link.
type AnalyticsResponse struct {
	ID          string               `json:"id"`
	ShortURL    string               `json:"short_url"`
	FullURL     string               `json:"full_url"`
	ClickCount  int64                `json:"click_count"`
	ClickEvents []ClickEventResponse `json:"click_events"`
	QRCode      string               `json:"qr_code,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// MessageResponse is a simple confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries field-level validation failures.
type ValidationErrorResponse struct {
	Error  string       `json:"error"`
	Code   string       `json:"code"`
	Errors []FieldError `json:"errors"`
}

// ToLinkResponse converts a Link model to LinkResponse DTO.
func ToLinkResponse(link *model.Link, baseURL string) *LinkResponse {
	return &LinkResponse{
		ID:         link.ID,
		ShortCode:  link.ShortCode,
		ShortURL:   baseURL + "/" + link.ShortCode,
		FullURL:    link.FullURL,
		ClickCount: link.ClickCount,
		QRCode:     encodeQR(link.QRCode),
		CreatedAt:  link.CreatedAt,
	}
}

// ToLinkListResponse converts a slice of Link models for transport.
func ToLinkListResponse(links []*model.Link, baseURL string) []LinkResponse {
	responses := make([]LinkResponse, len(links))
	for i, link := range links {
		responses[i] = *ToLinkResponse(link, baseURL)
	}
	return responses
}

// ToAnalyticsResponse converts a Link and its embedded click events.
func ToAnalyticsResponse(link *model.Link, baseURL string) *AnalyticsResponse {
	events := make([]ClickEventResponse, len(link.ClickEvents))
	for i, e := range link.ClickEvents {
		events[i] = ClickEventResponse{
			Timestamp: e.Timestamp,
			IP:        e.IP,
			City:      e.City,
			Region:    e.Region,
			Country:   e.Country,
			Browser:   e.Browser,
			OS:        e.OS,
			Device:    e.Device,
			Referrer:  e.Referrer,
		}
	}

	return &AnalyticsResponse{
		ID:          link.ID,
		ShortURL:    baseURL + "/" + link.ShortCode,
		FullURL:     link.FullURL,
		ClickCount:  link.ClickCount,
		ClickEvents: events,
		QRCode:      encodeQR(link.QRCode),
		CreatedAt:   link.CreatedAt,
	}
}

// encodeQR renders QR PNG bytes as a data URL for JSON transport.
func encodeQR(png []byte) string {
	if len(png) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
