package middleware

import (
	"errors"
	"net/url"
	"regexp"
)

// Validation limits.
const (
	// MinAliasLength is the minimum length for a custom alias.
	MinAliasLength = 3

	// MaxAliasLength is the maximum length for a custom alias.
	MaxAliasLength = 30

	// MaxDestinationURLLength is the maximum length for destination URLs.
	MaxDestinationURLLength = 2048
)

// Validation errors.
var (
	ErrAliasTooLong       = errors.New("custom alias exceeds maximum length")
	ErrAliasTooShort      = errors.New("custom alias is too short")
	ErrAliasInvalid       = errors.New("custom alias contains invalid characters")
	ErrAliasReserved      = errors.New("custom alias is reserved")
	ErrDestinationTooLong = errors.New("URL exceeds maximum length")
	ErrDestinationInvalid = errors.New("URL is invalid")
)

// ReservedAliases contains short codes that cannot be used as custom aliases.
// These collide with system routes.
var ReservedAliases = map[string]bool{
	"api":       true,
	"analytics": true,
	"healthz":   true,
	"readyz":    true,
	"auth":      true,
	"login":     true,
	"register":  true,
	"static":    true,
	"assets":    true,
	"favicon":   true,
	"robots":    true,
}

// validAliasPattern matches valid custom alias characters.
// Allowed: a-z, A-Z, 0-9, hyphen, underscore
var validAliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateShortCode validates a short code for use as a custom alias.
// An empty code is valid; one is generated instead.
func ValidateShortCode(code string) error {
	if code == "" {
		return nil
	}

	if len(code) < MinAliasLength {
		return ErrAliasTooShort
	}

	if len(code) > MaxAliasLength {
		return ErrAliasTooLong
	}

	if !validAliasPattern.MatchString(code) {
		return ErrAliasInvalid
	}

	if ReservedAliases[code] {
		return ErrAliasReserved
	}

	return nil
}

// ValidateDestination validates a destination URL.
// Only absolute http/https URLs with a host are accepted.
func ValidateDestination(dest string) error {
	if dest == "" {
		return ErrDestinationInvalid
	}

	if len(dest) > MaxDestinationURLLength {
		return ErrDestinationTooLong
	}

	parsed, err := url.Parse(dest)
	if err != nil {
		return ErrDestinationInvalid
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrDestinationInvalid
	}

	if parsed.Host == "" {
		return ErrDestinationInvalid
	}

	return nil
}
