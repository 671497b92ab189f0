// Package security provides validation and safe logging of API keys.
package security

import (
	"regexp"
	"strings"
)

var (
	validKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	keyStripPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	hexPattern      = regexp.MustCompile(`^[a-fA-F0-9]+$`)
)

// APIKeyValidator provides secure validation and handling of API keys.
type APIKeyValidator struct {
	minLength int
	maxLength int
}

// NewAPIKeyValidator creates a new API key validator with reasonable defaults.
func NewAPIKeyValidator() *APIKeyValidator {
	return &APIKeyValidator{
		minLength: 8,
		maxLength: 128,
	}
}

// ValidateAPIKey validates API key format and length.
func (v *APIKeyValidator) ValidateAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}
	if len(apiKey) < v.minLength || len(apiKey) > v.maxLength {
		return false
	}
	return validKeyPattern.MatchString(apiKey)
}

// SanitizeAPIKey trims whitespace and strips characters that could be used
// for URL or header injection.
func (v *APIKeyValidator) SanitizeAPIKey(apiKey string) string {
	return keyStripPattern.ReplaceAllString(strings.TrimSpace(apiKey), "")
}

// MaskAPIKey creates a masked version for logging.
func (v *APIKeyValidator) MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return "[empty]"
	}
	if len(apiKey) <= 8 {
		return "[***]"
	}
	return apiKey[:3] + "..." + apiKey[len(apiKey)-3:]
}

// IsValidTMDBKey validates TMDB API key format specifically.
// TMDB v3 keys are 32 hexadecimal characters.
func (v *APIKeyValidator) IsValidTMDBKey(apiKey string) bool {
	if !v.ValidateAPIKey(apiKey) {
		return false
	}
	if len(apiKey) != 32 {
		return false
	}
	return hexPattern.MatchString(apiKey)
}
