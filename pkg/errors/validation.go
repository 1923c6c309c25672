package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// identifierRegex matches PopShops account and catalog identifiers.
var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateIdentifier validates an API credential identifier (account or catalog).
//
// The validation rules are intentionally conservative:
//   - No empty values
//   - Maximum length of 64 characters
//   - Only letters, digits, underscores and hyphens
//
// The field name is only used in the error message.
func ValidateIdentifier(field, value string) error {
	if value == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", field)
	}
	if len(value) > 64 {
		return New(ErrCodeInvalidInput, "%s too long (max 64 characters)", field)
	}
	if !identifierRegex.MatchString(value) {
		return New(ErrCodeInvalidInput, "%s contains invalid characters: %q", field, value)
	}
	return nil
}

// ValidateParamName validates a query parameter name forwarded to the API.
// It rejects names with control characters, separators or whitespace that
// would corrupt the query string.
func ValidateParamName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "parameter name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "parameter name contains invalid characters: %q", name)
		}
	}
	if strings.ContainsAny(name, "&=?#") {
		return New(ErrCodeInvalidInput, "parameter name contains reserved characters: %q", name)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
