package validation

import (
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/design-inspector-go/internal/errors"
)

// DefaultSchemes are the URL schemes the service can fetch from
var DefaultSchemes = []string{"http", "https", "azblob", "s3"}

// objectSchemes put a container or bucket name where a web URL has its host
var objectSchemes = map[string]bool{
	"azblob": true,
	"s3":     true,
}

// URLValidator checks image URLs before any source is contacted.
// An empty host list allows every host.
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator allows DefaultSchemes and any host
func NewURLValidator() *URLValidator {
	return NewURLValidatorWithOptions(DefaultSchemes, nil)
}

// NewURLValidatorWithOptions restricts schemes and, for http and https, hosts.
// Hosts are compared case-insensitively without the port.
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateImageURL returns a validation AppError describing the first problem found
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	raw := strings.TrimSpace(imageURL)
	if raw == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !contains(v.allowedSchemes, scheme, strings.EqualFold) {
		return apperrors.NewValidationError("URL scheme not allowed", nil).
			WithDetails("allowed schemes: " + strings.Join(v.allowedSchemes, ", "))
	}
	if parsed.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if objectSchemes[scheme] {
		if strings.Trim(parsed.Path, "/") == "" {
			return apperrors.NewValidationError("Object URL must name an object", nil).
				WithDetails("expected " + scheme + "://container/path")
		}
		return nil
	}

	if !v.isHostAllowed(parsed.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}
	return nil
}

func (v *URLValidator) isHostAllowed(host string) bool {
	return len(v.allowedHosts) == 0 || contains(v.allowedHosts, host, strings.EqualFold)
}

func contains(list []string, s string, eq func(a, b string) bool) bool {
	for _, item := range list {
		if eq(item, s) {
			return true
		}
	}
	return false
}
