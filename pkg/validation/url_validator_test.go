package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/anime-shed/design-inspector-go/internal/errors"
)

func TestNewURLValidator_Defaults(t *testing.T) {
	v := NewURLValidator()
	assert.Equal(t, []string{"http", "https", "azblob", "s3"}, v.allowedSchemes)
	assert.Empty(t, v.allowedHosts)
	assert.True(t, v.isHostAllowed("anything.example"))
}

func TestValidateImageURL(t *testing.T) {
	testCases := []struct {
		name        string
		validator   *URLValidator
		url         string
		wantMessage string
	}{
		{"HTTP", NewURLValidator(), "http://example.com/image.jpg", ""},
		{"HTTPS subdomain", NewURLValidator(), "https://cdn.example.com/path/to/poster.gif", ""},
		{"IP host", NewURLValidator(), "http://192.168.1.1/image.jpg", ""},
		{"Upper-case scheme", NewURLValidator(), "HTTPS://example.com/upper.png", ""},
		{"Blob", NewURLValidator(), "azblob://designs/poster.png", ""},
		{"S3", NewURLValidator(), "s3://designs/2024/poster.png", ""},

		{"Empty", NewURLValidator(), "", "URL cannot be empty"},
		{"Whitespace", NewURLValidator(), " \t\n", "URL cannot be empty"},
		{"Unparseable", NewURLValidator(), "://missing-scheme", "Invalid URL format"},
		{"Bare word", NewURLValidator(), "not-a-url", "URL scheme not allowed"},
		{"FTP", NewURLValidator(), "ftp://example.com/image.jpg", "URL scheme not allowed"},
		{"File", NewURLValidator(), "file://local/path/image.jpg", "URL scheme not allowed"},
		{"Data URL", NewURLValidator(), "data:image/png;base64,iVBORw0KGgo=", "URL scheme not allowed"},
		{"No host", NewURLValidator(), "http://", "URL must have a valid host"},
		{"Empty host with path", NewURLValidator(), "http:///path", "URL must have a valid host"},
		{"Blob without name", NewURLValidator(), "azblob://designs/", "Object URL must name an object"},
		{"S3 without key", NewURLValidator(), "s3://designs", "Object URL must name an object"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.validator.ValidateImageURL(tc.url)
			if tc.wantMessage == "" {
				assert.NoError(t, err)
				return
			}

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
			assert.Equal(t, tc.wantMessage, appErr.Message)
		})
	}
}

func TestValidateImageURL_RestrictedHosts(t *testing.T) {
	v := NewURLValidatorWithOptions([]string{"http", "https", "azblob", "s3"}, []string{"example.com", "trusted.com"})

	for _, allowed := range []string{
		"http://example.com/image.jpg",
		"https://trusted.com/image.png",
		"https://Example.com:8443/image.png",
		// object stores ignore host restrictions
		"azblob://designs/2024/banner.jpg",
		"s3://designs/2024/banner.jpg",
	} {
		assert.NoError(t, v.ValidateImageURL(allowed), allowed)
	}

	for _, denied := range []string{"http://malicious.com/image.jpg", "https://untrusted.com/image.png"} {
		err := v.ValidateImageURL(denied)
		require.Error(t, err, denied)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	}
}

func TestValidateImageURL_SchemeDetails(t *testing.T) {
	v := NewURLValidatorWithOptions([]string{"https"}, nil)

	err := v.ValidateImageURL("http://example.com/a.png")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "allowed schemes: https", appErr.Details)
}
