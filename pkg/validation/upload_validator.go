package validation

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	apperrors "github.com/anime-shed/design-inspector-go/internal/errors"
)

// DefaultImageTypes are the MIME types the decoders can handle
var DefaultImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
}

// UploadValidator checks uploaded or fetched image bytes before decoding
type UploadValidator struct {
	maxBytes     int64
	allowedTypes []string
}

// NewUploadValidator creates a validator accepting DefaultImageTypes up to maxBytes
func NewUploadValidator(maxBytes int64) *UploadValidator {
	return &UploadValidator{
		maxBytes:     maxBytes,
		allowedTypes: DefaultImageTypes,
	}
}

// MaxBytes returns the size limit
func (v *UploadValidator) MaxBytes() int64 {
	return v.maxBytes
}

// ValidateSize rejects declared sizes above the limit
func (v *UploadValidator) ValidateSize(size int64) error {
	if v.maxBytes > 0 && size > v.maxBytes {
		return apperrors.NewTooLargeError(
			fmt.Sprintf("image exceeds maximum size of %d bytes", v.maxBytes), nil)
	}
	return nil
}

// ValidateContent sniffs the content type from the leading bytes and
// returns it when it is an accepted image type. The declared Content-Type
// of the upload is not trusted.
func (v *UploadValidator) ValidateContent(data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.NewValidationError("uploaded file is empty", nil)
	}
	if err := v.ValidateSize(int64(len(data))); err != nil {
		return "", err
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), v.allowedTypes...) {
		return "", apperrors.NewUnsupportedMediaError("unsupported file type", nil).
			WithDetails(fmt.Sprintf("detected %s", detected.String()))
	}
	return detected.String(), nil
}
