package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/design-inspector-go/internal/errors"
	"github.com/anime-shed/design-inspector-go/internal/storage"
	"github.com/anime-shed/design-inspector-go/pkg/validation"
)

// SourceImageRepository implements ImageRepository by dispatching on the URL
// scheme to the configured storage backends.
type SourceImageRepository struct {
	sources   map[string]storage.ImageFetcher
	validator *validation.URLValidator
}

// NewImageRepository creates a repository; sources maps a lowercase URL
// scheme such as "https" or "azblob" to its fetcher.
func NewImageRepository(validator *validation.URLValidator, sources map[string]storage.ImageFetcher) ImageRepository {
	return &SourceImageRepository{
		sources:   sources,
		validator: validator,
	}
}

// FetchImage retrieves raw image bytes from a URL
func (r *SourceImageRepository) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	fetcher, err := r.fetcherFor(imageURL)
	if err != nil {
		return nil, err
	}
	return fetcher.FetchImage(ctx, imageURL)
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *SourceImageRepository) ValidateImageURL(imageURL string) error {
	if err := r.validator.ValidateImageURL(imageURL); err != nil {
		return err
	}
	if _, err := r.fetcherFor(imageURL); err != nil {
		return apperrors.NewValidationError("no image source configured for URL scheme", err)
	}
	return nil
}

func (r *SourceImageRepository) fetcherFor(imageURL string) (storage.ImageFetcher, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageURL, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	fetcher, ok := r.sources[scheme]
	if !ok || fetcher == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, scheme)
	}
	return fetcher, nil
}
