package repository

import "context"

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage retrieves raw image bytes from a URL
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}
