package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrUnsupportedSource indicates no source is configured for the URL scheme
	ErrUnsupportedSource = errors.New("unsupported image source")
)
