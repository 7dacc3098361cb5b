package strategy

import (
	"image"

	"github.com/disintegration/imaging"
)

// SamplingStrategy decides which pixels feed the channel statistics
type SamplingStrategy interface {
	Prepare(img *image.NRGBA) *image.NRGBA
	GetStrategyName() string
}

// FullResolutionStrategy uses every pixel of the decoded image
type FullResolutionStrategy struct{}

// NewFullResolutionStrategy creates a new full resolution strategy
func NewFullResolutionStrategy() SamplingStrategy {
	return &FullResolutionStrategy{}
}

// Prepare returns the image unchanged
func (s *FullResolutionStrategy) Prepare(img *image.NRGBA) *image.NRGBA {
	return img
}

// GetStrategyName returns the strategy name
func (s *FullResolutionStrategy) GetStrategyName() string {
	return "full_resolution"
}

// DownsampledStrategy trades accuracy for speed on large images by
// shrinking them so the longest side is at most MaxDimension.
type DownsampledStrategy struct {
	MaxDimension int
}

// NewDownsampledStrategy creates a new downsampling strategy
func NewDownsampledStrategy(maxDimension int) SamplingStrategy {
	return &DownsampledStrategy{MaxDimension: maxDimension}
}

// Prepare shrinks img with a box filter when it exceeds the bound.
// Smaller images are returned as is.
func (s *DownsampledStrategy) Prepare(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	if s.MaxDimension <= 0 || (b.Dx() <= s.MaxDimension && b.Dy() <= s.MaxDimension) {
		return img
	}
	return imaging.Fit(img, s.MaxDimension, s.MaxDimension, imaging.Box)
}

// GetStrategyName returns the strategy name
func (s *DownsampledStrategy) GetStrategyName() string {
	return "downsampled"
}
