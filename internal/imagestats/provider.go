package imagestats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	// Extra decoders beyond the jpeg/png/gif set imaging registers.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/anime-shed/design-inspector-go/internal/strategy"
	"github.com/anime-shed/design-inspector-go/pkg/models"
)

// DefaultMaxPixels caps width*height before any pixel buffer is allocated.
const DefaultMaxPixels = 100_000_000

var (
	// ErrDecode is returned when the bytes are not a decodable image
	ErrDecode = errors.New("failed to decode image")
	// ErrTooManyPixels is returned when the header declares more than MaxPixels
	ErrTooManyPixels = errors.New("image dimensions exceed pixel limit")
)

// Result holds the statistics and metadata for one image.
// Channels are always red, green, blue in that order.
type Result struct {
	Channels []models.ChannelStat
	Metadata models.ImageMetadata
	Strategy string
}

// Provider decodes an image and computes per-channel statistics
type Provider interface {
	Compute(ctx context.Context, r io.Reader) (*Result, error)
}

// Options configures the provider
type Options struct {
	AutoOrient bool
	MaxPixels  int
	Workers    int
	Strategy   strategy.SamplingStrategy
}

// DefaultOptions returns full resolution sampling without EXIF orientation
func DefaultOptions() Options {
	return Options{
		MaxPixels: DefaultMaxPixels,
		Strategy:  strategy.NewFullResolutionStrategy(),
	}
}

type provider struct {
	opts Options
}

// NewProvider creates a provider backed by imaging and x/image decoders
func NewProvider(opts Options) Provider {
	if opts.Strategy == nil {
		opts.Strategy = strategy.NewFullResolutionStrategy()
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	return &provider{opts: opts}
}

// Compute reads the whole image, decodes it and returns its statistics.
// Metadata reports the decoded dimensions even when the strategy samples fewer pixels.
func (p *provider) Compute(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image (%dx%d)", ErrDecode, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(p.opts.MaxPixels) {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(p.opts.AutoOrient))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	// Clone normalizes every color model to 8-bit non-premultiplied NRGBA.
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	meta := models.ImageMetadata{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}

	sampled := p.opts.Strategy.Prepare(nrgba)
	channels, err := ComputeChannelStats(ctx, sampled, p.opts.Workers)
	if err != nil {
		return nil, err
	}

	return &Result{
		Channels: channels,
		Metadata: meta,
		Strategy: p.opts.Strategy.GetStrategyName(),
	}, nil
}
