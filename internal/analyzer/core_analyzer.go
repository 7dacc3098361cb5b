package analyzer

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for malformed channel lists or metadata
var ErrInvalidInput = errors.New("invalid analysis input")

// Engine implements DesignAnalyzer. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	options Options
}

// NewEngine creates an engine whose Analyze method uses opts
func NewEngine(opts Options) *Engine {
	return &Engine{options: opts}
}

// Analyze builds a report using the engine's default options
func (e *Engine) Analyze(channels []ChannelStat, meta ImageMetadata) (*Report, error) {
	return e.AnalyzeWithOptions(channels, meta, e.options)
}

// AnalyzeWithOptions builds the color analysis, the composition analysis and
// the recommendations for one image.
func (e *Engine) AnalyzeWithOptions(channels []ChannelStat, meta ImageMetadata, opts Options) (*Report, error) {
	if err := ValidateInput(channels, meta); err != nil {
		return nil, err
	}

	dominant := make([]DominantColor, len(channels))
	for i, ch := range channels {
		dominant[i] = DominantColor{
			Channel: channelNames[i],
			Mean:    ch.Mean,
			Std:     ch.Std,
		}
	}

	color := ColorAnalysis{
		DominantColors: dominant,
		ColorBalance:   CalculateColorBalance(channels),
	}

	composition := CompositionAnalysis{
		AspectRatio: CalculateAspectRatio(meta),
		Balance:     AnalyzeBalance(channels),
		Contrast:    CalculateContrast(channels),
	}

	return &Report{
		ColorAnalysis:       color,
		CompositionAnalysis: composition,
		Recommendations:     GenerateRecommendations(color, composition, opts),
	}, nil
}

// ValidateInput rejects channel lists and metadata the engine cannot analyze.
// The returned error wraps ErrInvalidInput.
func ValidateInput(channels []ChannelStat, meta ImageMetadata) error {
	if meta.Width <= 0 || meta.Height <= 0 {
		return fmt.Errorf("%w: image dimensions must be positive (got %dx%d)", ErrInvalidInput, meta.Width, meta.Height)
	}
	if len(channels) == 0 || len(channels) > MaxChannels {
		return fmt.Errorf("%w: expected 1 to %d channels, got %d", ErrInvalidInput, MaxChannels, len(channels))
	}

	for i, ch := range channels {
		name := channelNames[i]
		for _, v := range [...]float64{ch.Mean, ch.Std, ch.Min, ch.Max} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s channel contains a non-finite value", ErrInvalidInput, name)
			}
		}
		if ch.Mean < 0 {
			return fmt.Errorf("%w: %s channel mean is negative (%g)", ErrInvalidInput, name, ch.Mean)
		}
		if ch.Std < 0 {
			return fmt.Errorf("%w: %s channel std is negative (%g)", ErrInvalidInput, name, ch.Std)
		}
		if ch.Min > ch.Max {
			return fmt.Errorf("%w: %s channel min %g exceeds max %g", ErrInvalidInput, name, ch.Min, ch.Max)
		}
	}
	return nil
}
