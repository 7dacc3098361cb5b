package analyzer

import "golang.org/x/text/language"

// Recommendation thresholds. Comparisons against them are strict.
const (
	// DefaultColorDominanceThreshold is the colorBalance percentage above which
	// a single channel is considered dominant.
	DefaultColorDominanceThreshold = 50.0
	// DefaultBalanceThreshold is the balance ratio above which elements are
	// considered unevenly distributed.
	DefaultBalanceThreshold = 0.2
	// DefaultMinContrast is the per-channel spread below which the design is low contrast.
	DefaultMinContrast = 50.0
)

// Thresholds drive the recommendation checks
type Thresholds struct {
	ColorDominance float64
	Balance        float64
	MinContrast    float64
}

// DefaultThresholds returns the stock recommendation thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		ColorDominance: DefaultColorDominanceThreshold,
		Balance:        DefaultBalanceThreshold,
		MinContrast:    DefaultMinContrast,
	}
}

// Options configures a single analysis run
type Options struct {
	Thresholds Thresholds
	// Locale selects the recommendation language; always one of SupportedLocales.
	Locale language.Tag
}

// DefaultOptions returns default analysis options
func DefaultOptions() Options {
	return Options{
		Thresholds: DefaultThresholds(),
		Locale:     language.English,
	}
}

// WithThresholds returns options using custom recommendation thresholds
func (opts Options) WithThresholds(t Thresholds) Options {
	opts.Thresholds = t
	return opts
}

// WithLocale returns options whose recommendations use the closest supported locale
func (opts Options) WithLocale(tag language.Tag) Options {
	opts.Locale = closestLocale(tag)
	return opts
}
