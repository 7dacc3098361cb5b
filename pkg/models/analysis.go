package models

// Report is the complete result of a design analysis.
// Shared by the analyzer, the service layer and the HTTP transport.
type Report struct {
	ColorAnalysis       ColorAnalysis       `json:"colorAnalysis"`
	CompositionAnalysis CompositionAnalysis `json:"compositionAnalysis"`
	Recommendations     []string            `json:"recommendations"`
}

// ColorAnalysis summarizes each channel and its share of total intensity.
// ColorBalance is parallel to DominantColors.
type ColorAnalysis struct {
	DominantColors []DominantColor `json:"dominantColors"`
	ColorBalance   []float64       `json:"colorBalance"`
}

// DominantColor is the per-channel summary exposed to callers
type DominantColor struct {
	Channel string  `json:"channel"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
}

// CompositionAnalysis holds the coarse layout heuristics.
// Balance compares total mean against total deviation; it carries no spatial information.
type CompositionAnalysis struct {
	AspectRatio float64 `json:"aspectRatio"`
	Balance     float64 `json:"balance"`
	Contrast    float64 `json:"contrast"`
}

// ChannelStat holds aggregate statistics for one color channel, 0-255 domain
type ChannelStat struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// ImageMetadata contains metadata about a decoded image
type ImageMetadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format,omitempty"`
}
