package analyzer

// DesignAnalyzer turns channel statistics into a report
type DesignAnalyzer interface {
	Analyze(channels []ChannelStat, meta ImageMetadata) (*Report, error)
	AnalyzeWithOptions(channels []ChannelStat, meta ImageMetadata, opts Options) (*Report, error)
}
