package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/anime-shed/design-inspector-go/internal/analyzer"
	"github.com/anime-shed/design-inspector-go/internal/imagestats"
	"github.com/anime-shed/design-inspector-go/internal/logger"
	"github.com/anime-shed/design-inspector-go/internal/strategy"
	"github.com/anime-shed/design-inspector-go/pkg/models"
	"github.com/anime-shed/design-inspector-go/pkg/validation"
)

type fileResult struct {
	File   string         `json:"file"`
	Format string         `json:"format,omitempty"`
	Report *models.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func main() {
	var (
		lang       string
		fast       bool
		maxDim     int
		autoOrient bool
		maxBytes   int64
		verbose    bool
	)

	flag.StringVar(&lang, "lang", "en", "Recommendation language (en, tr)")
	flag.BoolVar(&fast, "fast", false, "Downsample before computing statistics")
	flag.IntVar(&maxDim, "max-dim", 1024, "Longest side in fast mode")
	flag.BoolVar(&autoOrient, "auto-orient", false, "Apply EXIF orientation before analysis")
	flag.Int64Var(&maxBytes, "max-bytes", 50<<20, "Reject files larger than this")
	flag.BoolVar(&verbose, "verbose", false, "Print debug information")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] image_files...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	if verbose {
		logger.SetLevel("debug")
	} else {
		logger.SetLevel("warn")
	}

	var sampling strategy.SamplingStrategy = strategy.NewFullResolutionStrategy()
	if fast {
		if maxDim <= 0 {
			fmt.Fprintf(os.Stderr, "ERROR: -max-dim must be positive\n")
			os.Exit(2)
		}
		sampling = strategy.NewDownsampledStrategy(maxDim)
	}

	provider := imagestats.NewProvider(imagestats.Options{
		AutoOrient: autoOrient,
		MaxPixels:  imagestats.DefaultMaxPixels,
		Strategy:   sampling,
	})
	engine := analyzer.NewEngine(analyzer.DefaultOptions())
	opts := analyzer.DefaultOptions().WithLocale(analyzer.MatchLocale(lang))
	uploads := validation.NewUploadValidator(maxBytes)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := make([]fileResult, 0, len(files))
	failed := 0
	for _, file := range files {
		res := inspect(ctx, file, uploads, provider, engine, opts)
		if res.Error != "" {
			failed++
			fmt.Fprintf(os.Stderr, "WARNING: Skipping '%s': %s\n", file, res.Error)
		}
		results = append(results, res)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func inspect(ctx context.Context, file string, uploads *validation.UploadValidator, provider imagestats.Provider, engine *analyzer.Engine, opts analyzer.Options) fileResult {
	res := fileResult{File: filepath.Clean(file)}

	data, err := os.ReadFile(file)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if _, err := uploads.ValidateContent(data); err != nil {
		res.Error = err.Error()
		return res
	}

	stats, err := provider.Compute(ctx, bytes.NewReader(data))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Format = stats.Metadata.Format

	logger.WithField("file", res.File).
		WithField("strategy", stats.Strategy).
		WithField("width", stats.Metadata.Width).
		WithField("height", stats.Metadata.Height).
		Debug("Computed channel statistics")

	report, err := engine.AnalyzeWithOptions(stats.Channels, stats.Metadata, opts)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Report = report
	return res
}
