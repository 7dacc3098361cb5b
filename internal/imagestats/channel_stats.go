package imagestats

import (
	"context"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/design-inspector-go/pkg/models"
)

const (
	numChannels = 3
	numBins     = 256
	// rows between cancellation checks
	ctxCheckRows = 32
)

type histogram [numChannels][numBins]float64

// binValues holds the 0..255 intensity for each histogram bin
var binValues = func() []float64 {
	v := make([]float64, numBins)
	for i := range v {
		v[i] = float64(i)
	}
	return v
}()

// ComputeChannelStats returns mean, sample standard deviation, min and max
// for the red, green and blue channels of img. Alpha is ignored.
// Rows are split into horizontal strips processed in parallel.
func ComputeChannelStats(ctx context.Context, img *image.NRGBA, workers int) ([]models.ChannelStat, error) {
	bounds := img.Bounds()
	height := bounds.Dy()

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if height < workers {
		workers = height
	}
	if workers == 0 {
		workers = 1
	}
	rowsPerWorker := (height + workers - 1) / workers // ceil division

	partials := make([]histogram, workers)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < workers; i++ {
		startY := bounds.Min.Y + i*rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > bounds.Max.Y {
			endY = bounds.Max.Y
		}
		hist := &partials[i]
		g.Go(func() error {
			return accumulateStrip(gctx, img, startY, endY, hist)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total histogram
	for i := range partials {
		for c := 0; c < numChannels; c++ {
			for b := 0; b < numBins; b++ {
				total[c][b] += partials[i][c][b]
			}
		}
	}

	channels := make([]models.ChannelStat, numChannels)
	for c := 0; c < numChannels; c++ {
		channels[c] = statsFromHistogram(total[c][:])
	}
	return channels, nil
}

func accumulateStrip(ctx context.Context, img *image.NRGBA, startY, endY int, hist *histogram) error {
	bounds := img.Bounds()
	rowBytes := bounds.Dx() * 4

	for y := startY; y < endY; y++ {
		if (y-startY)%ctxCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		off := img.PixOffset(bounds.Min.X, y)
		row := img.Pix[off : off+rowBytes]
		for i := 0; i < len(row); i += 4 {
			hist[0][row[i]]++
			hist[1][row[i+1]]++
			hist[2][row[i+2]]++
		}
	}
	return nil
}

// statsFromHistogram derives channel statistics from 256 bin counts.
// A single sample has a standard deviation of 0.
func statsFromHistogram(counts []float64) models.ChannelStat {
	var n float64
	minBin, maxBin := -1, -1
	for b, c := range counts {
		if c == 0 {
			continue
		}
		n += c
		if minBin < 0 {
			minBin = b
		}
		maxBin = b
	}
	if n == 0 {
		return models.ChannelStat{}
	}

	mean, std := stat.MeanStdDev(binValues, counts)
	if n <= 1 {
		std = 0
	}

	return models.ChannelStat{
		Mean: mean,
		Std:  std,
		Min:  float64(minBin),
		Max:  float64(maxBin),
	}
}
