package analyzer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateColorBalance_SumsToHundred(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(MaxChannels)
		channels := make([]ChannelStat, n)
		for j := range channels {
			channels[j] = ChannelStat{Mean: rng.Float64() * 255}
		}
		channels[0].Mean += 0.5

		sum := 0.0
		for _, v := range CalculateColorBalance(channels) {
			sum += v
		}
		assert.InDelta(t, 100.0, sum, 1e-9)
	}
}

func TestCalculateColorBalance_ZeroFill(t *testing.T) {
	balance := CalculateColorBalance([]ChannelStat{{}, {}, {}})
	assert.Equal(t, []float64{0, 0, 0}, balance)

	assert.Empty(t, CalculateColorBalance(nil))
}

func TestCalculateContrast(t *testing.T) {
	testCases := []struct {
		name     string
		channels []ChannelStat
		want     float64
	}{
		{"Single channel", []ChannelStat{{Min: 50, Max: 200}}, 150},
		{"Widest spread wins", exampleChannels(), 40},
		{"Flat channels", []ChannelStat{{Min: 128, Max: 128}, {Min: 7, Max: 7}}, 0},
		{"Empty", nil, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateContrast(tc.channels)
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestAnalyzeBalance(t *testing.T) {
	// means 240, stds 20
	assert.InDelta(t, 220.0/130.0, AnalyzeBalance(exampleChannels()), 1e-12)

	// equal totals
	assert.Equal(t, 0.0, AnalyzeBalance([]ChannelStat{{Mean: 40, Std: 40}}))

	// degenerate
	assert.Equal(t, 0.0, AnalyzeBalance([]ChannelStat{{}, {}}))
}

func TestRelativeDifference_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		a := rng.Float64() * 765
		b := rng.Float64() * 400
		assert.InDelta(t, relativeDifference(a, b), relativeDifference(b, a), 1e-12)
		assert.GreaterOrEqual(t, relativeDifference(a, b), 0.0)
	}
}

func TestCalculateAspectRatio(t *testing.T) {
	assert.InDelta(t, 16.0/9.0, CalculateAspectRatio(ImageMetadata{Width: 1600, Height: 900}), 1e-12)
	assert.Equal(t, 0.5, CalculateAspectRatio(ImageMetadata{Width: 50, Height: 100}))
}
