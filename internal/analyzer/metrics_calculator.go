package analyzer

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CalculateColorBalance expresses each channel mean as a percentage of the
// sum of all means. When every mean is zero the result is zero-filled.
func CalculateColorBalance(channels []ChannelStat) []float64 {
	means := make([]float64, len(channels))
	for i, ch := range channels {
		means[i] = ch.Mean
	}

	total := floats.Sum(means)
	balance := make([]float64, len(channels))
	if total == 0 {
		return balance
	}

	for i, m := range means {
		balance[i] = m / total * 100
	}
	return balance
}

// AnalyzeBalance compares total mean intensity against total deviation.
// Despite the name it is a global ratio, not a spatial left/right comparison.
func AnalyzeBalance(channels []ChannelStat) float64 {
	var meanSum, stdSum float64
	for _, ch := range channels {
		meanSum += ch.Mean
		stdSum += ch.Std
	}
	return relativeDifference(meanSum, stdSum)
}

// relativeDifference is |a-b| over the average of a and b, 0 when a+b == 0
func relativeDifference(a, b float64) float64 {
	avg := (a + b) / 2
	if avg == 0 {
		return 0
	}
	return math.Abs(a-b) / avg
}

// CalculateContrast returns the widest per-channel value spread
func CalculateContrast(channels []ChannelStat) float64 {
	contrast := 0.0
	for _, ch := range channels {
		contrast = math.Max(contrast, ch.Max-ch.Min)
	}
	return contrast
}

// CalculateAspectRatio returns width over height
func CalculateAspectRatio(meta ImageMetadata) float64 {
	return float64(meta.Width) / float64(meta.Height)
}
