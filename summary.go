package colorspectrum

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChannelSummary describes one channel across the whole year range.
type ChannelSummary struct {
	Mean    float64
	StdDev  float64
	Min     float64
	MinYear int
	Max     float64
	MaxYear int
}

type Summary struct {
	Red, Green, Blue ChannelSummary
}

func summarize(start int, xs []float64) ChannelSummary {
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 || math.IsNaN(std) {
		std = 0
	}
	lo, hi := floats.MinIdx(xs), floats.MaxIdx(xs)
	return ChannelSummary{
		Mean:    mean,
		StdDev:  std,
		Min:     xs[lo],
		MinYear: start + lo,
		Max:     xs[hi],
		MaxYear: start + hi,
	}
}

// Summary reports per-channel statistics over the per-year averages. The
// standard deviation is the sample one and is 0 for a single year.
func (s *Spectrum) Summary() Summary {
	ser := s.Series()
	return Summary{
		Red:   summarize(s.Start, ser.Red),
		Green: summarize(s.Start, ser.Green),
		Blue:  summarize(s.Start, ser.Blue),
	}
}
