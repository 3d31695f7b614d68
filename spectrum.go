package colorspectrum

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/colorspectrum/plots"
)

// Spectrum holds the per-year channel averages of a year range. Each table
// is NumYears x BandWidth; row i belongs to year Start+i and repeats that
// year's average across the band.
type Spectrum struct {
	Start, End int
	BandWidth  int
	Method     Method

	Red   *mat.Dense
	Green *mat.Dense
	Blue  *mat.Dense
}

func newSpectrum(start, end, band int, method Method) *Spectrum {
	n := end - start
	return &Spectrum{
		Start:     start,
		End:       end,
		BandWidth: band,
		Method:    method,
		Red:       mat.NewDense(n, band, nil),
		Green:     mat.NewDense(n, band, nil),
		Blue:      mat.NewDense(n, band, nil),
	}
}

func (s *Spectrum) NumYears() int {
	return s.End - s.Start
}

func (s *Spectrum) set(year int, avg ChannelAverages) {
	row := year - s.Start
	for _, t := range []struct {
		m *mat.Dense
		v float64
	}{{s.Red, avg.R}, {s.Green, avg.G}, {s.Blue, avg.B}} {
		for col := range s.BandWidth {
			t.m.Set(row, col, t.v)
		}
	}
}

// Averages returns the unrounded averages of year.
func (s *Spectrum) Averages(year int) ChannelAverages {
	row := year - s.Start
	return ChannelAverages{R: s.Red.At(row, 0), G: s.Green.At(row, 0), B: s.Blue.At(row, 0)}
}

// narrow converts an average to 8 bits, truncating the fraction: 127.5 -> 127.
func narrow(v float64) uint8 {
	return uint8(max(0, min(255, v)))
}

// Image assembles the spectrum: BandWidth pixels wide, one row per year,
// opaque.
func (s *Spectrum) Image() *image.RGBA {
	n := s.NumYears()
	img := image.NewRGBA(image.Rect(0, 0, s.BandWidth, n))
	for y := range n {
		for x := range s.BandWidth {
			img.SetRGBA(x, y, color.RGBA{
				R: narrow(s.Red.At(y, x)),
				G: narrow(s.Green.At(y, x)),
				B: narrow(s.Blue.At(y, x)),
				A: 255,
			})
		}
	}
	return img
}

// Series returns one value per year for plotting.
func (s *Spectrum) Series() plots.Series {
	n := s.NumYears()
	years := make([]float64, n)
	for i := range years {
		years[i] = float64(s.Start + i)
	}
	return plots.Series{
		Years: years,
		Red:   mat.Col(nil, 0, s.Red),
		Green: mat.Col(nil, 0, s.Green),
		Blue:  mat.Col(nil, 0, s.Blue),
	}
}

// YearColor is the band color of one year.
type YearColor struct {
	Year int
	ChannelAverages
}

// Color returns the band color as it appears in the spectrum image.
func (c YearColor) Color() colorful.Color {
	return colorful.Color{
		R: float64(narrow(c.R)) / 255,
		G: float64(narrow(c.G)) / 255,
		B: float64(narrow(c.B)) / 255,
	}
}

func (c YearColor) Hex() string {
	return c.Color().Hex()
}

func (s *Spectrum) Colors() []YearColor {
	out := make([]YearColor, s.NumYears())
	for i := range out {
		year := s.Start + i
		out[i] = YearColor{Year: year, ChannelAverages: s.Averages(year)}
	}
	return out
}
