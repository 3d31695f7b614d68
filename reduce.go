package colorspectrum

import (
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/setanarut/colorspectrum/utils"
)

// Method selects how one image is reduced to a single color.
type Method int

const (
	// MethodMean averages every pixel per channel.
	MethodMean Method = iota
	// MethodDominant uses the strongest dominantcolor candidate.
	MethodDominant
	// MethodKMeans uses the most populated kmeans cluster center.
	MethodKMeans
)

func (m Method) String() string {
	switch m {
	case MethodDominant:
		return "dominant"
	case MethodKMeans:
		return "kmeans"
	default:
		return "mean"
	}
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mean", "average":
		return MethodMean, nil
	case "dominant", "dominantcolor":
		return MethodDominant, nil
	case "kmeans":
		return MethodKMeans, nil
	}
	return MethodMean, errors.Errorf("unknown method %q", s)
}

// ChannelAverages holds one scalar per channel in [0,255], not rounded.
type ChannelAverages struct {
	R, G, B float64
}

func (c ChannelAverages) Color() colorful.Color {
	return colorful.Color{R: c.R / 255, G: c.G / 255, B: c.B / 255}
}

// channelGrids is an image split into planar 8-bit R, G and B grids.
type channelGrids struct {
	W, H    int
	R, G, B []uint8 // len = W*H each
}

// splitChannels extracts non-premultiplied R, G and B values. Alpha is
// dropped.
func splitChannels(img image.Image) channelGrids {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	g := channelGrids{
		W: w,
		H: h,
		R: make([]uint8, w*h),
		G: make([]uint8, w*h),
		B: make([]uint8, w*h),
	}
	for y := range h {
		for x := range w {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := y*w + x
			g.R[i], g.G[i], g.B[i] = c.R, c.G, c.B
		}
	}
	return g
}

func (g channelGrids) mean() ChannelAverages {
	var r, gr, bl uint64
	for i := range g.R {
		r += uint64(g.R[i])
		gr += uint64(g.G[i])
		bl += uint64(g.B[i])
	}
	n := float64(g.W * g.H)
	return ChannelAverages{R: float64(r) / n, G: float64(gr) / n, B: float64(bl) / n}
}

// ChannelMeans returns the arithmetic mean of each channel over all pixels.
func ChannelMeans(img image.Image) (ChannelAverages, error) {
	if err := checkDimensions(img); err != nil {
		return ChannelAverages{}, err
	}
	return splitChannels(img).mean(), nil
}

func checkDimensions(img image.Image) error {
	b := img.Bounds()
	if b.Empty() {
		return errors.Errorf("image has no pixels (%dx%d)", b.Dx(), b.Dy())
	}
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return errors.New("single channel grayscale image")
	}
	return nil
}

func reduce(img image.Image, method Method, logger *zap.SugaredLogger) (ChannelAverages, error) {
	if method == MethodMean {
		return ChannelMeans(img)
	}
	if err := checkDimensions(img); err != nil {
		return ChannelAverages{}, err
	}

	pm := utils.PaletteMethodDominantColor
	if method == MethodKMeans {
		pm = utils.PaletteMethodKMeans
	}
	palette := utils.ExtractPalette(img, 1, pm, logger)
	if len(palette) == 0 {
		return ChannelAverages{}, errors.Errorf("no %s color found", method)
	}
	// Palette colors are 8-bit already; rounding keeps c.R*255 from landing
	// just under the integer and truncating one step down.
	r, g, b := palette[0].Clamped().RGB255()
	return ChannelAverages{R: float64(r), G: float64(g), B: float64(b)}, nil
}
