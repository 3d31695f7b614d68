// Package plots renders per-year channel averages as three stacked line
// charts, one per color channel.
package plots

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/draw"

	"github.com/setanarut/colorspectrum/utils"
)

// Series holds one value per year for each channel. All slices share the
// Years axis.
type Series struct {
	Years []float64
	Red   []float64
	Green []float64
	Blue  []float64
}

func (s Series) validate() error {
	n := len(s.Years)
	if n == 0 {
		return errors.New("plots: empty series")
	}
	if len(s.Red) != n || len(s.Green) != n || len(s.Blue) != n {
		return errors.Errorf("plots: series length mismatch: years=%d r=%d g=%d b=%d",
			n, len(s.Red), len(s.Green), len(s.Blue))
	}
	return nil
}

type Options struct {
	// Width of the figure in pixels.
	Width int
	// Height of each of the three panels.
	PanelHeight int
	// Upper bound on labeled x ticks; years are thinned to fit.
	MaxTicks int
}

func DefaultOptions() Options {
	return Options{
		Width:       800,
		PanelHeight: 260,
		MaxTicks:    12,
	}
}

type panel struct {
	title string
	yName string
	color drawing.Color
	ys    []float64
}

func panels(s Series) []panel {
	return []panel{
		{"Average Red Value", "R [0-255]", drawing.Color{R: 220, G: 30, B: 30, A: 255}, s.Red},
		{"Average Green Value", "G [0-255]", drawing.Color{R: 30, G: 150, B: 40, A: 255}, s.Green},
		{"Average Blue Value", "B [0-255]", drawing.Color{R: 30, G: 60, B: 220, A: 255}, s.Blue},
	}
}

// Render draws the red, green and blue panels top to bottom into one image.
func Render(s Series, opt Options) (*image.RGBA, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if opt.Width <= 0 || opt.PanelHeight <= 0 {
		def := DefaultOptions()
		opt.Width, opt.PanelHeight = def.Width, def.PanelHeight
	}

	rendered := make([]image.Image, 0, 3)
	for _, p := range panels(s) {
		img, err := renderPanel(s.Years, p, opt)
		if err != nil {
			return nil, errors.Wrapf(err, "render %q", p.title)
		}
		rendered = append(rendered, img)
	}
	return Stack(rendered), nil
}

// Save renders s and writes it to path; the encoder follows the extension.
func Save(path string, s Series, opt Options) error {
	img, err := Render(s, opt)
	if err != nil {
		return err
	}
	return utils.SaveImage(img, path, utils.DefaultEncodeOptions())
}

// Stack places images vertically, left aligned, in order.
func Stack(images []image.Image) *image.RGBA {
	w, h := 0, 0
	for _, img := range images {
		b := img.Bounds()
		w = max(w, b.Dx())
		h += b.Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	y := 0
	for _, img := range images {
		b := img.Bounds()
		draw.Draw(out, image.Rect(0, y, b.Dx(), y+b.Dy()), img, b.Min, draw.Src)
		y += b.Dy()
	}
	return out
}

func renderPanel(years []float64, p panel, opt Options) (image.Image, error) {
	xs, ys := years, p.ys
	// go-chart cannot draw a zero-width range, so a lone year becomes a flat
	// segment one year wide.
	if len(xs) == 1 {
		xs = []float64{xs[0] - 0.5, xs[0] + 0.5}
		ys = []float64{ys[0], ys[0]}
	}

	ch := chart.Chart{
		Title:      p.title,
		TitleStyle: chart.Style{FontSize: 14},
		Width:      opt.Width,
		Height:     opt.PanelHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Date [years]",
			Range: &chart.ContinuousRange{Min: xs[0], Max: xs[len(xs)-1]},
			Ticks: yearTicks(years, opt.MaxTicks),
		},
		YAxis: chart.YAxis{
			Name:  p.yName,
			Range: &chart.ContinuousRange{Min: 0, Max: 255},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    p.yName,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: p.color,
					StrokeWidth: 2,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func yearTicks(years []float64, maxTicks int) []chart.Tick {
	if maxTicks <= 0 {
		maxTicks = DefaultOptions().MaxTicks
	}
	step := int(math.Ceil(float64(len(years)) / float64(maxTicks)))
	ticks := make([]chart.Tick, 0, maxTicks+1)
	for i := 0; i < len(years); i += step {
		ticks = append(ticks, chart.Tick{Value: years[i], Label: strconv.Itoa(int(years[i]))})
	}
	return ticks
}
