package utils

import (
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.viam.com/test"
)

func TestSaveReadLossless(t *testing.T) {
	dir := t.TempDir()
	want := color.NRGBA{R: 17, G: 99, B: 201, A: 255}
	for _, ext := range []string{".png", ".bmp", ".tif", ".tiff"} {
		path := filepath.Join(dir, "img"+ext)
		test.That(t, SaveImage(SolidImage(5, 4, want), path, DefaultEncodeOptions()), test.ShouldBeNil)

		img, err := ReadImage(path)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, img.Bounds().Size(), test.ShouldResemble, image.Pt(5, 4))
		got := color.NRGBAModel.Convert(img.At(2, 3)).(color.NRGBA)
		test.That(t, got, test.ShouldResemble, want)
	}
}

func TestSaveJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.JPG")
	err := SaveImage(SolidImage(16, 16, color.NRGBA{R: 120, G: 60, B: 30, A: 255}), path, EncodeOptions{JPEGQuality: 95})
	test.That(t, err, test.ShouldBeNil)

	img, err := ReadImage(path)
	test.That(t, err, test.ShouldBeNil)
	r, _, _, _ := img.At(8, 8).RGBA()
	test.That(t, float64(r>>8), test.ShouldAlmostEqual, 120, 4)
}

func TestSaveUnsupported(t *testing.T) {
	dir := t.TempDir()
	err := SaveImage(SolidImage(1, 1, color.NRGBA{A: 255}), filepath.Join(dir, "x.webp"), DefaultEncodeOptions())
	test.That(t, errors.Is(err, ErrUnsupportedFormat), test.ShouldBeTrue)

	entries, err := os.ReadDir(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(entries), test.ShouldEqual, 0)

	test.That(t, CanEncode(".PNG"), test.ShouldBeTrue)
	test.That(t, CanEncode(".webp"), test.ShouldBeFalse)
}

func TestSaveReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	test.That(t, os.WriteFile(path, []byte("old"), 0o644), test.ShouldBeNil)

	test.That(t, SaveImage(SolidImage(2, 2, color.NRGBA{G: 255, A: 255}), path, DefaultEncodeOptions()), test.ShouldBeNil)

	entries, err := os.ReadDir(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(entries), test.ShouldEqual, 1)
	test.That(t, entries[0].Name(), test.ShouldEqual, "out.png")

	_, err = ReadImage(path)
	test.That(t, err, test.ShouldBeNil)
}

func TestReadImageErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadImage(filepath.Join(dir, "y1901.jpg"))
	test.That(t, errors.Is(err, fs.ErrNotExist), test.ShouldBeTrue)

	bad := filepath.Join(dir, "bad.png")
	test.That(t, os.WriteFile(bad, []byte{0x89, 'P', 'N', 'G'}, 0o644), test.ShouldBeNil)
	_, err = ReadImage(bad)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, fs.ErrNotExist), test.ShouldBeFalse)
}

func TestExtractPaletteEmpty(t *testing.T) {
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	test.That(t, ExtractKMeansPalette(empty, 3), test.ShouldBeNil)
	test.That(t, ExtractDominantPalette(empty, 0), test.ShouldBeNil)
	test.That(t, ExtractDominantPalette(empty, 3), test.ShouldBeNil)
	test.That(t, PaletteMethodKMeans.String(), test.ShouldEqual, "kmeans")
}

func TestExtractPaletteKMeansFallsBack(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core).Sugar()

	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	test.That(t, ExtractPalette(empty, 3, PaletteMethodKMeans, logger), test.ShouldBeNil)
	test.That(t, logs.FilterMessage("kmeans returned empty palette, falling back").Len(), test.ShouldEqual, 1)

	// dominantcolor never consults kmeans, so nothing is logged.
	test.That(t, ExtractPalette(empty, 3, PaletteMethodDominantColor, logger), test.ShouldBeNil)
	test.That(t, logs.Len(), test.ShouldEqual, 1)
}

func TestExtractDominantPaletteSolid(t *testing.T) {
	want := color.NRGBA{R: 200, G: 40, B: 90, A: 255}
	p := ExtractDominantPalette(SolidImage(24, 16, want), 1)
	test.That(t, len(p), test.ShouldEqual, 1)

	r, g, b := p[0].RGB255()
	test.That(t, []uint8{r, g, b}, test.ShouldResemble, []uint8{200, 40, 90})
}

func TestExtractKMeansPaletteSolid(t *testing.T) {
	p := ExtractKMeansPalette(SolidImage(12, 12, color.NRGBA{R: 30, G: 160, B: 220, A: 255}), 1)
	test.That(t, len(p), test.ShouldEqual, 1)
	test.That(t, p[0].R*255, test.ShouldAlmostEqual, 30, 1)
	test.That(t, p[0].G*255, test.ShouldAlmostEqual, 160, 1)
	test.That(t, p[0].B*255, test.ShouldAlmostEqual, 220, 1)
}

func TestSelectDiverseSeedsHeaviest(t *testing.T) {
	light := colorful.Color{R: 0.9, G: 0.9, B: 0.9}
	dark := colorful.Color{R: 0.1, G: 0.1, B: 0.2}
	red := colorful.Color{R: 0.8, G: 0.1, B: 0.1}
	cands := []weightedColor{
		{Col: light, Weight: 2},
		{Col: dark, Weight: 10},
		{Col: red, Weight: 1},
	}

	test.That(t, selectDiverse(cands, 1), test.ShouldResemble, []colorful.Color{dark})

	picked := selectDiverse(cands, 5)
	test.That(t, len(picked), test.ShouldEqual, 3)
	test.That(t, picked[0], test.ShouldResemble, dark)
	test.That(t, selectDiverse(nil, 2), test.ShouldBeNil)
}
