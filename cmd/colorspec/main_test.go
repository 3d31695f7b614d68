package main

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/setanarut/colorspectrum/utils"
)

func writeYears(t *testing.T, dir string, colors ...color.NRGBA) {
	t.Helper()
	for i, c := range colors {
		path := filepath.Join(dir, fmt.Sprintf("y%d.png", 1900+i))
		test.That(t, utils.SaveImage(utils.SolidImage(4, 4, c), path, utils.DefaultEncodeOptions()), test.ShouldBeNil)
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"colorspec"}, args...))
	return out.String(), err
}

func TestRunWritesSpectrumAndPlot(t *testing.T) {
	dir := t.TempDir()
	writeYears(t, dir,
		color.NRGBA{R: 255, A: 255},
		color.NRGBA{G: 255, A: 255},
		color.NRGBA{B: 255, A: 255})
	plot := filepath.Join(dir, "channels.png")

	out, err := runApp(t, "--dir", dir, "--ext", ".png", "--plot", plot, "--summary", "1900", "1903")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, filepath.Join(dir, "bpspectrum.png"))
	test.That(t, out, test.ShouldContainSubstring, "1900  #ff0000")
	test.That(t, out, test.ShouldContainSubstring, "1902  #0000ff")
	test.That(t, out, test.ShouldContainSubstring, "red   mean= 85.00")

	spec, err := utils.ReadImage(filepath.Join(dir, "bpspectrum.png"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spec.Bounds().Dx(), test.ShouldEqual, 30)
	test.That(t, spec.Bounds().Dy(), test.ShouldEqual, 3)

	_, err = os.Stat(plot)
	test.That(t, err, test.ShouldBeNil)
}

func TestRunMissingYear(t *testing.T) {
	dir := t.TempDir()
	writeYears(t, dir, color.NRGBA{R: 255, A: 255})

	_, err := runApp(t, "--dir", dir, "--ext", "png", "--plot", filepath.Join(dir, "p.png"), "1900", "1902")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "year 1901")

	entries, err := os.ReadDir(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(entries), test.ShouldEqual, 1)
}

func TestRunBadArguments(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"1900"},
		{"1900", "later"},
		{"--method", "median", "1900", "1901"},
		{"--plot", "plot.webp", "1900", "1901"},
		{"--ext", ".webp", "1900", "1901"},
	} {
		_, err := runApp(t, args...)
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestRunUnwritablePlotLeavesNoSpectrum(t *testing.T) {
	dir := t.TempDir()
	writeYears(t, dir,
		color.NRGBA{R: 255, A: 255},
		color.NRGBA{G: 255, A: 255})

	_, err := runApp(t, "--dir", dir, "--ext", ".png", "--plot", filepath.Join(dir, "missing", "p.png"), "1900", "1902")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = os.Stat(filepath.Join(dir, "bpspectrum.png"))
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}
