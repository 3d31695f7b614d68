// Command colorspec averages the colors of yearly images y<year><ext> into a
// spectrum image, one band per year, and optionally plots each channel over
// time.
//
//	colorspec [flags] <start> <end>
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/setanarut/colorspectrum"
	"github.com/setanarut/colorspectrum/plots"
)

func main() {
	if err := newApp().RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "colorspec:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	def := colorspectrum.DefaultOptions()
	return &cli.App{
		Name:      "colorspec",
		Usage:     "build a color spectrum from yearly images named y<year><ext>",
		ArgsUsage: "<start> <end>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: def.Dir, Usage: "directory with the yearly images", EnvVars: []string{"COLORSPEC_DIR"}},
			&cli.StringFlag{Name: "ext", Value: def.Ext, Usage: "image extension of inputs and spectrum", EnvVars: []string{"COLORSPEC_EXT"}},
			&cli.StringFlag{Name: "out", Value: def.OutputName, Usage: "spectrum file name without extension"},
			&cli.IntFlag{Name: "band", Value: def.BandWidth, Usage: "pixels each year's color spans"},
			&cli.IntFlag{Name: "workers", Value: def.Workers, Usage: "years decoded concurrently"},
			&cli.StringFlag{Name: "method", Value: def.Method.String(), Usage: "mean, dominant or kmeans"},
			&cli.StringFlag{Name: "plot", Usage: "write the channel plots to this file"},
			&cli.BoolFlag{Name: "summary", Usage: "print per-year colors and channel statistics"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Action: run,
	}
}

// parseRange reads <start> <end> from the positional arguments.
func parseRange(args cli.Args) (int, int, error) {
	if args.Len() != 2 {
		return 0, 0, errors.Errorf("need <start> <end>, got %d argument(s)", args.Len())
	}
	start, err := strconv.Atoi(args.Get(0))
	if err != nil {
		return 0, 0, errors.Wrap(err, "start")
	}
	end, err := strconv.Atoi(args.Get(1))
	if err != nil {
		return 0, 0, errors.Wrap(err, "end")
	}
	return start, end, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

func run(c *cli.Context) error {
	start, end, err := parseRange(c.Args())
	if err != nil {
		return err
	}
	method, err := colorspectrum.ParseMethod(c.String("method"))
	if err != nil {
		return err
	}
	zl, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer zl.Sync() //nolint:errcheck
	logger := zl.Sugar()

	b := colorspectrum.NewBuilder(colorspectrum.Options{
		Dir:        c.String("dir"),
		Ext:        c.String("ext"),
		OutputName: c.String("out"),
		BandWidth:  c.Int("band"),
		Workers:    c.Int("workers"),
		Method:     method,
		Logger:     logger,
	})

	var artifacts []colorspectrum.Artifact
	if plotPath := c.String("plot"); plotPath != "" {
		artifacts = append(artifacts, colorspectrum.PlotArtifact(plotPath, plots.DefaultOptions()))
	}

	s, err := b.Run(c.Context, start, end, artifacts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, b.Options().OutputPath())

	if c.Bool("summary") {
		printSummary(c.App.Writer, s)
	}
	return nil
}

func printSummary(w io.Writer, s *colorspectrum.Spectrum) {
	for _, yc := range s.Colors() {
		h, _, _ := yc.Color().Hsv()
		fmt.Fprintf(w, "%d  %s  r=%6.2f g=%6.2f b=%6.2f  hue=%5.1f\n", yc.Year, yc.Hex(), yc.R, yc.G, yc.B, h)
	}
	sum := s.Summary()
	for _, ch := range []struct {
		name string
		cs   colorspectrum.ChannelSummary
	}{{"red", sum.Red}, {"green", sum.Green}, {"blue", sum.Blue}} {
		fmt.Fprintf(w, "%-5s mean=%6.2f sd=%6.2f min=%6.2f (%d) max=%6.2f (%d)\n",
			ch.name, ch.cs.Mean, ch.cs.StdDev, ch.cs.Min, ch.cs.MinYear, ch.cs.Max, ch.cs.MaxYear)
	}
}
