package colorspectrum

import (
	"context"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/setanarut/colorspectrum/plots"
	"github.com/setanarut/colorspectrum/utils"
)

type Options struct {
	// Directory holding the y<year><Ext> images. The spectrum is written here too.
	Dir string
	// Image extension shared by inputs and the spectrum output, e.g. ".jpg".
	Ext string
	// Spectrum file name without extension.
	OutputName string
	// Columns each year's color is repeated across.
	BandWidth int
	// Years loaded concurrently. 1 or less loads them in order.
	Workers int
	Method  Method
	// Quality used when the spectrum is written as JPEG.
	JPEGQuality int
	Logger      *zap.SugaredLogger
}

func DefaultOptions() Options {
	return Options{
		Dir:         ".",
		Ext:         ".jpg",
		OutputName:  "bpspectrum",
		BandWidth:   30,
		Workers:     1,
		Method:      MethodMean,
		JPEGQuality: 100,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Dir == "" {
		o.Dir = def.Dir
	}
	if o.Ext == "" {
		o.Ext = def.Ext
	}
	if !strings.HasPrefix(o.Ext, ".") {
		o.Ext = "." + o.Ext
	}
	if o.OutputName == "" {
		o.OutputName = def.OutputName
	}
	if o.BandWidth <= 0 {
		o.BandWidth = def.BandWidth
	}
	if o.Workers <= 0 {
		o.Workers = def.Workers
	}
	if o.JPEGQuality <= 0 {
		o.JPEGQuality = def.JPEGQuality
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	return o
}

// YearPath is the input file for year: <Dir>/y<year><Ext>.
func (o Options) YearPath(year int) string {
	return filepath.Join(o.Dir, "y"+strconv.Itoa(year)+o.Ext)
}

// OutputPath is where Write puts the spectrum: <Dir>/<OutputName><Ext>.
func (o Options) OutputPath() string {
	return filepath.Join(o.Dir, o.OutputName+o.Ext)
}

type Builder struct {
	opt    Options
	logger *zap.SugaredLogger
}

func NewBuilder(opt Options) *Builder {
	opt = opt.withDefaults()
	return &Builder{opt: opt, logger: opt.Logger}
}

func (b *Builder) Options() Options {
	return b.opt
}

// Build loads and reduces every year in [start, end). It writes nothing; the
// first failing year aborts the build.
func (b *Builder) Build(ctx context.Context, start, end int) (*Spectrum, error) {
	if start >= end {
		return nil, errors.Wrapf(ErrInvalidRange, "start %d must be before end %d", start, end)
	}
	s := newSpectrum(start, end, b.opt.BandWidth, b.opt.Method)
	b.logger.Infow("building spectrum", "start", start, "end", end, "years", s.NumYears(),
		"method", b.opt.Method, "workers", b.opt.Workers)

	if b.opt.Workers <= 1 {
		for year := start; year < end; year++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := b.loadYear(s, year); err != nil {
				return nil, err
			}
		}
		return s, nil
	}

	// Each year owns one row of every table, so workers never share memory.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opt.Workers)
	for year := start; year < end; year++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return b.loadYear(s, year)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

func (b *Builder) loadYear(s *Spectrum, year int) error {
	path := b.opt.YearPath(year)
	img, err := utils.ReadImage(path)
	if err != nil {
		kind := ErrDecode
		if errors.Is(err, fs.ErrNotExist) {
			kind = ErrMissingFile
		}
		return &YearError{Year: year, Path: path, Kind: kind, Err: err}
	}

	avg, err := reduce(img, b.opt.Method, b.logger)
	if err != nil {
		return &YearError{Year: year, Path: path, Kind: ErrDimension, Err: err}
	}
	s.set(year, avg)
	b.logger.Debugw("reduced year", "year", year, "path", path, "r", avg.R, "g", avg.G, "b", avg.B)
	return nil
}

// Write encodes the spectrum image to OutputPath, replacing any existing file.
func (b *Builder) Write(s *Spectrum) (string, error) {
	path := b.opt.OutputPath()
	if err := utils.SaveImage(s.Image(), path, utils.EncodeOptions{JPEGQuality: b.opt.JPEGQuality}); err != nil {
		return "", errors.Wrap(err, "write spectrum")
	}
	b.logger.Infow("wrote spectrum", "path", path, "width", s.BandWidth, "height", s.NumYears())
	return path, nil
}

// Artifact is an extra image rendered from a finished spectrum and written
// next to it, such as the channel plots.
type Artifact struct {
	Path   string
	Render func(*Spectrum) (image.Image, error)
}

// PlotArtifact renders the three channel charts to path.
func PlotArtifact(path string, opt plots.Options) Artifact {
	return Artifact{
		Path: path,
		Render: func(s *Spectrum) (image.Image, error) {
			return plots.Render(s.Series(), opt)
		},
	}
}

// Run builds the spectrum for [start, end) and writes it along with any
// artifacts. Artifacts are rendered in memory and written before the
// spectrum; on any failure the files this run already wrote are removed.
func (b *Builder) Run(ctx context.Context, start, end int, artifacts ...Artifact) (*Spectrum, error) {
	if !utils.CanEncode(b.opt.Ext) {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "spectrum output %q", b.opt.Ext)
	}
	for _, a := range artifacts {
		if !utils.CanEncode(filepath.Ext(a.Path)) {
			return nil, errors.Wrapf(ErrUnsupportedFormat, "artifact %q", a.Path)
		}
	}

	s, err := b.Build(ctx, start, end)
	if err != nil {
		return nil, err
	}

	rendered := make([]image.Image, len(artifacts))
	for i, a := range artifacts {
		if rendered[i], err = a.Render(s); err != nil {
			return nil, errors.Wrapf(err, "render %s", a.Path)
		}
	}

	var written []string
	for i, a := range artifacts {
		if err := utils.SaveImage(rendered[i], a.Path, utils.DefaultEncodeOptions()); err != nil {
			b.remove(written)
			return nil, errors.Wrapf(err, "write %s", a.Path)
		}
		written = append(written, a.Path)
		b.logger.Infow("wrote artifact", "path", a.Path)
	}
	if _, err := b.Write(s); err != nil {
		b.remove(written)
		return nil, err
	}
	return s, nil
}

func (b *Builder) remove(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			b.logger.Warnw("cannot remove partial output", "path", p, "error", err)
		}
	}
}

// ColorSpec runs a builder with DefaultOptions in the working directory.
func ColorSpec(ctx context.Context, start, end int) (*Spectrum, error) {
	return NewBuilder(DefaultOptions()).Run(ctx, start, end)
}
