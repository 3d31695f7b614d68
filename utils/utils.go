package utils

import (
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	// Decoders for the accepted input formats.
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned by SaveImage when no encoder matches the
// file extension.
var ErrUnsupportedFormat = errors.New("unsupported image format")

type EncodeOptions struct {
	// JPEG quality in [1,100]. Ignored for other formats.
	JPEGQuality int
}

func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{JPEGQuality: 100}
}

type encodeFunc func(w io.Writer, img image.Image, opt EncodeOptions) error

var encoders = map[string]encodeFunc{
	".png": func(w io.Writer, img image.Image, _ EncodeOptions) error {
		return png.Encode(w, img)
	},
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
	".gif": func(w io.Writer, img image.Image, _ EncodeOptions) error {
		return gif.Encode(w, img, nil)
	},
	".bmp": func(w io.Writer, img image.Image, _ EncodeOptions) error {
		return bmp.Encode(w, img)
	},
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

func encodeJPEG(w io.Writer, img image.Image, opt EncodeOptions) error {
	q := opt.JPEGQuality
	if q <= 0 || q > 100 {
		q = jpeg.DefaultQuality
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
}

func encodeTIFF(w io.Writer, img image.Image, _ EncodeOptions) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// CanEncode reports whether SaveImage can write files with the given extension.
func CanEncode(ext string) bool {
	_, ok := encoders[strings.ToLower(ext)]
	return ok
}

// ReadImage opens and decodes path. Errors from os.Open are returned wrapped
// so callers can still match fs.ErrNotExist.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", filepath.Base(path))
	}
	return img, nil
}

// SaveImage encodes img by the extension of filename. The file is written to
// a temporary sibling first and renamed into place, so an existing file is
// either fully replaced or left untouched.
func SaveImage(img image.Image, filename string, opt EncodeOptions) error {
	ext := strings.ToLower(filepath.Ext(filename))
	enc, ok := encoders[ext]
	if !ok {
		return errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := enc(tmp, img, opt); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "encode %s", filepath.Base(filename))
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	return errors.Wrap(os.Rename(tmpName, filename), "rename temp file")
}

// SolidImage returns a w x h NRGBA image filled with c.
func SolidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
