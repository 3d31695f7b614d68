package colorspectrum

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/setanarut/colorspectrum/utils"
)

var (
	ErrInvalidRange = errors.New("invalid year range")
	// ErrMissingFile means the y<year> image does not exist.
	ErrMissingFile = errors.New("missing image file")
	// ErrDecode means the file exists but could not be read as an image.
	ErrDecode = errors.New("cannot decode image")
	// ErrDimension means the decoded image has no pixels or no RGB channels.
	ErrDimension = errors.New("unexpected image dimensions")

	ErrUnsupportedFormat = utils.ErrUnsupportedFormat
)

// YearError reports which year stopped a build. It matches its Kind and the
// underlying cause with errors.Is.
type YearError struct {
	Year int
	Path string
	Kind error
	Err  error
}

func (e *YearError) Error() string {
	msg := fmt.Sprintf("year %d (%s): %v", e.Year, e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *YearError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
