// Package output writes rendered fractals to image files and describes them
// in YAML manifests.
package output

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned for image formats this package cannot write.
var ErrUnknownFormat = errors.New("unknown image format")

// DefaultFormat is used when neither a format nor a known file extension is
// given.
const DefaultFormat = "png"

type encoder func(io.Writer, image.Image) error

var encoders = map[string]encoder{
	"png": png.Encode,
	"bmp": bmp.Encode,
	"tiff": func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	},
}

var extensions = map[string]string{
	".png":  "png",
	".bmp":  "bmp",
	".tif":  "tiff",
	".tiff": "tiff",
}

// Formats lists the names Encode accepts, sorted.
func Formats() []string {
	formats := make([]string, 0, len(encoders))
	for f := range encoders {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	return formats
}

// ValidateFormat returns an ErrUnknownFormat error for unsupported names.
func ValidateFormat(format string) error {
	if _, ok := encoders[format]; !ok {
		return fmt.Errorf("%w %q, want one of %v", ErrUnknownFormat, format, Formats())
	}

	return nil
}

// FormatFromPath guesses the format from the file extension of path.
func FormatFromPath(path string) (string, bool) {
	format, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return format, ok
}

// Encode writes img to w in the named format.
func Encode(w io.Writer, img image.Image, format string) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}

	if err := encoders[format](w, img); err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}

	return nil
}
