package raster

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/tiff"
)

// Supported output image formats. Format strings are matched
// case-insensitively; "jpg" and "tif" spellings are accepted too.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatTIFF = "tiff"
)

// DefaultDPI is the resolution used when none is given, matching the
// decoder's own default.
const DefaultDPI = 200

// Options enumerates every knob a conversion accepts. Unknown settings do
// not exist in this API; anything the decoder cannot honor is rejected up
// front rather than forwarded blindly.
type Options struct {
	// DPI is the rasterization resolution. Zero means DefaultDPI.
	DPI int
	// Format selects the encoding used when pages are written to disk. It
	// has no effect on in-memory rendering. Zero value means PNG.
	Format string
	// ThreadCount splits the page range across that many concurrent decoder
	// processes. Zero or one keeps decoding in a single process.
	ThreadCount int
	// Password unlocks an encrypted document.
	Password string
	// UseCropBox rasterizes the crop box instead of the media box.
	UseCropBox bool
	// Strict promotes decoder syntax warnings to errors.
	Strict bool
	// FirstPage and LastPage bound the decoded range, 1-based inclusive.
	// Zero means unbounded on that side. The decoder only supports
	// contiguous ranges.
	FirstPage int
	LastPage  int
}

func (o Options) withDefaults() Options {
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if o.ThreadCount <= 0 {
		o.ThreadCount = 1
	}
	return o
}

type encodeFunc func(w io.Writer, img image.Image) error

// encoderFor maps a format string to its encoder and file extension. The
// extension keeps the caller's (lowercased) spelling, so "JPEG" produces
// page_N.jpeg while "jpg" produces page_N.jpg.
func encoderFor(format string) (ext string, enc encodeFunc, err error) {
	ext = strings.ToLower(format)
	switch ext {
	case "png":
		enc = png.Encode
	case "jpg", "jpeg":
		enc = func(w io.Writer, img image.Image) error { return jpeg.Encode(w, img, nil) }
	case "tif", "tiff":
		enc = func(w io.Writer, img image.Image) error { return tiff.Encode(w, img, nil) }
	default:
		return "", nil, fmt.Errorf("raster: unsupported format %q", format)
	}
	return ext, enc, nil
}
