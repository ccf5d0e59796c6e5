package raster

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// describeDPI is the probe resolution page pixel dimensions are reported at.
const describeDPI = 50

// DocumentInfo summarizes a PDF without rasterizing it.
type DocumentInfo struct {
	PageCount  int
	FileSizeMB float64
	Filename   string
	// PageWidth and PageHeight are the first page's pixel dimensions at the
	// probe resolution. Both are zero for a document with no pages.
	PageWidth  int
	PageHeight int
	// PageMode is the color mode pages would be rasterized in.
	PageMode string
}

// Describe reads document metadata with pdfcpu. Unlike a rasterizing probe
// it never decodes page content, but it reports the same facts: page count,
// file size, filename, and first-page pixel dimensions at the probe DPI.
// On failure the zero DocumentInfo is returned along with the error.
func Describe(ctx context.Context, src Source) (DocumentInfo, error) {
	if err := ctx.Err(); err != nil {
		return DocumentInfo{}, err
	}
	var (
		pdfCtx *model.Context
		err    error
	)
	if src.fromBytes() {
		pdfCtx, err = api.ReadContext(bytes.NewReader(src.data), model.NewDefaultConfiguration())
	} else {
		pdfCtx, err = api.ReadContextFile(src.path)
	}
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("raster: describe %s: %w", src.Name(), err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return DocumentInfo{}, fmt.Errorf("raster: describe %s: %w", src.Name(), err)
	}

	info := DocumentInfo{
		PageCount:  pdfCtx.PageCount,
		FileSizeMB: src.sizeMB(),
		Filename:   src.Name(),
	}
	if pdfCtx.PageCount == 0 {
		return info, nil
	}
	dims, err := pdfCtx.PageDims()
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("raster: describe %s: %w", src.Name(), err)
	}
	if len(dims) > 0 {
		info.PageWidth = pixels(dims[0].Width, describeDPI)
		info.PageHeight = pixels(dims[0].Height, describeDPI)
		info.PageMode = "RGB"
	}
	return info, nil
}

// pixels converts a length in PDF points (1/72 inch) to pixels at dpi.
func pixels(points float64, dpi int) int {
	return int(math.Round(points / 72.0 * float64(dpi)))
}
