package raster

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/nayeemhasan/banglaocr/observability"
)

// Page is one rasterized PDF page held in memory.
type Page struct {
	// Number is the 1-based page number within the document.
	Number int
	Image  image.Image
}

type renderFunc func(ctx context.Context, src Source, opts Options) ([]Page, error)

// Converter rasterizes PDF documents and persists the pages as image files.
type Converter struct {
	log    observability.Logger
	render renderFunc
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log observability.Logger) ConverterOption {
	return func(c *Converter) {
		if log != nil {
			c.log = log
		}
	}
}

// NewConverter returns a Converter backed by the poppler decoder.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{log: observability.NopLogger{}, render: popplerRender}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render decodes pages into memory without writing anything to disk.
func (c *Converter) Render(ctx context.Context, src Source, opts Options) ([]Page, error) {
	return c.render(ctx, src, opts.withDefaults())
}

// Convert rasterizes every page of src at the given resolution and writes
// one image file per page into outputDir, named page_1.<ext> through
// page_N.<ext>. The returned paths are in ascending page order.
func (c *Converter) Convert(ctx context.Context, src Source, outputDir string, dpi int, format string) ([]string, error) {
	return c.ConvertWithOptions(ctx, src, outputDir, Options{DPI: dpi, Format: format})
}

// ConvertWithOptions is Convert with the full Options surface.
func (c *Converter) ConvertWithOptions(ctx context.Context, src Source, outputDir string, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	ext, enc, err := encoderFor(opts.Format)
	if err != nil {
		return nil, err
	}
	pages, err := c.render(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	return c.savePages(pages, outputDir, ext, enc)
}

// ConvertPages rasterizes only the requested 1-based page numbers. The
// decoder can only decode contiguous ranges, so the whole span from the
// smallest to the largest requested page is decoded and filtered in memory;
// a sparse request like {1, 100} pays for the full range. Requested pages
// beyond the end of the document are skipped silently. Paths come back in
// ascending page order regardless of the order pages was supplied in.
func (c *Converter) ConvertPages(ctx context.Context, src Source, pages []int, outputDir string, dpi int, format string) ([]string, error) {
	return c.ConvertPagesWithOptions(ctx, src, pages, outputDir, Options{DPI: dpi, Format: format})
}

// ConvertPagesWithOptions is ConvertPages with the full Options surface, for
// documents that additionally need a password, crop-box selection, strict
// mode, or concurrent decoding. Any FirstPage/LastPage in opts are replaced
// by the bounds of the requested page set.
func (c *Converter) ConvertPagesWithOptions(ctx context.Context, src Source, pages []int, outputDir string, opts Options) ([]string, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("raster: no pages requested")
	}
	opts = opts.withDefaults()
	ext, enc, err := encoderFor(opts.Format)
	if err != nil {
		return nil, err
	}
	want := append([]int(nil), pages...)
	sort.Ints(want)

	opts.FirstPage, opts.LastPage = want[0], want[len(want)-1]
	rendered, err := c.render(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[int]Page, len(rendered))
	for _, p := range rendered {
		byNumber[p.Number] = p
	}
	selected := make([]Page, 0, len(want))
	for i, n := range want {
		if i > 0 && n == want[i-1] {
			continue
		}
		if p, ok := byNumber[n]; ok {
			selected = append(selected, p)
		}
	}
	return c.savePages(selected, outputDir, ext, enc)
}

func (c *Converter) savePages(pages []Page, outputDir, ext string, enc encodeFunc) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("raster: create output dir: %w", err)
	}
	paths := make([]string, 0, len(pages))
	for _, p := range pages {
		path := filepath.Join(outputDir, fmt.Sprintf("page_%d.%s", p.Number, ext))
		if err := writeImage(path, p.Image, enc); err != nil {
			return paths, fmt.Errorf("raster: save page %d: %w", p.Number, err)
		}
		paths = append(paths, path)
		c.log.Info("saved page",
			observability.Int("page", p.Number),
			observability.String("path", path))
	}
	return paths, nil
}

func writeImage(path string, img image.Image, enc encodeFunc) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := enc(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
