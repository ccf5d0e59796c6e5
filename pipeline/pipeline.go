// Package pipeline wires the rasterizer and an OCR engine into a text
// extraction flow for scanned PDF documents: render every page, binarize
// it, recognize the text, and concatenate the results under per-page
// headers.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nayeemhasan/banglaocr/observability"
	"github.com/nayeemhasan/banglaocr/ocr"
	"github.com/nayeemhasan/banglaocr/raster"
)

// Defaults mirror the original batch setup this pipeline replaces.
const (
	DefaultLanguage = "ben"
	DefaultSuffix   = "_extracted.txt"
)

// Renderer turns a PDF source into in-memory page images. *raster.Converter
// satisfies it; tests substitute fakes.
type Renderer interface {
	Render(ctx context.Context, src raster.Source, opts raster.Options) ([]raster.Page, error)
}

// Pipeline extracts text from scanned PDFs.
type Pipeline struct {
	renderer Renderer
	engine   ocr.Engine
	lang     string
	suffix   string
	log      observability.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRenderer substitutes the page renderer; the default is a poppler
// backed raster.Converter.
func WithRenderer(r Renderer) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.renderer = r
		}
	}
}

// WithEngine sets the OCR engine; the default is ocr.DefaultEngine() at the
// time New is called.
func WithEngine(e ocr.Engine) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithLanguage sets the Tesseract trained-data identifier used for
// recognition.
func WithLanguage(lang string) Option {
	return func(p *Pipeline) {
		if lang != "" {
			p.lang = lang
		}
	}
}

// WithSuffix sets the suffix appended to the input stem when naming output
// text files.
func WithSuffix(suffix string) Option {
	return func(p *Pipeline) {
		if suffix != "" {
			p.suffix = suffix
		}
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log observability.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// New builds a Pipeline. With no options it renders through poppler,
// recognizes with the process default engine, and targets Bangla.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		engine: ocr.DefaultEngine(),
		lang:   DefaultLanguage,
		suffix: DefaultSuffix,
		log:    observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = raster.NewConverter(raster.WithLogger(p.log))
	}
	return p
}

// ExtractText renders every page of the PDF at the decoder default
// resolution, binarizes it, runs OCR, and concatenates the recognized text
// under "Page N:" headers, each section ending in a blank line.
//
// A failure on ANY page discards the whole document: the empty string is
// returned together with the error, and text already recognized from
// earlier pages is thrown away. Callers that want per-page resilience
// should use ExtractPages instead.
func (p *Pipeline) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	pages, err := p.renderer.Render(ctx, raster.FromPath(pdfPath), raster.Options{})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", filepath.Base(pdfPath), err)
	}
	var b strings.Builder
	for _, page := range pages {
		p.log.Info("processing page", observability.Int("page", page.Number))
		text, err := p.recognizePage(ctx, page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page.Number, err)
		}
		fmt.Fprintf(&b, "Page %d:\n%s\n\n", page.Number, text)
	}
	return b.String(), nil
}

// PageText is the outcome of recognizing one page.
type PageText struct {
	Number int
	Text   string
	Err    error
}

// ExtractPages recognizes each page independently and reports per-page
// failures instead of aborting the document. Only a render failure, which
// leaves nothing to recognize, is returned as an error.
func (p *Pipeline) ExtractPages(ctx context.Context, pdfPath string) ([]PageText, error) {
	pages, err := p.renderer.Render(ctx, raster.FromPath(pdfPath), raster.Options{})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", filepath.Base(pdfPath), err)
	}
	results := make([]PageText, 0, len(pages))
	for _, page := range pages {
		p.log.Info("processing page", observability.Int("page", page.Number))
		text, err := p.recognizePage(ctx, page)
		if err != nil {
			p.log.Error("page failed",
				observability.Int("page", page.Number),
				observability.Error("err", err))
		}
		results = append(results, PageText{Number: page.Number, Text: text, Err: err})
	}
	return results, nil
}

func (p *Pipeline) recognizePage(ctx context.Context, page raster.Page) (string, error) {
	bin := Binarize(page.Image)
	in, err := ocr.InputFromImage(bin, page.Number, ocr.WithLanguages(p.lang))
	if err != nil {
		return "", err
	}
	res, err := p.engine.Recognize(ctx, in)
	if err != nil {
		return "", err
	}
	return res.PlainText, nil
}

// ProcessDir scans inputDir (non-recursively) for files with a .pdf
// extension, case-insensitively, extracts text from each, and writes one
// <stem><suffix> file per input into outputDir. Existing output files are
// overwritten. A document that fails still produces its (empty) output
// file and does not stop the batch; only I/O problems with the directories
// themselves are returned as errors.
func (p *Pipeline) ProcessDir(ctx context.Context, inputDir, outputDir string) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("read input dir: %w", err)
	}
	var pdfs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, e.Name())
		}
	}
	if len(pdfs) == 0 {
		p.log.Warn("no pdf files found", observability.String("dir", inputDir))
		return nil
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, name := range pdfs {
		if err := ctx.Err(); err != nil {
			return err
		}
		log := p.log.With(observability.String("file", name))
		log.Info("processing file")

		text, err := p.ExtractText(ctx, filepath.Join(inputDir, name))
		if err != nil {
			log.Error("extraction failed", observability.Error("err", err))
		}
		outPath := filepath.Join(outputDir, strings.TrimSuffix(name, filepath.Ext(name))+p.suffix)
		if werr := os.WriteFile(outPath, []byte(text), 0o644); werr != nil {
			return fmt.Errorf("write %s: %w", outPath, werr)
		}
		log.Info("text saved", observability.String("path", outPath))
	}
	p.log.Info("all files processed", observability.Int("files", len(pdfs)))
	return nil
}
