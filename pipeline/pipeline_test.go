package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/nayeemhasan/banglaocr/ocr"
	"github.com/nayeemhasan/banglaocr/raster"
)

type fakeRenderer struct {
	pages int
	err   error
}

func (f fakeRenderer) Render(ctx context.Context, src raster.Source, opts raster.Options) ([]raster.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	pages := make([]raster.Page, 0, f.pages)
	for i := 1; i <= f.pages; i++ {
		pages = append(pages, raster.Page{Number: i, Image: image.NewGray(image.Rect(0, 0, 2, 2))})
	}
	return pages, nil
}

type fakeEngine struct {
	failOn int
	texts  map[int]string
}

func (fakeEngine) Name() string { return "fake" }

func (f fakeEngine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if in.Page == f.failOn {
		return ocr.Result{}, errors.New("recognition failed")
	}
	text, ok := f.texts[in.Page]
	if !ok {
		text = fmt.Sprintf("text-%d", in.Page)
	}
	return ocr.Result{InputID: in.ID, PlainText: text}, nil
}

func TestExtractTextConcatenatesPages(t *testing.T) {
	p := New(
		WithRenderer(fakeRenderer{pages: 2}),
		WithEngine(fakeEngine{}),
	)
	got, err := p.ExtractText(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	want := "Page 1:\ntext-1\n\nPage 2:\ntext-2\n\n"
	if got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestExtractTextDiscardsOnPageFailure(t *testing.T) {
	p := New(
		WithRenderer(fakeRenderer{pages: 3}),
		WithEngine(fakeEngine{failOn: 2}),
	)
	got, err := p.ExtractText(context.Background(), "doc.pdf")
	if err == nil {
		t.Fatalf("expected error from failing page")
	}
	if got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestExtractTextRenderFailure(t *testing.T) {
	p := New(
		WithRenderer(fakeRenderer{err: &raster.DecodeError{Source: "doc.pdf", Err: errors.New("exit status 1")}}),
		WithEngine(fakeEngine{}),
	)
	got, err := p.ExtractText(context.Background(), "doc.pdf")
	if err == nil || got != "" {
		t.Fatalf("expected empty output and error, got %q, %v", got, err)
	}
	var derr *raster.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("decode error not preserved: %v", err)
	}
}

func TestExtractPagesReportsPerPageFailures(t *testing.T) {
	p := New(
		WithRenderer(fakeRenderer{pages: 3}),
		WithEngine(fakeEngine{failOn: 2}),
	)
	results, err := p.ExtractPages(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("ExtractPages() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Text != "text-1" {
		t.Fatalf("unexpected page 1 result: %+v", results[0])
	}
	if results[1].Err == nil {
		t.Fatalf("expected page 2 failure")
	}
	if results[2].Err != nil || results[2].Text != "text-3" {
		t.Fatalf("unexpected page 3 result: %+v", results[2])
	}
}

func TestProcessDirEndToEnd(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	for _, name := range []string{"sample.pdf", "UPPER.PDF", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(inDir, name), []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	p := New(
		WithRenderer(fakeRenderer{pages: 2}),
		WithEngine(fakeEngine{texts: map[int]string{1: "প্রথম পাতা", 2: "দ্বিতীয় পাতা"}}),
	)
	if err := p.ProcessDir(context.Background(), inDir, outDir); err != nil {
		t.Fatalf("ProcessDir() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "sample_extracted.txt"))
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	want := "Page 1:\nপ্রথম পাতা\n\nPage 2:\nদ্বিতীয় পাতা\n\n"
	if string(data) != want {
		t.Fatalf("output = %q, want %q", data, want)
	}

	// Case-insensitive extension matching picks up UPPER.PDF too.
	if _, err := os.Stat(filepath.Join(outDir, "UPPER_extracted.txt")); err != nil {
		t.Fatalf("uppercase pdf not processed: %v", err)
	}
	// Non-PDF files are ignored.
	if _, err := os.Stat(filepath.Join(outDir, "notes_extracted.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("non-pdf file should not have been processed")
	}
}

func TestProcessDirWritesEmptyFileOnFailure(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(inDir, "broken.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(
		WithRenderer(fakeRenderer{pages: 3}),
		WithEngine(fakeEngine{failOn: 2}),
	)
	if err := p.ProcessDir(context.Background(), inDir, outDir); err != nil {
		t.Fatalf("ProcessDir() should not fail the batch, got %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "broken_extracted.txt"))
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty output for failed document, got %q", data)
	}
}

func TestProcessDirOverwritesExistingOutput(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(inDir, "doc.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(outDir, "doc_extracted.txt")
	if err := os.WriteFile(outPath, []byte("stale content"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(
		WithRenderer(fakeRenderer{pages: 1}),
		WithEngine(fakeEngine{}),
	)
	if err := p.ProcessDir(context.Background(), inDir, outDir); err != nil {
		t.Fatalf("ProcessDir() error = %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Page 1:\ntext-1\n\n" {
		t.Fatalf("stale output not overwritten: %q", data)
	}
}

func TestProcessDirCustomSuffix(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(inDir, "doc.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(
		WithRenderer(fakeRenderer{pages: 1}),
		WithEngine(fakeEngine{}),
		WithSuffix(".txt"),
	)
	if err := p.ProcessDir(context.Background(), inDir, outDir); err != nil {
		t.Fatalf("ProcessDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "doc.txt")); err != nil {
		t.Fatalf("custom suffix not honored: %v", err)
	}
}

func TestProcessDirMissingInputDir(t *testing.T) {
	p := New(WithRenderer(fakeRenderer{pages: 1}), WithEngine(fakeEngine{}))
	if err := p.ProcessDir(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir()); err == nil {
		t.Fatalf("expected error for missing input dir")
	}
}
