// pdf2img rasterizes a PDF into one image file per page.
//
//	pdf2img -pdf doc.pdf -out pdf_images -dpi 300 -format png
//	pdf2img -pdf doc.pdf -pages 1,3,5
//	pdf2img -pdf doc.pdf -info
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nayeemhasan/banglaocr/observability"
	"github.com/nayeemhasan/banglaocr/raster"
)

func main() {
	var (
		pdfPath   = flag.String("pdf", "", "path to the PDF file (required)")
		outputDir = flag.String("out", "pdf_images", "directory to save converted images")
		dpi       = flag.Int("dpi", 300, "rasterization resolution")
		format    = flag.String("format", "png", "output image format (png, jpeg, tiff)")
		pagesSpec = flag.String("pages", "", "comma-separated 1-based page numbers (default all)")
		password  = flag.String("password", "", "PDF password")
		cropBox   = flag.Bool("cropbox", false, "rasterize the crop box instead of the media box")
		strict    = flag.Bool("strict", false, "treat decoder syntax warnings as errors")
		threads   = flag.Int("threads", 1, "number of concurrent decoder processes")
		showInfo  = flag.Bool("info", false, "print document info and exit")
	)
	flag.Parse()

	if *pdfPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	src := raster.FromPath(*pdfPath)
	ctx := context.Background()

	if *showInfo {
		info, err := raster.Describe(ctx, src)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("%s: %d pages, %.2f MB", info.Filename, info.PageCount, info.FileSizeMB)
		if info.PageCount > 0 {
			fmt.Printf(", first page %dx%d px (%s)", info.PageWidth, info.PageHeight, info.PageMode)
		}
		fmt.Println()
		return
	}

	conv := raster.NewConverter(raster.WithLogger(observability.NewConsoleLogger(os.Stderr)))
	opts := raster.Options{
		DPI:         *dpi,
		Format:      *format,
		ThreadCount: *threads,
		Password:    *password,
		UseCropBox:  *cropBox,
		Strict:      *strict,
	}

	var (
		paths []string
		err   error
	)
	if *pagesSpec != "" {
		pages, perr := parsePages(*pagesSpec)
		if perr != nil {
			fatal(perr)
		}
		paths, err = conv.ConvertPagesWithOptions(ctx, src, pages, *outputDir, opts)
	} else {
		paths, err = conv.ConvertWithOptions(ctx, src, *outputDir, opts)
	}
	if err != nil {
		fatal(err)
	}
	fmt.Printf("converted %d pages to %s\n", len(paths), *outputDir)
}

func parsePages(spec string) ([]int, error) {
	parts := strings.Split(spec, ",")
	pages := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid page number %q", part)
		}
		pages = append(pages, n)
	}
	return pages, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "pdf2img:", err)
	os.Exit(1)
}
