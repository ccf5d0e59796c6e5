package raster

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const (
	popplerBin  = "pdftoppm"
	pdfInfoBin  = "pdfinfo"
	stderrLimit = 512
)

// popplerRender shells out to pdftoppm. Pages are always rendered to PNG
// intermediates in a scratch directory and decoded back into memory; the
// Options.Format knob only matters when pages are later written to disk.
func popplerRender(ctx context.Context, src Source, opts Options) ([]Page, error) {
	if opts.ThreadCount > 1 {
		return renderChunked(ctx, src, opts)
	}
	return renderRange(ctx, src, opts)
}

func renderRange(ctx context.Context, src Source, opts Options) ([]Page, error) {
	workDir, err := os.MkdirTemp("", "banglaocr-raster-")
	if err != nil {
		return nil, fmt.Errorf("raster: scratch dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	prefix := filepath.Join(workDir, "page")
	args := popplerArgs(opts)
	input := src.path
	var stdin io.Reader
	if src.fromBytes() {
		input = "-"
		stdin = bytes.NewReader(src.data)
	}
	args = append(args, input, prefix)

	cmd := exec.CommandContext(ctx, popplerBin, args...)
	cmd.Stdin = stdin
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &DecodeError{Source: src.Name(), Detail: tail(stderr.String()), Err: err}
	}
	if opts.Strict && stderr.Len() > 0 {
		return nil, &DecodeError{
			Source: src.Name(),
			Detail: tail(stderr.String()),
			Err:    errors.New("decoder reported syntax errors"),
		}
	}
	return collectPages(prefix)
}

func popplerArgs(opts Options) []string {
	args := []string{"-png", "-r", strconv.Itoa(opts.DPI)}
	if opts.FirstPage > 0 {
		args = append(args, "-f", strconv.Itoa(opts.FirstPage))
	}
	if opts.LastPage > 0 {
		args = append(args, "-l", strconv.Itoa(opts.LastPage))
	}
	if opts.Password != "" {
		args = append(args, "-upw", opts.Password)
	}
	if opts.UseCropBox {
		args = append(args, "-cropbox")
	}
	return args
}

func collectPages(prefix string) ([]Page, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(matches))
	for _, m := range matches {
		n := pageNumberFromName(m)
		if n == 0 {
			continue
		}
		img, err := decodePNGFile(m)
		if err != nil {
			return nil, fmt.Errorf("raster: decode page %d: %w", n, err)
		}
		pages = append(pages, Page{Number: n, Image: img})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return pages, nil
}

func decodePNGFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// pageNumberFromName extracts the page number pdftoppm embeds in the output
// filename (page-3.png, page-03.png, ...). Zero means unparseable.
func pageNumberFromName(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

type pageRange struct{ first, last int }

// splitRange divides [first, last] into at most n contiguous chunks.
func splitRange(first, last, n int) []pageRange {
	total := last - first + 1
	if total <= 0 {
		return nil
	}
	if n > total {
		n = total
	}
	per := total / n
	extra := total % n
	ranges := make([]pageRange, 0, n)
	start := first
	for i := 0; i < n; i++ {
		size := per
		if i < extra {
			size++
		}
		ranges = append(ranges, pageRange{first: start, last: start + size - 1})
		start += size
	}
	return ranges
}

// renderChunked fans the page range out across ThreadCount decoder
// processes, mirroring how pdf2image implements its thread_count option.
func renderChunked(ctx context.Context, src Source, opts Options) ([]Page, error) {
	path := src.path
	if src.fromBytes() {
		tmp, cleanup, err := src.tempFile()
		if err != nil {
			return nil, err
		}
		defer cleanup()
		path = tmp
	}
	first := opts.FirstPage
	if first <= 0 {
		first = 1
	}
	last := opts.LastPage
	if last <= 0 {
		total, err := countPages(ctx, path, opts.Password)
		if err != nil {
			return nil, &DecodeError{Source: src.Name(), Err: err}
		}
		last = total
	}
	ranges := splitRange(first, last, opts.ThreadCount)
	if len(ranges) == 0 {
		return nil, ErrNoPages
	}

	renderCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		pages    []Page
	)
	for _, r := range ranges {
		wg.Add(1)
		go func(r pageRange) {
			defer wg.Done()
			sub := opts
			sub.ThreadCount = 1
			sub.FirstPage, sub.LastPage = r.first, r.last
			got, err := renderRange(renderCtx, FromPath(path), sub)
			if err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			mu.Lock()
			pages = append(pages, got...)
			mu.Unlock()
		}(r)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return pages, nil
}

// countPages asks pdfinfo for the page count.
func countPages(ctx context.Context, path, password string) (int, error) {
	args := []string{}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, path)
	out, err := exec.CommandContext(ctx, pdfInfoBin, args...).Output()
	if err != nil {
		return 0, fmt.Errorf("%s failed: %w", pdfInfoBin, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			if n, convErr := strconv.Atoi(fields[1]); convErr == nil {
				return n, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, errors.New("page count missing from pdfinfo output")
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrLimit {
		s = "..." + s[len(s)-stderrLimit:]
	}
	return s
}
