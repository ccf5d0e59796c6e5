// banglaocr extracts text from scanned Bangla PDF documents.
//
// It scans a directory for PDF files, rasterizes each page, binarizes it,
// runs Tesseract OCR, and writes one text file per input document.
//
// Configuration comes from flags, an optional YAML config file, or
// environment variables, in that order of precedence:
//
//	banglaocr -in files -out extracted_text -lang ben
//	banglaocr -config banglaocr.yml
//
// YAML configuration:
//
//	input_dir: "files"
//	output_dir: "extracted_text"
//	language: "ben"
//	suffix: "_extracted.txt"
//
// Environment variables: BANGLAOCR_INPUT_DIR, BANGLAOCR_OUTPUT_DIR,
// BANGLAOCR_LANGUAGE, BANGLAOCR_SUFFIX.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nayeemhasan/banglaocr/observability"
	"github.com/nayeemhasan/banglaocr/ocr/tesseract"
	"github.com/nayeemhasan/banglaocr/pipeline"
)

type config struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	Language  string `yaml:"language"`
	Suffix    string `yaml:"suffix"`
}

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML configuration file")
		inputDir   = flag.String("in", "", `directory of PDF files to process (default "files")`)
		outputDir  = flag.String("out", "", `directory for extracted text (default "extracted_text")`)
		language   = flag.String("lang", "", `Tesseract language code (default "ben")`)
		suffix     = flag.String("suffix", "", `output filename suffix (default "_extracted.txt")`)
	)
	flag.Parse()

	cfg := config{
		InputDir:  "files",
		OutputDir: "extracted_text",
		Language:  pipeline.DefaultLanguage,
		Suffix:    pipeline.DefaultSuffix,
	}
	applyEnv(&cfg)
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			fatal(err)
		}
	}
	if *inputDir != "" {
		cfg.InputDir = *inputDir
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *language != "" {
		cfg.Language = *language
	}
	if *suffix != "" {
		cfg.Suffix = *suffix
	}

	log := observability.NewConsoleLogger(os.Stderr)
	p := pipeline.New(
		pipeline.WithEngine(tesseract.NewEngine()),
		pipeline.WithLanguage(cfg.Language),
		pipeline.WithSuffix(cfg.Suffix),
		pipeline.WithLogger(log),
	)
	if err := p.ProcessDir(context.Background(), cfg.InputDir, cfg.OutputDir); err != nil {
		fatal(err)
	}
}

// loadConfig decodes a YAML config file. Unknown keys are rejected rather
// than silently ignored.
func loadConfig(path string, cfg *config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *config) {
	if v := os.Getenv("BANGLAOCR_INPUT_DIR"); v != "" {
		cfg.InputDir = v
	}
	if v := os.Getenv("BANGLAOCR_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("BANGLAOCR_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("BANGLAOCR_SUFFIX"); v != "" {
		cfg.Suffix = v
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "banglaocr:", err)
	os.Exit(1)
}
