package ocr

// Package ocr defines a small abstraction for plugging OCR engines (local
// Tesseract, or anything else that can read a page image) into the text
// extraction pipeline. The interfaces are transport-agnostic so engines can
// be backed by native libraries or remote services without leaking
// provider-specific concerns into callers.
