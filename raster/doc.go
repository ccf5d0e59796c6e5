package raster

// Package raster converts PDF documents into page images. Decoding is
// delegated to poppler's pdftoppm; pages come back as in-memory images that
// can be handed to OCR or encoded to disk in PNG, JPEG, or TIFF form.
// Document metadata is read with pdfcpu without rasterizing anything.
