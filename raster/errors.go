package raster

import (
	"errors"
	"fmt"
)

// ErrNoPages indicates the decoder produced no page images for the request.
var ErrNoPages = errors.New("raster: no pages decoded")

// DecodeError reports a failure of the underlying PDF decoder. Detail holds
// the tail of the decoder's diagnostic output when available.
type DecodeError struct {
	Source string
	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("raster: decode %s: %v: %s", e.Source, e.Err, e.Detail)
	}
	return fmt.Sprintf("raster: decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
