// Package extract turns receipt PDFs into plain text for the scanner.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Extractor kinds
const (
	KindNative    = "native"
	KindPdftotext = "pdftotext"
)

var (
	// ErrNotPDF is returned when the payload does not start with a PDF header
	ErrNotPDF = errors.New("file is not a PDF")

	// ErrNoText is returned when a PDF yields no text at all
	ErrNoText = errors.New("no text found in PDF")

	// ErrUnknownKind is returned by New for an unsupported extractor kind
	ErrUnknownKind = errors.New("unknown extractor kind")
)

var pdfMagic = []byte("%PDF-")

// TextExtractor converts a PDF document to plain text, one visual line per line
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// ExtractError represents a failure to obtain text from a document
type ExtractError struct {
	// Op is the extraction step that failed
	Op string

	// Err is the underlying error
	Err error
}

// Error returns a string representation of the error
func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %v", e.Op, e.Err)
	}
	return "extract " + e.Op
}

// Unwrap returns the underlying error
func (e *ExtractError) Unwrap() error {
	return e.Err
}

func checkPDF(data []byte) error {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfMagic) {
		return &ExtractError{Op: "validate", Err: ErrNotPDF}
	}
	return nil
}

// New builds the extractor of the given kind. pdftotextPath is only used by
// the pdftotext extractor.
func New(kind, pdftotextPath string, log *zap.Logger) (TextExtractor, error) {
	switch kind {
	case KindNative, "":
		return NewNativeExtractor(), nil
	case KindPdftotext:
		return NewPdftotextExtractor(pdftotextPath, ExecRunner{Log: log}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
