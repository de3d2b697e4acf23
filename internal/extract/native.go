package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeExtractor reads the PDF text layer in-process
type NativeExtractor struct{}

// NewNativeExtractor creates a NativeExtractor
func NewNativeExtractor() *NativeExtractor {
	return &NativeExtractor{}
}

// ExtractText rebuilds the document text line by line from glyph positions,
// pages separated by a blank line
func (e *NativeExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", &ExtractError{Op: "read", Err: err}
	}
	if err := checkPDF(data); err != nil {
		return "", err
	}

	// the pdf package panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractError{Op: "read", Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractError{Op: "open", Err: err}
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", &ExtractError{Op: "read", Err: err}
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		lines := pageLines(page.Content().Text)
		if len(lines) == 0 {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		for _, line := range lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	text = b.String()
	if strings.TrimSpace(text) == "" {
		return "", &ExtractError{Op: "read", Err: ErrNoText}
	}
	return text, nil
}
