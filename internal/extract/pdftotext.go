package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// PdftotextExtractor shells out to poppler's pdftotext
type PdftotextExtractor struct {
	binary string
	runner Runner
}

// NewPdftotextExtractor creates an extractor using the given binary and runner.
// An empty binary means "pdftotext" on the PATH.
func NewPdftotextExtractor(binary string, runner Runner) *PdftotextExtractor {
	if binary == "" {
		binary = "pdftotext"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PdftotextExtractor{binary: binary, runner: runner}
}

// ExtractText writes the PDF to a temporary file and reads pdftotext's output.
// Page breaks (form feeds) become blank lines.
func (e *PdftotextExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if err := checkPDF(data); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "receipt-*.pdf")
	if err != nil {
		return "", &ExtractError{Op: "stage", Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", &ExtractError{Op: "stage", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &ExtractError{Op: "stage", Err: err}
	}

	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.binary, "-enc", "UTF-8", "-eol", "unix", tmp.Name(), "-")
	if err != nil {
		return "", &ExtractError{Op: "pdftotext", Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(errb)))}
	}

	text := strings.ReplaceAll(string(out), "\f", "\n")
	if strings.TrimSpace(text) == "" {
		return "", &ExtractError{Op: "pdftotext", Err: ErrNoText}
	}
	return text, nil
}
