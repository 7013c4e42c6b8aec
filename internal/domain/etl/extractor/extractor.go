// Package extractor decodes the source PDF into candidate invoice lines.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Marker is the substring a raw line must contain to be offered to the parser.
const Marker = "INV-"

// ErrExtraction indicates the document could not be decoded to text.
var ErrExtraction = errors.New("failed to extract text from document")

// Extractor turns a PDF document into an ordered set of candidate lines.
type Extractor struct {
	logger *slog.Logger
}

// New creates an extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract decodes the document at path and returns the lines that are
// non-blank and contain the invoice marker, in document order.
func (e *Extractor) Extract(ctx context.Context, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %q: %w", path, err)
	}

	text, err := decodeText(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	candidates := FilterCandidates(text)
	e.logger.Info("extracted candidate lines",
		slog.String("path", path),
		slog.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// decodeText extracts plain text from the PDF bytes, one line per text row.
func decodeText(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageNum, err)
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
	}

	return sb.String(), nil
}

// FilterCandidates splits extracted text into lines, dropping blank lines and
// lines without the invoice marker.
func FilterCandidates(text string) []string {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(line, Marker) {
			continue
		}
		candidates = append(candidates, line)
	}
	return candidates
}
