// Package locator resolves the source document for a pipeline run. The path
// comes from configuration; there is no directory search.
package locator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrDocumentNotFound indicates the configured input document does not exist.
var ErrDocumentNotFound = errors.New("input document not found")

// Locator resolves the configured input path to an absolute file path.
type Locator struct {
	inputPath string
}

// New creates a locator for the given input path.
func New(inputPath string) *Locator {
	return &Locator{inputPath: inputPath}
}

// Resolve verifies the input document exists and returns its absolute path.
func (l *Locator) Resolve(_ context.Context) (string, error) {
	abs, err := filepath.Abs(l.inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve input path %q: %w", l.inputPath, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, abs)
		}
		return "", fmt.Errorf("failed to stat input document %q: %w", abs, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrDocumentNotFound, abs)
	}

	return abs, nil
}
