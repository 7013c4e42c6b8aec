package extractor

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFilterCandidates(t *testing.T) {
	t.Run("keeps only non-blank marker lines in order", func(t *testing.T) {
		text := "Reporte Financiero 2026\n" +
			"\n" +
			"INV-2026-001 05-01-2026 Servicios $150.000 pendiente Pago consultoria\n" +
			"   \n" +
			"Resumen del periodo\n" +
			"INV-2026-002 06-01-2026 Ventas $80.000 activo Venta mayorista\n" +
			"Total: 2 registros\n"

		lines := FilterCandidates(text)

		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "INV-2026-001")
		assert.Contains(t, lines[1], "INV-2026-002")
	})

	t.Run("marker match is case-sensitive", func(t *testing.T) {
		lines := FilterCandidates("inv-2026-001 05-01-2026 Servicios $1 activo minusculas\n")
		assert.Empty(t, lines)
	})

	t.Run("blank-only text yields no candidates", func(t *testing.T) {
		assert.Empty(t, FilterCandidates("\n  \n\t\n"))
	})
}

func TestExtractor_Extract(t *testing.T) {
	t.Run("fails with ErrExtraction for an undecodable document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "corrupt.pdf")
		require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

		_, err := New(testLogger()).Extract(context.Background(), path)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExtraction)
	})

	t.Run("fails plainly when the file cannot be read", func(t *testing.T) {
		_, err := New(testLogger()).Extract(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"))

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrExtraction)
	})
}
