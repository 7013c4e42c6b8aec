// Package auditor writes the raw and normalized datasets of a pipeline run to
// durable files for human inspection.
package auditor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/zizcar/records-etl/internal/domain/etl/parser"
)

// Artifact file names inside the audit directory. Each run overwrites the
// previous bundle; no history is kept.
const (
	RawJSONFile        = "raw.json"
	RawCSVFile         = "raw.csv"
	NormalizedJSONFile = "normalized.json"
	NormalizedCSVFile  = "normalized.csv"
	NormalizedXLSXFile = "normalized.xlsx"
)

// ErrAuditWrite indicates an artifact could not be written.
var ErrAuditWrite = errors.New("failed to write audit artifact")

// rawRow is the single-column raw table shape.
type rawRow struct {
	RawLine string `csv:"raw_line"`
}

// normalizedRow is the normalized table shape shared by the CSV and Excel
// artifacts. Amount is kept as a plain decimal string.
type normalizedRow struct {
	SourceID    string `csv:"sourceId"`
	Date        string `csv:"date"`
	Category    string `csv:"category"`
	Amount      string `csv:"amount"`
	Status      string `csv:"status"`
	Description string `csv:"description"`
}

// normalizedObject is the JSON list shape; Amount stays a JSON number.
type normalizedObject struct {
	SourceID    string      `json:"sourceId"`
	Date        string      `json:"date"`
	Category    string      `json:"category"`
	Amount      json.Number `json:"amount"`
	Status      string      `json:"status"`
	Description string      `json:"description"`
}

// Auditor serializes audit bundles into a fixed output directory.
type Auditor struct {
	outputDir string
	logger    *slog.Logger
}

// New creates an auditor writing into outputDir.
func New(outputDir string, logger *slog.Logger) *Auditor {
	return &Auditor{outputDir: outputDir, logger: logger}
}

// Write persists the audit bundle for one run: the raw candidate lines and
// the normalized records, each as a structured list and as a table. Every
// artifact write fully replaces the previous file.
func (a *Auditor) Write(ctx context.Context, raw []string, recs []parser.Record) error {
	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrAuditWrite, a.outputDir, err)
	}

	artifacts := []struct {
		name   string
		render func() ([]byte, error)
	}{
		{RawJSONFile, func() ([]byte, error) { return json.MarshalIndent(raw, "", "  ") }},
		{RawCSVFile, func() ([]byte, error) { return marshalCSV(rawRows(raw)) }},
		{NormalizedJSONFile, func() ([]byte, error) { return json.MarshalIndent(normalizedObjects(recs), "", "  ") }},
		{NormalizedCSVFile, func() ([]byte, error) { return marshalCSV(normalizedRows(recs)) }},
		{NormalizedXLSXFile, func() ([]byte, error) { return renderWorkbook(recs) }},
	}

	for _, artifact := range artifacts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrAuditWrite, err)
		}

		data, err := artifact.render()
		if err != nil {
			return fmt.Errorf("%w: rendering %s: %v", ErrAuditWrite, artifact.name, err)
		}

		path := filepath.Join(a.outputDir, artifact.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("%w: writing %s: %v", ErrAuditWrite, artifact.name, err)
		}
	}

	a.logger.Info("audit bundle written",
		slog.String("dir", a.outputDir),
		slog.Int("raw_lines", len(raw)),
		slog.Int("records", len(recs)),
	)
	return nil
}

func rawRows(raw []string) []rawRow {
	rows := make([]rawRow, len(raw))
	for i, line := range raw {
		rows[i] = rawRow{RawLine: line}
	}
	return rows
}

func normalizedRows(recs []parser.Record) []normalizedRow {
	rows := make([]normalizedRow, len(recs))
	for i, rec := range recs {
		rows[i] = normalizedRow{
			SourceID:    rec.SourceID,
			Date:        rec.Date,
			Category:    rec.Category,
			Amount:      rec.Amount.String(),
			Status:      rec.Status,
			Description: rec.Description,
		}
	}
	return rows
}

func normalizedObjects(recs []parser.Record) []normalizedObject {
	objs := make([]normalizedObject, len(recs))
	for i, rec := range recs {
		objs[i] = normalizedObject{
			SourceID:    rec.SourceID,
			Date:        rec.Date,
			Category:    rec.Category,
			Amount:      json.Number(rec.Amount.String()),
			Status:      rec.Status,
			Description: rec.Description,
		}
	}
	return objs
}

func marshalCSV(rows any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderWorkbook builds the Excel rendition of the normalized table.
func renderWorkbook(recs []parser.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := f.GetSheetName(0)
	header := []any{"sourceId", "date", "category", "amount", "status", "description"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, rec := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		amount, _ := rec.Amount.Float64()
		row := []any{rec.SourceID, rec.Date, rec.Category, amount, rec.Status, rec.Description}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
