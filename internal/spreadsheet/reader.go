// Package spreadsheet turns uploaded CSV and XLSX files into reconciliation
// batches and writes the catalog back out in the same formats.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"katalog/internal/models"

	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyFile         = errors.New("file has no header row")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read parses r according to the extension of filename. The first non-empty
// row is the header; each following non-empty row becomes a BatchRow keyed by
// the trimmed header names.
func Read(filename string, r io.Reader) (*models.Batch, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	return buildBatch(filename, records)
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func buildBatch(source string, records [][]string) (*models.Batch, error) {
	header := -1
	for i, rec := range records {
		if !isEmptyRow(rec) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, ErrEmptyFile
	}

	columns := make([]string, len(records[header]))
	for i, name := range records[header] {
		columns[i] = strings.TrimSpace(name)
	}

	batch := &models.Batch{Source: filepath.Base(source), Columns: columns, Rows: []models.BatchRow{}}
	for i := header + 1; i < len(records); i++ {
		rec := records[i]
		if isEmptyRow(rec) {
			continue
		}
		cells := make(map[string]any, len(columns))
		for j, col := range columns {
			if col == "" {
				continue
			}
			if j < len(rec) {
				cells[col] = rec[j]
			} else {
				cells[col] = nil
			}
		}
		batch.Rows = append(batch.Rows, models.BatchRow{Line: i + 1, Cells: cells})
	}
	return batch, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
