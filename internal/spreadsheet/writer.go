package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"katalog/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Products"

// ExportColumns is the header of every export.
var ExportColumns = []string{
	models.FieldID,
	models.FieldCode,
	models.FieldName,
	models.FieldDescription,
	models.FieldPrice,
	models.FieldCost,
	models.FieldCategory,
	models.FieldSupplier,
	models.FieldIsActive,
	models.FieldCreatedAt,
	models.FieldUpdatedAt,
}

func exportRecord(p models.Product) []string {
	return []string{
		strconv.FormatUint(uint64(p.ID), 10),
		p.Code,
		p.Name,
		p.Description,
		strconv.FormatFloat(p.Price, 'f', -1, 64),
		strconv.FormatFloat(p.Cost, 'f', -1, 64),
		p.Category.String(),
		p.Supplier,
		strconv.FormatBool(p.IsActive),
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteCSV writes products as CSV with ExportColumns as header.
func WriteCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range products {
		if err := cw.Write(exportRecord(p)); err != nil {
			return fmt.Errorf("failed to write product %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes products as a single-sheet workbook. Numeric and boolean
// columns keep their cell types.
func WriteXLSX(w io.Writer, products []models.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write xlsx header: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			p.ID,
			p.Code,
			p.Name,
			p.Description,
			p.Price,
			p.Cost,
			p.Category.String(),
			p.Supplier,
			p.IsActive,
			p.CreatedAt.UTC().Format(time.RFC3339),
			p.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write product %d: %w", p.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
