package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"blpcli/internal/supplychain"
)

// ExcelWriter writes relationship tables as Excel workbooks.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates an Excel writer.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// WriteRelationships writes one role's relationships to a workbook
// with a single sheet named after the role. Numeric fields are written
// as numeric cells so the workbook sorts and sums without coercion.
func (w *ExcelWriter) WriteRelationships(fullPath string, role supplychain.Role, rels []supplychain.Relationship) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := role.SheetName()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, header := range RelationshipHeaders(role) {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header %s: %w", header, err)
		}
	}

	for i, rel := range rels {
		if err := w.writeRelationshipRow(f, sheet, i+2, rel); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	// Freeze the header row.
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("wrote Excel workbook",
		slog.String("path", fullPath),
		slog.String("sheet", sheet),
		slog.Int("rows", len(rels)))
	return nil
}

func (w *ExcelWriter) writeRelationshipRow(f *excelize.File, sheet string, row int, rel supplychain.Relationship) error {
	values := []any{
		rel.Ticker,
		rel.CounterpartyName,
		rel.EquityTicker,
		floatCell(rel.SizePercent),
		rel.AsOf,
		amountCell(rel),
		rel.Currency,
		rel.AccountType,
		floatCell(rel.RevenuePercent),
		floatCell(rel.CostPercent),
		rel.AmountAsOf,
	}

	for col, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func floatCell(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func amountCell(rel supplychain.Relationship) any {
	if rel.Amount == nil {
		return nil
	}
	return rel.Amount.InexactFloat64()
}
