package exporter

import (
	"blpcli/internal/analytics"
)

// panelDateFormat matches the panel CSV's date column.
const panelDateFormat = "2006-01-02"

// WritePanelCSV writes a date-aligned panel as a wide CSV with a Date
// column followed by one column per series.
func (w *CSVWriter) WritePanelCSV(fullPath string, p *analytics.Panel) error {
	headers := append([]string{"Date"}, p.Columns()...)

	records := make([][]string, 0, p.Len())
	for i, date := range p.Dates {
		record := make([]string, 0, len(headers))
		record = append(record, date.Format(panelDateFormat))
		for _, col := range p.Columns() {
			record = append(record, formatFloat(p.Column(col)[i]))
		}
		records = append(records, record)
	}

	return w.WriteSimpleCSV(fullPath, headers, records)
}
