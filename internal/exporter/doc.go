// Package exporter writes the tools' outputs: CSV reports, Excel
// workbooks of relationship tables, and PNG time-series charts.
package exporter
