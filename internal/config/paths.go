package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all output and working directories used by the tools.
// Every path is resolved relative to the executable directory so the
// tools behave the same regardless of the current working directory.
type Paths struct {
	ExecutableDir string
	DataDir       string
	ReportsDir    string
	ChartsDir     string
	LogsDir       string

	// Well-known output files.
	CombinedCSV   string
	SuppliersXLSX string
	CustomersXLSX string
	SuppliersCSV  string
	CustomersCSV  string
}

// GetPaths resolves the directory layout relative to the executable.
//
//	<exe dir>/
//	  ├── data/
//	  │   ├── reports/   (CSV and xlsx outputs)
//	  │   └── charts/    (PNG charts)
//	  └── logs/
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	exeDir := filepath.Dir(exe)

	dataDir := filepath.Join(exeDir, "data")
	reportsDir := filepath.Join(dataDir, "reports")

	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		ReportsDir:    reportsDir,
		ChartsDir:     filepath.Join(dataDir, "charts"),
		LogsDir:       filepath.Join(exeDir, "logs"),

		CombinedCSV:   filepath.Join(reportsDir, "combined.csv"),
		SuppliersXLSX: filepath.Join(reportsDir, "total_suppliers.xlsx"),
		CustomersXLSX: filepath.Join(reportsDir, "total_customers.xlsx"),
		SuppliersCSV:  filepath.Join(reportsDir, "suppliers.csv"),
		CustomersCSV:  filepath.Join(reportsDir, "customers.csv"),
	}, nil
}

// EnsureDirectories creates the base directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ReportsDir,
		p.ChartsDir,
		p.LogsDir,
	}
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the full path for a report file.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetChartPath returns the full path for a chart file.
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetLogPath returns the full path for a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
