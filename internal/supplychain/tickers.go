package supplychain

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultTickers is the built-in semiconductor coverage list used when
// no ticker input is given.
var DefaultTickers = []string{
	"NVDA UW Equity", "AVGO UW Equity", "INTC UW Equity", "QCOM UW Equity", "MU UW Equity",
	"AMD UW Equity", "AVT UW Equity", "TXN UW Equity", "ADI UW Equity", "MRVL UW Equity",
	"GFS UW Equity", "ON UW Equity", "MCHP UW Equity", "SWKS UW Equity", "QRVO UW Equity",
	"VSH UN Equity", "MPWR UW Equity", "CRUS UW Equity", "AEIS UW Equity", "DIOD UW Equity",
	"SYNA UW Equity", "SMTC UW Equity", "MTSI UW Equity", "FORM UW Equity", "ALGM UW Equity",
	"SLAB UW Equity", "AOSL UW Equity", "RMBS UW Equity", "ALAB UW Equity", "CRDO UW Equity",
	"LSCC UW Equity", "POWI UW Equity", "MXL UW Equity", "AMBA UW Equity", "SKYT UR Equity",
	"SITM UQ Equity", "INDI UR Equity", "LASR UW Equity", "CEVA UW Equity", "NVTS UQ Equity",
	"KOPN UR Equity", "NVEC UR Equity", "AEVA UW Equity", "ATOM UR Equity",
}

// ResolveTickers builds the ticker list from a newline-delimited file
// (highest precedence), a comma-separated flag value, or the built-in
// default list.
func ResolveTickers(commaSeparated, filePath string) ([]string, error) {
	if filePath != "" {
		return readTickersFile(filePath)
	}
	if strings.TrimSpace(commaSeparated) != "" {
		return splitTickers(commaSeparated), nil
	}
	out := make([]string, len(DefaultTickers))
	copy(out, DefaultTickers)
	return out, nil
}

func splitTickers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func readTickersFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tickers file: %w", err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tickers file: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("tickers file %s is empty", path)
	}
	return out, nil
}
