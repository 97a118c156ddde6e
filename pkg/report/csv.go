package report

import (
	"encoding/csv"
	"io"

	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

// UTF-8 BOM for Excel compatibility.
const utf8BOM = "\xEF\xBB\xBF"

// csvColumns is the flat export format: one row per vulnerability, the
// severity column carrying the effective (assessed-over-generated)
// severity.
var csvColumns = []string{
	"id",
	"name",
	"severity",
	"description",
	"cwe",
	"evidence",
	"remediation",
}

// CSVOptions configures the CSV export.
type CSVOptions struct {
	// ExcelCompatible prepends a UTF-8 BOM so Excel renders Unicode
	// correctly.
	ExcelCompatible bool

	// Delimiter sets the field delimiter. Zero means comma.
	Delimiter rune
}

// WriteCSV exports the scan's vulnerabilities as CSV with a header
// row. Cell values are sanitized against spreadsheet formula
// injection.
func WriteCSV(w io.Writer, s *vuln.Scan, opts CSVOptions) error {
	if opts.ExcelCompatible {
		if _, err := w.Write([]byte(utf8BOM)); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for i := range s.Vulnerabilities {
		v := &s.Vulnerabilities[i]
		row := []string{
			v.ID,
			v.Name,
			string(v.EffectiveSeverity()),
			v.Description,
			v.CWE,
			v.Evidence,
			v.Remediation,
		}
		for j := range row {
			row[j] = sanitizeForCSV(row[j])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// sanitizeForCSV prevents formula execution when the export is opened
// in a spreadsheet.
func sanitizeForCSV(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
