package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVUsesEffectiveSeverity(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, completedScan(), CSVOptions{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvColumns, records[0])
	assert.Equal(t, "vuln-scan-abc-0", records[1][0])
	assert.Equal(t, "Low", records[1][2])
	// Assessed severity wins over the generated one.
	assert.Equal(t, "High", records[2][2])
}

func TestWriteCSVExcelBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, completedScan(), CSVOptions{ExcelCompatible: true}))
	assert.True(t, strings.HasPrefix(buf.String(), utf8BOM))
}

func TestSanitizeForCSV(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+1234", "'+1234"},
		{"-cmd", "'-cmd"},
		{"@import", "'@import"},
		{"plain text", "plain text"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeForCSV(tt.in))
	}
}
