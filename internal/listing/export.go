package listing

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// formulaPrefixes are the leading characters spreadsheets evaluate as a
// formula when a CSV cell is opened.
const formulaPrefixes = "=+-@\t\r"

// SafeCell quotes a value that a spreadsheet would otherwise run as a
// formula by prefixing it with an apostrophe.
func SafeCell(v string) string {
	if v != "" && strings.ContainsRune(formulaPrefixes, rune(v[0])) {
		return "'" + v
	}
	return v
}

// ExportFilename names a CSV export generated at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("registrations_%s.csv", t.Format("2006-01-02_15-04"))
}

// WriteCSV writes a header of column titles followed by one record per row.
// Submitted text is passed through SafeCell.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(Columns))
	for i, c := range Columns {
		header[i] = c.Title
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(Columns))
	for _, r := range rows {
		for i, c := range Columns {
			record[i] = SafeCell(r.Cell(c.Key))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
