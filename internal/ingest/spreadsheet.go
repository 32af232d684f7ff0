package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// spreadsheetToText flattens every non-empty sheet of an xlsx workbook into
// CSV, each sheet headed by a "# Sheet: <name>" line.
func spreadsheetToText(raw []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("# Sheet: " + sheet + "\n")
		w := csv.NewWriter(&sb)
		if err := w.WriteAll(rows); err != nil {
			return "", fmt.Errorf("encoding sheet %q: %w", sheet, err)
		}
	}
	return sb.String(), nil
}
