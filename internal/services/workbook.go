package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// sheetName is the single worksheet every export artifact carries.
const sheetName = "Employees"

// bookkeepingFields are internal audit fields excluded from export rows.
var bookkeepingFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
}

// FlattenRecord prepares one employee document for the spreadsheet.
// Fields whose name contains "url" are dropped so document and photo links
// never leave the system, bookkeeping fields are dropped, and store-native
// timestamps collapse to an ISO calendar date.
func FlattenRecord(record map[string]interface{}) map[string]interface{} {
	row := make(map[string]interface{}, len(record))
	for key, value := range record {
		if strings.Contains(strings.ToLower(key), "url") {
			continue
		}
		if bookkeepingFields[key] {
			continue
		}
		switch v := value.(type) {
		case time.Time:
			row[key] = v.Format("2006-01-02")
		case *time.Time:
			if v != nil {
				row[key] = v.Format("2006-01-02")
			}
		default:
			row[key] = value
		}
	}
	return row
}

// headerRow returns the sorted union of keys across all rows, so a field
// present on only some documents still gets a column.
func headerRow(rows []map[string]interface{}) []string {
	seen := make(map[string]bool)
	var headers []string
	for _, row := range rows {
		for key := range row {
			if !seen[key] {
				seen[key] = true
				headers = append(headers, key)
			}
		}
	}
	sort.Strings(headers)
	return headers
}

// WriteWorkbook serializes the rows into a single-sheet xlsx file at path.
func WriteWorkbook(path string, rows []map[string]interface{}) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	headers := headerRow(rows)
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := file.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header %q: %w", header, err)
		}
	}

	for i, row := range rows {
		for col, header := range headers {
			value, ok := row[header]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := file.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
