package services

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestFlattenRecordStripsURLFieldsAndBookkeeping(t *testing.T) {
	joined := time.Date(2022, 11, 5, 14, 30, 0, 0, time.UTC)
	exit := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	record := map[string]interface{}{
		"name":        "Asha",
		"photoUrl":    "https://cdn.example.com/asha.jpg",
		"AadhaarURL":  "https://cdn.example.com/asha-aadhaar.jpg",
		"joiningDate": joined,
		"exitDate":    &exit,
		"createdAt":   time.Now(),
		"updatedAt":   time.Now(),
		"clientName":  "TCS",
	}

	row := FlattenRecord(record)

	for key := range row {
		if strings.Contains(strings.ToLower(key), "url") {
			t.Fatalf("url field %q survived flattening", key)
		}
	}
	if _, ok := row["createdAt"]; ok {
		t.Fatalf("createdAt must be dropped")
	}
	if _, ok := row["updatedAt"]; ok {
		t.Fatalf("updatedAt must be dropped")
	}
	if got := row["joiningDate"]; got != "2022-11-05" {
		t.Fatalf("joiningDate = %v, want 2022-11-05", got)
	}
	if got := row["exitDate"]; got != "2024-01-02" {
		t.Fatalf("exitDate = %v, want 2024-01-02", got)
	}
	if got := row["name"]; got != "Asha" {
		t.Fatalf("name = %v, want Asha", got)
	}
}

func TestWriteWorkbookRoundTrip(t *testing.T) {
	rows := []map[string]interface{}{
		{"name": "Asha", "clientName": "TCS", "joiningDate": "2022-11-05"},
		{"name": "Ravi", "clientName": "TCS", "designation": "Guard"},
	}
	path := filepath.Join(t.TempDir(), "employees.xlsx")

	if err := WriteWorkbook(path, rows); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	if got := file.GetSheetName(0); got != "Employees" {
		t.Fatalf("sheet name = %q, want Employees", got)
	}

	sheetRows, err := file.GetRows("Employees")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(sheetRows) != len(rows)+1 {
		t.Fatalf("expected header plus %d data rows, got %d rows", len(rows), len(sheetRows))
	}

	// Header is the sorted union of keys, including fields present on only
	// some rows.
	wantHeader := []string{"clientName", "designation", "joiningDate", "name"}
	if len(sheetRows[0]) != len(wantHeader) {
		t.Fatalf("header = %v, want %v", sheetRows[0], wantHeader)
	}
	for i, h := range wantHeader {
		if sheetRows[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, sheetRows[0][i], h)
		}
	}
}
