package datasource

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kbukum/flowkit/catalog"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("creating sheet: %v", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("writing row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}
	return path
}

func TestLoadExcel(t *testing.T) {
	path := writeWorkbook(t, "data", [][]any{
		{"name", "count"},
		{"alpha", 3},
		{"beta", 5},
	})
	entry := &catalog.EXCELDataset{Path: path, Sheet: "data"}

	tbl, err := Load(context.Background(), entry, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(tbl.Columns(), []string{"name", "count"}) {
		t.Fatalf("unexpected columns: %v", tbl.Columns())
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.NumRows())
	}
	if v, _ := tbl.Value(0, "name"); v != "alpha" {
		t.Errorf("unexpected cell: %v", v)
	}
	if v, _ := tbl.Value(1, "count"); v != int64(5) {
		t.Errorf("expected parsed int, got %v (%T)", v, v)
	}
}

func TestLoadExcelMissingSheet(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{{"a"}, {1}})
	entry := &catalog.EXCELDataset{Path: path, Sheet: "absent"}
	if _, err := Load(context.Background(), entry, ""); err == nil {
		t.Fatal("expected error for missing sheet")
	}
}

func TestLoadExcelMissingFile(t *testing.T) {
	entry := &catalog.EXCELDataset{Path: filepath.Join(t.TempDir(), "nope.xlsx"), Sheet: "Sheet1"}
	if _, err := Load(context.Background(), entry, ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}
