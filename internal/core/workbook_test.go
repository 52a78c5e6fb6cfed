package core

import "testing"

func TestWorkbook_AddSheet(t *testing.T) {
	var wb Workbook
	s := wb.AddSheet("tag_summary", "tag", "total")
	s.Append("food", "-12.00")
	s.Append("rent", "-400.00")

	got, ok := wb.Sheet("tag_summary")
	if !ok {
		t.Fatal("sheet not found")
	}
	if len(got.Rows) != 2 || got.Rows[1][0] != "rent" {
		t.Errorf("unexpected rows: %v", got.Rows)
	}
	if _, ok := wb.Sheet("missing"); ok {
		t.Error("missing sheet reported as found")
	}
}
