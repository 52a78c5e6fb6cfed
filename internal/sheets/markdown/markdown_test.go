package markdown

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"upreport/internal/core"
)

func TestRender(t *testing.T) {
	wb := core.Workbook{Name: "Untagged withdrawals"}
	wb.AddSheet("untagged_withdrawals", "id", "description", "amount").Append("t1", "ATM | Town Hall", "-50.00")
	wb.AddSheet("rejected_records", "index", "error")

	got := Render(wb)
	for _, want := range []string{
		"# Untagged withdrawals\n",
		"## untagged_withdrawals\n",
		"| id | description | amount |\n| --- | --- | --- |\n",
		`| t1 | ATM \| Town Hall | -50.00 |`,
		"_no rows_",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRender_ShortRowsArePadded(t *testing.T) {
	var wb core.Workbook
	wb.AddSheet("s", "a", "b", "c").Append("1")
	if got := Render(wb); !strings.Contains(got, "| 1 |  |  |") {
		t.Errorf("got:\n%s", got)
	}
}

func TestWriter_WriteReport(t *testing.T) {
	dir := t.TempDir()
	wb := core.Workbook{Name: "tags", GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	wb.AddSheet("tag_summary", "tag").Append("food")

	path, err := New(dir).WriteReport(context.Background(), wb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, "tags_20240102-030405.md") {
		t.Errorf("path: got %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != Render(wb) {
		t.Error("file content differs from Render output")
	}
}
