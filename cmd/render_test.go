package cmd

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pterm/pterm"
)

func TestTableData(t *testing.T) {
	rows := []map[string]any{
		{"CITY": "Bogota", "FRAUDS": int64(12), "RATE": 3.25, "NOTE": nil},
		{"CITY": "Medellin", "FRAUDS": int64(7), "RATE": 1.5, "AT": time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
	}

	got := tableData([]string{"CITY", "FRAUDS", "RATE"}, rows, 0)

	want := pterm.TableData{
		{"CITY", "FRAUDS", "RATE", "AT", "NOTE"},
		{"Bogota", "12", "3.25", "null", "null"},
		{"Medellin", "7", "1.5", "2025-01-02T03:04:05Z", "null"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tableData mismatch (-want +got):\n%s", diff)
	}
}

func TestTableData_Limit(t *testing.T) {
	rows := []map[string]any{{"N": int64(1)}, {"N": int64(2)}, {"N": int64(3)}}

	got := tableData([]string{"N"}, rows, 2)

	if len(got) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(got))
	}
	if got[2][0] != "2" {
		t.Errorf("last row = %v, want [2]", got[2])
	}
}
