package google

import (
	"testing"

	"daybook/internal/core"
)

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		cents    int64
		expected string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{150, "1.50"},
		{123456, "1234.56"},
		{-1205, "-12.05"},
	}
	for _, tt := range tests {
		if got := formatUnits(tt.cents); got != tt.expected {
			t.Errorf("formatUnits(%d) = %q, want %q", tt.cents, got, tt.expected)
		}
	}
}

func TestFindRow(t *testing.T) {
	ids := []string{"id", "rec-1", "", "REC-3"}

	if got := findRow(ids, "rec-1"); got != 2 {
		t.Errorf("findRow(rec-1) = %d, want 2", got)
	}
	if got := findRow(ids, "rec-3"); got != 4 {
		t.Errorf("findRow(rec-3) = %d, want 4 (case-insensitive)", got)
	}
	if got := findRow(ids, "missing"); got != 0 {
		t.Errorf("findRow(missing) = %d, want 0", got)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base     string
		year     int
		expected string
	}{
		{"Daybook", 2025, "2025 Daybook"},
		{"2024 Daybook", 2025, "2024 Daybook"},
		{"  Daybook  ", 2025, "2025 Daybook"},
		{"", 2025, ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.expected {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.expected)
		}
	}
}

func TestBuildRow(t *testing.T) {
	rec := core.DailyRecord{
		ID:           "rec-9",
		Date:         core.NewDate(2025, 3, 14),
		MorningSales: core.Money{Cents: 10000},
		Expenses: []core.ExpenseCategory{{
			ID:   "c1",
			Name: "Vegetables",
			Items: []core.ExpenseItem{
				{ID: "i1", Name: "Onion", Amount: core.Money{Cents: 2500}},
			},
		}},
	}
	rec.SetTotalSales(core.Money{Cents: 30000})
	rec.SetStatus(core.StatusCompleted)

	row := buildRow(rec)
	if len(row) != 8 {
		t.Fatalf("buildRow returned %d columns, want 8", len(row))
	}
	if row[0] != "rec-9" || row[1] != "2025-03-14" {
		t.Errorf("id/date columns = %v/%v", row[0], row[1])
	}
	if row[2] != "COMPLETED" {
		t.Errorf("status column = %v, want COMPLETED", row[2])
	}
	if row[4] != "300.00" {
		t.Errorf("total sales column = %v, want 300.00", row[4])
	}
	if row[5] != "25.00" {
		t.Errorf("expenses column = %v, want 25.00", row[5])
	}
	if row[6] != "275.00" {
		t.Errorf("profit column = %v, want 275.00", row[6])
	}

	rec.ClearTotalSales()
	row = buildRow(rec)
	if row[4] != "" {
		t.Errorf("total sales column for unset sales = %v, want empty", row[4])
	}
}
