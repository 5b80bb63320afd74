package google

import (
	"fmt"
	"strconv"
	"strings"

	"daybook/internal/core"
)

// buildRow flattens a record into its sheet columns:
// A id, B date, C status, D morning sales, E total sales,
// F total expenses, G profit, H closed flag.
func buildRow(r core.DailyRecord) []any {
	totalSales := ""
	if r.TotalSales != nil {
		totalSales = formatUnits(r.TotalSales.Cents)
	}
	return []any{
		r.ID,
		r.Date.String(),
		string(r.Status()),
		formatUnits(r.MorningSales.Cents),
		totalSales,
		formatUnits(core.TotalExpenses(r).Cents),
		formatUnits(core.Profit(r).Cents),
		r.IsClosed,
	}
}

// formatUnits renders cents as a decimal currency string ("-12.05").
func formatUnits(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// findRow returns the 1-based row of id in the id column, 0 if absent.
func findRow(ids []string, id string) int {
	for i, v := range ids {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(id)) {
			return i + 1
		}
	}
	return 0
}

// yearPrefixedName returns "<year> <base>" unless base already starts
// with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
