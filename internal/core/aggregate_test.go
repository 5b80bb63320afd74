package core

import (
	"testing"
)

// record builds a trading-day record with a single "Food" category.
func record(date Date, salesCents int64, itemAmounts map[string]int64) DailyRecord {
	cat := ExpenseCategory{ID: newID(), Name: "Food"}
	for name, cents := range itemAmounts {
		cat.Items = append(cat.Items, ExpenseItem{ID: newID(), Name: name, Amount: Money{Cents: cents}})
	}
	r := DailyRecord{
		ID:       newID(),
		Date:     date,
		Expenses: []ExpenseCategory{cat},
	}
	r.SetTotalSales(Money{Cents: salesCents})
	return r
}

func TestTotalExpenses(t *testing.T) {
	r := record(NewDate(2024, 3, 1), 0, map[string]int64{"Rice": 5000, "Oil": 0, "Salt": 250})
	r.Expenses = append(r.Expenses, ExpenseCategory{
		ID:   newID(),
		Name: "Fixed",
		Items: []ExpenseItem{
			{ID: newID(), Name: "Rent"}, // amount never set, defaults to zero
			{ID: newID(), Name: "Power", Amount: Money{Cents: 1200}},
		},
	})
	if got := TotalExpenses(r); got.Cents != 6450 {
		t.Fatalf("TotalExpenses = %d, want 6450", got.Cents)
	}
	if got := TotalExpenses(DailyRecord{}); got.Cents != 0 {
		t.Fatalf("empty record total = %d, want 0", got.Cents)
	}
}

func TestProfitCanBeNegative(t *testing.T) {
	r := record(NewDate(2024, 3, 1), 1000, map[string]int64{"Rice": 2500})
	if got := Profit(r); got.Cents != -1500 {
		t.Fatalf("Profit = %d, want -1500", got.Cents)
	}

	// No total sales entered counts as zero sales.
	r.ClearTotalSales()
	if got := Profit(r); got.Cents != -2500 {
		t.Fatalf("Profit without sales = %d, want -2500", got.Cents)
	}
}

func TestTrendSeries(t *testing.T) {
	// Descending by date, as stores hand records out.
	records := []DailyRecord{
		record(NewDate(2024, 3, 3), 3000, map[string]int64{"Rice": 1000}),
		record(NewDate(2024, 3, 2), 2000, map[string]int64{"Rice": 500}),
		record(NewDate(2024, 3, 1), 1000, map[string]int64{"Rice": 2000}),
	}

	points := TrendSeries(records, 7)
	if len(points) != 3 {
		t.Fatalf("short collection should return all records, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Date.Before(points[i].Date.Time) {
			t.Fatalf("series not ascending at %d: %s then %s", i, points[i-1].Date, points[i].Date)
		}
	}
	if points[0].Profit.Cents != -1000 {
		t.Fatalf("oldest profit = %d, want -1000", points[0].Profit.Cents)
	}
	if points[2].Sales.Cents != 3000 || points[2].Expenses.Cents != 1000 {
		t.Fatalf("newest point wrong: %+v", points[2])
	}

	if got := TrendSeries(records, 2); len(got) != 2 || got[0].Date != NewDate(2024, 3, 2) {
		t.Fatalf("window of 2 should keep the two most recent days")
	}
	if got := TrendSeries(nil, 7); len(got) != 0 {
		t.Fatalf("empty collection should yield empty series")
	}
}

func TestMonthAggregate(t *testing.T) {
	closed := DailyRecord{ID: newID(), Date: NewDate(2024, 3, 2)}
	closed.SetStatus(StatusClosed)
	closed.Expenses = []ExpenseCategory{{
		ID: newID(), Name: "Food",
		Items: []ExpenseItem{{ID: newID(), Name: "Rice", Amount: Money{Cents: 99999}}},
	}}

	records := []DailyRecord{
		record(NewDate(2024, 4, 1), 5000, map[string]int64{"Rice": 1000}), // outside range
		record(NewDate(2024, 3, 31), 10000, map[string]int64{"Rice": 3000}),
		closed,
		record(NewDate(2024, 3, 1), 10000, map[string]int64{"Rice": 1000}),
		record(NewDate(2024, 2, 28), 7000, map[string]int64{"Rice": 1000}), // outside range
	}

	got := MonthAggregate(records, NewDate(2024, 3, 1), NewDate(2024, 3, 31), []string{"Food", "Labor"})
	if got.RecordCount != 2 {
		t.Fatalf("RecordCount = %d, want 2 (closed and out-of-range excluded)", got.RecordCount)
	}
	if got.Sales.Cents != 20000 || got.Expenses.Cents != 4000 || got.Profit.Cents != 16000 {
		t.Fatalf("sums wrong: %+v", got)
	}
	if len(got.CostRatios) != 2 {
		t.Fatalf("expected 2 cost ratios, got %d", len(got.CostRatios))
	}
	food := got.CostRatios[0]
	if food.Category != "Food" || food.Amount.Cents != 4000 || food.Percent != 20 {
		t.Fatalf("food ratio wrong: %+v", food)
	}
	if labor := got.CostRatios[1]; labor.Percent != 0 || labor.Amount.Cents != 0 {
		t.Fatalf("absent category should be zero: %+v", labor)
	}
}

func TestMonthAggregateEmpty(t *testing.T) {
	got := MonthAggregate(nil, NewDate(2024, 3, 1), NewDate(2024, 3, 31), []string{"Food"})
	if got.Sales.Cents != 0 || got.Expenses.Cents != 0 || got.RecordCount != 0 {
		t.Fatalf("empty aggregate not zero: %+v", got)
	}
	for _, r := range got.CostRatios {
		if r.Percent != 0 {
			t.Fatalf("ratio over empty set must be 0, got %v", r.Percent)
		}
	}
	if got.AvgProfitCents() != 0 {
		t.Fatalf("avg profit over empty set must be 0")
	}
}

func TestMonthAggregateZeroSalesRatio(t *testing.T) {
	records := []DailyRecord{
		record(NewDate(2024, 3, 1), 0, map[string]int64{"Rice": 1000}),
	}
	got := MonthAggregate(records, NewDate(2024, 3, 1), NewDate(2024, 3, 31), []string{"Food"})
	if got.CostRatios[0].Percent != 0 {
		t.Fatalf("zero sales must give 0%%, got %v", got.CostRatios[0].Percent)
	}
}

func TestMonthOverMonthDelta(t *testing.T) {
	cases := []struct {
		current, prior, want float64
	}{
		{110, 100, 10},
		{90, 100, -10},
		{100, 0, 0},  // zero baseline reads as flat
		{0, 100, -100},
		{-50, 100, -150},
		{-50, -100, 50}, // loss shrinking is an improvement
	}
	for _, tc := range cases {
		if got := MonthOverMonthDelta(tc.current, tc.prior); got != tc.want {
			t.Fatalf("delta(%v, %v) = %v, want %v", tc.current, tc.prior, got, tc.want)
		}
	}
}

func TestInventoryWatch(t *testing.T) {
	records := []DailyRecord{
		record(NewDate(2024, 3, 9), 0, map[string]int64{"Oil": 700}),
		record(NewDate(2024, 3, 5), 0, map[string]int64{"Rice": 5000, "Oil": 0}),
		record(NewDate(2024, 3, 1), 0, map[string]int64{"Rice": 2000}),
	}
	today := NewDate(2024, 3, 10)

	entries := InventoryWatch(records, []string{"Rice", "Oil", "Flour"}, today)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Never-purchased first, then longest-unseen.
	if entries[0].Item != "Flour" || entries[0].DaysAgo != WatchNever {
		t.Fatalf("expected Flour never-sentinel first, got %+v", entries[0])
	}
	if entries[1].Item != "Rice" || entries[1].DaysAgo != 5 {
		t.Fatalf("Rice last bought 2024-03-05 should be 5 days ago, got %+v", entries[1])
	}
	if entries[2].Item != "Oil" || entries[2].DaysAgo != 1 {
		t.Fatalf("Oil should be 1 day ago, got %+v", entries[2])
	}
	if entries[1].LastDate != NewDate(2024, 3, 5) {
		t.Fatalf("Rice LastDate = %s", entries[1].LastDate)
	}
}

func TestInventoryWatchZeroAmountIsNotAPurchase(t *testing.T) {
	records := []DailyRecord{
		record(NewDate(2024, 3, 9), 0, map[string]int64{"Oil": 0}),
		record(NewDate(2024, 3, 5), 0, map[string]int64{"Oil": 700}),
	}
	entries := InventoryWatch(records, []string{"Oil"}, NewDate(2024, 3, 10))
	if entries[0].DaysAgo != 5 {
		t.Fatalf("zero-amount line must not count as a purchase, got %d days", entries[0].DaysAgo)
	}
}

func TestInventoryWatchSameDay(t *testing.T) {
	records := []DailyRecord{
		record(NewDate(2024, 3, 10), 0, map[string]int64{"Rice": 100}),
	}
	entries := InventoryWatch(records, []string{"Rice"}, NewDate(2024, 3, 10))
	if entries[0].DaysAgo != 0 {
		t.Fatalf("same-day purchase must read 0 days, got %d", entries[0].DaysAgo)
	}
}
