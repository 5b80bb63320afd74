package core

import (
	"sort"
	"strings"
)

// The aggregation functions are pure: deterministic for identical
// inputs, and they never mutate their arguments. Record collections are
// expected sorted descending by date, which is how stores hand them out.

// TotalExpenses sums every item amount in every category of the record.
func TotalExpenses(r DailyRecord) Money {
	var total Money
	for _, cat := range r.Expenses {
		for _, it := range cat.Items {
			total = total.Add(it.Amount)
		}
	}
	return total
}

// Profit is total sales minus total expenses. There is no floor at
// zero: a losing day yields a negative profit, which views display
// distinctly. A record with no total sales entered counts as zero.
func Profit(r DailyRecord) Money {
	var sales Money
	if r.TotalSales != nil {
		sales = *r.TotalSales
	}
	return sales.Sub(TotalExpenses(r))
}

// TrendPoint is one day of the charting series.
type TrendPoint struct {
	Date     Date  `json:"date"`
	Sales    Money `json:"sales"`
	Expenses Money `json:"expenses"`
	Profit   Money `json:"profit"`
}

// TrendSeries takes the most recent window records from a collection
// sorted descending by date and returns them in ascending chronological
// order, one point per record. A collection shorter than the window
// returns everything available.
func TrendSeries(records []DailyRecord, window int) []TrendPoint {
	if window < 0 {
		window = 0
	}
	n := window
	if len(records) < n {
		n = len(records)
	}
	points := make([]TrendPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		r := records[i]
		var sales Money
		if r.TotalSales != nil {
			sales = *r.TotalSales
		}
		points = append(points, TrendPoint{
			Date:     r.Date,
			Sales:    sales,
			Expenses: TotalExpenses(r),
			Profit:   Profit(r),
		})
	}
	return points
}

// CostRatio is one named cost category's share of sales for a period.
type CostRatio struct {
	Category string  `json:"category"`
	Amount   Money   `json:"amount"`
	Percent  float64 `json:"percent"`
}

// MonthSummary aggregates a date range of trading days.
type MonthSummary struct {
	Sales       Money       `json:"sales"`
	Expenses    Money       `json:"expenses"`
	Profit      Money       `json:"profit"`
	RecordCount int         `json:"recordCount"`
	CostRatios  []CostRatio `json:"costRatios"`
}

// AvgProfitCents returns the mean per-record profit, zero for an empty
// period.
func (m MonthSummary) AvgProfitCents() float64 {
	if m.RecordCount == 0 {
		return 0
	}
	return float64(m.Profit.Cents) / float64(m.RecordCount)
}

// MonthAggregate sums sales and expenses over records whose date falls
// in the inclusive [start, end] range, excluding closed (non-trading)
// days. For every requested cost category it reports the category sum
// as a percentage of sales; when sales are zero every ratio is zero, a
// division by zero never propagates.
func MonthAggregate(records []DailyRecord, start, end Date, costCategories []string) MonthSummary {
	summary := MonthSummary{}
	catSums := make(map[string]Money, len(costCategories))

	for _, r := range records {
		if r.IsClosed {
			continue
		}
		if r.Date.Before(start.Time) || r.Date.After(end.Time) {
			continue
		}
		summary.RecordCount++
		if r.TotalSales != nil {
			summary.Sales = summary.Sales.Add(*r.TotalSales)
		}
		summary.Expenses = summary.Expenses.Add(TotalExpenses(r))
		for _, cat := range r.Expenses {
			for _, want := range costCategories {
				if strings.EqualFold(cat.Name, want) {
					var catTotal Money
					for _, it := range cat.Items {
						catTotal = catTotal.Add(it.Amount)
					}
					catSums[want] = catSums[want].Add(catTotal)
				}
			}
		}
	}
	summary.Profit = summary.Sales.Sub(summary.Expenses)

	summary.CostRatios = make([]CostRatio, 0, len(costCategories))
	for _, want := range costCategories {
		ratio := CostRatio{Category: want, Amount: catSums[want]}
		if summary.Sales.Cents > 0 {
			ratio.Percent = float64(catSums[want].Cents) / float64(summary.Sales.Cents) * 100
		}
		summary.CostRatios = append(summary.CostRatios, ratio)
	}
	return summary
}

// MonthOverMonthDelta returns the percentage change between two average
// profits. A zero prior baseline has no meaningful percentage change
// and reads as flat, not infinite.
func MonthOverMonthDelta(currentAvgProfit, priorAvgProfit float64) float64 {
	if priorAvgProfit == 0 {
		return 0
	}
	delta := currentAvgProfit - priorAvgProfit
	if priorAvgProfit < 0 {
		return delta / -priorAvgProfit * 100
	}
	return delta / priorAvgProfit * 100
}

// WatchNever is the DaysAgo sentinel for an item that has never been
// purchased. It is distinct from zero, which means "purchased today".
const WatchNever = -1

// WatchEntry reports how long ago a tracked item was last purchased.
type WatchEntry struct {
	Item     string `json:"item"`
	DaysAgo  int    `json:"daysAgo"`
	LastDate Date   `json:"lastDate"`
}

// InventoryWatch scans records (descending by date) for the most recent
// purchase of each tracked item, where a purchase is the item appearing
// with a positive amount. Days are whole calendar days between that
// record's date and today. Results come back longest-unseen first, with
// never-purchased items at the very front.
func InventoryWatch(records []DailyRecord, trackedItems []string, today Date) []WatchEntry {
	entries := make([]WatchEntry, 0, len(trackedItems))
	for _, name := range trackedItems {
		entry := WatchEntry{Item: name, DaysAgo: WatchNever}
		for _, r := range records {
			if found, ok := lastPurchase(r, name); ok {
				entry.DaysAgo = found.DaysUntil(today)
				entry.LastDate = found
				break
			}
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].DaysAgo, entries[j].DaysAgo
		if di == WatchNever {
			return dj != WatchNever
		}
		if dj == WatchNever {
			return false
		}
		return di > dj
	})
	return entries
}

func lastPurchase(r DailyRecord, itemName string) (Date, bool) {
	for _, cat := range r.Expenses {
		for _, it := range cat.Items {
			if strings.EqualFold(it.Name, itemName) && it.Amount.Cents > 0 {
				return r.Date, true
			}
		}
	}
	return Date{}, false
}
