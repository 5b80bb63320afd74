package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"daybook/internal/core"
	"daybook/internal/ledger/memory"
	"daybook/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	svc := services.NewLedgerService(store, store, store, nil, core.GasConfig{TotalCylinders: 10, CylindersPerBank: 2})
	s := NewServer(":0", svc, DashboardConfig{
		TrendWindow:         7,
		CostRatioCategories: []string{"Vegetables", "Groceries"},
		WatchItems:          []string{"Rice"},
	})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rw, req)
	return rw
}

func decodeBody[T any](t *testing.T, rw *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rw.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rw.Body.String(), err)
	}
	return v
}

func createRecord(t *testing.T, s *Server, date string) core.DailyRecord {
	t.Helper()
	rw := doJSON(t, s, http.MethodPost, "/api/records", map[string]string{"date": date})
	if rw.Code != http.StatusCreated {
		t.Fatalf("create record status = %d, body %s", rw.Code, rw.Body.String())
	}
	return decodeBody[core.DailyRecord](t, rw)
}

func TestRecordLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := createRecord(t, s, "2025-06-01")
	if rec.Status() != core.StatusInProgress {
		t.Errorf("new record status = %v, want IN_PROGRESS", rec.Status())
	}

	// Edit an amount on the Fixed category.
	fixed := rec.Expenses[2]
	rw := doJSON(t, s, http.MethodPut, "/api/records/"+rec.ID+"/amount", map[string]string{
		"categoryId": fixed.ID,
		"itemId":     fixed.Items[0].ID,
		"value":      "120.00",
	})
	if rw.Code != http.StatusOK {
		t.Fatalf("edit amount status = %d, body %s", rw.Code, rw.Body.String())
	}
	updated := decodeBody[core.DailyRecord](t, rw)
	if updated.Expenses[2].Items[0].Amount.Cents != 12000 {
		t.Errorf("amount = %d, want 12000", updated.Expenses[2].Items[0].Amount.Cents)
	}

	// Completing without total sales is rejected.
	updated.SetStatus(core.StatusCompleted)
	rw = doJSON(t, s, http.MethodPut, "/api/records/"+rec.ID, updated)
	if rw.Code != http.StatusUnprocessableEntity {
		t.Fatalf("complete without sales status = %d, want 422", rw.Code)
	}

	updated.SetTotalSales(core.Money{Cents: 50000})
	rw = doJSON(t, s, http.MethodPut, "/api/records/"+rec.ID, updated)
	if rw.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body %s", rw.Code, rw.Body.String())
	}

	rw = doJSON(t, s, http.MethodGet, "/api/records/"+rec.ID, nil)
	got := decodeBody[core.DailyRecord](t, rw)
	if got.Status() != core.StatusCompleted {
		t.Errorf("status = %v, want COMPLETED", got.Status())
	}

	rw = doJSON(t, s, http.MethodDelete, "/api/records/"+rec.ID, nil)
	if rw.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rw.Code)
	}
	rw = doJSON(t, s, http.MethodGet, "/api/records/"+rec.ID, nil)
	if rw.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rw.Code)
	}
}

func TestEditAmount_RejectsNonNumeric(t *testing.T) {
	s := newTestServer(t)
	rec := createRecord(t, s, "2025-06-01")
	fixed := rec.Expenses[2]

	rw := doJSON(t, s, http.MethodPut, "/api/records/"+rec.ID+"/amount", map[string]string{
		"categoryId": fixed.ID,
		"itemId":     fixed.Items[0].ID,
		"value":      "12.3.4",
	})
	if rw.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rw.Code)
	}
}

func TestCreateRecord_RequiresDate(t *testing.T) {
	s := newTestServer(t)
	rw := doJSON(t, s, http.MethodPost, "/api/records", map[string]string{})
	if rw.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rw.Code)
	}
}

func TestCustomItem(t *testing.T) {
	s := newTestServer(t)
	rec := createRecord(t, s, "2025-06-01")
	veg := rec.Expenses[0]

	rw := doJSON(t, s, http.MethodPost, "/api/records/"+rec.ID+"/items", map[string]any{
		"categoryId": veg.ID,
		"name":       "Ginger",
		"persist":    true,
	})
	if rw.Code != http.StatusCreated {
		t.Fatalf("add custom item status = %d, body %s", rw.Code, rw.Body.String())
	}
	updated := decodeBody[core.DailyRecord](t, rw)
	if len(updated.Expenses[0].Items) != 1 || updated.Expenses[0].Items[0].Name != "Ginger" {
		t.Errorf("items = %+v, want [Ginger]", updated.Expenses[0].Items)
	}

	// persist registered the item in the taxonomy.
	rw = doJSON(t, s, http.MethodGet, "/api/structure", nil)
	structure := decodeBody[core.Structure](t, rw)
	if len(structure.Categories[0].Items) != 1 || structure.Categories[0].Items[0].Name != "Ginger" {
		t.Errorf("taxonomy items = %+v, want [Ginger]", structure.Categories[0].Items)
	}

	// Duplicate name in the same category conflicts.
	rw = doJSON(t, s, http.MethodPost, "/api/records/"+rec.ID+"/items", map[string]string{
		"categoryId": veg.ID,
		"name":       "ginger",
	})
	if rw.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rw.Code)
	}
}

func TestStructureEndpoints(t *testing.T) {
	s := newTestServer(t)

	rw := doJSON(t, s, http.MethodPost, "/api/structure/categories", map[string]string{"name": "Meat"})
	if rw.Code != http.StatusCreated {
		t.Fatalf("add category status = %d, body %s", rw.Code, rw.Body.String())
	}
	structure := decodeBody[core.Structure](t, rw)
	if len(structure.Categories) != 4 || structure.Categories[3].Name != "Meat" {
		t.Fatalf("categories = %+v, want Meat appended", structure.Categories)
	}

	rw = doJSON(t, s, http.MethodPost, "/api/structure/categories", map[string]string{"name": "Meat"})
	if rw.Code != http.StatusConflict {
		t.Errorf("duplicate category status = %d, want 409", rw.Code)
	}

	rw = doJSON(t, s, http.MethodPost, "/api/structure/categories/Meat/items", map[string]string{
		"name":         "Chicken",
		"defaultValue": "10",
	})
	if rw.Code != http.StatusCreated {
		t.Fatalf("add item status = %d, body %s", rw.Code, rw.Body.String())
	}
	structure = decodeBody[core.Structure](t, rw)
	if structure.Categories[3].Items[0].DefaultValue.Cents != 1000 {
		t.Errorf("default value = %d, want 1000", structure.Categories[3].Items[0].DefaultValue.Cents)
	}

	rw = doJSON(t, s, http.MethodPut, "/api/structure/categories/reorder", map[string]int{"from": 3, "to": 0})
	if rw.Code != http.StatusOK {
		t.Fatalf("reorder status = %d, body %s", rw.Code, rw.Body.String())
	}
	structure = decodeBody[core.Structure](t, rw)
	if structure.Categories[0].Name != "Meat" {
		t.Errorf("first category = %s, want Meat", structure.Categories[0].Name)
	}

	rw = doJSON(t, s, http.MethodPut, "/api/structure/categories/reorder", map[string]int{"from": 9, "to": 0})
	if rw.Code != http.StatusUnprocessableEntity {
		t.Errorf("out-of-range reorder status = %d, want 422", rw.Code)
	}

	rw = doJSON(t, s, http.MethodPut, "/api/structure/categories/Meat/upload", map[string]bool{"enabled": true})
	if rw.Code != http.StatusOK {
		t.Fatalf("set upload status = %d", rw.Code)
	}
	structure = decodeBody[core.Structure](t, rw)
	if !structure.UploadEnabled("Meat") {
		t.Error("Meat should accept bill uploads")
	}

	rw = doJSON(t, s, http.MethodDelete, "/api/structure/categories/Meat", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("delete category status = %d", rw.Code)
	}
	structure = decodeBody[core.Structure](t, rw)
	if len(structure.Categories) != 3 {
		t.Errorf("categories = %d, want 3 after delete", len(structure.Categories))
	}
	if structure.UploadEnabled("Meat") {
		t.Error("upload flag should be dropped with the category")
	}
}

func TestReplaceStructure(t *testing.T) {
	s := newTestServer(t)

	rw := doJSON(t, s, http.MethodGet, "/api/structure", nil)
	structure := decodeBody[core.Structure](t, rw)
	structure.Categories = append(structure.Categories, core.StructureCategory{
		Name:  "Meat",
		Items: []core.ItemTemplate{{Name: "Chicken"}},
	})

	rw = doJSON(t, s, http.MethodPut, "/api/structure", structure)
	if rw.Code != http.StatusOK {
		t.Fatalf("replace status = %d, body %s", rw.Code, rw.Body.String())
	}
	saved := decodeBody[core.Structure](t, rw)
	if len(saved.Categories) != 4 || saved.Categories[3].Name != "Meat" {
		t.Fatalf("categories = %+v, want Meat appended", saved.Categories)
	}

	// A structure with duplicate category names is rejected wholesale.
	structure.Categories = append(structure.Categories, core.StructureCategory{Name: "Meat"})
	rw = doJSON(t, s, http.MethodPut, "/api/structure", structure)
	if rw.Code != http.StatusConflict {
		t.Errorf("duplicate replace status = %d, want 409", rw.Code)
	}
	rw = doJSON(t, s, http.MethodGet, "/api/structure", nil)
	if got := decodeBody[core.Structure](t, rw); len(got.Categories) != 4 {
		t.Errorf("categories = %d, want rejected commit to leave 4", len(got.Categories))
	}
}

func TestDashboardMonth(t *testing.T) {
	s := newTestServer(t)

	// Two trading days and one closed day in June 2025.
	for day, sales := range map[int]int64{1: 30000, 2: 20000} {
		rec := createRecord(t, s, fmt.Sprintf("2025-06-%02d", day))
		rec.SetTotalSales(core.Money{Cents: sales})
		rec.SetStatus(core.StatusCompleted)
		rw := doJSON(t, s, http.MethodPut, "/api/records/"+rec.ID, rec)
		if rw.Code != http.StatusOK {
			t.Fatalf("save status = %d, body %s", rw.Code, rw.Body.String())
		}
	}
	closed := createRecord(t, s, "2025-06-03")
	closed.SetStatus(core.StatusClosed)
	if rw := doJSON(t, s, http.MethodPut, "/api/records/"+closed.ID, closed); rw.Code != http.StatusOK {
		t.Fatalf("save closed status = %d", rw.Code)
	}

	rw := doJSON(t, s, http.MethodGet, "/api/dashboard/month?year=2025&month=6", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("month status = %d, body %s", rw.Code, rw.Body.String())
	}
	resp := decodeBody[monthResponse](t, rw)
	if resp.Current.Sales.Cents != 50000 {
		t.Errorf("sales = %d, want 50000", resp.Current.Sales.Cents)
	}
	if resp.Current.RecordCount != 2 {
		t.Errorf("record count = %d, want 2 (closed day excluded)", resp.Current.RecordCount)
	}
	if len(resp.Current.CostRatios) != 2 {
		t.Errorf("cost ratios = %d, want 2 configured categories", len(resp.Current.CostRatios))
	}

	// A new record invalidates the cached summary.
	rec := createRecord(t, s, "2025-06-04")
	rec.SetTotalSales(core.Money{Cents: 10000})
	rec.SetStatus(core.StatusCompleted)
	if rw := doJSON(t, s, http.MethodPut, "/api/records/"+rec.ID, rec); rw.Code != http.StatusOK {
		t.Fatalf("save status = %d", rw.Code)
	}

	rw = doJSON(t, s, http.MethodGet, "/api/dashboard/month?year=2025&month=6", nil)
	resp = decodeBody[monthResponse](t, rw)
	if resp.Current.Sales.Cents != 60000 {
		t.Errorf("sales after new record = %d, want 60000", resp.Current.Sales.Cents)
	}
}

func TestDashboardTrendAndWatch(t *testing.T) {
	s := newTestServer(t)

	rec := createRecord(t, s, "2025-06-01")
	rec.SetTotalSales(core.Money{Cents: 30000})
	rec.SetStatus(core.StatusCompleted)
	rec.Expenses[0].Items = []core.ExpenseItem{{ID: "i1", Name: "Rice", Amount: core.Money{Cents: 4000}}}
	if rw := doJSON(t, s, http.MethodPut, "/api/records/"+rec.ID, rec); rw.Code != http.StatusOK {
		t.Fatalf("save status = %d", rw.Code)
	}

	rw := doJSON(t, s, http.MethodGet, "/api/dashboard/trend?window=7", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("trend status = %d", rw.Code)
	}
	points := decodeBody[[]core.TrendPoint](t, rw)
	if len(points) != 1 {
		t.Fatalf("trend points = %d, want 1", len(points))
	}
	if points[0].Profit.Cents != 26000 {
		t.Errorf("profit = %d, want 26000", points[0].Profit.Cents)
	}

	rw = doJSON(t, s, http.MethodGet, "/api/dashboard/watch?date=2025-06-05", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("watch status = %d", rw.Code)
	}
	entries := decodeBody[[]core.WatchEntry](t, rw)
	if len(entries) != 1 || entries[0].Item != "Rice" {
		t.Fatalf("entries = %+v, want Rice", entries)
	}
	if entries[0].DaysAgo != 4 {
		t.Errorf("DaysAgo = %d, want 4", entries[0].DaysAgo)
	}
}

func TestGasEndpoints(t *testing.T) {
	s := newTestServer(t)

	rw := doJSON(t, s, http.MethodGet, "/api/gas?date=2025-06-01", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("gas status = %d", rw.Code)
	}
	status := decodeBody[services.GasStatus](t, rw)
	if status.State.CurrentStock != 0 || status.DaysSinceSwap != -1 {
		t.Errorf("initial status = %+v, want empty stock and never-swapped", status)
	}

	rw = doJSON(t, s, http.MethodPost, "/api/gas/swap", map[string]any{"count": 1, "date": "2025-06-01"})
	if rw.Code != http.StatusUnprocessableEntity {
		t.Errorf("swap with no stock status = %d, want 422", rw.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rw := doJSON(t, s, http.MethodGet, path, nil)
		if rw.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rw.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rw := doJSON(t, s, http.MethodGet, "/api/records", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("list status = %d", rw.Code)
	}
	if got := rw.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rw.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
