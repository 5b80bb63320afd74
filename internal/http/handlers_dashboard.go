package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"daybook/internal/core"
)

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	window := s.dash.TrendWindow
	if v := strings.TrimSpace(r.URL.Query().Get("window")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			window = n
		}
	}

	points, err := s.svc.TrendSeries(r.Context(), window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if points == nil {
		points = []core.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

type monthResponse struct {
	Year    int               `json:"year"`
	Month   int               `json:"month"`
	Current core.MonthSummary `json:"current"`
	Prior   core.MonthSummary `json:"prior"`
	// DeltaPercent is the month-over-month change in average daily
	// profit.
	DeltaPercent float64 `json:"deltaPercent"`
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)

	key := monthCacheKey(year, month)
	if cached, found := s.summaryCache.Get(key); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	current, prior, delta, err := s.svc.MonthComparison(r.Context(), year, month, s.dash.CostRatioCategories)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := monthResponse{
		Year:         year,
		Month:        int(month),
		Current:      current,
		Prior:        prior,
		DeltaPercent: delta,
	}
	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	asOf := today()
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeError(w, r, core.ErrDateRequired)
			return
		}
		asOf = d
	}

	items := s.dash.WatchItems
	if v := strings.TrimSpace(r.URL.Query().Get("items")); v != "" {
		items = nil
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
	}

	entries, err := s.svc.InventoryWatch(r.Context(), items, asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.WatchEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// parseYearMonth extracts year and month from query parameters,
// defaulting to the current month.
func parseYearMonth(r *http.Request) (int, time.Month) {
	now := time.Now()
	year := now.Year()
	month := now.Month()

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}
	return year, month
}
