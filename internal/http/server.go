// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"daybook/internal/cache"
	"daybook/internal/core"
	applog "daybook/internal/log"
	"daybook/internal/services"
)

// DashboardConfig carries the tunables the dashboard handlers need.
type DashboardConfig struct {
	TrendWindow         int
	CostRatioCategories []string
	WatchItems          []string
}

type Server struct {
	http.Server
	svc         *services.LedgerService
	dash        DashboardConfig
	logger      *applog.Logger
	rateLimiter *rateLimiter

	// Month summaries are recomputed from the full record list, so
	// cache them briefly and purge on every write.
	summaryCache *cache.LRUCache[monthResponse]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run http.Server.
func NewServer(addr string, svc *services.LedgerService, dash DashboardConfig) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:          svc,
		dash:         dash,
		logger:       applog.New(applog.Config{Component: applog.ComponentHTTP}),
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[monthResponse](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(5 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/records", s.withSecurityHeaders(s.handleListRecords))
	mux.HandleFunc("POST /api/records", s.withSecurityHeaders(s.handleCreateRecord))
	mux.HandleFunc("GET /api/records/{id}", s.withSecurityHeaders(s.handleGetRecord))
	mux.HandleFunc("PUT /api/records/{id}", s.withSecurityHeaders(s.handleSaveRecord))
	mux.HandleFunc("DELETE /api/records/{id}", s.withSecurityHeaders(s.handleDeleteRecord))
	mux.HandleFunc("PUT /api/records/{id}/amount", s.withSecurityHeaders(s.handleEditAmount))
	mux.HandleFunc("PUT /api/records/{id}/photos", s.withSecurityHeaders(s.handleEditPhotos))
	mux.HandleFunc("POST /api/records/{id}/items", s.withSecurityHeaders(s.handleAddCustomItem))

	mux.HandleFunc("GET /api/dashboard/trend", s.withSecurityHeaders(s.handleTrend))
	mux.HandleFunc("GET /api/dashboard/month", s.withSecurityHeaders(s.handleMonth))
	mux.HandleFunc("GET /api/dashboard/watch", s.withSecurityHeaders(s.handleWatch))

	mux.HandleFunc("GET /api/structure", s.withSecurityHeaders(s.handleGetStructure))
	mux.HandleFunc("PUT /api/structure", s.withSecurityHeaders(s.handleReplaceStructure))
	mux.HandleFunc("POST /api/structure/categories", s.withSecurityHeaders(s.handleAddCategory))
	mux.HandleFunc("DELETE /api/structure/categories/{name}", s.withSecurityHeaders(s.handleDeleteCategory))
	mux.HandleFunc("PUT /api/structure/categories/reorder", s.withSecurityHeaders(s.handleReorderCategories))
	mux.HandleFunc("POST /api/structure/categories/{name}/items", s.withSecurityHeaders(s.handleAddItem))
	mux.HandleFunc("DELETE /api/structure/categories/{name}/items/{item}", s.withSecurityHeaders(s.handleDeleteItem))
	mux.HandleFunc("PUT /api/structure/categories/{name}/items/reorder", s.withSecurityHeaders(s.handleReorderItems))
	mux.HandleFunc("PUT /api/structure/categories/{name}/upload", s.withSecurityHeaders(s.handleSetBillUpload))

	mux.HandleFunc("GET /api/gas", s.withSecurityHeaders(s.handleGasStatus))
	mux.HandleFunc("POST /api/gas/swap", s.withSecurityHeaders(s.handleGasSwap))
	mux.HandleFunc("POST /api/gas/refill", s.withSecurityHeaders(s.handleGasRefill))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		reqLogger := s.logger.With(applog.FieldRequestID, requestID)
		ctx := applog.NewContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		reqLogger.InfoContext(ctx, "Request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		// Rate-limit mutating requests only; dashboard polling is cheap.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		reqLogger.InfoContext(ctx, "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) invalidateDashboards() {
	s.summaryCache.Purge()
}

func monthCacheKey(year int, month time.Month) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(int(month))
}

func today() core.Date {
	return core.DateOf(time.Now())
}
