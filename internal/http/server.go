// Package http exposes the planner over a JSON API. Handlers stay thin:
// parse, call a service or the calculator, encode.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"shiftplan/internal/core"
	"shiftplan/internal/planner"
	"shiftplan/internal/services"
)

// Reader is the query surface the handlers need beyond the calculator.
type Reader interface {
	AssignmentByDate(ctx context.Context, date core.Date) (*core.ShiftAssignment, error)
	AssignmentsInRange(ctx context.Context, start, end core.Date) (map[string]core.Shift, error)
	ActualTimeByDate(ctx context.Context, date core.Date) (*core.ActualWorkTime, error)
	ActualTimesInRange(ctx context.Context, start, end core.Date) (map[string]core.ActualWorkTime, error)

	SelectedCalendar(ctx context.Context) (id, name string, err error)
	SaveSelectedCalendar(ctx context.Context, id, name string) error
	ClearSelectedCalendar(ctx context.Context) error
}

type Server struct {
	http.Server

	reader     Reader
	calculator *planner.Calculator

	shifts       *services.ShiftService
	assignments  *services.AssignmentService
	actualTimes  *services.ActualTimeService
	workingHours *services.WorkingHoursService

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(
	addr string,
	reader Reader,
	calc *planner.Calculator,
	shifts *services.ShiftService,
	assignments *services.AssignmentService,
	actualTimes *services.ActualTimeService,
	workingHours *services.WorkingHoursService,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reader:       reader,
		calculator:   calc,
		shifts:       shifts,
		assignments:  assignments,
		actualTimes:  actualTimes,
		workingHours: workingHours,
		rateLimiter:  newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/summary", s.withLogging(s.handleSummary))

	mux.HandleFunc("GET /api/working-hours/months", s.withLogging(s.handleMonthList))
	mux.HandleFunc("PUT /api/working-hours/{month}", s.withLogging(s.handleSaveWorkingHours))
	mux.HandleFunc("DELETE /api/working-hours/{month}", s.withLogging(s.handleDeleteWorkingHours))

	mux.HandleFunc("GET /api/shifts", s.withLogging(s.handleListShifts))
	mux.HandleFunc("POST /api/shifts", s.withLogging(s.handleCreateShift))
	mux.HandleFunc("GET /api/shifts/{id}", s.withLogging(s.handleGetShift))
	mux.HandleFunc("PUT /api/shifts/{id}", s.withLogging(s.handleUpdateShift))
	mux.HandleFunc("DELETE /api/shifts/{id}", s.withLogging(s.handleDeleteShift))

	mux.HandleFunc("GET /api/assignments", s.withLogging(s.handleListAssignments))
	mux.HandleFunc("GET /api/assignments/{date}", s.withLogging(s.handleGetAssignment))
	mux.HandleFunc("PUT /api/assignments/{date}", s.withLogging(s.handleAssignShift))
	mux.HandleFunc("DELETE /api/assignments/{date}", s.withLogging(s.handleUnassignShift))

	mux.HandleFunc("GET /api/actual-times", s.withLogging(s.handleListActualTimes))
	mux.HandleFunc("GET /api/actual-times/{date}", s.withLogging(s.handleGetActualTime))
	mux.HandleFunc("PUT /api/actual-times/{date}", s.withLogging(s.handleSaveActualTime))
	mux.HandleFunc("DELETE /api/actual-times/{date}", s.withLogging(s.handleDeleteActualTime))

	mux.HandleFunc("GET /api/settings/calendar", s.withLogging(s.handleGetCalendar))
	mux.HandleFunc("PUT /api/settings/calendar", s.withLogging(s.handleSaveCalendar))
	mux.HandleFunc("DELETE /api/settings/calendar", s.withLogging(s.handleClearCalendar))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withLogging adds rate limiting and request logging to responses.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Apply rate limiting to mutations
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
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
		// Fallback to timestamp if random fails
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
