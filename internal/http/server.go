// Package http exposes the ledger over a JSON API.
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

	"moodledger/internal/core"
	"moodledger/internal/intake"
)

// IntakeService is the write side of the ledger.
type IntakeService interface {
	SubmitExpense(ctx context.Context, date core.Date, description string, amount core.Money, mood core.Mood) (intake.Result, error)
	SubmitExpenseFromImage(ctx context.Context, image []byte) (intake.Result, error)
	SubmitIncome(ctx context.Context, date core.Date, source string, amount core.Money) (core.IncomeRecord, error)
	DeleteExpense(ctx context.Context, id int64) error
	DeleteIncome(ctx context.Context, id int64) error
}

// AnalyticsService serves derived views, recomputed on every call.
type AnalyticsService interface {
	Balance(ctx context.Context) (core.Money, error)
	MoodAggregate(ctx context.Context) (map[core.Mood]core.Money, error)
	DominantMood(ctx context.Context) (core.Mood, bool, error)
	MoodTimeSeries(ctx context.Context) ([]core.MoodPoint, error)
}

// GoalService manages shared savings goals.
type GoalService interface {
	Upsert(ctx context.Context, name string, target, saved core.Money) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]core.SharedGoal, error)
	Export(ctx context.Context) ([]byte, error)
}

// LedgerReader lists committed records for the GET endpoints.
type LedgerReader interface {
	ListExpenses(ctx context.Context) ([]core.Transaction, error)
	ListIncomes(ctx context.Context) ([]core.IncomeRecord, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	intake    IntakeService
	analytics AnalyticsService
	goals     GoalService
	reader    LedgerReader
	pinger    Pinger

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// handlerTimeout bounds each request so a stuck OCR engine or classifier
// cannot hold a connection open indefinitely.
const handlerTimeout = 15 * time.Second

func NewServer(addr string, in IntakeService, an AnalyticsService, gs GoalService, reader LedgerReader, pinger Pinger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		intake:      in,
		analytics:   an,
		goals:       gs,
		reader:      reader,
		pinger:      pinger,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("POST /expenses/scan", s.withMiddleware(s.handleScanExpense))
	mux.HandleFunc("GET /expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("DELETE /expenses/{id}", s.withMiddleware(s.handleDeleteExpense))

	mux.HandleFunc("POST /incomes", s.withMiddleware(s.handleCreateIncome))
	mux.HandleFunc("GET /incomes", s.withMiddleware(s.handleListIncomes))
	mux.HandleFunc("DELETE /incomes/{id}", s.withMiddleware(s.handleDeleteIncome))

	mux.HandleFunc("GET /analytics/balance", s.withMiddleware(s.handleBalance))
	mux.HandleFunc("GET /analytics/mood", s.withMiddleware(s.handleMoodAggregate))
	mux.HandleFunc("GET /analytics/mood-series", s.withMiddleware(s.handleMoodSeries))

	mux.HandleFunc("POST /goals", s.withMiddleware(s.handleUpsertGoal))
	mux.HandleFunc("GET /goals", s.withMiddleware(s.handleListGoals))
	mux.HandleFunc("DELETE /goals/{name}", s.withMiddleware(s.handleDeleteGoal))
	mux.HandleFunc("GET /goals/export", s.withMiddleware(s.handleExportGoals))

	return s
}

// Shutdown stops the rate limiter cleanup goroutine and drains the server.
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

// withMiddleware adds security headers, rate limiting on writes, a request
// ID, a per-request deadline and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		ctx = context.WithValue(ctx, requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter captures the status code for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

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

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "store unreachable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
