// Package http exposes the REST API: the student roster, meeting schedule,
// talking-point briefings, printable agendas and grade overviews, plus
// health endpoints for operations.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightclass/conference-hub/internal/application/command"
	"github.com/brightclass/conference-hub/internal/application/query"
	"github.com/brightclass/conference-hub/internal/application/saga"
	"github.com/brightclass/conference-hub/internal/interface/http/handlers"
	"github.com/brightclass/conference-hub/internal/interface/http/presenter"
	"github.com/brightclass/conference-hub/pkg/logger"
)

// Config holds the server's listen and middleware settings.
type Config struct {
	Host string
	Port int

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// EnableCORS adds CORS headers for the origins in AllowedOrigins.
	EnableCORS     bool
	AllowedOrigins []string

	// EnableMetrics serves the metrics snapshot on GET /metrics.
	EnableMetrics bool

	// EnablePprof mounts the pprof profiling endpoints under /debug/pprof/.
	// Only the debug build of the API turns this on.
	EnablePprof bool

	// RateLimitPerMinute caps requests per client IP. Zero disables.
	RateLimitPerMinute int

	// APIKeyHeader and APIKeys guard the mutating endpoints. Entries may
	// be plain keys or bcrypt hashes; an empty list disables auth.
	APIKeyHeader string
	APIKeys      []string
}

// DefaultConfig returns the defaults the API binary starts from.
func DefaultConfig() Config {
	return Config{
		Host:               "0.0.0.0",
		Port:               8080,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxHeaderBytes:     1 << 20,
		EnableCORS:         true,
		AllowedOrigins:     []string{"*"},
		EnableMetrics:      true,
		RateLimitPerMinute: 100,
		APIKeyHeader:       "X-API-Key",
	}
}

// Address returns the host:port the server binds to.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Dependencies carries the application-layer handlers the routes call.
type Dependencies struct {
	// Write side
	CreateStudentHandler       *command.CreateStudentHandler
	ImportStudentsHandler      *command.ImportStudentsHandler
	RecordAssessmentHandler    *command.RecordAssessmentHandler
	RecordIncidentHandler      *command.RecordIncidentHandler
	RecordCommunicationHandler *command.RecordCommunicationHandler
	ScheduleMeetingHandler     *command.ScheduleMeetingHandler
	UpdateMeetingHandler       *command.UpdateMeetingHandler
	GenerateSummaryHandler     *command.GenerateSummaryHandler

	// Read side
	GetStudentHandler       *query.GetStudentHandler
	GetTalkingPointsHandler *query.GetTalkingPointsHandler
	GetGradeOverviewHandler *query.GetGradeOverviewHandler
	ListStudentsHandler     *query.ListStudentsHandler
	ListMeetingsHandler     *query.ListMeetingsHandler
	ListAssessmentsHandler  *query.ListAssessmentsHandler

	// Meeting preparation orchestration
	MeetingPrepSaga *saga.MeetingPrepSaga

	// Agenda rendering for the text download endpoint
	AgendaPresenter *presenter.AgendaPresenter

	Logger        *logger.Logger
	HealthChecker handlers.HealthChecker
}

// Server is the API's HTTP front end.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	router     *http.ServeMux
	logger     *logger.Logger

	limiter    *rateLimiter
	apiKeyAuth *handlers.APIKeyAuth

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer wires the routes and middleware. Call Start or StartAsync to
// begin serving.
func NewServer(config Config, deps Dependencies) *Server {
	s := &Server{
		config: config,
		deps:   deps,
		router: http.NewServeMux(),
		logger: deps.Logger,
	}
	if s.logger == nil {
		s.logger = logger.Default()
	}
	if config.RateLimitPerMinute > 0 {
		s.limiter = newRateLimiter(config.RateLimitPerMinute, time.Minute)
	}
	if len(config.APIKeys) > 0 {
		s.apiKeyAuth = handlers.NewAPIKeyAuth(config.APIKeyHeader, config.APIKeys)
	}

	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:           config.Address(),
		Handler:        s.middleware(s.router),
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}
	return s
}

func (s *Server) registerRoutes() {
	// Health and status
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /live", s.handleLive)
	s.router.HandleFunc("GET /", s.handleRoot)

	// Students
	s.router.HandleFunc("GET /api/v1/students", s.handleListStudents)
	s.router.Handle("POST /api/v1/students", s.protected(s.handleCreateStudent))
	s.router.Handle("POST /api/v1/students/import", s.protected(s.handleImportStudents))
	s.router.HandleFunc("GET /api/v1/students/{id}", s.handleGetStudent)
	s.router.HandleFunc("GET /api/v1/students/{id}/talking-points", s.handleGetTalkingPoints)
	s.router.HandleFunc("GET /api/v1/students/{id}/agenda", s.handleDownloadAgenda)
	s.router.HandleFunc("GET /api/v1/students/{id}/assessments", s.handleListAssessments)
	s.router.Handle("POST /api/v1/students/{id}/assessments", s.protected(s.handleRecordAssessment))
	s.router.Handle("POST /api/v1/students/{id}/incidents", s.protected(s.handleRecordIncident))
	s.router.Handle("POST /api/v1/students/{id}/communications", s.protected(s.handleRecordCommunication))

	// Meetings
	s.router.HandleFunc("GET /api/v1/meetings", s.handleListMeetings)
	s.router.Handle("POST /api/v1/meetings", s.protected(s.handleScheduleMeeting))
	s.router.Handle("PATCH /api/v1/meetings/{id}", s.protected(s.handleUpdateMeeting))
	s.router.Handle("POST /api/v1/meetings/{id}/prepare", s.protected(s.handlePrepareMeeting))
	s.router.Handle("POST /api/v1/meetings/summary", s.protected(s.handleGenerateSummary))

	// Grade overview
	s.router.HandleFunc("GET /api/v1/overview/{grade}", s.handleGetGradeOverview)

	if s.config.EnableMetrics {
		s.router.HandleFunc("GET /metrics", s.handleMetrics)
	}
	if s.config.EnablePprof {
		s.router.HandleFunc("/debug/pprof/", pprof.Index)
		s.router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		s.router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		s.router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		s.router.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
}

// protected wraps a mutating handler with API key authentication when keys
// are configured. Without keys the handler is served as-is.
func (s *Server) protected(h http.HandlerFunc) http.Handler {
	if s.apiKeyAuth == nil {
		return h
	}
	return s.apiKeyAuth.Middleware(h)
}

// middleware wraps the router. Order, outermost first: rate limit, CORS,
// recovery, logging, request ID.
func (s *Server) middleware(handler http.Handler) http.Handler {
	h := s.withRequestID(handler)
	h = s.withLogging(h)
	h = s.withRecovery(h)
	if s.config.EnableCORS {
		h = s.withCORS(h)
	}
	if s.limiter != nil {
		h = s.withRateLimit(h)
	}
	return h
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.Info("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rw.status),
			logger.Int64("duration_ms", time.Since(start).Milliseconds()),
			logger.String("ip", clientIP(r)),
			logger.String("user_agent", r.UserAgent()),
			logger.String("request_id", requestID(r.Context())),
		)
	})
}

func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					logger.Any("error", rec),
					logger.String("stack", string(debug.Stack())),
					logger.String("path", r.URL.Path),
					logger.String("request_id", requestID(r.Context())),
				)
				writeJSONError(w, http.StatusInternalServerError,
					"internal_server_error", "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range s.config.AllowedOrigins {
			if allowed != "*" && allowed != origin {
				continue
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")
			break
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeJSONError(w, http.StatusTooManyRequests,
				"rate_limit_exceeded", "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start serves until Shutdown is called. It returns nil on a clean
// shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("http: server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", logger.String("address", s.config.Address()))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http: serve: %w", err)
	}
	return nil
}

// StartAsync runs Start on a goroutine, reporting a startup failure on the
// returned channel.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown drains in-flight requests within ctx and stops the rate
// limiter's sweeper.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	if s.limiter != nil {
		s.limiter.Stop()
	}

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime is how long the server has been serving, zero when stopped.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address()
}

// ─────────────────────────────────────────────────────────────────────────────
// Response envelope
// ─────────────────────────────────────────────────────────────────────────────

// JSONResponse is the envelope every endpoint responds with.
type JSONResponse struct {
	Success   bool          `json:"success"`
	Data      any           `json:"data,omitempty"`
	Error     *APIError     `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIError is the machine-readable error body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseMeta carries timestamps and list pagination.
type ResponseMeta struct {
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version,omitempty"`
	TotalCount int       `json:"total_count,omitempty"`
	Page       int       `json:"page,omitempty"`
	PageSize   int       `json:"page_size,omitempty"`
	HasMore    bool      `json:"has_more,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, JSONResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    &ResponseMeta{Timestamp: time.Now().UTC(), Version: "v1"},
	})
}

func writeJSONWithMeta(w http.ResponseWriter, r *http.Request, status int, data any, meta *ResponseMeta) {
	if meta == nil {
		meta = &ResponseMeta{}
	}
	meta.Timestamp = time.Now().UTC()
	meta.Version = "v1"

	writeEnvelope(w, status, JSONResponse{
		Success:   status >= 200 && status < 300,
		Data:      data,
		Meta:      meta,
		RequestID: requestID(r.Context()),
	})
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, JSONResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &ResponseMeta{Timestamp: time.Now().UTC()},
	})
}

func writeJSONErrorWithDetails(w http.ResponseWriter, status int, code, message, details string) {
	writeEnvelope(w, status, JSONResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message, Details: details},
		Meta:    &ResponseMeta{Timestamp: time.Now().UTC()},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, response JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// ─────────────────────────────────────────────────────────────────────────────
// Request helpers
// ─────────────────────────────────────────────────────────────────────────────

type contextKey string

const contextKeyRequestID contextKey = "request_id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// clientIP prefers proxy headers over RemoteAddr, since the API sits
// behind a reverse proxy in every deployed environment.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

func getQueryParam(r *http.Request, key, defaultValue string) string {
	if value := r.URL.Query().Get(key); value != "" {
		return value
	}
	return defaultValue
}

func getQueryParamInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(value, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func getQueryParamBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Rate limiter
// ─────────────────────────────────────────────────────────────────────────────

// rateLimiter is a sliding-window counter per client key. A background
// sweeper drops idle keys; Stop ends it.
type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration

	stopOnce sync.Once
	done     chan struct{}
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow records a request for key and reports whether it is within the
// limit.
func (rl *rateLimiter) Allow(key string) bool {
	now := time.Now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	recent := pruneBefore(rl.requests[key], cutoff)
	if len(recent) >= rl.limit {
		rl.requests[key] = recent
		return false
	}
	rl.requests[key] = append(recent, now)
	return true
}

// Stop ends the sweeper goroutine. Idempotent.
func (rl *rateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.window)
			rl.mu.Lock()
			for key, stamps := range rl.requests {
				recent := pruneBefore(stamps, cutoff)
				if len(recent) == 0 {
					delete(rl.requests, key)
					continue
				}
				rl.requests[key] = recent
			}
			rl.mu.Unlock()
		}
	}
}

func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	kept := stamps[:0]
	for _, t := range stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
