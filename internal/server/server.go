package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/cv-wizard/internal/config"
	"github.com/jonathan/cv-wizard/internal/server/middleware"
	"github.com/jonathan/cv-wizard/internal/server/ratelimit"
	"github.com/jonathan/cv-wizard/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	sessions     *Registry
	tokens       *SessionService
	rateLimiter  *ratelimit.Limiter
	deps         SessionDeps
	secureCookie bool
	idleTTL      time.Duration
	closers      []func() error
	stopEvict    chan struct{}
}

// Config holds server configuration
type Config struct {
	Port    int
	Storage storage.Storage
	Session *config.SessionConfig
	Deps    SessionDeps
	// RateLimit nil disables rate limiting.
	RateLimit *ratelimit.Config
	// IdleTTL drops sessions idle this long from memory. Zero keeps them.
	IdleTTL time.Duration
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
	// Closers run after shutdown, e.g. to close storage connections.
	Closers []func() error
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Storage == nil {
		return nil, fmt.Errorf("server requires a snapshot storage")
	}
	if cfg.Session == nil {
		return nil, fmt.Errorf("server requires a session config")
	}
	if cfg.Deps.Renderer == nil {
		return nil, fmt.Errorf("server requires a renderer")
	}

	rateCfg := cfg.RateLimit
	if rateCfg == nil {
		rateCfg = &ratelimit.Config{Enabled: false}
	}

	s := &Server{
		sessions:     NewRegistry(cfg.Storage, cfg.Deps),
		tokens:       NewSessionService(cfg.Session),
		rateLimiter:  ratelimit.NewLimiter(rateCfg),
		deps:         cfg.Deps,
		secureCookie: cfg.SecureCookie,
		idleTTL:      cfg.IdleTTL,
		closers:      cfg.Closers,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Export runs a headless browser
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	auth := middleware.SessionMiddleware(s.tokens.AsTokenValidator())
	withSession := func(h sessionHandler) http.Handler {
		return auth(s.session(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /templates", s.handleTemplates)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)

	// Session state
	mux.Handle("GET /sessions/current", withSession(s.handleGetSession))
	mux.Handle("DELETE /sessions/current", withSession(s.handleDeleteSession))
	mux.Handle("POST /sessions/current/reset/{scope}", withSession(s.handleReset))

	// Step 1
	mux.Handle("PUT /sessions/current/personal-details", withSession(s.handleSavePersonalDetails))
	mux.Handle("POST /sessions/current/photo", withSession(s.handleUploadPhoto))
	mux.Handle("DELETE /sessions/current/photo", withSession(s.handleDeletePhoto))

	// Step 2
	mux.Handle("GET /sessions/current/entries/{collection}", withSession(s.handleListEntries))
	mux.Handle("POST /sessions/current/entries/{collection}", withSession(s.handleAddEntry))
	mux.Handle("PUT /sessions/current/entries/{collection}/{id}", withSession(s.handleSaveEntry))
	mux.Handle("DELETE /sessions/current/entries/{collection}/{id}", withSession(s.handleDeleteEntry))
	mux.Handle("PUT /sessions/current/references-on-request", withSession(s.handleSetReferences))

	// Navigation
	mux.Handle("POST /sessions/current/steps/next", withSession(s.handleNextStep))
	mux.Handle("POST /sessions/current/steps/previous", withSession(s.handlePreviousStep))

	// Step 3
	mux.Handle("PUT /sessions/current/template", withSession(s.handleSelectTemplate))
	mux.Handle("GET /sessions/current/preview", withSession(s.handlePreview))
	mux.Handle("POST /sessions/current/export", withSession(s.handleExport))
	mux.Handle("POST /sessions/current/export/stream", withSession(s.handleExportStream))
	mux.Handle("GET /sessions/current/exports/{id}", withSession(s.handleGetArtifact))

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	if s.idleTTL > 0 {
		s.stopEvict = make(chan struct{})
		go s.evictIdle(s.stopEvict)
	}

	go func() {
		log.Printf("[SERVER] starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[SERVER] error: %v", err)
		}
	}()

	<-stop
	log.Println("[SERVER] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()

	log.Println("[SERVER] stopped")
	return nil
}

// Close stops background work and releases storage connections.
func (s *Server) Close() {
	if s.stopEvict != nil {
		close(s.stopEvict)
		s.stopEvict = nil
	}
	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			log.Printf("[SERVER] close error: %v", err)
		}
	}
	s.closers = nil
}

func (s *Server) evictIdle(stop <-chan struct{}) {
	ticker := time.NewTicker(s.idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.sessions.Evict(s.idleTTL); n > 0 {
				log.Printf("[SESSION] evicted %d idle sessions from memory", n)
			}
		case <-stop:
			return
		}
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure writes err with the status HTTPStatus maps it to. Server errors
// are logged.
func (s *Server) failure(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[SERVER] %d: %v", status, err)
	}
	s.errorResponse(w, status, errorMessage(err))
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d", info.Limit, info.Remaining)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
