package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"bizpilot/internal/core"
	"bizpilot/internal/log"
	"bizpilot/internal/service"
	"bizpilot/internal/store"
)

// Server exposes the three resource services over HTTP.
type Server struct {
	http.Server
	store     store.Store
	resources map[string]*service.Resource
	limiter   *rateLimiter
	logger    *log.Logger

	shutdownOnce sync.Once
}

// NewServer wires routes for every resource and returns a ready-to-run
// server. The route shape is identical across tasks, clients and
// transactions.
func NewServer(addr string, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		store: st,
		resources: map[string]*service.Resource{
			core.CollectionTasks:        service.NewResource(core.TaskSchema(), st, logger),
			core.CollectionClients:      service.NewResource(core.ClientSchema(), st, logger),
			core.CollectionTransactions: service.NewResource(core.TransactionSchema(), st, logger),
		},
		limiter: newRateLimiter(),
		logger:  logger.WithComponent(log.ComponentHTTP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	for name, res := range s.resources {
		mux.HandleFunc("POST /"+name, s.handleCreate(res))
		mux.HandleFunc("GET /"+name, s.handleList(res))
		mux.HandleFunc("PUT /"+name+"/{id}", s.handleUpdate(res))
		mux.HandleFunc("DELETE /"+name+"/{id}", s.handleDelete(res))
		mux.HandleFunc("OPTIONS /"+name, s.handlePreflight)
		mux.HandleFunc("OPTIONS /"+name+"/{id}", s.handlePreflight)
	}

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.withRequestContext(mux),
	}
	return s
}

// withRequestContext adds a request id, CORS and security headers, per-IP
// rate limiting on mutations, and structured request logging around every
// route.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		setCORSHeaders(w)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if isMutation(r.Method) && !s.limiter.allow(ip) {
			writeError(rw, http.StatusTooManyRequests, "Too many requests")
		} else {
			next.ServeHTTP(rw, r)
		}

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, ip)
	})
}

type requestIDKey struct{}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// clientIP prefers the proxy header and strips the port from the raw address
// so one client maps to one limiter entry.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Shutdown stops the rate limiter's cleanup goroutine and then shuts the
// HTTP server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// setCORSHeaders mirrors the permissive policy of the original backend; the
// dashboards may be served from another origin.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
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

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// handleRoot is the plaintext liveness probe the dashboards poll.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("BizPilot backend is running..."))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.ErrorContext(r.Context(), "Store not reachable", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
