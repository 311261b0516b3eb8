// Package api exposes the events store over HTTP. Routing uses the
// standard library ServeMux with method patterns; responses are JSON,
// gzip-compressed, and tagged with a per-request id.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"

	"github.com/rubiojr/eventfinder/pkg/log"
	"github.com/rubiojr/eventfinder/pkg/storage"
)

var logger = log.ForService("api")

type Server struct {
	store    *storage.Storage
	validate *validator.Validate

	mu      sync.RWMutex
	origins []string
}

// NewServer creates an API server over the given store. corsOrigins is
// the list of origins allowed by the CORS middleware.
func NewServer(store *storage.Storage, corsOrigins []string) *Server {
	return &Server{
		store:    store,
		validate: validator.New(),
		origins:  corsOrigins,
	}
}

// Handler returns the fully assembled handler: routes wrapped in CORS,
// gzip and request-id middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.requestIDMiddleware(s.corsMiddleware(gzhttp.GzipHandler(mux)))
}

// SetCORSOrigins replaces the allowed origins. Used by the serve command
// when the configuration file changes on disk.
func (s *Server) SetCORSOrigins(origins []string) {
	s.mu.Lock()
	s.origins = origins
	s.mu.Unlock()
}

func (s *Server) originAllowed(origin string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, allowed := range s.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Expose-Headers", "X-Total-Count")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		logger.Debugf("%s %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:   error,
		Message: message,
	})
}
