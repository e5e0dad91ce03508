// Package server exposes the content library over HTTP: a JSON read model
// for books, chapters, and search, an annotation CRUD surface, and a
// WebSocket channel streaming load and search progress.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/FocuswithJustin/Lectern/core/annotations"
	"github.com/FocuswithJustin/Lectern/core/library"
	"github.com/FocuswithJustin/Lectern/core/navigation"
	"github.com/FocuswithJustin/Lectern/internal/logging"
)

// Config holds the listener configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// Server serves the read model for one loaded library. The annotation store
// is optional; without it the annotation endpoints answer 503.
type Server struct {
	lib     *library.Library
	store   *annotations.Store
	hub     *Hub
	nav     *navigation.State
	version string
	origins []string
}

// New creates a server and starts its WebSocket hub.
func New(lib *library.Library, store *annotations.Store, version string) *Server {
	s := &Server{
		lib:     lib,
		store:   store,
		hub:     NewHub(),
		nav:     navigation.NewState(),
		version: version,
	}
	go s.hub.Run()
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/books", s.handleBooks)
	mux.HandleFunc("/api/books/", s.handleBookSubtree)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/resolve", s.handleResolve)
	mux.HandleFunc("/api/navigation", s.handleNavigation)
	mux.HandleFunc("/api/navigation/goto", s.handleNavigationGoto)
	mux.HandleFunc("/api/navigation/back", s.handleNavigationBack)
	mux.HandleFunc("/api/notes/", s.handleNote)
	mux.HandleFunc("/api/annotations", s.handleAnnotations)
	mux.HandleFunc("/api/annotations/", s.handleAnnotationByID)
	mux.HandleFunc("/ws/search", s.handleWebSocket)

	var handler http.Handler = mux
	handler = s.corsMiddleware(handler)
	handler = logging.CombinedMiddleware(handler)
	return handler
}

// ListenAndServe starts the HTTP listener and blocks.
func (s *Server) ListenAndServe(cfg Config) error {
	s.origins = cfg.AllowedOrigins
	addr := fmt.Sprintf(":%d", cfg.Port)
	logging.Info("server_startup", "addr", addr, "version", s.version)
	return http.ListenAndServe(addr, s.Handler())
}

// corsMiddleware applies the allowed-origin policy. An empty origin list
// means same-origin clients only; no CORS headers are emitted.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
