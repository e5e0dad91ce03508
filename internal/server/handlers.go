package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/Lectern/core/annotations"
	"github.com/FocuswithJustin/Lectern/core/errors"
	"github.com/FocuswithJustin/Lectern/internal/logging"
)

// APIResponse is the envelope for all JSON responses.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError carries a machine-readable code plus a human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta carries response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// BookSummary is the list-view projection of a book.
type BookSummary struct {
	Index        int    `json:"index"`
	EnglishName  string `json:"en_name"`
	LocalName    string `json:"name"`
	ChapterCount int    `json:"ch_count"`
	Loaded       bool   `json:"loaded"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Books   int    `json:"books"`
	Loaded  int    `json:"loaded"`
}

var startTime = time.Now()

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"name":    "Lectern API",
		"version": s.version,
		"endpoints": []string{
			"GET /health",
			"GET /api/books",
			"GET /api/books/:index",
			"GET /api/books/:index/chapters/:num",
			"GET /api/search?q=",
			"GET /api/resolve?ref=",
			"GET /api/navigation",
			"POST /api/navigation/goto",
			"POST /api/navigation/back",
			"GET /api/notes/:id",
			"GET /api/annotations",
			"POST /api/annotations",
			"DELETE /api/annotations/:id",
			"WS /ws/search",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	doc := s.lib.Document()
	loaded := 0
	total := 0
	if doc != nil {
		total = len(doc.Books)
		for i := range doc.Books {
			if doc.Books[i].Loaded() {
				loaded++
			}
		}
	}
	respond(w, http.StatusOK, HealthInfo{
		Status:  "healthy",
		Version: s.version,
		Uptime:  time.Since(startTime).String(),
		Books:   total,
		Loaded:  loaded,
	})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	doc := s.lib.Document()
	if doc == nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Library not loaded")
		return
	}

	summaries := make([]BookSummary, 0, len(doc.Books))
	for i := range doc.Books {
		b := &doc.Books[i]
		summaries = append(summaries, BookSummary{
			Index:        i,
			EnglishName:  b.EnglishName,
			LocalName:    b.LocalName,
			ChapterCount: b.ChapterCount,
			Loaded:       b.Loaded(),
		})
	}
	respondList(w, summaries, len(summaries))
}

// handleBookSubtree routes /api/books/{index} and
// /api/books/{index}/chapters/{num}.
func (s *Server) handleBookSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/books/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	index, err := strconv.Atoi(parts[0])
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INDEX", "Book index must be an integer")
		return
	}

	switch {
	case len(parts) == 1:
		s.serveBook(w, r, index)
	case len(parts) == 3 && parts[1] == "chapters":
		num, err := strconv.Atoi(parts[2])
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_CHAPTER", "Chapter number must be an integer")
			return
		}
		s.serveChapter(w, r, index, num)
	default:
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
	}
}

func (s *Server) serveBook(w http.ResponseWriter, r *http.Request, index int) {
	s.hub.BroadcastProgress("load", "fetching", "Loading book", 0)
	book, err := s.lib.LoadBook(r.Context(), index)
	if err != nil {
		s.hub.BroadcastError("load", err.Error())
		respondLibraryError(w, err)
		return
	}
	s.hub.BroadcastComplete("load", "Book loaded", map[string]any{
		"book_index": index,
		"chapters":   len(book.Chapters),
	})
	respond(w, http.StatusOK, book)
}

func (s *Server) serveChapter(w http.ResponseWriter, r *http.Request, index, num int) {
	if _, err := s.lib.LoadBook(r.Context(), index); err != nil {
		respondLibraryError(w, err)
		return
	}
	// The URL carries the 1-based chapter number readers see.
	chapter, err := s.lib.Chapter(index, num-1)
	if err != nil {
		respondLibraryError(w, err)
		return
	}
	respond(w, http.StatusOK, chapter)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	query := r.URL.Query().Get("q")
	s.hub.BroadcastProgress("search", "loading", "Materializing books", 0)

	results, err := s.lib.Search(r.Context(), query)
	if err != nil {
		s.hub.BroadcastError("search", err.Error())
		respondLibraryError(w, err)
		return
	}

	s.hub.BroadcastComplete("search", "Search finished", map[string]any{
		"query": query,
		"hits":  len(results),
	})
	respondList(w, results, len(results))
}

// handleNote serves footnote and liturgy note bodies by synthetic ID. The ID
// prefix selects the table.
func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/notes/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Note ID required")
		return
	}

	var (
		note any
		ok   bool
	)
	switch id[0] {
	case 'f':
		note, ok = s.lib.Footnote(id)
	case 'l':
		note, ok = s.lib.LiturgyNote(id)
	}
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Note not found")
		return
	}
	respond(w, http.StatusOK, note)
}

func (s *Server) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "NO_STORE", "Annotation store not configured")
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.listAnnotations(w, r)
	case http.MethodPost:
		s.createAnnotation(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and POST are allowed")
	}
}

func (s *Server) listAnnotations(w http.ResponseWriter, r *http.Request) {
	filter := annotations.Filter{BookIndex: annotations.AllBooks}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		filter.Kind = annotations.Kind(kind)
	}
	if book := r.URL.Query().Get("book"); book != "" {
		idx, err := strconv.Atoi(book)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_BOOK", "book must be an integer")
			return
		}
		filter.BookIndex = idx
	}

	list, err := s.store.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	respondList(w, list, len(list))
}

func (s *Server) createAnnotation(w http.ResponseWriter, r *http.Request) {
	var a annotations.Annotation
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Malformed annotation JSON")
		return
	}

	created, err := s.store.Add(r.Context(), a)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "INVALID_ANNOTATION", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	respond(w, http.StatusCreated, created)
}

func (s *Server) handleAnnotationByID(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "NO_STORE", "Annotation store not configured")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/annotations/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Annotation ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a, err := s.store.Get(r.Context(), id)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respond(w, http.StatusOK, a)
	case http.MethodDelete:
		if err := s.store.Remove(r.Context(), id); err != nil {
			respondStoreError(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and DELETE are allowed")
	}
}

func respondLibraryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, errors.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	default:
		logging.Error("library request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, errors.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondList(w http.ResponseWriter, data any, total int) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
