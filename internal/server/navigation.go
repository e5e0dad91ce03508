package server

import (
	"encoding/json"
	"net/http"

	"github.com/FocuswithJustin/Lectern/core/navigation"
	"github.com/FocuswithJustin/Lectern/core/refs"
	"github.com/FocuswithJustin/Lectern/core/text"
)

// NavState is the navigation state projection returned by the navigation
// endpoints.
type NavState struct {
	Mode         navigation.ViewMode   `json:"mode"`
	Reference    navigation.Reference  `json:"reference"`
	LastLocation *navigation.Reference `json:"last_location,omitempty"`
}

// GotoRequest selects a reading position. ChapterIndex < 0 opens the chapter
// list for the book; VerseNumber <= 0 opens the chapter without a verse
// selection.
type GotoRequest struct {
	BookIndex    int `json:"book_index"`
	ChapterIndex int `json:"chapter_index"`
	VerseNumber  int `json:"verse_number"`
}

// ResolveResult reports where a resolved reference landed.
type ResolveResult struct {
	Reference    string              `json:"reference"`
	BookIndex    int                 `json:"book_index"`
	ChapterIndex int                 `json:"chapter_index,omitempty"`
	VerseNumber  int                 `json:"verse_number,omitempty"`
	Mode         navigation.ViewMode `json:"mode"`
}

func (s *Server) navState() NavState {
	state := NavState{
		Mode:      s.nav.Mode(),
		Reference: s.nav.Reference(),
	}
	if last, ok := s.nav.LastLocation(); ok {
		state.LastLocation = &last
	}
	return state
}

func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	respond(w, http.StatusOK, s.navState())
}

func (s *Server) handleNavigationGoto(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	var req GotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Malformed goto JSON")
		return
	}
	if _, err := s.lib.Book(req.BookIndex); err != nil {
		respondLibraryError(w, err)
		return
	}

	switch {
	case req.ChapterIndex < 0:
		s.nav.NavigateToBook(req.BookIndex)
	case req.VerseNumber <= 0:
		s.nav.NavigateToChapter(req.BookIndex, req.ChapterIndex)
	default:
		s.nav.NavigateToVerse(req.BookIndex, req.ChapterIndex, req.VerseNumber)
	}
	respond(w, http.StatusOK, s.navState())
}

func (s *Server) handleNavigationBack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}
	s.nav.GoBack()
	respond(w, http.StatusOK, s.navState())
}

// handleResolve parses a human-readable reference, resolves it against the
// loaded corpus, and moves the navigation state to the result.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	raw := r.URL.Query().Get("ref")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REFERENCE", "ref query parameter required")
		return
	}

	parsed, err := refs.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REFERENCE", err.Error())
		return
	}

	bookAbbrev, chapter, verse, verseEnd := parsed.Target()
	target := text.CrossRefTarget{
		BookAbbrev: bookAbbrev,
		Chapter:    chapter,
		Verse:      verse,
		VerseEnd:   verseEnd,
	}
	index, ok := refs.Resolve(target, s.lib.BookMetas())
	if !ok {
		respondError(w, http.StatusNotFound, "UNRESOLVED", "No book matches the reference")
		return
	}

	result := ResolveResult{Reference: parsed.String(), BookIndex: index}
	if coord, ok := refs.NavigationFor(target, index); ok {
		s.nav.NavigateToVerse(coord.BookIndex, coord.ChapterIndex, coord.VerseNumber)
		result.ChapterIndex = coord.ChapterIndex
		result.VerseNumber = coord.VerseNumber
	} else {
		s.nav.NavigateToBook(index)
	}
	result.Mode = s.nav.Mode()
	respond(w, http.StatusOK, result)
}
