// Package navigation tracks the current reading position and view mode.
package navigation

import (
	"sync"
)

// ViewMode identifies which screen the reader is on.
type ViewMode string

// Core view modes.
const (
	ModeBooks    ViewMode = "books"
	ModeChapters ViewMode = "chapters"
	ModeReader   ViewMode = "reader"
	ModeSearch   ViewMode = "search"
)

// Extended view modes, enabled by NewExtendedState. They fold into the same
// back-stack rules the core modes use, with Home as the terminal screen.
const (
	ModeHome     ViewMode = "home"
	ModeLessons  ViewMode = "lessons"
	ModeBookInfo ViewMode = "bookInfo"
	ModeNotes    ViewMode = "notes"
	ModeSettings ViewMode = "settings"
)

// Reference is the (book, chapter, verse) reading coordinate. BookIndex and
// ChapterIndex are 0-based; VerseNumber is 1-based, 0 when no verse is
// selected.
type Reference struct {
	BookIndex    int `json:"book_index"`
	ChapterIndex int `json:"chapter_index"`
	VerseNumber  int `json:"verse_number,omitempty"`
}

// State is the navigation state machine. Every transition replaces the
// whole reference tuple; no transition patches a single field.
type State struct {
	mu       sync.Mutex
	mode     ViewMode
	ref      Reference
	last     *Reference
	extended bool
}

// NewState creates a state machine over the four core modes, starting at
// the book list.
func NewState() *State {
	return &State{mode: ModeBooks}
}

// NewExtendedState creates a state machine with the extended mode set,
// starting at the home screen.
func NewExtendedState() *State {
	return &State{mode: ModeHome, extended: true}
}

// Mode returns the current view mode.
func (s *State) Mode() ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Reference returns the current reading coordinate.
func (s *State) Reference() Reference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ref
}

// LastLocation returns the most recent reader position, or false when the
// reader has not been visited.
func (s *State) LastLocation() (Reference, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Reference{}, false
	}
	return *s.last, true
}

// NavigateToBook enters the chapter list for a book.
func (s *State) NavigateToBook(bookIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeChapters
	s.ref = Reference{BookIndex: bookIndex, ChapterIndex: 0, VerseNumber: 0}
}

// NavigateToChapter enters the reader at a chapter.
func (s *State) NavigateToChapter(bookIndex, chapterIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeReader
	s.ref = Reference{BookIndex: bookIndex, ChapterIndex: chapterIndex, VerseNumber: 0}
	s.last = &Reference{BookIndex: bookIndex, ChapterIndex: chapterIndex}
}

// NavigateToVerse enters the reader at a specific verse.
func (s *State) NavigateToVerse(bookIndex, chapterIndex, verseNumber int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeReader
	s.ref = Reference{BookIndex: bookIndex, ChapterIndex: chapterIndex, VerseNumber: verseNumber}
	s.last = &Reference{BookIndex: bookIndex, ChapterIndex: chapterIndex, VerseNumber: verseNumber}
}

// EnterSearch switches to the search view. The reference tuple is retained.
func (s *State) EnterSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeSearch
}

// SetMode switches to an arbitrary view mode. Extended modes are clamped to
// the home screen when the state machine runs in core configuration.
func (s *State) SetMode(mode ViewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.extended {
		switch mode {
		case ModeBooks, ModeChapters, ModeReader, ModeSearch:
		default:
			return
		}
	}
	s.mode = mode
}

// GoBack steps toward the terminal screen: reader falls back to the chapter
// list, list-like views fall back to the book list, and the book list is
// terminal (or falls back to home when extended modes are enabled). The
// coordinate state is retained; only the view changes.
func (s *State) GoBack() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.mode {
	case ModeReader:
		s.mode = ModeChapters
	case ModeChapters, ModeSearch, ModeLessons, ModeBookInfo:
		s.mode = ModeBooks
	case ModeBooks, ModeNotes, ModeSettings:
		if s.extended {
			s.mode = ModeHome
		}
	}
}

// GoHome jumps to the home screen (extended configuration only).
func (s *State) GoHome() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.extended {
		s.mode = ModeHome
	}
}
