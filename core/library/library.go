// Package library owns the shared Bible document: it builds the shell from
// the content index, loads book content lazily, and answers queries over the
// assembled model.
//
// The library is the document's single writer. Readers go through accessors
// and never mutate what they are handed.
package library

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/FocuswithJustin/Lectern/core/document"
	"github.com/FocuswithJustin/Lectern/core/errors"
	"github.com/FocuswithJustin/Lectern/core/refs"
	"github.com/FocuswithJustin/Lectern/core/source"
	"github.com/FocuswithJustin/Lectern/core/text"
	"github.com/FocuswithJustin/Lectern/internal/logging"
)

// Library is the document service.
type Library struct {
	fetcher   source.Fetcher
	assembler document.Assembler
	version   string

	// group de-duplicates concurrent loads of the same book index, so two
	// near-simultaneous navigations to an unloaded book fetch once.
	group singleflight.Group

	mu      sync.RWMutex
	doc     *document.Document
	entries []source.IndexEntry
	loaded  map[int]bool
}

// Option configures a Library.
type Option func(*Library)

// WithVersion sets the document version string.
func WithVersion(v string) Option {
	return func(l *Library) { l.version = v }
}

// WithDeterministicIDs switches cross-reference run IDs to content-derived
// hashes, reproducible across reloads.
func WithDeterministicIDs() Option {
	return func(l *Library) { l.assembler.DeterministicIDs = true }
}

// New creates a library over a fetcher. Call LoadDocument before anything
// else.
func New(f source.Fetcher, opts ...Option) *Library {
	l := &Library{
		fetcher: f,
		version: "1.0",
		loaded:  make(map[int]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDocument builds the shell document from the content index: every book
// present with its chapter count known, chapter content empty. Fails only if
// the index itself is unreadable.
func (l *Library) LoadDocument(ctx context.Context) (*document.Document, error) {
	entries, err := l.fetcher.Index(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load document index")
	}

	doc := document.NewDocument(l.version)
	doc.Books = make([]document.Book, len(entries))
	for i, e := range entries {
		doc.Books[i] = document.Book{
			EnglishName:  e.Name,
			LocalName:    e.Abbreviation,
			ChapterCount: e.ChapterCount,
		}
	}

	l.mu.Lock()
	l.doc = doc
	l.entries = entries
	l.loaded = make(map[int]bool)
	l.mu.Unlock()

	logging.InfoContext(ctx, "document_shell_loaded", "books", len(entries))
	return doc, nil
}

// Document returns the shared document. The caller must treat it as
// read-only; the library remains the single writer.
func (l *Library) Document() *document.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.doc
}

// LoadBook loads one book's chapter content on demand. Idempotent: a loaded
// book is returned from the in-memory document without re-fetching, and
// concurrent calls for the same index share one fetch. On failure the book
// stays unloaded and eligible for retry.
func (l *Library) LoadBook(ctx context.Context, bookIndex int) (*document.Book, error) {
	l.mu.RLock()
	if l.doc == nil {
		l.mu.RUnlock()
		return nil, errors.NewValidation("document", "not loaded; call LoadDocument first")
	}
	if bookIndex < 0 || bookIndex >= len(l.doc.Books) {
		l.mu.RUnlock()
		return nil, errors.NewNotFound("book", strconv.Itoa(bookIndex))
	}
	if l.loaded[bookIndex] {
		book := &l.doc.Books[bookIndex]
		l.mu.RUnlock()
		return book, nil
	}
	l.mu.RUnlock()

	_, err, _ := l.group.Do(strconv.Itoa(bookIndex), func() (interface{}, error) {
		return nil, l.loadBook(ctx, bookIndex)
	})
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return &l.doc.Books[bookIndex], nil
}

// loadBook fetches, assembles, and merges one book. Runs inside the
// singleflight group.
func (l *Library) loadBook(ctx context.Context, bookIndex int) error {
	l.mu.RLock()
	already := l.loaded[bookIndex]
	entry := l.entries[bookIndex]
	l.mu.RUnlock()
	if already {
		return nil
	}

	start := time.Now()
	raw, err := l.fetcher.Book(ctx, entry)
	if err != nil {
		return errors.Wrapf(err, "load book %d (%s)", bookIndex, entry.Name)
	}

	tables := text.NewTables()
	chapters := l.assembler.AssembleBook(raw, bookIndex, tables)
	meta, lessons := document.BookMetadata(raw)

	l.mu.Lock()
	book := &l.doc.Books[bookIndex]
	book.Chapters = chapters
	book.Metadata = meta
	book.Lessons = lessons
	if raw.Name != "" {
		book.LocalName = raw.Name
	}
	if raw.EnglishName != "" {
		book.EnglishName = raw.EnglishName
	}
	l.doc.MergeTables(tables)
	l.loaded[bookIndex] = true
	l.mu.Unlock()

	logging.BookLoad(bookIndex, entry.Name, len(chapters), time.Since(start))
	return nil
}

// Book returns a book by index, loaded or not.
func (l *Library) Book(bookIndex int) (*document.Book, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.doc == nil || bookIndex < 0 || bookIndex >= len(l.doc.Books) {
		return nil, errors.NewNotFound("book", strconv.Itoa(bookIndex))
	}
	return &l.doc.Books[bookIndex], nil
}

// Chapter returns one chapter of a loaded book.
func (l *Library) Chapter(bookIndex, chapterIndex int) (*document.Chapter, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.doc == nil || bookIndex < 0 || bookIndex >= len(l.doc.Books) {
		return nil, errors.NewNotFound("book", strconv.Itoa(bookIndex))
	}
	book := &l.doc.Books[bookIndex]
	if chapterIndex < 0 || chapterIndex >= len(book.Chapters) {
		return nil, errors.NewNotFound("chapter", strconv.Itoa(chapterIndex))
	}
	return &book.Chapters[chapterIndex], nil
}

// Footnote looks up a footnote body by side-table ID.
func (l *Library) Footnote(id string) (text.Note, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.doc == nil {
		return text.Note{}, false
	}
	n, ok := l.doc.Footnotes[id]
	return n, ok
}

// LiturgyNote looks up a liturgy note body by side-table ID.
func (l *Library) LiturgyNote(id string) (text.Note, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.doc == nil {
		return text.Note{}, false
	}
	n, ok := l.doc.LiturgyNotes[id]
	return n, ok
}

// CrossRef looks up a cross-reference target by side-table ID.
func (l *Library) CrossRef(id string) (text.CrossRefTarget, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.doc == nil {
		return text.CrossRefTarget{}, false
	}
	t, ok := l.doc.CrossRefs[id]
	return t, ok
}

// BookMetas returns the name pairs the resolver matches against, in book
// order.
func (l *Library) BookMetas() []refs.BookMeta {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.doc == nil {
		return nil
	}
	metas := make([]refs.BookMeta, len(l.doc.Books))
	for i, b := range l.doc.Books {
		metas[i] = refs.BookMeta{EnglishName: b.EnglishName, LocalName: b.LocalName}
	}
	return metas
}

// ResolveCrossRef resolves a cross-reference side-table ID to a navigation
// coordinate. Misses are silent apart from a debug log line: the caller
// simply does not navigate.
func (l *Library) ResolveCrossRef(id string) (refs.Coordinate, bool) {
	target, ok := l.CrossRef(id)
	if !ok {
		return refs.Coordinate{}, false
	}
	bookIndex, ok := refs.Resolve(target, l.BookMetas())
	if !ok {
		logging.ResolveMiss(target.BookAbbrev, target.BookFile)
		return refs.Coordinate{}, false
	}
	return refs.NavigationFor(target, bookIndex)
}
