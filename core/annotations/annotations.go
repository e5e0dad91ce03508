// Package annotations persists reader-created data: bookmarks, highlights,
// verse notes, and the last reading position. Storage is a single SQLite
// database; the driver is selected at build time (see driver_purego.go and
// driver_cgo.go).
package annotations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/Lectern/core/errors"
)

// Kind discriminates annotation rows.
type Kind string

// Annotation kinds.
const (
	KindBookmark  Kind = "bookmark"
	KindHighlight Kind = "highlight"
	KindNote      Kind = "note"
)

// IsValid returns true for a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindBookmark, KindHighlight, KindNote:
		return true
	}
	return false
}

// Annotation is one reader-created mark on a verse. Color is meaningful for
// highlights, Body for notes; both are stored verbatim for the others.
type Annotation struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	BookIndex    int       `json:"book_index"`
	ChapterIndex int       `json:"chapter_index"`
	VerseNumber  int       `json:"verse_number"`
	Color        string    `json:"color,omitempty"`
	Body         string    `json:"body,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Position is the persisted reading position.
type Position struct {
	BookIndex    int       `json:"book_index"`
	ChapterIndex int       `json:"chapter_index"`
	VerseNumber  int       `json:"verse_number"`
	SavedAt      time.Time `json:"saved_at"`
}

// Filter narrows List results. Zero values match everything; BookIndex uses
// -1 as the wildcard because 0 is a valid book.
type Filter struct {
	Kind      Kind
	BookIndex int
}

// AllBooks is the Filter.BookIndex wildcard.
const AllBooks = -1

// Store is a SQLite-backed annotation store. Safe for concurrent use; the
// underlying *sql.DB serializes access.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS annotations (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	book_index    INTEGER NOT NULL,
	chapter_index INTEGER NOT NULL,
	verse_number  INTEGER NOT NULL,
	color         TEXT NOT NULL DEFAULT '',
	body          TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_annotations_position
	ON annotations(book_index, chapter_index, verse_number);

CREATE TABLE IF NOT EXISTS reading_position (
	slot          INTEGER PRIMARY KEY CHECK (slot = 0),
	book_index    INTEGER NOT NULL,
	chapter_index INTEGER NOT NULL,
	verse_number  INTEGER NOT NULL,
	saved_at      TIMESTAMP NOT NULL
);
`

// Open opens (creating if needed) the annotation database at path. Use
// ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize annotation schema")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a new annotation and returns it with its assigned ID and
// timestamps filled in.
func (s *Store) Add(ctx context.Context, a Annotation) (Annotation, error) {
	if !a.Kind.IsValid() {
		return Annotation{}, errors.NewValidation("kind", "unknown annotation kind "+string(a.Kind))
	}
	if a.BookIndex < 0 || a.ChapterIndex < 0 || a.VerseNumber <= 0 {
		return Annotation{}, errors.NewValidation("position", "book/chapter must be non-negative and verse positive")
	}

	a.ID = uuid.NewString()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO annotations
			(id, kind, book_index, chapter_index, verse_number, color, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Kind), a.BookIndex, a.ChapterIndex, a.VerseNumber,
		a.Color, a.Body, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return Annotation{}, errors.Wrap(err, "insert annotation")
	}
	return a, nil
}

// Get returns one annotation by ID.
func (s *Store) Get(ctx context.Context, id string) (Annotation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, book_index, chapter_index, verse_number, color, body, created_at, updated_at
		FROM annotations WHERE id = ?`, id)
	a, err := scanAnnotation(row)
	if err == sql.ErrNoRows {
		return Annotation{}, errors.NewNotFound("annotation", id)
	}
	if err != nil {
		return Annotation{}, errors.Wrap(err, "query annotation")
	}
	return a, nil
}

// UpdateBody replaces the body text of a note annotation.
func (s *Store) UpdateBody(ctx context.Context, id, body string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE annotations SET body = ?, updated_at = ? WHERE id = ?`,
		body, time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, "update annotation")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update annotation")
	}
	if n == 0 {
		return errors.NewNotFound("annotation", id)
	}
	return nil
}

// Remove deletes an annotation by ID.
func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM annotations WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete annotation")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete annotation")
	}
	if n == 0 {
		return errors.NewNotFound("annotation", id)
	}
	return nil
}

// List returns annotations matching the filter, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Annotation, error) {
	q := `SELECT id, kind, book_index, chapter_index, verse_number, color, body, created_at, updated_at
		FROM annotations WHERE 1=1`
	var args []any
	if f.Kind != "" {
		q += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	if f.BookIndex != AllBooks {
		q += ` AND book_index = ?`
		args = append(args, f.BookIndex)
	}
	q += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list annotations")
	}
	defer rows.Close()

	var out []Annotation
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan annotation")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ForVerse returns all annotations on one verse in creation order.
func (s *Store) ForVerse(ctx context.Context, bookIndex, chapterIndex, verseNumber int) ([]Annotation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, book_index, chapter_index, verse_number, color, body, created_at, updated_at
		FROM annotations
		WHERE book_index = ? AND chapter_index = ? AND verse_number = ?
		ORDER BY created_at, id`,
		bookIndex, chapterIndex, verseNumber)
	if err != nil {
		return nil, errors.Wrap(err, "list verse annotations")
	}
	defer rows.Close()

	var out []Annotation
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan annotation")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SavePosition upserts the single reading-position row.
func (s *Store) SavePosition(ctx context.Context, p Position) error {
	p.SavedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reading_position (slot, book_index, chapter_index, verse_number, saved_at)
		VALUES (0, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			book_index = excluded.book_index,
			chapter_index = excluded.chapter_index,
			verse_number = excluded.verse_number,
			saved_at = excluded.saved_at`,
		p.BookIndex, p.ChapterIndex, p.VerseNumber, p.SavedAt)
	return errors.Wrap(err, "save reading position")
}

// LastPosition returns the persisted reading position, or a not-found error
// when none has been saved.
func (s *Store) LastPosition(ctx context.Context) (Position, error) {
	var p Position
	err := s.db.QueryRowContext(ctx, `
		SELECT book_index, chapter_index, verse_number, saved_at
		FROM reading_position WHERE slot = 0`).
		Scan(&p.BookIndex, &p.ChapterIndex, &p.VerseNumber, &p.SavedAt)
	if err == sql.ErrNoRows {
		return Position{}, errors.NewNotFound("reading position", "")
	}
	if err != nil {
		return Position{}, errors.Wrap(err, "query reading position")
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnnotation(row rowScanner) (Annotation, error) {
	var a Annotation
	var kind string
	err := row.Scan(&a.ID, &kind, &a.BookIndex, &a.ChapterIndex, &a.VerseNumber,
		&a.Color, &a.Body, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Annotation{}, err
	}
	a.Kind = Kind(kind)
	return a, nil
}
