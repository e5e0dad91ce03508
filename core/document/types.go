// Package document defines the flattened, UI-facing Bible content model and
// the assembler that builds it from raw book payloads.
package document

import (
	"github.com/FocuswithJustin/Lectern/core/text"
)

// Verse is one verse of flattened chapter content.
type Verse struct {
	// Number is the 1-based verse number.
	Number int `json:"num"`

	// PlainText is the concatenation of all textual run content, kept in
	// sync with Runs. It exists solely to make full-text search
	// O(verses) instead of O(runs).
	PlainText string `json:"text"`

	// Runs is the styled content of the verse.
	Runs []text.StyledRun `json:"runs"`

	// FootnoteIDs and LiturgyIDs key into the document side tables. Both
	// stay nil (never empty) when no markers of that kind exist, preserved
	// for backward-compatible serialization.
	FootnoteIDs []string `json:"footnote_ids,omitempty"`
	LiturgyIDs  []string `json:"liturgy_ids,omitempty"`
}

// Chapter is one chapter's verses plus its hoisted section headers.
type Chapter struct {
	// Number is the 1-based chapter number.
	Number int `json:"chapter_num"`

	// VerseCount is the number of verses.
	VerseCount int `json:"verse_count"`

	// Verses holds the chapter content in document order.
	Verses []Verse `json:"verses"`

	// Headers are section headings hoisted out of the raw paragraph
	// stream, in original order. Their position relative to specific
	// verses is not preserved; they render as a block before the verses.
	Headers []string `json:"headers,omitempty"`
}

// MetadataSection is a titled block of book front matter.
type MetadataSection struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Lesson is a study or commentary section attached to a book.
type Lesson struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Book is one book of the document. Chapters load lazily: until the book is
// loaded, Chapters is empty even though ChapterCount is known from the index.
type Book struct {
	EnglishName  string            `json:"en_name"`
	LocalName    string            `json:"name"`
	ChapterCount int               `json:"ch_count"`
	Metadata     []MetadataSection `json:"metadata,omitempty"`
	Chapters     []Chapter         `json:"chapters"`
	Lessons      []Lesson          `json:"lessons,omitempty"`
}

// Loaded returns true once the book's chapter content has been merged in.
func (b *Book) Loaded() bool {
	return len(b.Chapters) > 0
}

// Document is the top-level aggregate: all books plus the global side
// tables. It is owned by the library component; a single writer mutates it
// during book-load merges and readers go through accessors.
type Document struct {
	Version      string                         `json:"version"`
	Books        []Book                         `json:"books"`
	Footnotes    map[string]text.Note           `json:"footnotes"`
	LiturgyNotes map[string]text.Note           `json:"liturgy_notes"`
	CrossRefs    map[string]text.CrossRefTarget `json:"cross_refs"`
}

// NewDocument creates an empty document with initialized side tables.
func NewDocument(version string) *Document {
	return &Document{
		Version:      version,
		Footnotes:    make(map[string]text.Note),
		LiturgyNotes: make(map[string]text.Note),
		CrossRefs:    make(map[string]text.CrossRefTarget),
	}
}

// MergeTables unions the side tables into the document. Existing entries
// are never evicted.
func (d *Document) MergeTables(tables *text.Tables) {
	if tables == nil {
		return
	}
	for id, n := range tables.Footnotes {
		if _, ok := d.Footnotes[id]; !ok {
			d.Footnotes[id] = n
		}
	}
	for id, n := range tables.LiturgyNotes {
		if _, ok := d.LiturgyNotes[id]; !ok {
			d.LiturgyNotes[id] = n
		}
	}
	for id, c := range tables.CrossRefs {
		if _, ok := d.CrossRefs[id]; !ok {
			d.CrossRefs[id] = c
		}
	}
}
