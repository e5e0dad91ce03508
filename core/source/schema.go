// Package source defines the raw content schemas consumed by the loader and
// the fetchers that retrieve them. The raw shapes mirror the extraction
// pipeline's JSON output; validation happens here, at the boundary, so the
// transform and assembler downstream can stay lenient.
package source

import (
	"fmt"

	"github.com/FocuswithJustin/Lectern/core/errors"
	"github.com/FocuswithJustin/Lectern/core/text"
)

// Paragraph type tags in the raw book payload.
const (
	ParagraphSectionHeader = "section_header"
	ParagraphSection       = "section_paragraph"
)

// IndexEntry is one book's row in the lightweight content index. The shell
// document is built from these without materializing chapter content.
type IndexEntry struct {
	Name          string `json:"name"`
	Abbreviation  string `json:"abbreviation"`
	ChapterCount  int    `json:"chapterCount"`
	FileReference string `json:"fileReference"`
}

// RawBook is a per-book content payload.
type RawBook struct {
	Name        string `json:"name"`
	EnglishName string `json:"en_name"`

	ChaptersList []RawChapter `json:"chapters_list"`

	Metadata []RawMetadataSection `json:"metadata,omitempty"`
	Lessons  []RawLesson          `json:"lessons,omitempty"`

	// CrossRefTargets is the book-local cross-reference table keyed by raw
	// ref ID; CROSS_REF verse parts point into it.
	CrossRefTargets map[string]text.CrossRefTarget `json:"cross_refs,omitempty"`
}

// RawChapter is one chapter's paragraph-oriented structure. Chapters lacking
// ParagraphsList but holding a pre-built verse list are passed through
// unchanged by the assembler (backward-compatibility path).
type RawChapter struct {
	ChapterNum     int            `json:"chapter_num"`
	ParagraphsList []RawParagraph `json:"paragraphs_list,omitempty"`
	Verses         []RawVerse     `json:"verses,omitempty"`
}

// RawParagraph is either a section header (Text) or a verse group
// (VersesList), per its Type tag.
type RawParagraph struct {
	Type       string         `json:"type"`
	Text       string         `json:"text,omitempty"`
	VersesList *RawVersesList `json:"verses_list,omitempty"`
}

// RawVersesList wraps the nested single-verse list of a section paragraph.
type RawVersesList struct {
	SingleVersesList []RawSingleVerse `json:"single_verses_list"`
}

// RawSingleVerse is one verse's raw style-tagged parts.
type RawSingleVerse struct {
	NumInt     int           `json:"num_int"`
	NumStr     string        `json:"num_str,omitempty"`
	VerseParts []text.RawRun `json:"verse_parts"`
}

// RawVerse is a pre-built verse carried by the backward-compatibility path.
type RawVerse struct {
	Num  int              `json:"num"`
	Text string           `json:"text"`
	Runs []text.StyledRun `json:"runs,omitempty"`
}

// RawMetadataSection is a titled block of book front matter.
type RawMetadataSection struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// RawLesson is a study or commentary section attached to a book.
type RawLesson struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ValidateIndex checks the content index for structural problems.
func ValidateIndex(entries []IndexEntry) error {
	if len(entries) == 0 {
		return errors.NewValidation("index", "no book entries")
	}
	for i, e := range entries {
		field := fmt.Sprintf("index[%d]", i)
		if e.Name == "" {
			return errors.NewValidation(field+".name", "empty book name")
		}
		if e.ChapterCount <= 0 {
			return errors.NewValidation(field+".chapterCount", fmt.Sprintf("must be positive, got %d", e.ChapterCount))
		}
		if e.FileReference == "" {
			return errors.NewValidation(field+".fileReference", "empty file reference")
		}
	}
	return nil
}

// Validate checks a raw book payload for structural problems. Unknown
// paragraph types and style tags are permitted here; the transform degrades
// them to plain text. Structural gaps (a section paragraph without a verse
// list, a verse without a positive number) are rejected.
func (b *RawBook) Validate() error {
	if b.Name == "" && b.EnglishName == "" {
		return errors.NewValidation("book", "missing both name and en_name")
	}
	for ci, ch := range b.ChaptersList {
		field := fmt.Sprintf("chapters_list[%d]", ci)
		if ch.ChapterNum <= 0 {
			return errors.NewValidation(field+".chapter_num", fmt.Sprintf("must be positive, got %d", ch.ChapterNum))
		}
		if len(ch.ParagraphsList) == 0 && len(ch.Verses) == 0 {
			return errors.NewValidation(field, "chapter has neither paragraphs_list nor verses")
		}
		for pi, p := range ch.ParagraphsList {
			pfield := fmt.Sprintf("%s.paragraphs_list[%d]", field, pi)
			if p.Type == ParagraphSection {
				if p.VersesList == nil {
					return errors.NewValidation(pfield, "section_paragraph without verses_list")
				}
				for vi, v := range p.VersesList.SingleVersesList {
					if v.NumInt <= 0 {
						return errors.NewValidation(
							fmt.Sprintf("%s.single_verses_list[%d].num_int", pfield, vi),
							fmt.Sprintf("must be positive, got %d", v.NumInt))
					}
				}
			}
		}
	}
	return nil
}
