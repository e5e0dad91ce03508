package document

import (
	"github.com/FocuswithJustin/Lectern/core/source"
	"github.com/FocuswithJustin/Lectern/core/text"
)

// Assembler converts raw book payloads into the flattened chapter model.
type Assembler struct {
	// DeterministicIDs is passed through to the transform engine's
	// cross-reference ID generation.
	DeterministicIDs bool
}

// AssembleBook converts one raw book payload into chapters and book
// metadata, writing extracted notes and cross-reference targets into tables.
// Idempotent per book: two invocations on the same payload produce
// structurally identical output except for the non-deterministic
// cross-reference IDs.
func (a *Assembler) AssembleBook(raw *source.RawBook, bookIndex int, tables *text.Tables) []Chapter {
	tr := &text.Transformer{
		Tables:           tables,
		Targets:          raw.CrossRefTargets,
		DeterministicIDs: a.DeterministicIDs,
	}

	chapters := make([]Chapter, 0, len(raw.ChaptersList))
	for _, rawCh := range raw.ChaptersList {
		ch := Chapter{Number: rawCh.ChapterNum}

		if len(rawCh.ParagraphsList) == 0 && len(rawCh.Verses) > 0 {
			// Pre-built verse list: pass through unchanged.
			for _, rv := range rawCh.Verses {
				ch.Verses = append(ch.Verses, Verse{
					Number:    rv.Num,
					PlainText: rv.Text,
					Runs:      rv.Runs,
				})
			}
			ch.VerseCount = len(ch.Verses)
			chapters = append(chapters, ch)
			continue
		}

		for _, p := range rawCh.ParagraphsList {
			switch p.Type {
			case source.ParagraphSectionHeader:
				ch.Headers = append(ch.Headers, p.Text)

			case source.ParagraphSection:
				if p.VersesList == nil {
					continue
				}
				for _, sv := range p.VersesList.SingleVersesList {
					scope := text.Scope{
						BookIndex:  bookIndex,
						ChapterNum: rawCh.ChapterNum,
						VerseNum:   sv.NumInt,
					}
					content := tr.Transform(scope, sv.VerseParts)
					ch.Verses = append(ch.Verses, Verse{
						Number:      sv.NumInt,
						PlainText:   content.PlainText,
						Runs:        content.Runs,
						FootnoteIDs: content.FootnoteIDs,
						LiturgyIDs:  content.LiturgyIDs,
					})
				}
			}
		}

		ch.VerseCount = len(ch.Verses)
		chapters = append(chapters, ch)
	}

	return chapters
}

// BookMetadata converts the raw front matter and lessons.
func BookMetadata(raw *source.RawBook) ([]MetadataSection, []Lesson) {
	var meta []MetadataSection
	for _, m := range raw.Metadata {
		meta = append(meta, MetadataSection{Title: m.Title, Text: m.Text})
	}
	var lessons []Lesson
	for _, l := range raw.Lessons {
		lessons = append(lessons, Lesson{Title: l.Title, Text: l.Text})
	}
	return meta, lessons
}
