package text

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Tables holds the side tables populated incrementally as books are
// transformed. Keys are synthetic IDs; later inserts never evict earlier
// entries.
type Tables struct {
	Footnotes    map[string]Note
	LiturgyNotes map[string]Note
	CrossRefs    map[string]CrossRefTarget
}

// NewTables creates empty side tables.
func NewTables() *Tables {
	return &Tables{
		Footnotes:    make(map[string]Note),
		LiturgyNotes: make(map[string]Note),
		CrossRefs:    make(map[string]CrossRefTarget),
	}
}

// Merge adds all entries of other into t. Additive union: existing entries
// are never replaced. IDs are book-index-scoped so collisions are not
// expected across books.
func (t *Tables) Merge(other *Tables) {
	if other == nil {
		return
	}
	for id, n := range other.Footnotes {
		if _, ok := t.Footnotes[id]; !ok {
			t.Footnotes[id] = n
		}
	}
	for id, n := range other.LiturgyNotes {
		if _, ok := t.LiturgyNotes[id]; !ok {
			t.LiturgyNotes[id] = n
		}
	}
	for id, c := range other.CrossRefs {
		if _, ok := t.CrossRefs[id]; !ok {
			t.CrossRefs[id] = c
		}
	}
}

// Scope identifies the verse being transformed. It seeds note ID synthesis,
// so IDs are unique within one load pass of a book.
type Scope struct {
	BookIndex  int
	ChapterNum int
	VerseNum   int
}

// VerseContent is the output of transforming one verse's raw runs.
type VerseContent struct {
	// Runs is the visible run list. Footnote and liturgy raw runs do not
	// appear here; they render out-of-line.
	Runs []StyledRun

	// PlainText is the concatenation of all textual content. Markers
	// contribute nothing, line breaks contribute "\n".
	PlainText string

	// FootnoteIDs and LiturgyIDs key into the side tables. Both are nil
	// (never empty) when no markers of that kind exist.
	FootnoteIDs []string
	LiturgyIDs  []string
}

// Transformer converts raw runs into the styled-run model while filling the
// shared side tables. Not safe for concurrent use; the loader owns one per
// book load.
type Transformer struct {
	// Tables receives extracted notes and cross-reference targets.
	Tables *Tables

	// Targets is the raw book's cross-reference target table, keyed by the
	// raw ref ID carried on CROSS_REF runs.
	Targets map[string]CrossRefTarget

	// DeterministicIDs switches cross-reference run IDs from time+random
	// UUIDs to content-derived hashes. Off by default: random IDs
	// intentionally isolate identical cross-references in different verses.
	DeterministicIDs bool
}

// NewTransformer creates a transformer writing into tables.
func NewTransformer(tables *Tables) *Transformer {
	return &Transformer{Tables: tables}
}

// Transform converts one verse's raw runs into verse content, extracting
// footnote and liturgy bodies into the side tables. Ordinal counters reset
// per verse, separately for footnotes and liturgy notes.
func (t *Transformer) Transform(scope Scope, raw []RawRun) VerseContent {
	var out VerseContent
	var plain strings.Builder
	var footnoteOrd, liturgyOrd, crossRefOrd int

	for _, r := range raw {
		switch r.Style {
		case StyleNone:
			out.Runs = append(out.Runs, StyledRun{Kind: RunPlain, Text: r.Text})
			plain.WriteString(r.Text)

		case StyleItalic:
			out.Runs = append(out.Runs, StyledRun{Kind: RunItalic, Text: r.Text})
			plain.WriteString(r.Text)

		case StyleOblique:
			out.Runs = append(out.Runs, StyledRun{Kind: RunOblique, Text: r.Text})
			plain.WriteString(r.Text)

		case StyleDivineName:
			out.Runs = append(out.Runs, StyledRun{Kind: RunDivineName, Text: r.Text})
			plain.WriteString(r.Text)

		case StyleSmallCaps:
			out.Runs = append(out.Runs, StyledRun{Kind: RunSmallCaps, Text: r.Text})
			plain.WriteString(r.Text)

		case StyleLineBreak:
			out.Runs = append(out.Runs, StyledRun{Kind: RunLineBreak})
			plain.WriteString("\n")

		case StyleFootnote:
			footnoteOrd++
			id := noteID('f', scope, footnoteOrd)
			t.Tables.Footnotes[id] = t.transformNote(id, r)
			out.FootnoteIDs = append(out.FootnoteIDs, id)

		case StyleLiturgyNote:
			liturgyOrd++
			id := noteID('l', scope, liturgyOrd)
			t.Tables.LiturgyNotes[id] = t.transformNote(id, r)
			out.LiturgyIDs = append(out.LiturgyIDs, id)

		case StyleCrossRef:
			crossRefOrd++
			id := t.crossRefID(scope, crossRefOrd)
			if target, ok := t.Targets[r.RefID]; ok {
				t.Tables.CrossRefs[id] = target
			}
			out.Runs = append(out.Runs, StyledRun{
				Kind:     RunCrossRef,
				Text:     r.Text,
				TargetID: id,
			})
			plain.WriteString(r.Text)

		default:
			// Unrecognized style tags degrade to plain text.
			out.Runs = append(out.Runs, StyledRun{Kind: RunPlain, Text: r.Text})
			plain.WriteString(r.Text)
		}
	}

	out.PlainText = plain.String()
	return out
}

// transformNote converts a note run's nested sub-runs into a Note record.
// The sub-style set is restricted to NONE/ITALIC/CROSS_REF; anything else
// degrades to plain text. CROSS_REF sub-runs target the note's own ID.
func (t *Transformer) transformNote(noteID string, raw RawRun) Note {
	if len(raw.NoteParts) == 0 {
		return Note{
			PlainText: raw.Text,
			Runs:      []StyledRun{{Kind: RunPlain, Text: raw.Text}},
		}
	}

	var (
		runs  []StyledRun
		plain strings.Builder
	)
	for _, p := range raw.NoteParts {
		switch p.Style {
		case StyleItalic:
			runs = append(runs, StyledRun{Kind: RunItalic, Text: p.Text})
		case StyleCrossRef:
			runs = append(runs, StyledRun{Kind: RunCrossRef, Text: p.Text, TargetID: noteID})
		default:
			runs = append(runs, StyledRun{Kind: RunPlain, Text: p.Text})
		}
		plain.WriteString(p.Text)
	}

	return Note{PlainText: plain.String(), Runs: runs}
}

// noteID synthesizes a side-table key of the shape
// {f|l}{bookIndex}-{chapterNum}-{verseNum}-{ordinal}.
func noteID(prefix byte, scope Scope, ordinal int) string {
	return fmt.Sprintf("%c%d-%d-%d-%d", prefix, scope.BookIndex, scope.ChapterNum, scope.VerseNum, ordinal)
}

// crossRefID generates the key for one cross-reference run. Random by
// default; the deterministic mode hashes the verse coordinate and ordinal so
// reloads reproduce the same key.
func (t *Transformer) crossRefID(scope Scope, ordinal int) string {
	if !t.DeterministicIDs {
		return uuid.NewString()
	}
	sum := blake3.Sum256([]byte(fmt.Sprintf("x%d-%d-%d-%d", scope.BookIndex, scope.ChapterNum, scope.VerseNum, ordinal)))
	return "x" + hex.EncodeToString(sum[:8])
}
