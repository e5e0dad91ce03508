// Package text provides the styled-run model for verse content and the
// transform engine that converts raw style-tagged runs into it.
//
// A run is a contiguous span of verse text sharing one style. Footnote and
// liturgy markers reference out-of-line note content by synthetic ID rather
// than embedding it inline; the note bodies live in side tables owned by the
// document.
package text

// RunKind identifies the style variant of a StyledRun.
type RunKind string

// Run kind constants.
const (
	RunPlain          RunKind = "text"
	RunItalic         RunKind = "italic"
	RunOblique        RunKind = "oblique"
	RunDivineName     RunKind = "divine_name"
	RunSmallCaps      RunKind = "small_caps"
	RunLineBreak      RunKind = "line_break"
	RunCrossRef       RunKind = "cross_ref"
	RunFootnoteMarker RunKind = "footnote_marker"
	RunLiturgyMarker  RunKind = "liturgy_marker"
)

// validRunKinds is the set of valid run kinds.
var validRunKinds = map[RunKind]bool{
	RunPlain:          true,
	RunItalic:         true,
	RunOblique:        true,
	RunDivineName:     true,
	RunSmallCaps:      true,
	RunLineBreak:      true,
	RunCrossRef:       true,
	RunFootnoteMarker: true,
	RunLiturgyMarker:  true,
}

// IsValid returns true if the run kind is valid.
func (k RunKind) IsValid() bool {
	return validRunKinds[k]
}

// StyledRun is one tagged variant of verse content. Exactly one variant
// meaning applies per run: textual kinds carry Text, cross-references carry
// TargetID plus display Text, markers carry NoteID only.
type StyledRun struct {
	// Kind is the style variant tag.
	Kind RunKind `json:"kind"`

	// Text is the display text for textual kinds and cross-references.
	Text string `json:"text,omitempty"`

	// TargetID keys into the document's cross-reference side table.
	TargetID string `json:"target_id,omitempty"`

	// NoteID keys into the footnote or liturgy side table.
	NoteID string `json:"note_id,omitempty"`
}

// IsMarker returns true for runs that render out-of-line note content.
func (r StyledRun) IsMarker() bool {
	return r.Kind == RunFootnoteMarker || r.Kind == RunLiturgyMarker
}

// Note is the out-of-line body of a footnote or liturgy entry.
type Note struct {
	// PlainText is the concatenated text of all runs.
	PlainText string `json:"text"`

	// Runs is the rich content, nil when the note had no sub-structure
	// (kept nil, not empty, for serialization compatibility).
	Runs []StyledRun `json:"runs,omitempty"`
}

// CrossRefTarget describes where a cross-reference points. It is either an
// external link (Href only) or a structured in-corpus coordinate.
type CrossRefTarget struct {
	// Href is an external link target, when present.
	Href string `json:"href,omitempty"`

	// BookAbbrev is the abbreviated book name (e.g., "Gen").
	BookAbbrev string `json:"book_abbrev,omitempty"`

	// BookFile is the book's file reference or English name.
	BookFile string `json:"book_file,omitempty"`

	// Chapter is the 1-based chapter number (0 when absent).
	Chapter int `json:"chapter,omitempty"`

	// Verse is the 1-based verse number (0 when absent).
	Verse int `json:"verse,omitempty"`

	// VerseEnd is the 1-based end of a verse range (0 when absent).
	VerseEnd int `json:"verse_end,omitempty"`
}

// IsExternal returns true when the target is a bare link with no coordinate.
func (t CrossRefTarget) IsExternal() bool {
	return t.Href != "" && t.BookAbbrev == "" && t.BookFile == ""
}

// Style is the tag carried by a raw run from the extraction pipeline.
type Style string

// Raw style tag constants.
const (
	StyleNone        Style = "NONE"
	StyleItalic      Style = "ITALIC"
	StyleOblique     Style = "OBLIQUE"
	StyleDivineName  Style = "DIVINE_NAME"
	StyleSmallCaps   Style = "SMALL_CAPS"
	StyleLineBreak   Style = "LINE_BREAK"
	StyleFootnote    Style = "FOOTNOTE"
	StyleLiturgyNote Style = "LITURGY_NOTE"
	StyleCrossRef    Style = "CROSS_REF"
)

// RawRun is one raw style-tagged span of a verse as produced by the
// extraction pipeline. Footnote and liturgy runs may carry nested note
// content in NoteParts, restricted to the NONE/ITALIC/CROSS_REF styles.
type RawRun struct {
	Style Style  `json:"style"`
	Text  string `json:"text"`

	// RefID keys into the raw book's cross-reference target table
	// (CROSS_REF runs only).
	RefID string `json:"ref_id,omitempty"`

	// NoteParts is the note's own rich content (FOOTNOTE/LITURGY_NOTE only).
	NoteParts []RawRun `json:"note_parts,omitempty"`
}
