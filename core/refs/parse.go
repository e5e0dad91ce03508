package refs

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ScriptureRange is a parsed human-readable scripture reference, possibly
// spanning a range of verses or chapters.
type ScriptureRange struct {
	Book         string `@Book`
	ChapterStart *int   `( @Number`
	VerseStart   *int   `( ":" @Number )?`
	ChapterEnd   *int   `( "-" ( @Number`
	VerseEnd     *int   `    ( ":" @Number )? )? )? )?`
}

var rangeLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Book names: optional leading ordinal, words, optional trailing
	// period. Examples: Genesis, Gen., 1 John, Song of Solomon
	{Name: "Book", Pattern: `(?:\d\s*)?[A-Za-z]+(?:\s+(?:of\s+)?[A-Za-z]+)*\.?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var rangeParser = participle.MustBuild[ScriptureRange](
	participle.Lexer(rangeLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a human-readable scripture reference. Supported shapes:
//
//   - "Genesis 1:1" and "Gen 1:1"
//   - "Gen.1.1" and "Gen 1.1" (dot separators)
//   - "Genesis 1:1-5" (verse range)
//   - "Genesis 1:1-2:5" (cross-chapter range)
//   - "Genesis 1-2" (chapter range)
//   - "Genesis 1" and "Genesis"
func Parse(input string) (*ScriptureRange, error) {
	ref, err := rangeParser.ParseString("", dotsToColons(input))
	if err != nil {
		return nil, fmt.Errorf("failed to parse reference %q: %w", input, err)
	}

	ref.Book = CanonicalBookName(ref.Book)

	// "Genesis 1:1-5" parses the 5 as ChapterEnd; when a start verse is
	// present and no end verse is, the number after the dash is a verse.
	if ref.VerseStart != nil && ref.ChapterEnd != nil && ref.VerseEnd == nil {
		ref.VerseEnd = ref.ChapterEnd
		ref.ChapterEnd = nil
	}

	return ref, nil
}

// dotsToColons rewrites "Book.Chapter.Verse" separators into the
// "Book Chapter:Verse" shape the grammar expects.
func dotsToColons(input string) string {
	parts := strings.Split(input, ".")
	if len(parts) < 2 {
		return input
	}

	rest := parts[1:]
	for _, p := range rest {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return input
			}
		}
	}

	if len(rest) == 1 {
		return parts[0] + " " + rest[0]
	}
	return parts[0] + " " + rest[0] + ":" + strings.Join(rest[1:], ":")
}

// String returns the canonical display form of the reference.
func (r *ScriptureRange) String() string {
	if r.ChapterStart == nil {
		return r.Book
	}

	var sb strings.Builder
	sb.WriteString(r.Book)
	fmt.Fprintf(&sb, " %d", *r.ChapterStart)

	if r.VerseStart != nil {
		fmt.Fprintf(&sb, ":%d", *r.VerseStart)
	}

	switch {
	case r.ChapterEnd != nil:
		fmt.Fprintf(&sb, "-%d", *r.ChapterEnd)
		if r.VerseEnd != nil {
			fmt.Fprintf(&sb, ":%d", *r.VerseEnd)
		}
	case r.VerseEnd != nil:
		fmt.Fprintf(&sb, "-%d", *r.VerseEnd)
	}

	return sb.String()
}

// IsRange returns true if the reference spans multiple verses or chapters.
func (r *ScriptureRange) IsRange() bool {
	return r.ChapterEnd != nil || r.VerseEnd != nil
}

// Target converts the parsed reference into a cross-reference-style lookup
// against the resolver: the canonical book name goes into BookAbbrev so both
// English and local names are considered.
func (r *ScriptureRange) Target() (bookAbbrev string, chapter, verse, verseEnd int) {
	bookAbbrev = r.Book
	if r.ChapterStart != nil {
		chapter = *r.ChapterStart
	}
	if r.VerseStart != nil {
		verse = *r.VerseStart
	}
	if r.VerseEnd != nil {
		verseEnd = *r.VerseEnd
	}
	return bookAbbrev, chapter, verse, verseEnd
}

// bookAliases maps canonical English book names to their accepted
// abbreviations (lowercase). Canonical names also match themselves.
var bookAliases = map[string][]string{
	"Genesis":         {"gen"},
	"Exodus":          {"exod", "exo", "ex"},
	"Leviticus":       {"lev"},
	"Numbers":         {"num"},
	"Deuteronomy":     {"deut", "deu"},
	"Joshua":          {"josh", "jos"},
	"Judges":          {"judg", "jdg"},
	"Ruth":            {"rut"},
	"1 Samuel":        {"1sam", "1 sam"},
	"2 Samuel":        {"2sam", "2 sam"},
	"1 Kings":         {"1kgs", "1 kgs"},
	"2 Kings":         {"2kgs", "2 kgs"},
	"1 Chronicles":    {"1chr", "1 chr"},
	"2 Chronicles":    {"2chr", "2 chr"},
	"Ezra":            {"ezr"},
	"Nehemiah":        {"neh"},
	"Esther":          {"esth", "est"},
	"Job":             {},
	"Psalms":          {"ps", "psa", "psalm"},
	"Proverbs":        {"prov", "pro"},
	"Ecclesiastes":    {"eccl", "ecc"},
	"Song of Solomon": {"song", "song of songs", "sos", "canticles"},
	"Isaiah":          {"isa"},
	"Jeremiah":        {"jer"},
	"Lamentations":    {"lam"},
	"Ezekiel":         {"ezek", "eze"},
	"Daniel":          {"dan"},
	"Hosea":           {"hos"},
	"Joel":            {},
	"Amos":            {},
	"Obadiah":         {"obad", "oba"},
	"Jonah":           {"jon"},
	"Micah":           {"mic"},
	"Nahum":           {"nah"},
	"Habakkuk":        {"hab"},
	"Zephaniah":       {"zeph", "zep"},
	"Haggai":          {"hag"},
	"Zechariah":       {"zech", "zec"},
	"Malachi":         {"mal"},
	"Matthew":         {"matt", "mat", "mt"},
	"Mark":            {"mrk", "mk"},
	"Luke":            {"luk", "lk"},
	"John":            {"joh", "jn"},
	"Acts":            {"act"},
	"Romans":          {"rom"},
	"1 Corinthians":   {"1cor", "1 cor"},
	"2 Corinthians":   {"2cor", "2 cor"},
	"Galatians":       {"gal"},
	"Ephesians":       {"eph"},
	"Philippians":     {"phil"},
	"Colossians":      {"col"},
	"1 Thessalonians": {"1thess", "1 thess"},
	"2 Thessalonians": {"2thess", "2 thess"},
	"1 Timothy":       {"1tim", "1 tim"},
	"2 Timothy":       {"2tim", "2 tim"},
	"Titus":           {"tit"},
	"Philemon":        {"phlm", "phm"},
	"Hebrews":         {"heb"},
	"James":           {"jas"},
	"1 Peter":         {"1pet", "1 pet"},
	"2 Peter":         {"2pet", "2 pet"},
	"1 John":          {"1jn", "1 jn"},
	"2 John":          {"2jn", "2 jn"},
	"3 John":          {"3jn", "3 jn"},
	"Jude":            {},
	"Revelation":      {"rev"},
}

// canonicalNames is built from bookAliases at init: lowercase alias (and
// lowercase canonical name) to canonical name.
var canonicalNames = func() map[string]string {
	m := make(map[string]string, len(bookAliases)*3)
	for canonical, aliases := range bookAliases {
		m[strings.ToLower(canonical)] = canonical
		// "1 Samuel" also matches "1samuel".
		m[strings.ReplaceAll(strings.ToLower(canonical), " ", "")] = canonical
		for _, a := range aliases {
			m[a] = canonical
		}
	}
	return m
}()

// CanonicalBookName normalizes a book name or abbreviation to its canonical
// English form. Unknown names are returned trimmed but otherwise unchanged.
func CanonicalBookName(book string) string {
	book = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(book), "."))
	if canonical, ok := canonicalNames[strings.ToLower(book)]; ok {
		return canonical
	}
	return book
}
