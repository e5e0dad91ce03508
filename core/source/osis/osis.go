// Package osis imports OSIS XML into the raw book schema. Only the container
// form (book divs holding chapter elements holding verse elements) is
// supported; milestone-form documents should be normalized upstream.
package osis

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/Lectern/core/errors"
	"github.com/FocuswithJustin/Lectern/core/source"
	"github.com/FocuswithJustin/Lectern/core/text"
)

// Work is a parsed OSIS document: its identity plus one raw book per
// book-level div, in document order.
type Work struct {
	ID       string
	Title    string
	Language string
	Books    []*source.RawBook
}

// Import parses OSIS XML into a Work.
func Import(data []byte) (*Work, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &errors.ParseError{Format: "OSIS", Message: err.Error(), Err: err}
	}

	osisText := xmlquery.FindOne(root, "//osisText")
	if osisText == nil {
		return nil, errors.NewParse("OSIS", "", "no osisText element")
	}

	work := &Work{
		ID:       osisText.SelectAttr("osisIDWork"),
		Language: osisText.SelectAttr("lang"),
	}
	if work.Language == "" {
		work.Language = osisText.SelectAttr("xml:lang")
	}
	if title := xmlquery.FindOne(osisText, "./header/work/title"); title != nil {
		work.Title = strings.TrimSpace(title.InnerText())
	}
	if lang := xmlquery.FindOne(osisText, "./header/work/language"); lang != nil && work.Language == "" {
		work.Language = strings.TrimSpace(lang.InnerText())
	}

	divs, err := queryAll(osisText, "//div[@type='book']")
	if err != nil {
		return nil, err
	}
	for _, div := range divs {
		book, err := importBook(div)
		if err != nil {
			return nil, err
		}
		work.Books = append(work.Books, book)
	}
	if len(work.Books) == 0 {
		return nil, errors.NewParse("OSIS", "", "no book divs")
	}
	return work, nil
}

// Index derives a content index from the work, naming each book's payload
// file after its OSIS ID.
func (w *Work) Index() []source.IndexEntry {
	entries := make([]source.IndexEntry, 0, len(w.Books))
	for _, b := range w.Books {
		entries = append(entries, source.IndexEntry{
			Name:          b.EnglishName,
			Abbreviation:  b.Name,
			ChapterCount:  len(b.ChaptersList),
			FileReference: fmt.Sprintf("books/%s.json", strings.ToLower(b.Name)),
		})
	}
	return entries
}

// importBook converts one book-level div. The OSIS ID becomes the local
// name, the div title the English name.
func importBook(div *xmlquery.Node) (*source.RawBook, error) {
	book := &source.RawBook{
		Name:            div.SelectAttr("osisID"),
		CrossRefTargets: map[string]text.CrossRefTarget{},
	}
	if title := xmlquery.FindOne(div, "./title"); title != nil {
		book.EnglishName = strings.TrimSpace(title.InnerText())
	}
	if book.EnglishName == "" {
		book.EnglishName = book.Name
	}

	st := importState{book: book}
	chapters, err := queryAll(div, "./chapter")
	if err != nil {
		return nil, err
	}
	for _, ch := range chapters {
		raw, err := st.importChapter(ch)
		if err != nil {
			return nil, err
		}
		book.ChaptersList = append(book.ChaptersList, raw)
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	return book, nil
}

// queryAll compiles the expression before running it so malformed XPath
// surfaces as a parse error rather than a silent empty result.
func queryAll(node *xmlquery.Node, expr string) ([]*xmlquery.Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, &errors.ParseError{Format: "xpath", Message: err.Error(), Err: err}
	}
	nodes, err := xmlquery.QueryAll(node, expr)
	if err != nil {
		return nil, &errors.ParseError{Format: "OSIS", Message: err.Error(), Err: err}
	}
	return nodes, nil
}

// importState carries the per-book cross-reference counter.
type importState struct {
	book   *source.RawBook
	refSeq int
}

func (st *importState) importChapter(ch *xmlquery.Node) (source.RawChapter, error) {
	num, err := chapterNumber(ch)
	if err != nil {
		return source.RawChapter{}, err
	}
	raw := source.RawChapter{ChapterNum: num}

	var verses []source.RawSingleVerse
	flush := func() {
		if len(verses) == 0 {
			return
		}
		raw.ParagraphsList = append(raw.ParagraphsList, source.RawParagraph{
			Type:       source.ParagraphSection,
			VersesList: &source.RawVersesList{SingleVersesList: verses},
		})
		verses = nil
	}

	for node := ch.FirstChild; node != nil; node = node.NextSibling {
		if node.Type != xmlquery.ElementNode {
			continue
		}
		switch node.Data {
		case "title":
			// A header splits the surrounding verses into separate
			// paragraphs so document order is preserved.
			flush()
			raw.ParagraphsList = append(raw.ParagraphsList, source.RawParagraph{
				Type: source.ParagraphSectionHeader,
				Text: strings.TrimSpace(node.InnerText()),
			})
		case "verse":
			v, err := st.importVerse(node)
			if err != nil {
				return source.RawChapter{}, err
			}
			verses = append(verses, v)
		case "p", "lg":
			// Prose and poetry containers hold verses one level down.
			for inner := node.FirstChild; inner != nil; inner = inner.NextSibling {
				if inner.Type == xmlquery.ElementNode && inner.Data == "verse" {
					v, err := st.importVerse(inner)
					if err != nil {
						return source.RawChapter{}, err
					}
					verses = append(verses, v)
				}
			}
		}
	}
	flush()
	return raw, nil
}

func (st *importState) importVerse(node *xmlquery.Node) (source.RawSingleVerse, error) {
	osisID := node.SelectAttr("osisID")
	num, err := verseNumber(osisID)
	if err != nil {
		return source.RawSingleVerse{}, err
	}

	verse := source.RawSingleVerse{NumInt: num, NumStr: strconv.Itoa(num)}
	var plain strings.Builder
	emit := func() {
		if plain.Len() == 0 {
			return
		}
		verse.VerseParts = append(verse.VerseParts, text.RawRun{
			Style: text.StyleNone,
			Text:  plain.String(),
		})
		plain.Reset()
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			plain.WriteString(child.Data)
		case xmlquery.ElementNode:
			switch child.Data {
			case "note":
				emit()
				verse.VerseParts = append(verse.VerseParts, text.RawRun{
					Style: text.StyleFootnote,
					Text:  strings.TrimSpace(child.InnerText()),
				})
			case "reference":
				emit()
				st.refSeq++
				refID := fmt.Sprintf("r%d", st.refSeq)
				st.book.CrossRefTargets[refID] = refTarget(child.SelectAttr("osisRef"))
				verse.VerseParts = append(verse.VerseParts, text.RawRun{
					Style: text.StyleCrossRef,
					Text:  strings.TrimSpace(child.InnerText()),
					RefID: refID,
				})
			case "divineName":
				emit()
				verse.VerseParts = append(verse.VerseParts, text.RawRun{
					Style: text.StyleDivineName,
					Text:  child.InnerText(),
				})
			case "hi":
				emit()
				style := text.StyleItalic
				if child.SelectAttr("type") == "small-caps" {
					style = text.StyleSmallCaps
				}
				verse.VerseParts = append(verse.VerseParts, text.RawRun{
					Style: style,
					Text:  child.InnerText(),
				})
			case "lb":
				emit()
				verse.VerseParts = append(verse.VerseParts, text.RawRun{
					Style: text.StyleLineBreak,
				})
			default:
				plain.WriteString(child.InnerText())
			}
		}
	}
	emit()

	// Normalize outer whitespace on the verse's leading and trailing runs.
	if n := len(verse.VerseParts); n > 0 {
		verse.VerseParts[0].Text = strings.TrimLeft(verse.VerseParts[0].Text, " \t\n")
		verse.VerseParts[n-1].Text = strings.TrimRight(verse.VerseParts[n-1].Text, " \t\n")
	}
	return verse, nil
}

// chapterNumber extracts the chapter number from an osisID like "Gen.3",
// falling back to the n attribute.
func chapterNumber(ch *xmlquery.Node) (int, error) {
	id := ch.SelectAttr("osisID")
	if id != "" {
		parts := strings.Split(id, ".")
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil && n > 0 {
			return n, nil
		}
	}
	if n, err := strconv.Atoi(ch.SelectAttr("n")); err == nil && n > 0 {
		return n, nil
	}
	return 0, errors.NewParse("OSIS", "", fmt.Sprintf("chapter without usable number (osisID %q)", id))
}

// verseNumber extracts the verse number from an osisID like "Gen.3.14". A
// range ID ("Gen.3.14-15") yields its start.
func verseNumber(osisID string) (int, error) {
	parts := strings.Split(osisID, ".")
	last := parts[len(parts)-1]
	if i := strings.IndexByte(last, '-'); i >= 0 {
		last = last[:i]
	}
	n, err := strconv.Atoi(last)
	if err != nil || n <= 0 {
		return 0, errors.NewParse("OSIS", "", fmt.Sprintf("verse without usable number (osisID %q)", osisID))
	}
	return n, nil
}

// refTarget converts an osisRef like "Exod.3.14" or "Exod.3.14-Exod.3.15"
// into a structured target. Unparseable refs degrade to a bare abbrev.
func refTarget(osisRef string) text.CrossRefTarget {
	ref := osisRef
	var endPart string
	if i := strings.IndexByte(ref, '-'); i >= 0 {
		ref, endPart = ref[:i], ref[i+1:]
	}

	var target text.CrossRefTarget
	parts := strings.Split(ref, ".")
	target.BookAbbrev = parts[0]
	if len(parts) >= 2 {
		target.Chapter, _ = strconv.Atoi(parts[1])
	}
	if len(parts) >= 3 {
		target.Verse, _ = strconv.Atoi(parts[2])
	}

	if endPart != "" {
		endParts := strings.Split(endPart, ".")
		if v, err := strconv.Atoi(endParts[len(endParts)-1]); err == nil {
			target.VerseEnd = v
		}
	}
	return target
}
