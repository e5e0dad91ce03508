package library

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FocuswithJustin/Lectern/core/document"
	"github.com/FocuswithJustin/Lectern/core/source"
	"github.com/FocuswithJustin/Lectern/core/text"
)

// memFetcher serves a small two-book corpus from memory and counts book
// fetches.
type memFetcher struct {
	fetches int64
	delay   time.Duration
	failFor map[int]error
}

func (f *memFetcher) Index(ctx context.Context) ([]source.IndexEntry, error) {
	return []source.IndexEntry{
		{Name: "Genesis", Abbreviation: "Gen", ChapterCount: 2, FileReference: "gen.json"},
		{Name: "Exodus", Abbreviation: "Exo", ChapterCount: 1, FileReference: "exo.json"},
	}, nil
}

func (f *memFetcher) Book(ctx context.Context, entry source.IndexEntry) (*source.RawBook, error) {
	atomic.AddInt64(&f.fetches, 1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	switch entry.FileReference {
	case "gen.json":
		if err := f.failFor[0]; err != nil {
			return nil, err
		}
		return &source.RawBook{
			Name:        "Бытие",
			EnglishName: "Genesis",
			ChaptersList: []source.RawChapter{
				{ChapterNum: 1, ParagraphsList: []source.RawParagraph{
					{Type: source.ParagraphSection, VersesList: &source.RawVersesList{
						SingleVersesList: []source.RawSingleVerse{
							{NumInt: 1, VerseParts: []text.RawRun{
								{Style: text.StyleNone, Text: "In the beginning God created"},
							}},
							{NumInt: 2, VerseParts: []text.RawRun{
								{Style: text.StyleNone, Text: "And the earth was without form"},
								{Style: text.StyleFootnote, Text: "Or, waste"},
							}},
						},
					}},
				}},
				{ChapterNum: 2, ParagraphsList: []source.RawParagraph{
					{Type: source.ParagraphSection, VersesList: &source.RawVersesList{
						SingleVersesList: []source.RawSingleVerse{
							{NumInt: 1, VerseParts: []text.RawRun{
								{Style: text.StyleNone, Text: "Thus the heavens were finished"},
							}},
						},
					}},
				}},
			},
		}, nil
	case "exo.json":
		if err := f.failFor[1]; err != nil {
			return nil, err
		}
		return &source.RawBook{
			Name:        "Исход",
			EnglishName: "Exodus",
			ChaptersList: []source.RawChapter{
				{ChapterNum: 1, ParagraphsList: []source.RawParagraph{
					{Type: source.ParagraphSection, VersesList: &source.RawVersesList{
						SingleVersesList: []source.RawSingleVerse{
							{NumInt: 1, VerseParts: []text.RawRun{
								{Style: text.StyleNone, Text: "Now these are the names"},
							}},
						},
					}},
				}},
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown file reference %q", entry.FileReference)
}

func newTestLibrary(t *testing.T, f *memFetcher) *Library {
	t.Helper()
	l := New(f)
	if _, err := l.LoadDocument(context.Background()); err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	return l
}

func TestLoadDocumentShell(t *testing.T) {
	l := newTestLibrary(t, &memFetcher{})
	doc := l.Document()

	if len(doc.Books) != 2 {
		t.Fatalf("len(Books) = %d, want 2", len(doc.Books))
	}
	for i, b := range doc.Books {
		if b.Loaded() {
			t.Errorf("Books[%d] loaded in shell document", i)
		}
	}
	if doc.Books[0].ChapterCount != 2 {
		t.Errorf("ChapterCount = %d, want 2 before load", doc.Books[0].ChapterCount)
	}
}

func TestLoadBookIdempotent(t *testing.T) {
	f := &memFetcher{}
	l := newTestLibrary(t, f)

	first, err := l.LoadBook(context.Background(), 0)
	if err != nil {
		t.Fatalf("LoadBook failed: %v", err)
	}
	firstDigest := document.ChaptersDigest(first.Chapters)

	second, err := l.LoadBook(context.Background(), 0)
	if err != nil {
		t.Fatalf("second LoadBook failed: %v", err)
	}

	if got := atomic.LoadInt64(&f.fetches); got != 1 {
		t.Errorf("fetches = %d, want 1 (cached)", got)
	}
	if document.ChaptersDigest(second.Chapters) != firstDigest {
		t.Errorf("book content differs across idempotent loads")
	}
	if second.LocalName != "Бытие" {
		t.Errorf("LocalName = %q, want merged from payload", second.LocalName)
	}
}

func TestLoadBookMergesNoteTables(t *testing.T) {
	l := newTestLibrary(t, &memFetcher{})
	book, err := l.LoadBook(context.Background(), 0)
	if err != nil {
		t.Fatalf("LoadBook failed: %v", err)
	}

	verse := book.Chapters[0].Verses[1]
	if len(verse.FootnoteIDs) != 1 {
		t.Fatalf("FootnoteIDs = %v, want one", verse.FootnoteIDs)
	}
	if _, ok := l.Footnote(verse.FootnoteIDs[0]); !ok {
		t.Errorf("footnote %q missing from document table", verse.FootnoteIDs[0])
	}
}

func TestLoadBookFailureIsRetryable(t *testing.T) {
	f := &memFetcher{failFor: map[int]error{0: fmt.Errorf("disk gone")}}
	l := newTestLibrary(t, f)

	if _, err := l.LoadBook(context.Background(), 0); err == nil {
		t.Fatal("LoadBook succeeded, want error")
	}

	// Failure must not have corrupted the shared document.
	book, err := l.Book(0)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if book.Loaded() {
		t.Error("failed book has chapters merged")
	}

	// Clearing the fault makes the same call succeed.
	f.failFor = nil
	if _, err := l.LoadBook(context.Background(), 0); err != nil {
		t.Errorf("retry failed: %v", err)
	}
}

func TestLoadBookOutOfRange(t *testing.T) {
	l := newTestLibrary(t, &memFetcher{})
	if _, err := l.LoadBook(context.Background(), 99); err == nil {
		t.Error("LoadBook(99) succeeded, want not-found error")
	}
	if _, err := l.LoadBook(context.Background(), -1); err == nil {
		t.Error("LoadBook(-1) succeeded, want not-found error")
	}
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
	f := &memFetcher{delay: 20 * time.Millisecond}
	l := newTestLibrary(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.LoadBook(context.Background(), 0); err != nil {
				t.Errorf("concurrent LoadBook failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&f.fetches); got != 1 {
		t.Errorf("fetches = %d, want 1 under concurrent callers", got)
	}
}

func TestSearchCorrectness(t *testing.T) {
	l := newTestLibrary(t, &memFetcher{})

	results, err := l.Search(context.Background(), "beginning")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	r := results[0]
	if r.BookIndex != 0 || r.ChapterNum != 1 || r.VerseNum != 1 {
		t.Errorf("result = %+v, want Genesis 1:1", r)
	}
	if r.BookName != "Genesis" {
		t.Errorf("BookName = %q, want Genesis", r.BookName)
	}

	// Case variation returns the identical result.
	upper, err := l.Search(context.Background(), "BEGINNING")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(upper) != 1 || upper[0] != r {
		t.Errorf("case-variant search = %+v, want %+v", upper, r)
	}
}

func TestSearchMaterializesAllBooks(t *testing.T) {
	f := &memFetcher{}
	l := newTestLibrary(t, f)

	if _, err := l.Search(context.Background(), "names"); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got := atomic.LoadInt64(&f.fetches); got != 2 {
		t.Errorf("fetches = %d, want 2 (full materialization)", got)
	}
}

func TestSearchEmptyQueryGuard(t *testing.T) {
	f := &memFetcher{}
	l := newTestLibrary(t, f)

	for _, q := range []string{"", "   "} {
		results, err := l.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", q, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) = %d results, want 0", q, len(results))
		}
	}
	if got := atomic.LoadInt64(&f.fetches); got != 0 {
		t.Errorf("fetches = %d, want 0 for blank queries", got)
	}
}

func TestSearchLoadFailurePropagates(t *testing.T) {
	f := &memFetcher{failFor: map[int]error{1: fmt.Errorf("payload corrupt")}}
	l := newTestLibrary(t, f)

	if _, err := l.Search(context.Background(), "beginning"); err == nil {
		t.Error("Search succeeded with a failing book load, want error")
	}
}

func TestSearchCancellation(t *testing.T) {
	f := &memFetcher{delay: 50 * time.Millisecond}
	l := newTestLibrary(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.Search(ctx, "beginning"); err == nil {
		t.Error("Search with cancelled context succeeded, want error")
	}
}

func TestResolveCrossRefThroughDocument(t *testing.T) {
	l := newTestLibrary(t, &memFetcher{})
	if _, err := l.LoadBook(context.Background(), 0); err != nil {
		t.Fatalf("LoadBook failed: %v", err)
	}

	// Inject a cross-ref target the way a book load would.
	doc := l.Document()
	doc.CrossRefs["x-test"] = text.CrossRefTarget{BookAbbrev: "Exodus", Chapter: 2, Verse: 10}

	coord, ok := l.ResolveCrossRef("x-test")
	if !ok {
		t.Fatal("ResolveCrossRef missed, want hit")
	}
	if coord.BookIndex != 1 || coord.ChapterIndex != 1 || coord.VerseNumber != 10 {
		t.Errorf("coord = %+v, want {1 1 10}", coord)
	}

	if _, ok := l.ResolveCrossRef("absent"); ok {
		t.Error("ResolveCrossRef hit on unknown ID")
	}
}
