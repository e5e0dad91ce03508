package library

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/Lectern/internal/logging"
)

// SearchResult is one verse hit, in book/chapter/verse document order.
type SearchResult struct {
	BookName     string `json:"book_name"`
	BookIndex    int    `json:"book_index"`
	ChapterNum   int    `json:"chapter_num"`
	ChapterIndex int    `json:"chapter_index"`
	VerseNum     int    `json:"verse_num"`
	Text         string `json:"text"`
}

// Search performs a case-insensitive substring search over every verse's
// plain text. All books are materialized first: the scan does not start
// until every book has loaded, and a load failure fails the whole search.
// A blank query returns no results without touching loaded-book state.
// Cancelling ctx abandons both the load fan-out and the scan, so a stale
// search cannot outlive its caller.
func (l *Library) Search(ctx context.Context, query string) ([]SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	start := time.Now()
	if err := l.loadAll(ctx); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var results []SearchResult
	for bi := range l.doc.Books {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		book := &l.doc.Books[bi]
		for ci := range book.Chapters {
			ch := &book.Chapters[ci]
			for vi := range ch.Verses {
				v := &ch.Verses[vi]
				if strings.Contains(strings.ToLower(v.PlainText), needle) {
					results = append(results, SearchResult{
						BookName:     book.EnglishName,
						BookIndex:    bi,
						ChapterNum:   ch.Number,
						ChapterIndex: ci,
						VerseNum:     v.Number,
						Text:         v.PlainText,
					})
				}
			}
		}
	}

	logging.SearchEvent(query, len(results), time.Since(start))
	return results, nil
}

// loadAll materializes every unloaded book, fanning out one load per book
// and joining before returning. Loads share the library's singleflight
// group, so a search racing a navigation does not double-fetch.
func (l *Library) loadAll(ctx context.Context) error {
	l.mu.RLock()
	if l.doc == nil {
		l.mu.RUnlock()
		return nil
	}
	var pending []int
	for i := range l.doc.Books {
		if !l.loaded[i] {
			pending = append(pending, i)
		}
	}
	l.mu.RUnlock()

	if len(pending) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, i := range pending {
		i := i
		g.Go(func() error {
			_, err := l.LoadBook(ctx, i)
			return err
		})
	}
	return g.Wait()
}
