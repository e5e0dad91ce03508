// Package refs resolves cross-reference targets to book coordinates and
// parses human-readable scripture references.
package refs

import (
	"strings"

	"github.com/FocuswithJustin/Lectern/core/text"
)

// BookMeta is the name pair the resolver matches against.
type BookMeta struct {
	EnglishName string
	LocalName   string
}

// Resolve finds the book index for a cross-reference target. First match
// wins, in fixed priority order:
//
//  1. exact case-insensitive match of BookFile against an English name
//  2. exact case-insensitive match of BookAbbrev against an English name,
//     then against a local name
//  3. case-insensitive prefix match of BookFile against an English name
//
// A miss returns (0, false); callers do not navigate and no error is
// surfaced.
func Resolve(target text.CrossRefTarget, books []BookMeta) (int, bool) {
	if target.BookFile != "" {
		for i, b := range books {
			if strings.EqualFold(b.EnglishName, target.BookFile) {
				return i, true
			}
		}
	}

	if target.BookAbbrev != "" {
		// English-name matches take priority over local-name matches even
		// when a local name matches an earlier book.
		for i, b := range books {
			if strings.EqualFold(b.EnglishName, target.BookAbbrev) {
				return i, true
			}
		}
		for i, b := range books {
			if strings.EqualFold(b.LocalName, target.BookAbbrev) {
				return i, true
			}
		}
	}

	if target.BookFile != "" {
		lower := strings.ToLower(target.BookFile)
		for i, b := range books {
			if strings.HasPrefix(strings.ToLower(b.EnglishName), lower) {
				return i, true
			}
		}
	}

	return 0, false
}

// Coordinate is a resolved reading position. ChapterIndex is 0-based;
// VerseNumber stays 1-based (0 when absent). The asymmetry is deliberate
// and matches the navigation layer's coordinate model.
type Coordinate struct {
	BookIndex    int
	ChapterIndex int
	VerseNumber  int
}

// NavigationFor builds the navigation coordinate for a resolved target.
// Returns false when the target lacks a chapter/verse pair, in which case
// callers should not navigate.
func NavigationFor(target text.CrossRefTarget, bookIndex int) (Coordinate, bool) {
	if target.Chapter <= 0 || target.Verse <= 0 {
		return Coordinate{}, false
	}
	return Coordinate{
		BookIndex:    bookIndex,
		ChapterIndex: target.Chapter - 1,
		VerseNumber:  target.Verse,
	}, true
}
