package refs

import (
	"testing"

	"github.com/FocuswithJustin/Lectern/core/text"
)

var testBooks = []BookMeta{
	{EnglishName: "Genesis", LocalName: "Бытие"},
	{EnglishName: "Exodus", LocalName: "Исход"},
	{EnglishName: "Leviticus", LocalName: "Левит"},
	{EnglishName: "Matthew", LocalName: "От Матфея"},
}

func TestResolveExactFileMatch(t *testing.T) {
	idx, ok := Resolve(text.CrossRefTarget{BookFile: "exodus"}, testBooks)
	if !ok || idx != 1 {
		t.Errorf("Resolve = (%d, %v), want (1, true)", idx, ok)
	}
}

func TestResolveAbbrevAgainstEnglishAndLocal(t *testing.T) {
	tests := []struct {
		name   string
		target text.CrossRefTarget
		want   int
	}{
		{"english exact", text.CrossRefTarget{BookAbbrev: "MATTHEW"}, 3},
		{"local exact", text.CrossRefTarget{BookAbbrev: "исход"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := Resolve(tt.target, testBooks)
			if !ok || idx != tt.want {
				t.Errorf("Resolve(%+v) = (%d, %v), want (%d, true)", tt.target, idx, ok, tt.want)
			}
		})
	}
}

func TestResolveEnglishBeatsLocal(t *testing.T) {
	// One book's local name and a later book's English name both equal the
	// abbreviation: the English-name match must win even though the
	// local-name book comes first.
	books := []BookMeta{
		{EnglishName: "Genesis", LocalName: "Mark"},
		{EnglishName: "Mark", LocalName: "От Марка"},
	}
	idx, ok := Resolve(text.CrossRefTarget{BookAbbrev: "mark"}, books)
	if !ok || idx != 1 {
		t.Errorf("Resolve = (%d, %v), want English-name match at index 1", idx, ok)
	}
}

func TestResolvePrefixFallback(t *testing.T) {
	idx, ok := Resolve(text.CrossRefTarget{BookFile: "Lev"}, testBooks)
	if !ok || idx != 2 {
		t.Errorf("Resolve = (%d, %v), want prefix match at index 2", idx, ok)
	}
}

func TestResolveMissIsSilent(t *testing.T) {
	idx, ok := Resolve(text.CrossRefTarget{BookAbbrev: "Tobit"}, testBooks)
	if ok {
		t.Errorf("Resolve = (%d, true), want miss", idx)
	}
}

func TestResolveFilePriorityOverAbbrev(t *testing.T) {
	// Rule 1 (BookFile exact) beats rule 2 (BookAbbrev exact).
	target := text.CrossRefTarget{BookFile: "Genesis", BookAbbrev: "Exodus"}
	idx, ok := Resolve(target, testBooks)
	if !ok || idx != 0 {
		t.Errorf("Resolve = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestNavigationFor(t *testing.T) {
	target := text.CrossRefTarget{BookAbbrev: "Gen", Chapter: 3, Verse: 15}
	coord, ok := NavigationFor(target, 0)
	if !ok {
		t.Fatal("NavigationFor returned false")
	}
	// Chapter converts 1-based to 0-based; verse stays 1-based.
	if coord.ChapterIndex != 2 {
		t.Errorf("ChapterIndex = %d, want 2", coord.ChapterIndex)
	}
	if coord.VerseNumber != 15 {
		t.Errorf("VerseNumber = %d, want 15", coord.VerseNumber)
	}
}

func TestNavigationForIncompleteTarget(t *testing.T) {
	if _, ok := NavigationFor(text.CrossRefTarget{Chapter: 3}, 0); ok {
		t.Error("NavigationFor accepted target without verse")
	}
	if _, ok := NavigationFor(text.CrossRefTarget{Verse: 3}, 0); ok {
		t.Error("NavigationFor accepted target without chapter")
	}
}
