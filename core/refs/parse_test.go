package refs

import (
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input   string
		book    string
		chapter int
		verse   int
	}{
		{"Genesis 1:1", "Genesis", 1, 1},
		{"Gen 1:1", "Genesis", 1, 1},
		{"Gen.1.1", "Genesis", 1, 1},
		{"Gen 1.1", "Genesis", 1, 1},
		{"1 John 3:16", "1 John", 3, 16},
		{"Song of Solomon 2:1", "Song of Solomon", 2, 1},
		{"Psalm 23:1", "Psalms", 23, 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ref, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if ref.Book != tt.book {
				t.Errorf("Book = %q, want %q", ref.Book, tt.book)
			}
			if ref.ChapterStart == nil || *ref.ChapterStart != tt.chapter {
				t.Errorf("ChapterStart = %v, want %d", ref.ChapterStart, tt.chapter)
			}
			if ref.VerseStart == nil || *ref.VerseStart != tt.verse {
				t.Errorf("VerseStart = %v, want %d", ref.VerseStart, tt.verse)
			}
		})
	}
}

func TestParseVerseRange(t *testing.T) {
	ref, err := Parse("Genesis 1:1-5")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ref.ChapterEnd != nil {
		t.Errorf("ChapterEnd = %v, want nil (range is within one chapter)", *ref.ChapterEnd)
	}
	if ref.VerseEnd == nil || *ref.VerseEnd != 5 {
		t.Errorf("VerseEnd = %v, want 5", ref.VerseEnd)
	}
	if !ref.IsRange() {
		t.Error("IsRange() = false, want true")
	}
}

func TestParseCrossChapterRange(t *testing.T) {
	ref, err := Parse("Genesis 1:1-2:5")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ref.ChapterEnd == nil || *ref.ChapterEnd != 2 {
		t.Errorf("ChapterEnd = %v, want 2", ref.ChapterEnd)
	}
	if ref.VerseEnd == nil || *ref.VerseEnd != 5 {
		t.Errorf("VerseEnd = %v, want 5", ref.VerseEnd)
	}
}

func TestParseBookOnly(t *testing.T) {
	ref, err := Parse("Revelation")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ref.Book != "Revelation" {
		t.Errorf("Book = %q, want Revelation", ref.Book)
	}
	if ref.ChapterStart != nil {
		t.Errorf("ChapterStart = %v, want nil", *ref.ChapterStart)
	}
	if ref.String() != "Revelation" {
		t.Errorf("String() = %q", ref.String())
	}
}

func TestParseStringRoundTrip(t *testing.T) {
	tests := []string{
		"Genesis 1:1",
		"Genesis 1:1-5",
		"Genesis 1:1-2:5",
		"Genesis 1",
	}
	for _, want := range tests {
		t.Run(want, func(t *testing.T) {
			ref, err := Parse(want)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := ref.String(); got != want {
				t.Errorf("String() = %q, want %q", got, want)
			}
		})
	}
}

func TestParseEmptyFails(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Error("Parse(\"\") succeeded, want error")
	}
}

func TestCanonicalBookName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"gen", "Genesis"},
		{"Gen.", "Genesis"},
		{"1john", "1 John"},
		{"1 Jn", "1 John"},
		{"song of songs", "Song of Solomon"},
		{"Bel and the Dragon", "Bel and the Dragon"}, // unknown passes through
	}
	for _, tt := range tests {
		if got := CanonicalBookName(tt.in); got != tt.want {
			t.Errorf("CanonicalBookName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
