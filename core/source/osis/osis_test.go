package osis

import (
	"testing"

	"github.com/FocuswithJustin/Lectern/core/source"
	"github.com/FocuswithJustin/Lectern/core/text"
)

const sampleOSIS = `<?xml version="1.0" encoding="UTF-8"?>
<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace">
  <osisText osisIDWork="KJV" lang="en">
    <header>
      <work osisWork="KJV">
        <title>King James Version</title>
      </work>
    </header>
    <div type="book" osisID="Gen">
      <title>Genesis</title>
      <chapter osisID="Gen.1">
        <title>The Creation</title>
        <verse osisID="Gen.1.1">In the beginning <divineName>God</divineName> created the heaven and the earth.</verse>
        <verse osisID="Gen.1.2">And the earth was without form<note>Or, waste and empty</note>, and void.</verse>
        <title>The First Day</title>
        <verse osisID="Gen.1.3">And God said, <hi type="italic">Let there be light</hi> <reference osisRef="John.1.5">John 1:5</reference>.</verse>
      </chapter>
      <chapter osisID="Gen.2">
        <p>
          <verse osisID="Gen.2.1">Thus the heavens and the earth were finished.</verse>
        </p>
      </chapter>
    </div>
    <div type="book" osisID="Exod">
      <title>Exodus</title>
      <chapter osisID="Exod.1">
        <verse osisID="Exod.1.1">Now these are the names.</verse>
      </chapter>
    </div>
  </osisText>
</osis>`

func importSample(t *testing.T) *Work {
	t.Helper()
	work, err := Import([]byte(sampleOSIS))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	return work
}

func TestImportWorkIdentity(t *testing.T) {
	work := importSample(t)
	if work.ID != "KJV" {
		t.Errorf("ID = %q, want KJV", work.ID)
	}
	if work.Title != "King James Version" {
		t.Errorf("Title = %q", work.Title)
	}
	if work.Language != "en" {
		t.Errorf("Language = %q, want en", work.Language)
	}
	if len(work.Books) != 2 {
		t.Fatalf("len(Books) = %d, want 2", len(work.Books))
	}
}

func TestImportBookStructure(t *testing.T) {
	work := importSample(t)
	gen := work.Books[0]

	if gen.Name != "Gen" || gen.EnglishName != "Genesis" {
		t.Errorf("names = %q / %q", gen.Name, gen.EnglishName)
	}
	if len(gen.ChaptersList) != 2 {
		t.Fatalf("len(ChaptersList) = %d, want 2", len(gen.ChaptersList))
	}

	ch1 := gen.ChaptersList[0]
	if ch1.ChapterNum != 1 {
		t.Errorf("ChapterNum = %d, want 1", ch1.ChapterNum)
	}

	// Headers split the verse stream: header, verses 1-2, header, verse 3.
	wantTypes := []string{
		source.ParagraphSectionHeader,
		source.ParagraphSection,
		source.ParagraphSectionHeader,
		source.ParagraphSection,
	}
	if len(ch1.ParagraphsList) != len(wantTypes) {
		t.Fatalf("len(ParagraphsList) = %d, want %d", len(ch1.ParagraphsList), len(wantTypes))
	}
	for i, want := range wantTypes {
		if got := ch1.ParagraphsList[i].Type; got != want {
			t.Errorf("paragraph[%d].Type = %q, want %q", i, got, want)
		}
	}
	if ch1.ParagraphsList[0].Text != "The Creation" {
		t.Errorf("header text = %q", ch1.ParagraphsList[0].Text)
	}
	if n := len(ch1.ParagraphsList[1].VersesList.SingleVersesList); n != 2 {
		t.Errorf("first section has %d verses, want 2", n)
	}
}

func TestImportVerseRuns(t *testing.T) {
	work := importSample(t)
	ch1 := work.Books[0].ChaptersList[0]

	v1 := ch1.ParagraphsList[1].VersesList.SingleVersesList[0]
	if v1.NumInt != 1 {
		t.Fatalf("NumInt = %d, want 1", v1.NumInt)
	}
	wantStyles := []text.Style{text.StyleNone, text.StyleDivineName, text.StyleNone}
	if len(v1.VerseParts) != len(wantStyles) {
		t.Fatalf("verse parts = %+v", v1.VerseParts)
	}
	for i, want := range wantStyles {
		if v1.VerseParts[i].Style != want {
			t.Errorf("part[%d].Style = %q, want %q", i, v1.VerseParts[i].Style, want)
		}
	}
	if v1.VerseParts[0].Text != "In the beginning " {
		t.Errorf("leading text = %q", v1.VerseParts[0].Text)
	}
	if v1.VerseParts[1].Text != "God" {
		t.Errorf("divine name text = %q", v1.VerseParts[1].Text)
	}
}

func TestImportNotesAndReferences(t *testing.T) {
	work := importSample(t)
	gen := work.Books[0]
	ch1 := gen.ChaptersList[0]

	v2 := ch1.ParagraphsList[1].VersesList.SingleVersesList[1]
	var note *text.RawRun
	for i := range v2.VerseParts {
		if v2.VerseParts[i].Style == text.StyleFootnote {
			note = &v2.VerseParts[i]
		}
	}
	if note == nil {
		t.Fatal("no footnote run in verse 2")
	}
	if note.Text != "Or, waste and empty" {
		t.Errorf("note text = %q", note.Text)
	}

	v3 := ch1.ParagraphsList[3].VersesList.SingleVersesList[0]
	var ref *text.RawRun
	for i := range v3.VerseParts {
		if v3.VerseParts[i].Style == text.StyleCrossRef {
			ref = &v3.VerseParts[i]
		}
	}
	if ref == nil {
		t.Fatal("no cross-ref run in verse 3")
	}
	if ref.Text != "John 1:5" || ref.RefID == "" {
		t.Errorf("cross-ref run = %+v", ref)
	}
	target, ok := gen.CrossRefTargets[ref.RefID]
	if !ok {
		t.Fatalf("ref ID %q missing from cross-ref table", ref.RefID)
	}
	if target.BookAbbrev != "John" || target.Chapter != 1 || target.Verse != 5 {
		t.Errorf("target = %+v", target)
	}
}

func TestImportParagraphWrappedVerses(t *testing.T) {
	work := importSample(t)
	ch2 := work.Books[0].ChaptersList[1]

	if len(ch2.ParagraphsList) != 1 {
		t.Fatalf("len(ParagraphsList) = %d, want 1", len(ch2.ParagraphsList))
	}
	verses := ch2.ParagraphsList[0].VersesList.SingleVersesList
	if len(verses) != 1 || verses[0].NumInt != 1 {
		t.Errorf("verses = %+v", verses)
	}
}

func TestWorkIndex(t *testing.T) {
	work := importSample(t)
	entries := work.Index()

	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Name != "Genesis" || entries[0].Abbreviation != "Gen" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[0].ChapterCount != 2 {
		t.Errorf("ChapterCount = %d, want 2", entries[0].ChapterCount)
	}
	if entries[1].FileReference != "books/exod.json" {
		t.Errorf("FileReference = %q", entries[1].FileReference)
	}
	if err := source.ValidateIndex(entries); err != nil {
		t.Errorf("derived index invalid: %v", err)
	}
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no osisText", `<osis></osis>`},
		{"no books", `<osis><osisText osisIDWork="X"></osisText></osis>`},
		{
			"bad verse id",
			`<osis><osisText osisIDWork="X"><div type="book" osisID="Gen">
				<chapter osisID="Gen.1"><verse osisID="Gen.1.x">text</verse></chapter>
			</div></osisText></osis>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Import([]byte(tt.data)); err == nil {
				t.Error("Import succeeded, want error")
			}
		})
	}
}

func TestRefTargetRange(t *testing.T) {
	target := refTarget("Exod.3.14-Exod.3.15")
	if target.BookAbbrev != "Exod" || target.Chapter != 3 || target.Verse != 14 || target.VerseEnd != 15 {
		t.Errorf("target = %+v", target)
	}
}
