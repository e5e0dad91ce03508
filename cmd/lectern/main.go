// Command lectern is the CLI for the Lectern Bible content library.
// It provides commands for inspecting a corpus, searching verses, resolving
// references, managing annotations, importing OSIS sources, and serving the
// read-model API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/Lectern/core/annotations"
	"github.com/FocuswithJustin/Lectern/core/library"
	"github.com/FocuswithJustin/Lectern/core/refs"
	"github.com/FocuswithJustin/Lectern/core/source"
	"github.com/FocuswithJustin/Lectern/core/source/osis"
	"github.com/FocuswithJustin/Lectern/core/text"
	"github.com/FocuswithJustin/Lectern/internal/logging"
	"github.com/FocuswithJustin/Lectern/internal/server"
)

const version = "0.1.0"

// CLI defines the command-line interface for lectern.
var CLI struct {
	// Global flags
	DataDir   string `name:"data-dir" short:"d" default:"." help:"Corpus directory (holds index.json and book payloads)" type:"path"`
	DB        string `name:"db" help:"Annotation database path" type:"path"`
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log output format"`

	// Command groups (noun-first organization)
	Library     LibraryGroup     `cmd:"" help:"Library operations (list, show, load)"`
	Search      SearchCmd        `cmd:"" help:"Search all verses for a text fragment"`
	Refs        RefsGroup        `cmd:"" help:"Scripture reference parsing and resolution"`
	Annotations AnnotationsGroup `cmd:"" help:"Bookmarks, highlights, and notes"`
	Import      ImportCmd        `cmd:"" help:"Import an OSIS XML file into a corpus directory"`
	Serve       ServeCmd         `cmd:"" help:"Start the read-model API server"`
	Version     VersionCmd       `cmd:"" help:"Print version information"`
}

// LibraryGroup contains corpus inspection operations.
type LibraryGroup struct {
	List ListCmd `cmd:"" help:"List books in the corpus"`
	Show ShowCmd `cmd:"" help:"Show one chapter's text"`
	Load LoadCmd `cmd:"" help:"Load a book and report its shape"`
}

// RefsGroup contains reference operations.
type RefsGroup struct {
	Parse   ParseCmd   `cmd:"" help:"Parse a human-readable scripture reference"`
	Resolve ResolveCmd `cmd:"" help:"Resolve a reference against the corpus"`
}

// AnnotationsGroup contains annotation operations.
type AnnotationsGroup struct {
	Add    AnnAddCmd    `cmd:"" help:"Add a bookmark, highlight, or note"`
	List   AnnListCmd   `cmd:"" help:"List annotations"`
	Remove AnnRemoveCmd `cmd:"" help:"Remove an annotation by ID"`
}

// openLibrary loads the document shell from the data directory.
func openLibrary(ctx context.Context) (*library.Library, error) {
	lib := library.New(source.NewDirFetcher(CLI.DataDir))
	if _, err := lib.LoadDocument(ctx); err != nil {
		return nil, fmt.Errorf("loading corpus from %s: %w", CLI.DataDir, err)
	}
	return lib, nil
}

// openStore opens the annotation database, defaulting to lectern.db inside
// the data directory.
func openStore() (*annotations.Store, error) {
	path := CLI.DB
	if path == "" {
		path = filepath.Join(CLI.DataDir, "lectern.db")
	}
	return annotations.Open(path)
}

// ListCmd lists books in the corpus.
type ListCmd struct{}

func (c *ListCmd) Run() error {
	lib, err := openLibrary(context.Background())
	if err != nil {
		return err
	}

	doc := lib.Document()
	fmt.Printf("Books: %d\n", len(doc.Books))
	for i := range doc.Books {
		b := &doc.Books[i]
		fmt.Printf("  %2d. %-20s %-16s %3d chapters\n", i, b.EnglishName, b.LocalName, b.ChapterCount)
	}
	return nil
}

// ShowCmd prints one chapter's text.
type ShowCmd struct {
	Book    int `arg:"" help:"Book index (0-based)"`
	Chapter int `arg:"" help:"Chapter number (1-based)"`
}

func (c *ShowCmd) Run() error {
	ctx := context.Background()
	lib, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	book, err := lib.LoadBook(ctx, c.Book)
	if err != nil {
		return err
	}
	chapter, err := lib.Chapter(c.Book, c.Chapter-1)
	if err != nil {
		return err
	}

	fmt.Printf("%s %d\n\n", book.EnglishName, chapter.Number)
	for _, h := range chapter.Headers {
		fmt.Printf("== %s ==\n", h)
	}
	for _, v := range chapter.Verses {
		fmt.Printf("%d. %s\n", v.Number, v.PlainText)
	}
	return nil
}

// LoadCmd loads a book and reports its shape.
type LoadCmd struct {
	Book int `arg:"" help:"Book index (0-based)"`
}

func (c *LoadCmd) Run() error {
	ctx := context.Background()
	lib, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	book, err := lib.LoadBook(ctx, c.Book)
	if err != nil {
		return err
	}

	verses := 0
	for i := range book.Chapters {
		verses += len(book.Chapters[i].Verses)
	}
	fmt.Printf("Loaded: %s (%s)\n", book.EnglishName, book.LocalName)
	fmt.Printf("  Chapters: %d\n", len(book.Chapters))
	fmt.Printf("  Verses:   %d\n", verses)
	fmt.Printf("  Metadata: %d sections, %d lessons\n", len(book.Metadata), len(book.Lessons))
	return nil
}

// SearchCmd searches all verses for a text fragment.
type SearchCmd struct {
	Query string `arg:"" help:"Text to search for (case-insensitive)"`
	Limit int    `default:"25" help:"Maximum results to print (0 for all)"`
}

func (c *SearchCmd) Run() error {
	ctx := context.Background()
	lib, err := openLibrary(ctx)
	if err != nil {
		return err
	}

	results, err := lib.Search(ctx, c.Query)
	if err != nil {
		return err
	}

	fmt.Printf("Hits: %d\n", len(results))
	for i, r := range results {
		if c.Limit > 0 && i >= c.Limit {
			fmt.Printf("  ... and %d more\n", len(results)-c.Limit)
			break
		}
		fmt.Printf("  %s %d:%d  %s\n", r.BookName, r.ChapterNum, r.VerseNum, r.Text)
	}
	return nil
}

// ParseCmd parses a scripture reference.
type ParseCmd struct {
	Reference string `arg:"" help:"Reference text, e.g. 'Gen 1:1' or 'John 3:16-18'"`
}

func (c *ParseCmd) Run() error {
	parsed, err := refs.Parse(c.Reference)
	if err != nil {
		return err
	}

	fmt.Printf("Input:      %s\n", c.Reference)
	fmt.Printf("Normalized: %s\n", parsed.String())
	fmt.Printf("Book:       %s\n", parsed.Book)
	if parsed.IsRange() {
		fmt.Println("Range:      yes")
	}
	return nil
}

// ResolveCmd resolves a reference to a corpus coordinate.
type ResolveCmd struct {
	Reference string `arg:"" help:"Reference text to resolve"`
}

func (c *ResolveCmd) Run() error {
	ctx := context.Background()
	lib, err := openLibrary(ctx)
	if err != nil {
		return err
	}

	parsed, err := refs.Parse(c.Reference)
	if err != nil {
		return err
	}

	bookAbbrev, chapter, verse, verseEnd := parsed.Target()
	target := text.CrossRefTarget{
		BookAbbrev: bookAbbrev,
		Chapter:    chapter,
		Verse:      verse,
		VerseEnd:   verseEnd,
	}
	index, ok := refs.Resolve(target, lib.BookMetas())
	if !ok {
		return fmt.Errorf("no book matches %q", c.Reference)
	}
	coord, ok := refs.NavigationFor(target, index)
	if !ok {
		fmt.Printf("Book index: %d (no chapter/verse coordinate)\n", index)
		return nil
	}

	book, err := lib.Book(index)
	if err != nil {
		return err
	}
	fmt.Printf("Book:    %s (index %d)\n", book.EnglishName, coord.BookIndex)
	fmt.Printf("Chapter: %d (index %d)\n", coord.ChapterIndex+1, coord.ChapterIndex)
	fmt.Printf("Verse:   %d\n", coord.VerseNumber)
	return nil
}

// AnnAddCmd adds an annotation.
type AnnAddCmd struct {
	Kind    string `arg:"" enum:"bookmark,highlight,note" help:"Annotation kind"`
	Book    int    `required:"" help:"Book index (0-based)"`
	Chapter int    `required:"" help:"Chapter index (0-based)"`
	Verse   int    `required:"" help:"Verse number (1-based)"`
	Color   string `help:"Highlight color"`
	Body    string `help:"Note body text"`
}

func (c *AnnAddCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := store.Add(context.Background(), annotations.Annotation{
		Kind:         annotations.Kind(c.Kind),
		BookIndex:    c.Book,
		ChapterIndex: c.Chapter,
		VerseNumber:  c.Verse,
		Color:        c.Color,
		Body:         c.Body,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added %s %s\n", a.Kind, a.ID)
	return nil
}

// AnnListCmd lists annotations.
type AnnListCmd struct {
	Kind string `help:"Filter by kind (bookmark, highlight, note)"`
	Book int    `default:"-1" help:"Filter by book index (-1 for all)"`
}

func (c *AnnListCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.List(context.Background(), annotations.Filter{
		Kind:      annotations.Kind(c.Kind),
		BookIndex: c.Book,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Annotations: %d\n", len(list))
	for _, a := range list {
		line := fmt.Sprintf("  %s  %-9s book %d ch %d v %d", a.ID, a.Kind, a.BookIndex, a.ChapterIndex, a.VerseNumber)
		if a.Color != "" {
			line += "  [" + a.Color + "]"
		}
		if a.Body != "" {
			line += "  " + a.Body
		}
		fmt.Println(line)
	}
	return nil
}

// AnnRemoveCmd removes an annotation.
type AnnRemoveCmd struct {
	ID string `arg:"" help:"Annotation ID"`
}

func (c *AnnRemoveCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Remove(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", c.ID)
	return nil
}

// ImportCmd converts an OSIS XML file into a corpus directory.
type ImportCmd struct {
	Path string `arg:"" help:"OSIS XML file" type:"existingfile"`
	Out  string `required:"" help:"Output corpus directory" type:"path"`
}

func (c *ImportCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}

	work, err := osis.Import(data)
	if err != nil {
		return err
	}

	entries := work.Index()
	if err := os.MkdirAll(filepath.Join(c.Out, "books"), 0o755); err != nil {
		return err
	}
	for i, book := range work.Books {
		payload, err := json.MarshalIndent(book, "", "  ")
		if err != nil {
			return err
		}
		path := filepath.Join(c.Out, filepath.FromSlash(entries[i].FileReference))
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return err
		}
	}

	indexData, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.Out, source.IndexFile), indexData, 0o644); err != nil {
		return err
	}

	fmt.Printf("Imported: %s\n", work.Title)
	fmt.Printf("  Books:  %d\n", len(work.Books))
	fmt.Printf("  Corpus: %s\n", c.Out)
	return nil
}

// ServeCmd starts the read-model API server.
type ServeCmd struct {
	Port    int      `default:"8777" help:"Listen port"`
	Origins []string `help:"Allowed CORS origins (use * for any)"`
}

func (c *ServeCmd) Run() error {
	ctx := context.Background()
	lib, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(lib, store, version)
	return srv.ListenAndServe(server.Config{
		Port:           c.Port,
		AllowedOrigins: c.Origins,
	})
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("lectern %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("lectern"),
		kong.Description("Lectern - Bible content library and reader backend"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	var format logging.Format
	if strings.EqualFold(CLI.LogFormat, "json") {
		format = logging.FormatJSON
	} else {
		format = logging.FormatText
	}
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), format)

	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
