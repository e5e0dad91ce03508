package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/Lectern/core/cache"
	"github.com/FocuswithJustin/Lectern/core/errors"
)

// IndexFile is the name of the content index within a corpus directory.
const IndexFile = "index.json"

// Fetcher retrieves raw content. Implementations must be safe for
// concurrent use; the loader fans out book fetches during search.
type Fetcher interface {
	// Index retrieves the lightweight content index.
	Index(ctx context.Context) ([]IndexEntry, error)

	// Book retrieves one book's raw payload by its index entry.
	Book(ctx context.Context, entry IndexEntry) (*RawBook, error)
}

// DirFetcher reads a corpus from a filesystem directory. Payloads may be
// stored plain or xz-compressed (fileReference plus ".xz"); decompressed
// bytes are kept in an LRU cache keyed by file reference.
type DirFetcher struct {
	root     string
	payloads *cache.PayloadCache
}

// NewDirFetcher creates a fetcher rooted at dir.
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{
		root:     dir,
		payloads: cache.NewDefaultPayloadCache(),
	}
}

// Index implements Fetcher.
func (f *DirFetcher) Index(ctx context.Context) ([]IndexEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := f.readRef(IndexFile)
	if err != nil {
		return nil, err
	}
	return DecodeIndex(data)
}

// Book implements Fetcher.
func (f *DirFetcher) Book(ctx context.Context, entry IndexEntry) (*RawBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if data, ok := f.payloads.Get(entry.FileReference); ok {
		return DecodeBook(data)
	}

	data, err := f.readRef(entry.FileReference)
	if err != nil {
		return nil, err
	}

	book, err := DecodeBook(data)
	if err != nil {
		return nil, err
	}
	f.payloads.Put(entry.FileReference, data)
	return book, nil
}

// CacheStats exposes payload cache statistics.
func (f *DirFetcher) CacheStats() cache.Stats {
	return f.payloads.Stats()
}

// readRef resolves a file reference under the root and returns its bytes,
// transparently decompressing xz payloads.
func (f *DirFetcher) readRef(ref string) ([]byte, error) {
	path := filepath.Join(f.root, filepath.FromSlash(ref))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if alt := path + ".xz"; fileExists(alt) {
			path = alt
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}

	if strings.HasSuffix(path, ".xz") {
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &errors.ParseError{Format: "xz", Path: path, Message: err.Error(), Err: err}
		}
		decompressed, err := io.ReadAll(xzr)
		if err != nil {
			return nil, &errors.ParseError{Format: "xz", Path: path, Message: err.Error(), Err: err}
		}
		return decompressed, nil
	}
	return data, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
