package document

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/Lectern/core/text"
)

// Content digests skip cross-reference target IDs, which are random per
// load. Two loads of the same payload therefore produce equal digests, which
// is what the idempotent-load check compares.

// VerseDigest computes a BLAKE3 digest of a verse's content.
func VerseDigest(v *Verse) string {
	h := blake3.New()
	writeInt(h, v.Number)
	writeString(h, v.PlainText)
	for _, r := range v.Runs {
		writeString(h, string(r.Kind))
		writeString(h, r.Text)
		writeString(h, r.NoteID)
		// TargetID intentionally excluded.
	}
	for _, id := range v.FootnoteIDs {
		writeString(h, id)
	}
	for _, id := range v.LiturgyIDs {
		writeString(h, id)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ChapterDigest computes a BLAKE3 digest of a chapter's content.
func ChapterDigest(c *Chapter) string {
	h := blake3.New()
	writeInt(h, c.Number)
	writeInt(h, c.VerseCount)
	for _, hdr := range c.Headers {
		writeString(h, hdr)
	}
	for i := range c.Verses {
		writeString(h, VerseDigest(&c.Verses[i]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ChaptersDigest computes a BLAKE3 digest over a book's chapter list.
func ChaptersDigest(chapters []Chapter) string {
	h := blake3.New()
	for i := range chapters {
		writeString(h, ChapterDigest(&chapters[i]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NoteDigest computes a BLAKE3 digest of a note body.
func NoteDigest(n *text.Note) string {
	h := blake3.New()
	writeString(h, n.PlainText)
	for _, r := range n.Runs {
		writeString(h, string(r.Kind))
		writeString(h, r.Text)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeString(h *blake3.Hasher, s string) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	h.Write(buf[:])
	h.Write([]byte(s))
}

func writeInt(h *blake3.Hasher, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	h.Write(buf[:])
}
