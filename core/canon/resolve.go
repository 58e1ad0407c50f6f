package canon

import (
	"fmt"
	"sort"

	lookuperr "github.com/FocuswithJustin/swordverse/core/errors"
)

// Ref is a resolved (book, chapter, verse) triple. Verse 0 addresses the
// chapter heading.
type Ref struct {
	Book    *Book
	Chapter int
	Verse   int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s %d:%d", r.Book.Name(), r.Chapter, r.Verse)
}

// Resolve maps a book name, 1-based chapter and verse to a testament and
// global verse index.
//
// The index is BaseOffset + ChapterOffset(chapter) + verse. Adding verse
// (rather than verse-1) is what real zText modules expect: verse 0 is the
// chapter heading slot. The verse is not checked against the chapter's verse
// count; an over-long verse yields the index of a following slot.
func (c *Canon) Resolve(bookName string, chapter, verse int) (Testament, int, error) {
	book, ok := c.FindBook(bookName)
	if !ok {
		return 0, 0, lookuperr.NewUnknownBook(bookName)
	}
	if chapter < 1 || chapter > book.NumChapters() {
		return 0, 0, lookuperr.NewChapterOutOfRange(book.Name(), chapter, book.NumChapters())
	}
	if verse < 0 {
		return 0, 0, lookuperr.New(lookuperr.KindVerseOutOfRange, lookuperr.StageResolve,
			"%s %d:%d", book.Name(), chapter, verse)
	}
	return book.Testament(), book.Index(chapter, verse), nil
}

// Index returns the global index of a chapter and verse without validation.
// Callers must pass a chapter in 1..NumChapters().
func (b *Book) Index(chapter, verse int) int {
	return b.baseOffset + b.chapterOffsets[chapter-1] + verse
}

// IndexToRef maps a global index back to the verse slot it addresses.
// Chapter heading slots map to verse 0. Testament and book heading slots,
// and indexes outside the testament, fail with VerseOutOfRange.
func (c *Canon) IndexToRef(t Testament, index int) (Ref, error) {
	books := c.Books(t)
	if len(books) == 0 || index < 0 || index >= c.Size(t) {
		return Ref{}, lookuperr.New(lookuperr.KindVerseOutOfRange, lookuperr.StageResolve,
			"%s index %d outside 0..%d", t, index, c.Size(t)-1)
	}

	// First book whose final verse is at or after index.
	i := sort.Search(len(books), func(i int) bool {
		return books[i].lastIndex() >= index
	})
	b := books[i]
	rel := index - b.baseOffset
	if rel <= 1 {
		return Ref{}, lookuperr.New(lookuperr.KindVerseOutOfRange, lookuperr.StageResolve,
			"%s index %d is a heading slot", t, index)
	}

	// Last chapter whose heading is at or before rel.
	ch := sort.Search(len(b.chapterOffsets), func(i int) bool {
		return b.chapterOffsets[i] > rel
	})
	return Ref{Book: b, Chapter: ch, Verse: rel - b.chapterOffsets[ch-1]}, nil
}
