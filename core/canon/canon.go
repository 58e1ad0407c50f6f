// Package canon holds the book tables that determine the verse index layout of
// SWORD zText modules.
//
// Each testament reserves one index slot for its heading, one per book for the
// book heading and one per chapter for the chapter heading. Verses fill the
// remaining slots in canonical order:
//
//	[0]   unused
//	[1]   testament heading
//	[2]   Genesis heading
//	[3]   Genesis 1 heading
//	[4]   Genesis 1:1
//	...
package canon

import (
	"fmt"
	"strings"
)

// Testament is one of the two top-level partitions of the corpus.
type Testament int

const (
	// OT is the Old Testament.
	OT Testament = iota
	// NT is the New Testament.
	NT
)

// Testaments lists both testaments in canonical order.
var Testaments = []Testament{OT, NT}

// Code returns the lower-case file code ("ot" or "nt").
func (t Testament) Code() string {
	switch t {
	case OT:
		return "ot"
	case NT:
		return "nt"
	}
	return fmt.Sprintf("testament(%d)", int(t))
}

func (t Testament) String() string {
	return strings.ToUpper(t.Code())
}

// ParseTestament parses "ot" or "nt" in any case.
func ParseTestament(s string) (Testament, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ot":
		return OT, nil
	case "nt":
		return NT, nil
	}
	return 0, fmt.Errorf("unknown testament %q (want ot or nt)", s)
}

// BookSpec is the raw description of a book before offsets are computed.
type BookSpec struct {
	Name     string `yaml:"name"`
	OSIS     string `yaml:"osis"`
	Abbrev   string `yaml:"abbrev"`
	Chapters []int  `yaml:"chapters"` // Verse counts per chapter
}

// Book is an immutable book record annotated with its testament and offsets.
type Book struct {
	name           string
	osis           string
	abbrev         string
	chapters       []int
	testament      Testament
	order          int
	baseOffset     int
	chapterOffsets []int
}

// Name returns the full book name (e.g., "Genesis").
func (b *Book) Name() string { return b.name }

// OSIS returns the OSIS book identifier (e.g., "Gen").
func (b *Book) OSIS() string { return b.osis }

// Abbrev returns the preferred abbreviation.
func (b *Book) Abbrev() string { return b.abbrev }

// Testament returns the testament the book belongs to.
func (b *Book) Testament() Testament { return b.testament }

// Order returns the zero-based position of the book within its testament.
func (b *Book) Order() int { return b.order }

// NumChapters returns the number of chapters.
func (b *Book) NumChapters() int { return len(b.chapters) }

// VerseCount returns the number of verses in a 1-based chapter, or 0 if the
// chapter does not exist.
func (b *Book) VerseCount(chapter int) int {
	if chapter < 1 || chapter > len(b.chapters) {
		return 0
	}
	return b.chapters[chapter-1]
}

// BaseOffset returns the testament index the book's relative offsets are
// added to. The book heading occupies BaseOffset()+1.
func (b *Book) BaseOffset() int { return b.baseOffset }

// ChapterOffset returns the book-relative offset of a 1-based chapter's
// heading slot, or -1 if the chapter does not exist.
func (b *Book) ChapterOffset(chapter int) int {
	if chapter < 1 || chapter > len(b.chapterOffsets) {
		return -1
	}
	return b.chapterOffsets[chapter-1]
}

// lastIndex returns the testament index of the book's final verse.
func (b *Book) lastIndex() int {
	last := len(b.chapters) - 1
	return b.baseOffset + b.chapterOffsets[last] + b.chapters[last]
}

func (b *Book) matches(lower, folded string) bool {
	return lower == strings.ToLower(b.name) ||
		lower == strings.ToLower(b.osis) ||
		lower == strings.ToLower(b.abbrev) ||
		folded == foldName(b.name) ||
		folded == foldName(b.osis)
}

// romanPrefixes are the numbered-book prefixes of SWORD names ("I Samuel").
var romanPrefixes = []struct{ roman, arabic string }{
	{"iii ", "3"},
	{"ii ", "2"},
	{"i ", "1"},
}

// foldName lowercases a book name, turns a leading roman numeral into digits
// and drops spaces, so "I Samuel", "1 Samuel" and "1Samuel" compare equal.
func foldName(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	for _, p := range romanPrefixes {
		if strings.HasPrefix(s, p.roman) {
			s = p.arabic + s[len(p.roman):]
			break
		}
	}
	return strings.ReplaceAll(s, " ", "")
}

func (b *Book) String() string { return b.name }

// Canon is the immutable, ordered set of books for both testaments.
type Canon struct {
	name  string
	books [2][]*Book
	// sizes holds the total number of index slots per testament.
	sizes [2]int
}

// New builds a Canon from the two book tables and computes all offsets.
func New(name string, ot, nt []BookSpec) (*Canon, error) {
	c := &Canon{name: name}
	for _, t := range Testaments {
		specs := ot
		if t == NT {
			specs = nt
		}
		if len(specs) == 0 {
			return nil, fmt.Errorf("canon %s: no books in %s", name, t)
		}
		books, size, err := buildTestament(t, specs)
		if err != nil {
			return nil, fmt.Errorf("canon %s: %w", name, err)
		}
		c.books[t] = books
		c.sizes[t] = size
	}
	return c, nil
}

// buildTestament annotates books with their offsets. The running index starts
// after the testament heading; chapter offsets are relative to the book.
func buildTestament(t Testament, specs []BookSpec) ([]*Book, int, error) {
	books := make([]*Book, 0, len(specs))
	idx := 1
	for i, spec := range specs {
		if strings.TrimSpace(spec.Name) == "" {
			return nil, 0, fmt.Errorf("%s book %d has no name", t, i+1)
		}
		if len(spec.Chapters) == 0 {
			return nil, 0, fmt.Errorf("%s has no chapters", spec.Name)
		}

		b := &Book{
			name:           spec.Name,
			osis:           spec.OSIS,
			abbrev:         spec.Abbrev,
			chapters:       append([]int(nil), spec.Chapters...),
			testament:      t,
			order:          i,
			baseOffset:     idx,
			chapterOffsets: make([]int, len(spec.Chapters)),
		}
		if b.osis == "" {
			b.osis = b.name
		}
		if b.abbrev == "" {
			b.abbrev = b.osis
		}

		offset := 1 // book heading
		for ch, verses := range spec.Chapters {
			if verses <= 0 {
				return nil, 0, fmt.Errorf("%s %d has %d verses", spec.Name, ch+1, verses)
			}
			offset++ // chapter heading
			b.chapterOffsets[ch] = offset
			offset += verses
		}
		idx += offset
		books = append(books, b)
	}
	// idx is now the index of the final verse; slots run 0..idx.
	return books, idx + 1, nil
}

// Name returns the canon's name (e.g., "KJV").
func (c *Canon) Name() string { return c.name }

// Books returns the books of a testament in canonical order.
// The returned slice must not be modified.
func (c *Canon) Books(t Testament) []*Book {
	if t != OT && t != NT {
		return nil
	}
	return c.books[t]
}

// Size returns the number of index slots used by a testament, including
// heading slots and the unused slot 0.
func (c *Canon) Size(t Testament) int {
	if t != OT && t != NT {
		return 0
	}
	return c.sizes[t]
}

// FindBook finds a book by name, OSIS id or abbreviation, ignoring case.
// Spacing and roman or arabic numbering of numbered books are also ignored.
// The first match in canonical order wins.
func (c *Canon) FindBook(name string) (*Book, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return nil, false
	}
	folded := foldName(lower)
	for _, t := range Testaments {
		for _, b := range c.books[t] {
			if b.matches(lower, folded) {
				return b, true
			}
		}
	}
	return nil, false
}
