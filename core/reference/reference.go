// Package reference parses human-written verse references such as
// "Gen 1:1", "1 John 3:16", "Song of Solomon 2:1" or "Gen.1.1".
//
// Parsing only splits the text; the book name is resolved by the canon.
package reference

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	lookuperr "github.com/FocuswithJustin/swordverse/core/errors"
)

// Ref is a parsed single-verse reference.
type Ref struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.Verse)
}

//nolint:govet // participle grammar tags are not standard struct tags
type verseGrammar struct {
	Book    string `parser:"@Book"`
	Chapter int    `parser:"@Number \":\""`
	Verse   int    `parser:"@Number"`
}

// referenceLexer tokenizes verse references.
var referenceLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Book names: optional numeric prefix, one or more words, optional "of",
	// optional trailing period. Examples: Gen, Gen., 1John, 1 John,
	// II Kings, Song of Solomon.
	{Name: "Book", Pattern: `(?:\d\s*)?[A-Za-z]+(?:\s+(?:of\s+)?[A-Za-z]+)*\.?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var referenceParser = participle.MustBuild[verseGrammar](
	participle.Lexer(referenceLexer),
	participle.Elide("Whitespace"),
)

var (
	// "1.1" -> "1:1"
	numberDot = regexp.MustCompile(`(\d)\s*\.\s*(\d)`)
	// "Gen.1" -> "Gen 1"
	bookDot = regexp.MustCompile(`([A-Za-z])\.(\d)`)
)

// normalizeSeparators rewrites OSIS-style dots into "Book C:V" form.
func normalizeSeparators(s string) string {
	s = bookDot.ReplaceAllString(s, "$1 $2")
	return numberDot.ReplaceAllString(s, "$1:$2")
}

// Parse parses a single-verse reference. Chapter and verse are required.
func Parse(s string) (Ref, error) {
	input := strings.TrimSpace(s)
	if input == "" {
		return Ref{}, lookuperr.New(lookuperr.KindInvalidReference, lookuperr.StageParse, "empty reference")
	}

	g, err := referenceParser.ParseString("", normalizeSeparators(input))
	if err != nil {
		return Ref{}, lookuperr.Wrap(err, lookuperr.KindInvalidReference, lookuperr.StageParse, "%q", s)
	}

	book := strings.TrimSuffix(strings.TrimSpace(g.Book), ".")
	return Ref{
		Book:    strings.Join(strings.Fields(book), " "),
		Chapter: g.Chapter,
		Verse:   g.Verse,
	}, nil
}
