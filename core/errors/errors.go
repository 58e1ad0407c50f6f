// Package errors provides the error kinds reported by verse lookup.
//
// Every failure carries a Kind so that callers can tell a bad reference
// apart from a bad corpus without matching on message text.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a lookup failure.
type Kind int

const (
	// KindUnknown is used for errors that did not originate in lookup.
	KindUnknown Kind = iota
	// KindUnknownBook means no book matches the supplied name or alias.
	KindUnknownBook
	// KindChapterOutOfRange means the chapter is outside the book's chapter count.
	KindChapterOutOfRange
	// KindVerseOutOfRange means the verse number is negative or the index
	// does not address a verse slot.
	KindVerseOutOfRange
	// KindInvalidReference means a reference string could not be parsed.
	KindInvalidReference
	// KindCorpusIO means a corpus file is missing, truncated, or a record is
	// beyond the end of its file.
	KindCorpusIO
	// KindCorruptBlock means a compressed block was short or failed to inflate.
	KindCorruptBlock
	// KindRange means a verse slice exceeds the decompressed block bounds.
	KindRange
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindUnknownBook:       "unknown book",
	KindChapterOutOfRange: "chapter out of range",
	KindVerseOutOfRange:   "verse out of range",
	KindInvalidReference:  "invalid reference",
	KindCorpusIO:          "corpus I/O error",
	KindCorruptBlock:      "corrupt block",
	KindRange:             "range error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinel errors, one per Kind. A *LookupError matches its sentinel with errors.Is.
var (
	ErrUnknownBook       = errors.New("unknown book")
	ErrChapterOutOfRange = errors.New("chapter out of range")
	ErrVerseOutOfRange   = errors.New("verse out of range")
	ErrInvalidReference  = errors.New("invalid reference")
	ErrCorpusIO          = errors.New("corpus I/O error")
	ErrCorruptBlock      = errors.New("corrupt block")
	ErrRange             = errors.New("range error")
)

var sentinels = map[Kind]error{
	KindUnknownBook:       ErrUnknownBook,
	KindChapterOutOfRange: ErrChapterOutOfRange,
	KindVerseOutOfRange:   ErrVerseOutOfRange,
	KindInvalidReference:  ErrInvalidReference,
	KindCorpusIO:          ErrCorpusIO,
	KindCorruptBlock:      ErrCorruptBlock,
	KindRange:             ErrRange,
}

// Sentinel returns the sentinel error for a kind, or nil for KindUnknown.
func (k Kind) Sentinel() error {
	return sentinels[k]
}

// Stage names the pipeline step that failed.
type Stage string

// Pipeline stages, in lookup order.
const (
	StageParse      Stage = "parse"
	StageResolve    Stage = "resolve"
	StageVerseIndex Stage = "verse-index"
	StageBuffer     Stage = "buffer-locate"
	StageDecompress Stage = "decompress"
	StageExtract    Stage = "extract"
	StageOpen       Stage = "open"
)

// LookupError is a classified failure from one pipeline stage.
type LookupError struct {
	Kind   Kind   // Classification
	Stage  Stage  // Stage that failed
	Detail string // Human-readable context (e.g., "ot.bzv record 42")
	Err    error  // Underlying error, if any
}

func (e *LookupError) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *LookupError) Unwrap() []error {
	var errs []error
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New creates a LookupError without an underlying cause.
func New(kind Kind, stage Stage, format string, args ...interface{}) *LookupError {
	return &LookupError{
		Kind:   kind,
		Stage:  stage,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a LookupError around err. If err is nil, returns nil.
func Wrap(err error, kind Kind, stage Stage, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &LookupError{
		Kind:   kind,
		Stage:  stage,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

// NewUnknownBook creates an UnknownBook error.
func NewUnknownBook(name string) *LookupError {
	return New(KindUnknownBook, StageResolve, "%q", name)
}

// NewChapterOutOfRange creates a ChapterOutOfRange error.
func NewChapterOutOfRange(book string, chapter, numChapters int) *LookupError {
	return New(KindChapterOutOfRange, StageResolve, "%s has %d chapters, got %d", book, numChapters, chapter)
}

// KindOf returns the Kind of the first LookupError in err's chain.
func KindOf(err error) Kind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}

// StageOf returns the Stage of the first LookupError in err's chain.
func StageOf(err error) Stage {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Stage
	}
	return ""
}

// IsReferenceError reports whether err was caused by the caller's reference.
func IsReferenceError(err error) bool {
	switch KindOf(err) {
	case KindUnknownBook, KindChapterOutOfRange, KindVerseOutOfRange, KindInvalidReference:
		return true
	}
	return false
}

// IsCorpusError reports whether err was caused by a missing or damaged corpus.
func IsCorpusError(err error) bool {
	switch KindOf(err) {
	case KindCorpusIO, KindCorruptBlock, KindRange:
		return true
	}
	return false
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
