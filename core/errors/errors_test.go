package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestLookupError(t *testing.T) {
	tests := []struct {
		name     string
		err      *LookupError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "unknown book",
			err:      NewUnknownBook("Nonexistent"),
			wantMsg:  `unknown book: "Nonexistent"`,
			wantBase: ErrUnknownBook,
		},
		{
			name:     "chapter out of range",
			err:      NewChapterOutOfRange("Obadiah", 2, 1),
			wantMsg:  "chapter out of range: Obadiah has 1 chapters, got 2",
			wantBase: ErrChapterOutOfRange,
		},
		{
			name:     "range without detail",
			err:      &LookupError{Kind: KindRange, Stage: StageExtract},
			wantMsg:  "range error",
			wantBase: ErrRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, tt.wantBase) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.wantBase)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, KindCorpusIO, StageVerseIndex, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	err := Wrap(io.ErrUnexpectedEOF, KindCorpusIO, StageVerseIndex, "ot.bzv record %d", 7)
	if !errors.Is(err, ErrCorpusIO) {
		t.Error("wrapped error should match ErrCorpusIO")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("wrapped error should match its cause")
	}
	if got, want := err.Error(), "corpus I/O error: ot.bzv record 7: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	// Stage context added with fmt.Errorf must keep the kind reachable.
	outer := fmt.Errorf("lookup Gen 1:1: %w", err)
	if KindOf(outer) != KindCorpusIO {
		t.Errorf("KindOf(outer) = %v, want %v", KindOf(outer), KindCorpusIO)
	}
	if StageOf(outer) != StageVerseIndex {
		t.Errorf("StageOf(outer) = %q, want %q", StageOf(outer), StageVerseIndex)
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		kind      Kind
		reference bool
		corpus    bool
	}{
		{KindUnknownBook, true, false},
		{KindChapterOutOfRange, true, false},
		{KindVerseOutOfRange, true, false},
		{KindInvalidReference, true, false},
		{KindCorpusIO, false, true},
		{KindCorruptBlock, false, true},
		{KindRange, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := New(tt.kind, StageResolve, "test")
			if got := IsReferenceError(err); got != tt.reference {
				t.Errorf("IsReferenceError = %v, want %v", got, tt.reference)
			}
			if got := IsCorpusError(err); got != tt.corpus {
				t.Errorf("IsCorpusError = %v, want %v", got, tt.corpus)
			}
			if tt.kind.Sentinel() == nil {
				t.Error("every lookup kind needs a sentinel")
			}
		})
	}

	plain := errors.New("plain")
	if KindOf(plain) != KindUnknown {
		t.Error("plain error should be KindUnknown")
	}
	if IsReferenceError(plain) || IsCorpusError(plain) {
		t.Error("plain error should not be classified")
	}
}

func TestKindString(t *testing.T) {
	if got := Kind(99).String(); got != "kind(99)" {
		t.Errorf("String() = %q, want %q", got, "kind(99)")
	}
}
