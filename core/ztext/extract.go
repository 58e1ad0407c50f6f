package ztext

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"

	lookuperr "github.com/FocuswithJustin/swordverse/core/errors"
)

// Extract returns the verse bytes of loc within an inflated block. The result
// aliases block. A range outside the block is a Range error; it is never
// truncated.
func Extract(block []byte, loc VerseLocation) ([]byte, error) {
	start := uint64(loc.Start)
	end := start + uint64(loc.Length)
	if end > uint64(len(block)) {
		return nil, lookuperr.New(lookuperr.KindRange, lookuperr.StageExtract,
			"%s exceeds block of %d bytes", loc, len(block))
	}
	return block[start:end], nil
}

// Encoding is the text encoding of a module's verse bytes.
type Encoding string

// Supported encodings.
const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "latin-1"
)

// ParseEncoding parses an encoding name as written in SWORD .conf files.
// The empty string selects EncodingUTF8.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "latin-1", "latin1", "iso-8859-1":
		return EncodingLatin1, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q (want utf-8 or latin-1)", s)
	}
}

// Decode converts verse bytes to a string. UTF-8 bytes are passed through
// unchanged.
func (e Encoding) Decode(b []byte) (string, error) {
	if e != EncodingLatin1 {
		return string(b), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
