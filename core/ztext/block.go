package ztext

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/swordverse/core/canon"
	lookuperr "github.com/FocuswithJustin/swordverse/core/errors"
)

// MaxBlockSize bounds the inflated size of a single block.
const MaxBlockSize = 64 << 20

// Codec names the block compression of a module (the CompressType of its
// .conf file).
type Codec string

// Supported codecs.
const (
	CodecZip   Codec = "zip"
	CodecXZ    Codec = "xz"
	CodecBzip2 Codec = "bzip2"
)

// ParseCodec parses a codec name case-insensitively. The empty string
// selects CodecZip.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zip", "zlib":
		return CodecZip, nil
	case "xz":
		return CodecXZ, nil
	case "bzip2", "bz2":
		return CodecBzip2, nil
	default:
		return "", fmt.Errorf("unsupported codec %q (want zip, xz or bzip2)", s)
	}
}

// newReader returns a decompressing reader for one block.
func (c Codec) newReader(r io.Reader) (io.Reader, func() error, error) {
	switch c {
	case CodecZip:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case CodecXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xr, nil, nil
	case CodecBzip2:
		return bzip2.NewReader(r), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported codec %q", string(c))
	}
}

// inflate decompresses one block. The output is capped at MaxBlockSize.
func (c Codec) inflate(compressed []byte, sizeHint uint32) ([]byte, error) {
	r, closeFn, err := c.newReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%s init failed: %w", c, err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	var buf bytes.Buffer
	if sizeHint > 0 && sizeHint <= MaxBlockSize {
		buf.Grow(int(sizeHint))
	}
	if _, err := buf.ReadFrom(io.LimitReader(r, MaxBlockSize+1)); err != nil {
		return nil, fmt.Errorf("%s decompression failed: %w", c, err)
	}
	if buf.Len() > MaxBlockSize {
		return nil, fmt.Errorf("inflated block exceeds %d bytes", MaxBlockSize)
	}
	return buf.Bytes(), nil
}

// Decompress reads the compressed block described by span from the data file
// and inflates it with the module codec.
func (m *Module) Decompress(t canon.Testament, span BufferSpan) ([]byte, error) {
	tf, err := m.testament(t, lookuperr.StageDecompress)
	if err != nil {
		return nil, err
	}

	compressed := make([]byte, span.CompressedSize)
	if err := readRecord(tf.bzz, compressed, int64(span.Offset)); err != nil {
		return nil, lookuperr.Wrap(err, lookuperr.KindCorruptBlock, lookuperr.StageDecompress,
			"%s.bzz block at %d", t.Code(), span.Offset)
	}

	block, err := m.codec.inflate(compressed, span.UncompressedSize)
	if err != nil {
		return nil, lookuperr.Wrap(err, lookuperr.KindCorruptBlock, lookuperr.StageDecompress,
			"%s.bzz block at %d", t.Code(), span.Offset)
	}
	m.logger.Debug("inflated block",
		"module", m.name,
		"testament", t.Code(),
		"offset", span.Offset,
		"compressed", span.CompressedSize,
		"inflated", len(block))
	return block, nil
}
