package ztext

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/FocuswithJustin/swordverse/core/canon"
	lookuperr "github.com/FocuswithJustin/swordverse/core/errors"
)

// Index entry sizes for the zText binary files.
const (
	// VerseRecordSize is the size of each .bzv record.
	// Format: buffer_id[4 bytes] + start[4 bytes] + length[2 bytes]
	VerseRecordSize = 10

	// BufferRecordSize is the size of each .bzs record.
	// Format: offset[4 bytes] + compressed_size[4 bytes] + uncompressed_size[4 bytes]
	BufferRecordSize = 12
)

// VerseLocation is a decoded .bzv record.
type VerseLocation struct {
	BufferID uint32 // Block holding the verse
	Start    uint32 // Offset within the inflated block
	Length   uint16 // Verse length in bytes
}

func (l VerseLocation) String() string {
	return fmt.Sprintf("buffer %d [%d+%d]", l.BufferID, l.Start, l.Length)
}

// BufferSpan is a decoded .bzs record.
type BufferSpan struct {
	Offset           uint32 // Offset in the .bzz file
	CompressedSize   uint32 // Bytes to read from .bzz
	UncompressedSize uint32 // Advisory; only used to size the output buffer
}

// ReadLocation reads the verse index record at the given global index.
func (m *Module) ReadLocation(t canon.Testament, index int) (VerseLocation, error) {
	tf, err := m.testament(t, lookuperr.StageVerseIndex)
	if err != nil {
		return VerseLocation{}, err
	}
	if index < 0 {
		return VerseLocation{}, lookuperr.New(lookuperr.KindCorpusIO, lookuperr.StageVerseIndex,
			"%s.bzv: negative index %d", t.Code(), index)
	}

	var rec [VerseRecordSize]byte
	if err := readRecord(tf.bzv, rec[:], int64(index)*VerseRecordSize); err != nil {
		return VerseLocation{}, lookuperr.Wrap(err, lookuperr.KindCorpusIO, lookuperr.StageVerseIndex,
			"%s.bzv record %d", t.Code(), index)
	}
	return VerseLocation{
		BufferID: binary.LittleEndian.Uint32(rec[0:4]),
		Start:    binary.LittleEndian.Uint32(rec[4:8]),
		Length:   binary.LittleEndian.Uint16(rec[8:10]),
	}, nil
}

// LocateBuffer reads the block index record for a buffer id.
func (m *Module) LocateBuffer(t canon.Testament, id uint32) (BufferSpan, error) {
	tf, err := m.testament(t, lookuperr.StageBuffer)
	if err != nil {
		return BufferSpan{}, err
	}

	var rec [BufferRecordSize]byte
	if err := readRecord(tf.bzs, rec[:], int64(id)*BufferRecordSize); err != nil {
		return BufferSpan{}, lookuperr.Wrap(err, lookuperr.KindCorpusIO, lookuperr.StageBuffer,
			"%s.bzs record %d", t.Code(), id)
	}
	return BufferSpan{
		Offset:           binary.LittleEndian.Uint32(rec[0:4]),
		CompressedSize:   binary.LittleEndian.Uint32(rec[4:8]),
		UncompressedSize: binary.LittleEndian.Uint32(rec[8:12]),
	}, nil
}

// readRecord fills rec from r at off. A record that runs past the end of the
// file is an error.
func readRecord(r io.ReaderAt, rec []byte, off int64) error {
	n, err := r.ReadAt(rec, off)
	if n == len(rec) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("short read at offset %d (%d of %d bytes): %w", off, n, len(rec), err)
}
