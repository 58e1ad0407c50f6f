package ztext

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/ulikunitz/xz"
)

// fixtureVerse places text at a global index.
type fixtureVerse struct {
	index int
	text  string
}

// compressBlock compresses data with codec. bzip2 has no writer in the
// standard library; bzip2 fixtures come from testdata.
func compressBlock(t *testing.T, codec Codec, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	switch codec {
	case CodecZip:
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			t.Fatalf("zlib write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("zlib close: %v", err)
		}
	case CodecXZ:
		w, err := xz.NewWriter(&buf)
		if err != nil {
			t.Fatalf("xz writer: %v", err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("xz write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("xz close: %v", err)
		}
	default:
		t.Fatalf("no fixture writer for codec %q", codec)
	}
	return buf.Bytes()
}

// writeTriad writes raw .bzz data plus the .bzs and .bzv records for one
// testament. Slots without a location get zero records.
func writeTriad(t *testing.T, dir, code string, bzz []byte, spans []BufferSpan, locs map[int]VerseLocation) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create module dir: %v", err)
	}

	var bzs bytes.Buffer
	for _, s := range spans {
		binary.Write(&bzs, binary.LittleEndian, s.Offset)
		binary.Write(&bzs, binary.LittleEndian, s.CompressedSize)
		binary.Write(&bzs, binary.LittleEndian, s.UncompressedSize)
	}

	slots := 0
	for idx := range locs {
		if idx+1 > slots {
			slots = idx + 1
		}
	}
	bzv := make([]byte, slots*VerseRecordSize)
	for idx, loc := range locs {
		rec := bzv[idx*VerseRecordSize:]
		binary.LittleEndian.PutUint32(rec[0:4], loc.BufferID)
		binary.LittleEndian.PutUint32(rec[4:8], loc.Start)
		binary.LittleEndian.PutUint16(rec[8:10], loc.Length)
	}

	base := filepath.Join(dir, code)
	for ext, data := range map[string][]byte{".bzz": bzz, ".bzs": bzs.Bytes(), ".bzv": bzv} {
		if err := os.WriteFile(base+ext, data, 0o644); err != nil {
			t.Fatalf("failed to write %s%s: %v", code, ext, err)
		}
	}
}

// writeTestament compresses each block with codec and writes the triad.
// Verses inside a block are laid out back to back in the given order.
func writeTestament(t *testing.T, dir, code string, codec Codec, blocks [][]fixtureVerse) {
	t.Helper()

	var bzz []byte
	var spans []BufferSpan
	locs := make(map[int]VerseLocation)
	for id, verses := range blocks {
		var plain []byte
		for _, v := range verses {
			locs[v.index] = VerseLocation{
				BufferID: uint32(id),
				Start:    uint32(len(plain)),
				Length:   uint16(len(v.text)),
			}
			plain = append(plain, v.text...)
		}
		compressed := compressBlock(t, codec, plain)
		spans = append(spans, BufferSpan{
			Offset:           uint32(len(bzz)),
			CompressedSize:   uint32(len(compressed)),
			UncompressedSize: uint32(len(plain)),
		})
		bzz = append(bzz, compressed...)
	}
	writeTriad(t, dir, code, bzz, spans, locs)
}

// genesisBlocks is a two-block Old Testament fixture.
var genesisBlocks = [][]fixtureVerse{
	{
		{3, "<chapter 1>"},
		{4, "In the beginning"},
		{5, " God created the heaven and the earth."},
	},
	{
		{6, "And the earth was without form, and void."},
	},
}

// matthewBlocks is a one-block New Testament fixture.
var matthewBlocks = [][]fixtureVerse{
	{
		{4, "The book of the generation of Jesus Christ."},
	},
}

// createModule writes a module named "KJV" under a temp root and returns the
// root. An empty block list leaves that testament out.
func createModule(t *testing.T, codec Codec, ot, nt [][]fixtureVerse) string {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "KJV")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create module dir: %v", err)
	}
	if len(ot) > 0 {
		writeTestament(t, dir, "ot", codec, ot)
	}
	if len(nt) > 0 {
		writeTestament(t, dir, "nt", codec, nt)
	}
	return root
}

// openModule opens the "KJV" fixture module and closes it with the test.
func openModule(t *testing.T, root string, opts Options) *Module {
	t.Helper()

	m, err := Open(root, "KJV", opts)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}
