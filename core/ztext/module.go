package ztext

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/exp/mmap"

	"github.com/FocuswithJustin/swordverse/core/cache"
	"github.com/FocuswithJustin/swordverse/core/canon"
	lookuperr "github.com/FocuswithJustin/swordverse/core/errors"
	"github.com/FocuswithJustin/swordverse/core/reference"
	"github.com/FocuswithJustin/swordverse/internal/logging"
)

// DefaultCacheBlocks is the block cache size used when Options.CacheBlocks is 0.
const DefaultCacheBlocks = 64

// Options configures Open. Zero values select the defaults.
type Options struct {
	Codec    Codec        // Block codec (default zip)
	Encoding Encoding     // Verse text encoding (default utf-8)
	Canon    *canon.Canon // Versification (default canon.Default())

	// CacheBlocks is the number of inflated blocks kept in memory.
	// 0 selects DefaultCacheBlocks; a negative value disables the cache.
	CacheBlocks int

	Logger *slog.Logger
}

// testamentFiles holds the open triad of one testament.
type testamentFiles struct {
	bzv *mmap.ReaderAt
	bzs *mmap.ReaderAt
	bzz *os.File
}

func (tf *testamentFiles) close() error {
	var errs []error
	if tf.bzv != nil {
		errs = append(errs, tf.bzv.Close())
	}
	if tf.bzs != nil {
		errs = append(errs, tf.bzs.Close())
	}
	if tf.bzz != nil {
		errs = append(errs, tf.bzz.Close())
	}
	return errors.Join(errs...)
}

// Module is an open zText module. It is safe for concurrent lookups; Close
// must not race with them.
type Module struct {
	name     string
	dir      string
	codec    Codec
	encoding Encoding
	canon    *canon.Canon
	cache    *cache.BlockCache // nil when disabled
	logger   *slog.Logger

	files  [2]*testamentFiles // indexed by canon.Testament
	closed atomic.Bool
}

// Open opens the module stored in root/name. A testament is present when its
// .bzv file exists; its .bzs and .bzz must then exist too.
func Open(root, name string, opts Options) (*Module, error) {
	codec, err := ParseCodec(string(opts.Codec))
	if err != nil {
		return nil, lookuperr.Wrap(err, lookuperr.KindCorpusIO, lookuperr.StageOpen, "module %s", name)
	}
	encoding, err := ParseEncoding(string(opts.Encoding))
	if err != nil {
		return nil, lookuperr.Wrap(err, lookuperr.KindCorpusIO, lookuperr.StageOpen, "module %s", name)
	}

	m := &Module{
		name:     name,
		dir:      filepath.Join(root, name),
		codec:    codec,
		encoding: encoding,
		canon:    opts.Canon,
		logger:   opts.Logger,
	}
	if m.canon == nil {
		m.canon = canon.Default()
	}
	if m.logger == nil {
		m.logger = logging.GetLogger()
	}
	switch {
	case opts.CacheBlocks == 0:
		m.cache = cache.NewBlockCache(DefaultCacheBlocks)
	case opts.CacheBlocks > 0:
		m.cache = cache.NewBlockCache(opts.CacheBlocks)
	}

	for _, t := range canon.Testaments {
		tf, err := openTestament(m.dir, t)
		if err != nil {
			m.Close()
			return nil, lookuperr.Wrap(err, lookuperr.KindCorpusIO, lookuperr.StageOpen,
				"module %s %s", name, t)
		}
		m.files[t] = tf
	}
	if m.files[canon.OT] == nil && m.files[canon.NT] == nil {
		return nil, lookuperr.New(lookuperr.KindCorpusIO, lookuperr.StageOpen,
			"module %s: no ot.bzv or nt.bzv in %s", name, m.dir)
	}

	m.logger.Debug("opened module",
		"module", name,
		"dir", m.dir,
		"codec", codec,
		"encoding", encoding,
		"canon", m.canon.Name(),
		"ot", m.files[canon.OT] != nil,
		"nt", m.files[canon.NT] != nil)
	return m, nil
}

// openTestament opens one testament triad. It returns nil, nil when the
// testament is absent.
func openTestament(dir string, t canon.Testament) (*testamentFiles, error) {
	base := filepath.Join(dir, t.Code())
	if _, err := os.Stat(base + ".bzv"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	tf := &testamentFiles{}
	var err error
	if tf.bzv, err = mmap.Open(base + ".bzv"); err != nil {
		return nil, fmt.Errorf("verse index: %w", err)
	}
	if tf.bzs, err = mmap.Open(base + ".bzs"); err != nil {
		tf.close()
		return nil, fmt.Errorf("block index: %w", err)
	}
	if tf.bzz, err = os.Open(base + ".bzz"); err != nil {
		tf.close()
		return nil, fmt.Errorf("block data: %w", err)
	}
	return tf, nil
}

// testament returns the open triad of t or a CorpusIO error for stage.
func (m *Module) testament(t canon.Testament, stage lookuperr.Stage) (*testamentFiles, error) {
	if m.closed.Load() {
		return nil, lookuperr.New(lookuperr.KindCorpusIO, stage, "module %s is closed", m.name)
	}
	if t != canon.OT && t != canon.NT {
		return nil, lookuperr.New(lookuperr.KindCorpusIO, stage, "invalid testament %d", int(t))
	}
	tf := m.files[t]
	if tf == nil {
		return nil, lookuperr.New(lookuperr.KindCorpusIO, stage, "module %s has no %s", m.name, t)
	}
	return tf, nil
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Dir returns the module directory.
func (m *Module) Dir() string { return m.dir }

// Canon returns the versification used to resolve references.
func (m *Module) Canon() *canon.Canon { return m.canon }

// Encoding returns the module text encoding.
func (m *Module) Encoding() Encoding { return m.encoding }

// HasTestament reports whether the module carries t.
func (m *Module) HasTestament(t canon.Testament) bool {
	return (t == canon.OT || t == canon.NT) && m.files[t] != nil
}

// Lookup returns the text of a verse. Book names are matched against the
// module canon; verse 0 returns the chapter heading.
func (m *Module) Lookup(book string, chapter, verse int) (string, error) {
	t, index, err := m.canon.Resolve(book, chapter, verse)
	if err != nil {
		return "", err
	}
	return m.LookupIndex(t, index)
}

// LookupRef parses a reference such as "Gen 1:1" and returns its text.
func (m *Module) LookupRef(ref string) (string, error) {
	r, err := reference.Parse(ref)
	if err != nil {
		return "", err
	}
	return m.Lookup(r.Book, r.Chapter, r.Verse)
}

// LookupIndex returns the decoded text stored at a testament slot.
func (m *Module) LookupIndex(t canon.Testament, index int) (string, error) {
	raw, err := m.ReadVerse(t, index)
	if err != nil {
		return "", err
	}
	text, err := m.encoding.Decode(raw)
	if err != nil {
		return "", lookuperr.Wrap(err, lookuperr.KindCorruptBlock, lookuperr.StageExtract,
			"%s index %d: %s text", t.Code(), index, m.encoding)
	}
	return text, nil
}

// ReadVerse returns the exact bytes stored at a testament slot. An empty slot
// returns an empty slice without touching the data file.
func (m *Module) ReadVerse(t canon.Testament, index int) ([]byte, error) {
	loc, err := m.ReadLocation(t, index)
	if err != nil {
		return nil, err
	}
	if loc.Length == 0 {
		return []byte{}, nil
	}

	block, err := m.block(t, loc.BufferID)
	if err != nil {
		return nil, err
	}
	text, err := Extract(block, loc)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(text), nil
}

// block returns an inflated block, through the cache when enabled.
func (m *Module) block(t canon.Testament, id uint32) ([]byte, error) {
	key := cache.BlockKey{Testament: t, BufferID: id}
	if m.cache != nil {
		if b, ok := m.cache.Get(key); ok {
			m.logger.Debug("block cache hit", "module", m.name, "testament", t.Code(), "buffer", id)
			return b, nil
		}
	}

	span, err := m.LocateBuffer(t, id)
	if err != nil {
		return nil, err
	}
	b, err := m.Decompress(t, span)
	if err != nil {
		return nil, err
	}
	if m.cache != nil {
		m.cache.Put(key, b)
	}
	return b, nil
}

// CacheStats returns block cache statistics. The zero Stats is returned when
// caching is disabled.
func (m *Module) CacheStats() cache.Stats {
	if m.cache == nil {
		return cache.Stats{}
	}
	return m.cache.Stats()
}

// Close releases the module files. It is safe to call more than once.
func (m *Module) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	var errs []error
	for i, tf := range m.files {
		if tf != nil {
			errs = append(errs, tf.close())
			m.files[i] = nil
		}
	}
	if m.cache != nil {
		m.cache.Clear()
	}
	return errors.Join(errs...)
}
