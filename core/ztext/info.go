package ztext

import (
	"path/filepath"

	"github.com/FocuswithJustin/swordverse/core/cache"
	"github.com/FocuswithJustin/swordverse/core/canon"
)

// FileInfo describes one corpus file.
type FileInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// TestamentInfo summarizes one testament triad.
type TestamentInfo struct {
	Testament canon.Testament `json:"testament"`
	Slots     int             `json:"slots"`  // .bzv records
	Blocks    int             `json:"blocks"` // .bzs records
	Files     []FileInfo      `json:"files"`
}

// ModuleInfo describes an open module.
type ModuleInfo struct {
	Name       string          `json:"name"`
	Dir        string          `json:"dir"`
	Codec      Codec           `json:"codec"`
	Encoding   Encoding        `json:"encoding"`
	Canon      string          `json:"canon"`
	Testaments []TestamentInfo `json:"testaments"`
	Cache      cache.Stats     `json:"cache"`
}

// Info returns the testaments present and the size of their files.
func (m *Module) Info() (ModuleInfo, error) {
	info := ModuleInfo{
		Name:     m.name,
		Dir:      m.dir,
		Codec:    m.codec,
		Encoding: m.encoding,
		Canon:    m.canon.Name(),
		Cache:    m.CacheStats(),
	}

	for _, t := range canon.Testaments {
		if !m.HasTestament(t) {
			continue
		}
		tf, err := m.testament(t, "info")
		if err != nil {
			return ModuleInfo{}, err
		}
		st, err := tf.bzz.Stat()
		if err != nil {
			return ModuleInfo{}, err
		}

		base := filepath.Join(m.dir, t.Code())
		info.Testaments = append(info.Testaments, TestamentInfo{
			Testament: t,
			Slots:     tf.bzv.Len() / VerseRecordSize,
			Blocks:    tf.bzs.Len() / BufferRecordSize,
			Files: []FileInfo{
				{Name: t.Code() + ".bzv", Path: base + ".bzv", Size: int64(tf.bzv.Len())},
				{Name: t.Code() + ".bzs", Path: base + ".bzs", Size: int64(tf.bzs.Len())},
				{Name: t.Code() + ".bzz", Path: base + ".bzz", Size: st.Size()},
			},
		})
	}
	return info, nil
}
