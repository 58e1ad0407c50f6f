package canon

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// AssetVersion is the canon asset schema version understood by Load.
const AssetVersion = 1

//go:embed data/kjv.yaml
var kjvAsset []byte

// asset is the on-disk form of a canon table.
type asset struct {
	Version    int    `yaml:"version"`
	Name       string `yaml:"name"`
	Testaments struct {
		OT []BookSpec `yaml:"ot"`
		NT []BookSpec `yaml:"nt"`
	} `yaml:"testaments"`
}

var (
	defaultOnce  sync.Once
	defaultCanon *Canon
)

// Default returns the built-in KJV canon. It is built once on first use.
func Default() *Canon {
	defaultOnce.Do(func() {
		c, err := Load(bytes.NewReader(kjvAsset))
		if err != nil {
			// The embedded asset is covered by tests; failure here is a build defect.
			panic(fmt.Sprintf("canon: embedded KJV asset: %v", err))
		}
		defaultCanon = c
	})
	return defaultCanon
}

// Load parses a YAML canon asset and builds a Canon from it.
func Load(r io.Reader) (*Canon, error) {
	var a asset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to parse canon asset: %w", err)
	}
	if a.Version != AssetVersion {
		return nil, fmt.Errorf("unsupported canon asset version %d (want %d)", a.Version, AssetVersion)
	}
	if a.Name == "" {
		a.Name = "custom"
	}
	return New(a.Name, a.Testaments.OT, a.Testaments.NT)
}

// LoadFile loads a canon asset from a file.
func LoadFile(path string) (*Canon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open canon asset: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
