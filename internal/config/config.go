// Package config loads swordverse configuration.
//
// Values come from three layers, later layers winning: built-in defaults, an
// optional YAML file, then the SWORD_MODULES_ROOT environment variable.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/swordverse/core/canon"
	"github.com/FocuswithJustin/swordverse/core/ztext"
	"github.com/FocuswithJustin/swordverse/internal/logging"
)

// EnvModulesRoot overrides Config.ModulesRoot.
const EnvModulesRoot = "SWORD_MODULES_ROOT"

// Config is the swordverse configuration.
type Config struct {
	// ModulesRoot is the directory holding one subdirectory per module.
	// Default: $HOME/.sword/modules/texts/ztext
	ModulesRoot string `yaml:"modules_root"`

	// Codec is the default block codec (zip, xz or bzip2).
	Codec string `yaml:"codec"`

	// Encoding is the default text encoding (utf-8 or latin-1).
	Encoding string `yaml:"encoding"`

	// CacheBlocks is the number of inflated blocks kept per module.
	// Negative disables the cache.
	CacheBlocks int `yaml:"cache_blocks"`

	// CanonFile replaces the built-in KJV versification.
	CanonFile string `yaml:"canon_file"`

	Log LogConfig `yaml:"log"`

	// Modules holds per-module overrides keyed by module name.
	Modules map[string]ModuleConfig `yaml:"modules"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// ModuleConfig overrides the defaults for one module, mirroring the
// CompressType and Encoding keys of its .conf file.
type ModuleConfig struct {
	Codec    string `yaml:"codec"`
	Encoding string `yaml:"encoding"`
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		ModulesRoot: filepath.Join(homeDir, ".sword", "modules", "texts", "ztext"),
		Codec:       string(ztext.CodecZip),
		Encoding:    string(ztext.EncodingUTF8),
		CacheBlocks: ztext.DefaultCacheBlocks,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// LoadFile loads configuration from path on top of the defaults. Unknown keys
// are an error. ${VAR} references in paths are expanded.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.ModulesRoot = os.ExpandEnv(cfg.ModulesRoot)
	cfg.CanonFile = os.ExpandEnv(cfg.CanonFile)
	return cfg, nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if root := os.Getenv(EnvModulesRoot); root != "" {
		c.ModulesRoot = root
	}
}

// Validate checks that every value names something supported.
func (c *Config) Validate() error {
	var errs []error

	if c.ModulesRoot == "" {
		errs = append(errs, errors.New("modules_root is empty"))
	}
	if _, err := ztext.ParseCodec(c.Codec); err != nil {
		errs = append(errs, err)
	}
	if _, err := ztext.ParseEncoding(c.Encoding); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, err)
	}
	for name, mc := range c.Modules {
		if _, err := ztext.ParseCodec(mc.Codec); mc.Codec != "" && err != nil {
			errs = append(errs, fmt.Errorf("module %s: %w", name, err))
		}
		if _, err := ztext.ParseEncoding(mc.Encoding); mc.Encoding != "" && err != nil {
			errs = append(errs, fmt.Errorf("module %s: %w", name, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ModuleOptions returns the ztext options for a module, applying its
// overrides and loading the canon file if one is configured.
func (c *Config) ModuleOptions(name string) (ztext.Options, error) {
	codec, encoding := c.Codec, c.Encoding
	if mc, ok := c.Modules[name]; ok {
		if mc.Codec != "" {
			codec = mc.Codec
		}
		if mc.Encoding != "" {
			encoding = mc.Encoding
		}
	}

	opts := ztext.Options{
		Codec:       ztext.Codec(codec),
		Encoding:    ztext.Encoding(encoding),
		CacheBlocks: c.CacheBlocks,
		Logger:      logging.GetLogger(),
	}
	if c.CanonFile != "" {
		cn, err := canon.LoadFile(c.CanonFile)
		if err != nil {
			return ztext.Options{}, fmt.Errorf("canon %s: %w", c.CanonFile, err)
		}
		opts.Canon = cn
	}
	return opts, nil
}
