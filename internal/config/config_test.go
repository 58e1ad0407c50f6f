package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/swordverse/core/ztext"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swordverse.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if !strings.HasSuffix(cfg.ModulesRoot, filepath.Join(".sword", "modules", "texts", "ztext")) {
		t.Errorf("ModulesRoot = %q", cfg.ModulesRoot)
	}
	if cfg.CacheBlocks != ztext.DefaultCacheBlocks {
		t.Errorf("CacheBlocks = %d, want %d", cfg.CacheBlocks, ztext.DefaultCacheBlocks)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("SV_TEST_ROOT", "/srv/sword")
	path := writeConfig(t, `
modules_root: ${SV_TEST_ROOT}/ztext
codec: xz
cache_blocks: 8
log:
  level: debug
  format: json
modules:
  Vulgate:
    encoding: latin-1
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.ModulesRoot != "/srv/sword/ztext" {
		t.Errorf("ModulesRoot = %q, want /srv/sword/ztext", cfg.ModulesRoot)
	}
	if cfg.Codec != "xz" || cfg.CacheBlocks != 8 {
		t.Errorf("Codec, CacheBlocks = %q, %d", cfg.Codec, cfg.CacheBlocks)
	}
	// Unset keys keep their defaults.
	if cfg.Encoding != "utf-8" {
		t.Errorf("Encoding = %q, want utf-8", cfg.Encoding)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoadFileEmpty(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadFile of empty file failed: %v", err)
	}
	if cfg.Codec != Default().Codec {
		t.Errorf("Codec = %q, want default", cfg.Codec)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Errorf("missing file error = %v, want not-exist", err)
	}
	if _, err := LoadFile(writeConfig(t, "modules_rooot: /tmp\n")); err == nil {
		t.Error("unknown key should fail")
	}
	if _, err := LoadFile(writeConfig(t, "codec: [zip\n")); err == nil {
		t.Error("malformed YAML should fail")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	t.Setenv(EnvModulesRoot, "/opt/sword")
	cfg.ApplyEnv()
	if cfg.ModulesRoot != "/opt/sword" {
		t.Errorf("ModulesRoot = %q, want /opt/sword", cfg.ModulesRoot)
	}

	t.Setenv(EnvModulesRoot, "")
	cfg.ApplyEnv()
	if cfg.ModulesRoot != "/opt/sword" {
		t.Errorf("empty env var should not override, got %q", cfg.ModulesRoot)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"empty root", func(c *Config) { c.ModulesRoot = "" }, "modules_root"},
		{"bad codec", func(c *Config) { c.Codec = "lzss" }, "lzss"},
		{"bad encoding", func(c *Config) { c.Encoding = "utf-16" }, "utf-16"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "trace"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "xml"},
		{"bad module codec", func(c *Config) {
			c.Modules = map[string]ModuleConfig{"KJV": {Codec: "gzip"}}
		}, "module KJV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestModuleOptions(t *testing.T) {
	cfg := Default()
	cfg.Modules = map[string]ModuleConfig{
		"Vulgate": {Encoding: "latin-1"},
		"Packed":  {Codec: "bzip2"},
	}

	opts, err := cfg.ModuleOptions("KJV")
	if err != nil {
		t.Fatalf("ModuleOptions failed: %v", err)
	}
	if opts.Codec != "zip" || opts.Encoding != "utf-8" || opts.Canon != nil {
		t.Errorf("KJV options = %+v", opts)
	}

	opts, _ = cfg.ModuleOptions("Vulgate")
	if opts.Codec != "zip" || opts.Encoding != "latin-1" {
		t.Errorf("Vulgate options = %+v", opts)
	}

	opts, _ = cfg.ModuleOptions("Packed")
	if opts.Codec != "bzip2" {
		t.Errorf("Packed codec = %q, want bzip2", opts.Codec)
	}
}

func TestModuleOptionsCanonFile(t *testing.T) {
	path := writeConfig(t, `version: 1
name: Tiny
testaments:
  ot:
    - {name: First, chapters: [2]}
  nt:
    - {name: Second, chapters: [1]}
`)

	cfg := Default()
	cfg.CanonFile = path
	opts, err := cfg.ModuleOptions("KJV")
	if err != nil {
		t.Fatalf("ModuleOptions failed: %v", err)
	}
	if opts.Canon == nil || opts.Canon.Name() != "Tiny" {
		t.Errorf("Canon = %v, want Tiny", opts.Canon)
	}

	cfg.CanonFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.ModuleOptions("KJV"); err == nil {
		t.Error("missing canon file should fail")
	}
}
