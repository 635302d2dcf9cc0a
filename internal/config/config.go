// Package config loads shadertune.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"

	"shadertune/internal/gpu"
	"shadertune/internal/keywords"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "shadertune.toml"

// Duration is a time.Duration written as "1s", "250ms" in TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative duration %q", string(b))
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Editor struct {
	AutoCompile bool     `toml:"auto_compile"`
	Debounce    Duration `toml:"debounce"`
}

type Compiler struct {
	Backend string   `toml:"backend"`
	Command string   `toml:"command"`
	Timeout Duration `toml:"timeout"`
}

type Workspace struct {
	Extension string   `toml:"extension"`
	Exclude   []string `toml:"exclude"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Config is the decoded configuration. Path is empty when defaults are used.
type Config struct {
	Path      string    `toml:"-"`
	Editor    Editor    `toml:"editor"`
	Compiler  Compiler  `toml:"compiler"`
	Workspace Workspace `toml:"workspace"`
	Cache     Cache     `toml:"cache"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Editor:   Editor{AutoCompile: true, Debounce: Duration(time.Second)},
		Compiler: Compiler{Backend: gpu.NagaName, Timeout: Duration(30 * time.Second)},
		Cache:    Cache{Dir: "~/.cache/shadertune"},
	}
}

// Language is the shading language of the configured backend.
func (c Config) Language() keywords.Language {
	if c.Compiler.Backend == gpu.MetalName {
		return keywords.LangMetal
	}
	return keywords.LangWGSL
}

// Extension is the shader file extension, falling back to the language's.
func (c Config) Extension() string {
	if ext := strings.TrimSpace(c.Workspace.Extension); ext != "" {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		return ext
	}
	return c.Language().Extension()
}

// CacheDir expands a leading ~ in the cache directory.
func (c Config) CacheDir() (string, error) {
	dir, err := homedir.Expand(c.Cache.Dir)
	if err != nil {
		return "", fmt.Errorf("cache dir %q: %w", c.Cache.Dir, err)
	}
	return dir, nil
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest FileName above startDir, or defaults.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	cfg.Compiler.Backend = strings.ToLower(strings.TrimSpace(cfg.Compiler.Backend))
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values decoding cannot.
func (c Config) Validate() error {
	if !slices.Contains(gpu.Names(), c.Compiler.Backend) {
		return fmt.Errorf("[compiler].backend: unknown backend %q (want one of %s)", c.Compiler.Backend, strings.Join(gpu.Names(), ", "))
	}
	if c.Editor.Debounce <= 0 {
		return errors.New("[editor].debounce must be positive")
	}
	if strings.TrimSpace(c.Cache.Dir) == "" && c.Cache.Enabled {
		return errors.New("[cache].dir must be set when the cache is enabled")
	}
	return nil
}
