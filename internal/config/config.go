// Package config holds the settings of a dataset build.
//
// Settings come from three layers, later layers winning: Default, an optional
// TOML file read with LoadFromFile, and command-line flags applied by the CLI.
// Validate must pass before any file is touched.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the configuration of one dataset build.
type Config struct {
	// SeedDir is the root of the small hand-annotated set. Its images/train
	// subtree must exist.
	SeedDir string `toml:"seed_dir"`

	// ExternalDir is the root of the larger external set. It may be missing.
	ExternalDir string `toml:"external_dir"`

	// OutputDir receives images/{train,val}, labels/{train,val} and the manifest.
	OutputDir string `toml:"output_dir"`

	// Manifest is the manifest path. Empty means <OutputDir>/dataset.yaml.
	Manifest string `toml:"manifest"`

	// ValRatio is the fraction of the pool assigned to validation, in (0,1).
	ValRatio float64 `toml:"val_ratio"`

	// Seed initializes the shuffle and noise generators.
	Seed uint64 `toml:"seed"`

	// Classes lists object class names in class-id order.
	Classes []string `toml:"classes"`

	Prefixes PrefixConfig  `toml:"prefixes"`
	Augment  AugmentConfig `toml:"augment"`
}

// PrefixConfig holds the provenance prefixes of each source. Augmented
// variants get their own namespace so a seed stem that happens to end in an
// operator tag cannot collide with a generated name.
type PrefixConfig struct {
	Seed        string `toml:"seed"`
	Augmented   string `toml:"augmented"`
	External    string `toml:"external"`
	ExternalVal string `toml:"external_val"`
}

// AugmentConfig holds settings of augmented-variant staging.
type AugmentConfig struct {
	// Quality is the JPEG quality of staged variants (1-100).
	Quality int `toml:"quality"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		SeedDir:     filepath.Join("data", "seed"),
		ExternalDir: filepath.Join("data", "external"),
		OutputDir:   filepath.Join("data", "dataset"),
		ValRatio:    0.2,
		Seed:        42,
		Classes:     []string{"qr-code"},
		Prefixes: PrefixConfig{
			Seed:        "seed_",
			Augmented:   "aug_",
			External:    "ext_",
			ExternalVal: "extv_",
		},
		Augment: AugmentConfig{
			Quality: 92,
		},
	}
}

// LoadFromFile reads a TOML file on top of the defaults. Keys missing from
// the file keep their default value.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key: %s", undecoded[0])
	}

	return cfg, nil
}

// ManifestPath returns the manifest location, defaulting to
// <OutputDir>/dataset.yaml.
func (c *Config) ManifestPath() string {
	if c.Manifest != "" {
		return c.Manifest
	}
	return filepath.Join(c.OutputDir, "dataset.yaml")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SeedDir == "" {
		return fmt.Errorf("seed_dir must be set")
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must be set")
	}

	// The output split directories are emptied before copying, so they must
	// never hold source images.
	sources := [][2]string{{"seed_dir", c.SeedDir}, {"external_dir", c.ExternalDir}}
	for _, src := range sources {
		if src[1] == "" {
			continue
		}
		inside, err := within(c.OutputDir, src[1])
		if err != nil {
			return err
		}
		if inside {
			return fmt.Errorf("output_dir %q must not be or contain %s %q", c.OutputDir, src[0], src[1])
		}
	}

	if !(c.ValRatio > 0 && c.ValRatio < 1) {
		return fmt.Errorf("val_ratio must be between 0 and 1 (exclusive), got %v", c.ValRatio)
	}

	if len(c.Classes) == 0 {
		return fmt.Errorf("classes cannot be empty")
	}
	for i, name := range c.Classes {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("classes[%d] is empty", i)
		}
	}

	if c.Augment.Quality < 1 || c.Augment.Quality > 100 {
		return fmt.Errorf("augment.quality must be between 1 and 100")
	}

	return c.Prefixes.Validate()
}

// Validate checks that the prefixes are non-empty and that none is a prefix
// of another. Overlapping prefixes ("ext_" and "ext_v_") would let two
// different sources produce the same provenance name.
func (p PrefixConfig) Validate() error {
	named := [][2]string{
		{"prefixes.seed", p.Seed},
		{"prefixes.augmented", p.Augmented},
		{"prefixes.external", p.External},
		{"prefixes.external_val", p.ExternalVal},
	}

	for _, n := range named {
		if n[1] == "" {
			return fmt.Errorf("%s cannot be empty", n[0])
		}
		if strings.ContainsAny(n[1], `/\`) {
			return fmt.Errorf("%s cannot contain path separators", n[0])
		}
	}

	for i, a := range named {
		for j, b := range named {
			if i != j && strings.HasPrefix(b[1], a[1]) {
				return fmt.Errorf("%s %q overlaps %s %q", a[0], a[1], b[0], b[1])
			}
		}
	}
	return nil
}

// within reports whether path is root or lies below it.
func within(root, path string) (bool, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}
