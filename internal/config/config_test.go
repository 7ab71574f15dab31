package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataprep.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.2, cfg.ValRatio)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, []string{"qr-code"}, cfg.Classes)
	assert.Equal(t, 92, cfg.Augment.Quality)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
seed_dir = "/data/kip"
external_dir = "/data/kolabit"
output_dir = "/data/out"
val_ratio = 0.25
seed = 7
classes = ["qr-code", "datamatrix"]

[prefixes]
seed = "kip_"
external = "kol_"
external_val = "kolv_"

[augment]
quality = 80
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/kip", cfg.SeedDir)
	assert.Equal(t, "/data/kolabit", cfg.ExternalDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, 0.25, cfg.ValRatio)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, []string{"qr-code", "datamatrix"}, cfg.Classes)
	assert.Equal(t, PrefixConfig{Seed: "kip_", Augmented: "aug_", External: "kol_", ExternalVal: "kolv_"}, cfg.Prefixes)
	assert.Equal(t, 80, cfg.Augment.Quality)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile_KeepsDefaults(t *testing.T) {
	path := writeConfig(t, `output_dir = "/tmp/out"`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, 0.2, cfg.ValRatio)
	assert.Equal(t, "seed_", cfg.Prefixes.Seed)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadFromFile(writeConfig(t, `val_ratio = "high"`))
	assert.Error(t, err)

	_, err = LoadFromFile(writeConfig(t, `val_ration = 0.3`))
	assert.ErrorContains(t, err, "val_ration")
}

func TestManifestPath(t *testing.T) {
	cfg := Default()
	cfg.OutputDir = "/out"
	assert.Equal(t, filepath.Join("/out", "dataset.yaml"), cfg.ManifestPath())

	cfg.Manifest = "/train/dataset.yaml"
	assert.Equal(t, "/train/dataset.yaml", cfg.ManifestPath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing seed dir", func(c *Config) { c.SeedDir = "" }, "seed_dir"},
		{"missing output dir", func(c *Config) { c.OutputDir = "" }, "output_dir"},
		{"ratio zero", func(c *Config) { c.ValRatio = 0 }, "val_ratio"},
		{"ratio one", func(c *Config) { c.ValRatio = 1 }, "val_ratio"},
		{"ratio negative", func(c *Config) { c.ValRatio = -0.1 }, "val_ratio"},
		{"no classes", func(c *Config) { c.Classes = nil }, "classes"},
		{"blank class", func(c *Config) { c.Classes = []string{"qr", " "} }, "classes[1]"},
		{"quality low", func(c *Config) { c.Augment.Quality = 0 }, "quality"},
		{"quality high", func(c *Config) { c.Augment.Quality = 101 }, "quality"},
		{"empty prefix", func(c *Config) { c.Prefixes.External = "" }, "prefixes.external"},
		{"separator in prefix", func(c *Config) { c.Prefixes.Seed = "a/b_" }, "separators"},
		{"overlapping prefixes", func(c *Config) {
			c.Prefixes.External = "kol_"
			c.Prefixes.ExternalVal = "kol_v_"
		}, "overlaps"},
		{"identical prefixes", func(c *Config) { c.Prefixes.Seed = c.Prefixes.External }, "overlaps"},
		{"empty augmented prefix", func(c *Config) { c.Prefixes.Augmented = "" }, "prefixes.augmented"},
		{"augmented overlaps seed", func(c *Config) { c.Prefixes.Augmented = "seed_aug_" }, "overlaps"},
		{"output is seed dir", func(c *Config) { c.OutputDir = c.SeedDir }, "seed_dir"},
		{"output contains seed dir", func(c *Config) {
			c.OutputDir = "data"
			c.SeedDir = filepath.Join("data", "seed")
		}, "seed_dir"},
		{"output is external dir", func(c *Config) { c.OutputDir = filepath.Join("data", "external") }, "external_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}
