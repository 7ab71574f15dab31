package cli

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/detector-dataprep/internal/dataset"
	"github.com/ironsheep/detector-dataprep/internal/imaging"
)

func writeTestImage(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	img := image.NewRGBA(image.Rect(0, 0, 20, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 12), uint8(y * 20), 60, 255})
		}
	}
	require.NoError(t, imaging.Save(img, path, 90))
}

func writeLabelled(t *testing.T, imgDir, lblDir string, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(lblDir, 0755))
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("img%02d", i)
		writeTestImage(t, filepath.Join(imgDir, name+".png"))
		require.NoError(t, os.WriteFile(filepath.Join(lblDir, name+".txt"), []byte("0 0.5 0.5 0.2 0.2\n"), 0644))
	}
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			assert.Equal(t, tt.wantLog, buf.Len() > 0)
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"build", "import", "cascade"})
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3", "2026-01-01", "abc123")
	defer SetVersion("dev", "unknown", "unknown")

	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dataprep 1.2.3")
	assert.Contains(t, out, "abc123")
}

func TestLoadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "dataprep.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
seed_dir = "/from/file"
output_dir = "/file/out"
val_ratio = 0.3
seed = 9
`), 0644))

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, seedDir, outDir string, ratio float64, seed uint64, classes []string)
	}{
		{
			name: "file values",
			args: []string{"--config", cfgPath},
			check: func(t *testing.T, seedDir, outDir string, ratio float64, seed uint64, classes []string) {
				assert.Equal(t, "/from/file", seedDir)
				assert.Equal(t, "/file/out", outDir)
				assert.Equal(t, 0.3, ratio)
				assert.Equal(t, uint64(9), seed)
				assert.Equal(t, []string{"qr-code"}, classes)
			},
		},
		{
			name: "flags override file",
			args: []string{"--config", cfgPath, "--seed-dir", "/from/flag", "--seed", "3", "--class", "a", "--class", "b"},
			check: func(t *testing.T, seedDir, outDir string, ratio float64, seed uint64, classes []string) {
				assert.Equal(t, "/from/flag", seedDir)
				assert.Equal(t, "/file/out", outDir)
				assert.Equal(t, 0.3, ratio)
				assert.Equal(t, uint64(3), seed)
				assert.Equal(t, []string{"a", "b"}, classes)
			},
		},
		{
			name: "defaults without file",
			args: []string{"--val-ratio", "0.1"},
			check: func(t *testing.T, seedDir, outDir string, ratio float64, seed uint64, classes []string) {
				assert.Equal(t, filepath.Join("data", "seed"), seedDir)
				assert.Equal(t, 0.1, ratio)
				assert.Equal(t, uint64(42), seed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts buildOpts
			fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
			bindBuildFlags(fs, &opts)
			require.NoError(t, fs.Parse(tt.args))

			cfg, err := loadConfig(fs, opts)
			require.NoError(t, err)
			tt.check(t, cfg.SeedDir, cfg.OutputDir, cfg.ValRatio, cfg.Seed, cfg.Classes)
		})
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	var opts buildOpts
	fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
	bindBuildFlags(fs, &opts)
	require.NoError(t, fs.Parse([]string{"--val-ratio", "1"}))

	_, err := loadConfig(fs, opts)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestBuildCommand(t *testing.T) {
	base := t.TempDir()
	seed := filepath.Join(base, "seed")
	out := filepath.Join(base, "out")
	writeLabelled(t, filepath.Join(seed, "images", "train"), filepath.Join(seed, "labels", "train"), 2)

	stdout, err := execute(t, "build", "--seed-dir", seed, "--external-dir", filepath.Join(base, "none"), "--output-dir", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Dataset built")

	m, err := dataset.ReadManifest(filepath.Join(out, "dataset.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Counts.Originals)
	assert.Equal(t, 2*len(imaging.DefaultCascade()), m.Counts.Augmented)
}

func TestBuildCommand_MissingSeed(t *testing.T) {
	base := t.TempDir()
	_, err := execute(t, "build", "--seed-dir", filepath.Join(base, "nope"), "--output-dir", filepath.Join(base, "out"))
	assert.ErrorIs(t, err, dataset.ErrSeedRootMissing)
}

func TestImportCommand(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "ext")
	writeLabelled(t, filepath.Join(src, "images"), filepath.Join(src, "labels"), 10)

	stdout, err := execute(t, "import", src, dest, "--val-ratio", "0.2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Imported 10 pairs")

	entries, err := os.ReadDir(filepath.Join(dest, "images", "val"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCascadeCommand(t *testing.T) {
	stdout, err := execute(t, "cascade")
	require.NoError(t, err)
	assert.Contains(t, stdout, imaging.CascadeVersion)
	for _, tr := range imaging.DefaultCascade() {
		assert.Contains(t, stdout, tr.Tag)
	}
}

func TestCascadeApplyCommand(t *testing.T) {
	src := filepath.Join(t.TempDir(), "sample.png")
	writeTestImage(t, src)
	outDir := filepath.Join(t.TempDir(), "variants")

	_, err := execute(t, "cascade", "apply", src, outDir)
	require.NoError(t, err)

	for _, tr := range imaging.DefaultCascade() {
		assert.FileExists(t, filepath.Join(outDir, "sample_"+tr.Tag+".jpg"))
	}
}

func TestCascadeApplyCommand_Only(t *testing.T) {
	src := filepath.Join(t.TempDir(), "sample.png")
	writeTestImage(t, src)
	outDir := filepath.Join(t.TempDir(), "variants")

	_, err := execute(t, "cascade", "apply", src, outDir, "--only", "otsu,clahe")
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.FileExists(t, filepath.Join(outDir, "sample_otsu.jpg"))

	_, err = execute(t, "cascade", "apply", src, outDir, "--only", "sharpen")
	assert.Error(t, err)
}
