package dataset

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/detector-dataprep/internal/config"
	"github.com/ironsheep/detector-dataprep/internal/imaging"
)

// quietLogger discards all output.
func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// writeImage saves a small patterned image to path. The shade varies with n
// so fixtures are distinguishable on disk.
func writeImage(t *testing.T, path string, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	img := image.NewRGBA(image.Rect(0, 0, 24, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 24; x++ {
			v := uint8((x*10 + y*5 + n*37) % 256)
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, color.RGBA{v, v, 40, 255})
			} else {
				img.Set(x, y, color.RGBA{20, 30, v, 255})
			}
		}
	}
	require.NoError(t, imaging.Save(img, path, 90))
}

// writeFile writes content to path, creating parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// labelFor returns a distinct YOLO label line for fixture n.
func labelFor(n int) string {
	return fmt.Sprintf("0 0.%03d 0.500 0.250 0.250\n", 100+n)
}

// writeSet creates count labelled pairs under <root>/images/<split> and
// <root>/labels/<split>, named <base><i>.png.
func writeSet(t *testing.T, root, split, base string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("%s%02d", base, i)
		writeImage(t, filepath.Join(root, "images", split, name+".png"), i)
		writeFile(t, filepath.Join(root, "labels", split, name+".txt"), labelFor(i))
	}
}

// listNames returns the sorted file names directly inside dir.
func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// testConfig returns a valid configuration rooted in a fresh temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.SeedDir = filepath.Join(base, "seed")
	cfg.ExternalDir = filepath.Join(base, "external")
	cfg.OutputDir = filepath.Join(base, "out")
	return cfg
}

// makePairs returns n synthetic pairs named p000, p001, ...
func makePairs(n int) []Pair {
	pairs := make([]Pair, n)
	for i := range pairs {
		name := fmt.Sprintf("p%03d", i)
		pairs[i] = Pair{Image: name + ".png", Label: name + ".txt", Name: name}
	}
	return pairs
}

func pairNames(pairs []Pair) []string {
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.Name
	}
	return names
}
