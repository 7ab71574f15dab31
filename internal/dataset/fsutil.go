package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/detector-dataprep/internal/imaging"
)

// listImages returns the image files directly inside dir, sorted by path.
//
// os.ReadDir already sorts by name, but the explicit sort keeps the order a
// documented property of this function rather than of the standard library:
// split determinism depends on it.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsImage(e.Name()) {
			continue
		}
		images = append(images, filepath.Join(dir, e.Name()))
	}
	slices.Sort(images)
	return images, nil
}

// stem returns the file name of path without directory and extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// isFile reports whether path exists and is a regular file.
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// isDir reports whether path exists and is a directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// copyFile copies src to dst byte-for-byte, replacing dst if it exists.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

// orDefault returns l, or the package-level charmbracelet logger when l is nil.
func orDefault(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return log.Default()
}
