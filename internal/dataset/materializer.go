package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Materializer writes a split to the canonical directory layout:
//
//	<root>/images/train/<name><ext>   <root>/labels/train/<name>.txt
//	<root>/images/val/<name><ext>     <root>/labels/val/<name>.txt
//
// It is the only component that deletes files. Writing is not atomic: a crash
// part-way leaves a partially written tree, which the next run replaces.
type Materializer struct {
	Root string

	// StagingDir, if set, is removed once everything has been copied.
	StagingDir string

	Logger *log.Logger
}

// Write empties the four split directories, copies every pair under its
// provenance name, writes the manifest to manifestPath when manifest is not
// nil, and removes the staging directory.
//
// # Errors
//
//   - Returns error if a directory cannot be created or emptied
//   - Returns error if any image, label or the manifest cannot be written
func (m *Materializer) Write(split Split, manifest *Manifest, manifestPath string) error {
	logger := orDefault(m.Logger)

	subsets := []struct {
		name  string
		pairs []Pair
	}{
		{splitTrain, split.Train},
		{splitVal, split.Val},
	}

	for _, s := range subsets {
		imgOut := imageDir(m.Root, s.name)
		lblOut := labelDir(m.Root, s.name)
		for _, dir := range []string{imgOut, lblOut} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			if err := clearFiles(dir); err != nil {
				return err
			}
		}

		for _, p := range s.pairs {
			if err := copyFile(p.Image, filepath.Join(imgOut, p.Name+filepath.Ext(p.Image))); err != nil {
				return err
			}
			if err := copyFile(p.Label, filepath.Join(lblOut, p.Name+".txt")); err != nil {
				return err
			}
		}
		logger.Debug("Materialized split", "split", s.name, "pairs", len(s.pairs))
	}

	if manifest != nil {
		if err := WriteManifest(manifestPath, *manifest); err != nil {
			return err
		}
		logger.Info("Wrote manifest", "path", manifestPath)
	}

	if m.StagingDir != "" {
		if err := os.RemoveAll(m.StagingDir); err != nil {
			return fmt.Errorf("failed to remove staging directory: %w", err)
		}
	}
	return nil
}

// clearFiles deletes every non-directory entry of dir. Subdirectories are
// left alone; nothing this package writes creates them.
func clearFiles(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to clear %s: %w", dir, err)
		}
	}
	return nil
}
