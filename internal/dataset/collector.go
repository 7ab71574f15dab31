package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/detector-dataprep/internal/config"
)

// ErrSeedRootMissing is returned when the seed set has no images/train
// directory. Without seed images there is nothing to augment.
var ErrSeedRootMissing = errors.New("seed image directory not found")

// Split directory names shared by sources and output.
const (
	splitTrain = "train"
	splitVal   = "val"
)

// imageDir and labelDir return <root>/images/<split> and <root>/labels/<split>.
func imageDir(root, split string) string { return filepath.Join(root, "images", split) }
func labelDir(root, split string) string { return filepath.Join(root, "labels", split) }

// Collector pairs source images with their label files.
type Collector struct {
	Prefixes config.PrefixConfig
	Logger   *log.Logger
}

// Collection is the result of collecting one source tree.
type Collection struct {
	Pairs []Pair

	// MissingLabels counts images skipped for lack of a label file.
	MissingLabels int
}

// Seed collects <root>/images/train against <root>/labels/train. Every seed
// image is expected to be annotated, so each missing label is a warning.
//
// # Errors
//
//   - Returns ErrSeedRootMissing if <root>/images/train does not exist
//   - Returns error if the directory cannot be read
func (c *Collector) Seed(root string) (*Collection, error) {
	dir := imageDir(root, splitTrain)
	if !isDir(dir) {
		return nil, fmt.Errorf("%w: %s", ErrSeedRootMissing, dir)
	}

	col, err := c.collect(dir, labelDir(root, splitTrain), c.Prefixes.Seed, SourceSeed, true)
	if err != nil {
		return nil, err
	}
	orDefault(c.Logger).Info("Collected seed images", "pairs", len(col.Pairs), "missing_labels", col.MissingLabels)
	return col, nil
}

// External collects both the train and val subtrees of an external set.
// The external split boundary is discarded: both subtrees feed the pool and
// are re-split later. A missing root or subtree contributes no pairs.
func (c *Collector) External(root string) (*Collection, error) {
	logger := orDefault(c.Logger)
	result := &Collection{}
	if root == "" {
		logger.Info("No external dataset configured")
		return result, nil
	}

	subtrees := []struct {
		split  string
		prefix string
		source Source
	}{
		{splitTrain, c.Prefixes.External, SourceExternalTrain},
		{splitVal, c.Prefixes.ExternalVal, SourceExternalVal},
	}

	for _, s := range subtrees {
		dir := imageDir(root, s.split)
		if !isDir(dir) {
			logger.Info("External subtree not found, skipping", "dir", dir)
			continue
		}
		col, err := c.collect(dir, labelDir(root, s.split), s.prefix, s.source, false)
		if err != nil {
			return nil, err
		}
		result.Pairs = append(result.Pairs, col.Pairs...)
		result.MissingLabels += col.MissingLabels
	}

	logger.Info("Collected external images", "pairs", len(result.Pairs), "missing_labels", result.MissingLabels)
	return result, nil
}

// collect pairs every image of imgDir with lblDir/<stem>.txt.
func (c *Collector) collect(imgDir, lblDir, prefix string, source Source, warnMissing bool) (*Collection, error) {
	logger := orDefault(c.Logger)

	images, err := listImages(imgDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Collection{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", imgDir, err)
	}

	col := &Collection{Pairs: make([]Pair, 0, len(images))}
	for _, img := range images {
		s := stem(img)
		label := filepath.Join(lblDir, s+".txt")
		if !isFile(label) {
			col.MissingLabels++
			if warnMissing {
				logger.Warn("No label for image, skipping", "image", img)
			} else {
				logger.Debug("No label for image, skipping", "image", img)
			}
			continue
		}
		col.Pairs = append(col.Pairs, Pair{
			Image:  img,
			Label:  label,
			Name:   prefix + s,
			Source: source,
		})
	}
	return col, nil
}
