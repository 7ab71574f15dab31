package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// DefaultImportRatio is the validation share used when importing a flat set.
const DefaultImportRatio = 0.15

// Importer converts a flat labelled set (<src>/images and <src>/labels) into
// the train/val layout read by Collector.External.
type Importer struct {
	Logger *log.Logger
}

// Import pairs the images of src with their labels in sorted order, assigns
// the last ValCount pairs to val and the rest to train, and materializes them
// under dest with their original stems. No manifest is written.
//
// # Errors
//
//   - Returns error if <src>/images cannot be read
//   - Returns ErrEmptyPool if no image has a label
//   - Returns error if ratio is not strictly between 0 and 1
//   - Returns error if dest cannot be written
func (im *Importer) Import(src, dest string, ratio float64) (Split, error) {
	logger := orDefault(im.Logger)
	if !(ratio > 0 && ratio < 1) {
		return Split{}, fmt.Errorf("validation ratio must be between 0 and 1, got %v", ratio)
	}

	c := &Collector{Logger: logger}
	col, err := c.collect(filepath.Join(src, "images"), filepath.Join(src, "labels"), "", SourceExternalTrain, false)
	if err != nil {
		return Split{}, err
	}
	if !isDir(filepath.Join(src, "images")) || len(col.Pairs) == 0 {
		return Split{}, fmt.Errorf("%w: %s", ErrEmptyPool, src)
	}

	n := len(col.Pairs) - ValCount(len(col.Pairs), ratio)
	split := Split{Train: col.Pairs[:n], Val: col.Pairs[n:]}
	for i := range split.Val {
		split.Val[i].Source = SourceExternalVal
	}

	m := &Materializer{Root: dest, Logger: logger}
	if err := m.Write(split, nil, ""); err != nil {
		return Split{}, fmt.Errorf("failed to write imported set: %w", err)
	}

	logger.Info("Imported dataset", "src", src, "train", len(split.Train), "val", len(split.Val), "missing_labels", col.MissingLabels)
	return split, nil
}
