package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/detector-dataprep/internal/imaging"
)

// datasetNamespace scopes the name-based UUIDs used as dataset ids.
var datasetNamespace = uuid.MustParse("6f1d3a52-9c1e-4f0b-8d7a-3e5b2c9a41d7")

// Counts summarizes the composition of a materialized dataset.
type Counts struct {
	Originals int `yaml:"originals"`
	Augmented int `yaml:"augmented"`
	External  int `yaml:"external"`
	Total     int `yaml:"total"`
	Train     int `yaml:"train"`
	Val       int `yaml:"val"`
}

// Manifest describes a materialized dataset to the training collaborator.
//
// The layout follows the Ultralytics dataset.yaml convention: path, train,
// val, nc and names are read by the trainer; cascade, dataset_id and counts
// are informational.
type Manifest struct {
	Path      string         `yaml:"path"`
	Train     string         `yaml:"train"`
	Val       string         `yaml:"val"`
	NC        int            `yaml:"nc"`
	Names     map[int]string `yaml:"names"`
	Cascade   string         `yaml:"cascade"`
	DatasetID string         `yaml:"dataset_id"`
	Counts    Counts         `yaml:"counts"`
}

// NewManifest builds the manifest of split materialized under root.
//
// DatasetID is a name-based UUID of the cascade version and the ordered
// train and val names, so two builds with the same membership share an id.
func NewManifest(root string, classes []string, split Split, counts Counts) (Manifest, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to resolve output path: %w", err)
	}

	names := make(map[int]string, len(classes))
	for i, c := range classes {
		names[i] = c
	}

	counts.Train = len(split.Train)
	counts.Val = len(split.Val)

	return Manifest{
		Path:      abs,
		Train:     filepath.ToSlash(filepath.Join("images", splitTrain)),
		Val:       filepath.ToSlash(filepath.Join("images", splitVal)),
		NC:        len(classes),
		Names:     names,
		Cascade:   imaging.CascadeVersion,
		DatasetID: datasetID(split).String(),
		Counts:    counts,
	}, nil
}

func datasetID(split Split) uuid.UUID {
	var b strings.Builder
	b.WriteString(imaging.CascadeVersion)
	b.WriteString("\ntrain\n")
	for _, p := range split.Train {
		b.WriteString(p.Name)
		b.WriteByte('\n')
	}
	b.WriteString("val\n")
	for _, p := range split.Val {
		b.WriteString(p.Name)
		b.WriteByte('\n')
	}
	return uuid.NewSHA1(datasetNamespace, []byte(b.String()))
}

// Encode writes the manifest as YAML, preceded by a comment block that
// repeats the counts for human readers.
func (m Manifest) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Detector dataset (cascade %s)\n", m.Cascade)
	fmt.Fprintf(bw, "# Originals: %d\n", m.Counts.Originals)
	fmt.Fprintf(bw, "# Augmented: %d\n", m.Counts.Augmented)
	fmt.Fprintf(bw, "# External: %d\n", m.Counts.External)
	fmt.Fprintf(bw, "# Total: %d (%d train, %d val)\n\n", m.Counts.Total, m.Counts.Train, m.Counts.Val)

	enc := yaml.NewEncoder(bw)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return bw.Flush()
}

// WriteManifest writes m to path, creating parent directories as needed and
// replacing any previous manifest.
func WriteManifest(path string, m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	if err := m.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest parses a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}
