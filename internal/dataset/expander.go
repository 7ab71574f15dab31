package dataset

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/detector-dataprep/internal/imaging"
)

// stagingDirName is the scratch directory, under the output root, that holds
// augmented variants until they are materialized.
const stagingDirName = "_augmented"

// Expander produces the augmented variants of seed pairs.
type Expander struct {
	// Cascade is applied to every seed image in slice order.
	Cascade []imaging.Transform

	// Prefix is the provenance prefix of augmented variants. Variants are
	// named <Prefix><seed stem>_<tag>, outside the seed namespace.
	Prefix string

	// StagingDir receives the variant images and label copies.
	StagingDir string

	// Quality is the JPEG quality of staged variants.
	Quality int

	// Seed feeds the per-variant generators of stochastic operators.
	Seed uint64

	Logger *log.Logger
}

// Expansion is the result of expanding a set of seed pairs.
type Expansion struct {
	Pairs []Pair

	// Failed counts (image, operator) combinations that were skipped.
	Failed int

	// Undecodable counts seed images that could not be read as images.
	Undecodable int
}

// Expand applies every cascade operator to every seed pair.
//
// Each success stages <prefix><stem>_<tag>.jpg and a matching .txt, the latter a
// verbatim copy of the seed label. An operator that fails or panics on one
// image is logged and skipped; the remaining operators still run. A seed
// image that cannot be decoded contributes no variants.
//
// # Errors
//
//   - Returns error if the staging directory cannot be created
//   - Returns error if a staged image or label cannot be written
func (e *Expander) Expand(seeds []Pair) (*Expansion, error) {
	logger := orDefault(e.Logger)
	result := &Expansion{}
	if len(seeds) == 0 {
		return result, nil
	}

	if err := os.MkdirAll(e.StagingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	for _, seed := range seeds {
		img, err := imaging.Load(seed.Image)
		if err != nil {
			result.Undecodable++
			logger.Warn("Cannot decode seed image, skipping variants", "image", seed.Image, "err", err)
			continue
		}

		base := e.Prefix + stem(seed.Image)
		for _, t := range e.Cascade {
			out, err := imaging.Apply(t, img, e.rng(seed.Name, t.Tag))
			if err != nil {
				result.Failed++
				logger.Warn("Transform failed, skipping", "image", seed.Name, "op", t.Tag, "err", err)
				continue
			}

			name := base + "_" + t.Tag
			imgPath := filepath.Join(e.StagingDir, name+".jpg")
			lblPath := filepath.Join(e.StagingDir, name+".txt")
			if err := imaging.Save(out, imgPath, e.Quality); err != nil {
				return nil, fmt.Errorf("failed to stage %s: %w", name, err)
			}
			if err := copyFile(seed.Label, lblPath); err != nil {
				return nil, fmt.Errorf("failed to stage label of %s: %w", name, err)
			}

			result.Pairs = append(result.Pairs, Pair{
				Image:  imgPath,
				Label:  lblPath,
				Name:   name,
				Source: SourceAugmented,
				Origin: seed.Name,
			})
		}
		logger.Debug("Expanded seed image", "image", seed.Name)
	}

	logger.Info("Generated augmented images", "variants", len(result.Pairs), "failed", result.Failed)
	return result, nil
}

// rng returns the generator for one (image, operator) variant. It depends
// only on the build seed and the variant's name, so a rerun reproduces every
// noise pattern exactly.
func (e *Expander) rng(name, tag string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(tag))
	return rand.New(rand.NewPCG(e.Seed, h.Sum64()))
}
