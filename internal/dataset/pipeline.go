package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/detector-dataprep/internal/config"
	"github.com/ironsheep/detector-dataprep/internal/imaging"
)

// Report summarizes one build.
type Report struct {
	Counts Counts

	// Per-item problems that were skipped.
	MissingLabels    int
	FailedTransforms int
	Undecodable      int
	Duplicates       int

	Manifest     Manifest
	ManifestPath string
	Elapsed      time.Duration
}

// Warnings returns the total number of skipped items.
func (r *Report) Warnings() int {
	return r.MissingLabels + r.FailedTransforms + r.Undecodable + r.Duplicates
}

// Pipeline runs a full dataset build.
type Pipeline struct {
	Config  *config.Config
	Cascade []imaging.Transform
	Logger  *log.Logger
}

// New creates a pipeline with the default cascade.
func New(cfg *config.Config, logger *log.Logger) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Cascade: imaging.DefaultCascade(),
		Logger:  logger,
	}
}

// Run collects, augments, splits and materializes the dataset.
//
// Pool order is seeds, their variants, external train, external val. The
// output tree is only touched after the pool is known to be non-empty.
//
// # Errors
//
//   - Returns error if the configuration is invalid
//   - Returns ErrSeedRootMissing if the seed images directory is absent
//   - Returns ErrEmptyPool if no pair was admitted
//   - Returns error if the output tree cannot be written
func (p *Pipeline) Run() (report *Report, err error) {
	start := time.Now()
	cfg := p.Config
	logger := orDefault(p.Logger)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	report = &Report{}
	pool := NewPool()
	collector := &Collector{Prefixes: cfg.Prefixes, Logger: logger}

	seeds, err := collector.Seed(cfg.SeedDir)
	if err != nil {
		return nil, err
	}
	report.MissingLabels += seeds.MissingLabels
	admitted := p.admit(pool, seeds.Pairs, report)

	staging := filepath.Join(cfg.OutputDir, stagingDirName)
	defer func() {
		if err != nil {
			os.RemoveAll(staging)
		}
	}()

	expander := &Expander{
		Cascade:    p.Cascade,
		Prefix:     cfg.Prefixes.Augmented,
		StagingDir: staging,
		Quality:    cfg.Augment.Quality,
		Seed:       cfg.Seed,
		Logger:     logger,
	}
	expansion, err := expander.Expand(admitted)
	if err != nil {
		return nil, err
	}
	report.FailedTransforms = expansion.Failed
	report.Undecodable = expansion.Undecodable
	p.admit(pool, expansion.Pairs, report)

	external, err := collector.External(cfg.ExternalDir)
	if err != nil {
		return nil, err
	}
	report.MissingLabels += external.MissingLabels
	p.admit(pool, external.Pairs, report)

	logger.Info("Pool assembled", "total", pool.Len())

	split, err := SplitPool(pool.Pairs(), cfg.ValRatio, cfg.Seed)
	if err != nil {
		if errors.Is(err, ErrEmptyPool) {
			return nil, fmt.Errorf("%w (seed: %s, external: %s)", err, cfg.SeedDir, cfg.ExternalDir)
		}
		return nil, err
	}
	logger.Info("Split pool", "train", len(split.Train), "val", len(split.Val))

	counts := Counts{
		Originals: pool.Count(SourceSeed),
		Augmented: pool.Count(SourceAugmented),
		External:  pool.Count(SourceExternalTrain) + pool.Count(SourceExternalVal),
		Total:     pool.Len(),
	}
	manifest, err := NewManifest(cfg.OutputDir, cfg.Classes, split, counts)
	if err != nil {
		return nil, err
	}

	m := &Materializer{Root: cfg.OutputDir, StagingDir: staging, Logger: logger}
	if err := m.Write(split, &manifest, cfg.ManifestPath()); err != nil {
		return nil, fmt.Errorf("failed to materialize dataset: %w", err)
	}

	report.Counts = manifest.Counts
	report.Manifest = manifest
	report.ManifestPath = cfg.ManifestPath()
	report.Elapsed = time.Since(start)
	return report, nil
}

// admit adds pairs to the pool, skipping duplicates with a warning. It
// returns the pairs that were actually added.
func (p *Pipeline) admit(pool *Pool, pairs []Pair, report *Report) []Pair {
	logger := orDefault(p.Logger)
	added := make([]Pair, 0, len(pairs))
	for _, pair := range pairs {
		if err := pool.Add(pair); err != nil {
			report.Duplicates++
			logger.Warn("Provenance name collision, skipping", "image", pair.Image, "err", err)
			continue
		}
		added = append(added, pair)
	}
	return added
}
