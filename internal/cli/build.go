package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ironsheep/detector-dataprep/internal/config"
	"github.com/ironsheep/detector-dataprep/internal/dataset"
)

// buildOpts holds the command-line flags of the build command. Flags that
// were set on the command line override the config file.
type buildOpts struct {
	configPath  string
	seedDir     string
	externalDir string
	outputDir   string
	manifest    string
	valRatio    float64
	seed        uint64
	classes     []string
	quality     int
}

// buildCommand creates the build command, which runs the full pipeline.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a train/val dataset from seed and external images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			c.Logger.Debug("Resolved configuration", "seed_dir", cfg.SeedDir, "external_dir", cfg.ExternalDir,
				"output_dir", cfg.OutputDir, "val_ratio", cfg.ValRatio, "seed", cfg.Seed)

			report, err := dataset.New(cfg, c.Logger).Run()
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	bindBuildFlags(cmd.Flags(), &opts)
	return cmd
}

func bindBuildFlags(f *pflag.FlagSet, opts *buildOpts) {
	defaults := config.Default()
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML configuration file")
	f.StringVar(&opts.seedDir, "seed-dir", defaults.SeedDir, "seed dataset root (images/train, labels/train)")
	f.StringVar(&opts.externalDir, "external-dir", defaults.ExternalDir, "external dataset root (may be missing)")
	f.StringVarP(&opts.outputDir, "output-dir", "o", defaults.OutputDir, "output dataset root")
	f.StringVar(&opts.manifest, "manifest", "", "manifest path (default <output-dir>/dataset.yaml)")
	f.Float64Var(&opts.valRatio, "val-ratio", defaults.ValRatio, "fraction of the pool used for validation")
	f.Uint64Var(&opts.seed, "seed", defaults.Seed, "random seed for shuffling and noise")
	f.StringArrayVar(&opts.classes, "class", defaults.Classes, "class name, in class-id order (repeatable)")
	f.IntVar(&opts.quality, "quality", defaults.Augment.Quality, "JPEG quality of augmented images")
}

// loadConfig layers defaults, the optional config file and explicitly set
// flags, then validates the result.
func loadConfig(flags *pflag.FlagSet, opts buildOpts) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadFromFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.Changed("seed-dir") {
		cfg.SeedDir = opts.seedDir
	}
	if flags.Changed("external-dir") {
		cfg.ExternalDir = opts.externalDir
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("manifest") {
		cfg.Manifest = opts.manifest
	}
	if flags.Changed("val-ratio") {
		cfg.ValRatio = opts.valRatio
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("class") {
		cfg.Classes = opts.classes
	}
	if flags.Changed("quality") {
		cfg.Augment.Quality = opts.quality
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// printReport prints the build summary.
func printReport(w io.Writer, r *dataset.Report) {
	printSuccess(w, "Dataset built in %s", r.Elapsed.Round(time.Millisecond))
	printCount(w, "Originals", r.Counts.Originals)
	printCount(w, "Augmented", r.Counts.Augmented)
	printCount(w, "External", r.Counts.External)
	printCount(w, "Total", r.Counts.Total)
	printCount(w, "Train", r.Counts.Train)
	printCount(w, "Val", r.Counts.Val)
	printKeyValue(w, "Dataset ID", r.Manifest.DatasetID)
	printFile(w, r.ManifestPath)

	if n := r.Warnings(); n > 0 {
		printWarning(w, "%d items skipped (%d missing labels, %d failed transforms, %d undecodable, %d duplicates)",
			n, r.MissingLabels, r.FailedTransforms, r.Undecodable, r.Duplicates)
	}
}
