package cli

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/detector-dataprep/internal/config"
	"github.com/ironsheep/detector-dataprep/internal/imaging"
)

// cascadeCommand creates the cascade command. Without a subcommand it lists
// the operators in cascade order.
func (c *CLI) cascadeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cascade",
		Short: "List the augmentation cascade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			printTitle(w, "Cascade %s", imaging.CascadeVersion)
			for i, t := range imaging.DefaultCascade() {
				printKeyValue(w, fmt.Sprintf("%2d", i+1), t.Tag)
			}
			return nil
		},
	}

	cmd.AddCommand(c.cascadeApplyCommand())
	return cmd
}

// cascadeApplyCommand creates the "cascade apply" subcommand, which writes
// every variant of one image for visual inspection.
func (c *CLI) cascadeApplyCommand() *cobra.Command {
	defaults := config.Default()
	var (
		seed    uint64
		quality int
		only    []string
	)

	cmd := &cobra.Command{
		Use:   "apply <image> <outdir>",
		Short: "Write every cascade variant of one image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cascade, err := selectCascade(only)
			if err != nil {
				return err
			}

			img, err := imaging.Load(args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(args[1], 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			w := cmd.OutOrStdout()
			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			failed := 0
			for _, t := range cascade {
				rng := rand.New(rand.NewPCG(seed, uint64(t.Kind)))
				out, err := imaging.Apply(t, img, rng)
				if err != nil {
					failed++
					c.Logger.Warn("Transform failed", "op", t.Tag, "err", err)
					continue
				}
				path := filepath.Join(args[1], base+"_"+t.Tag+".jpg")
				if err := imaging.Save(out, path, quality); err != nil {
					return err
				}
				printFile(w, path)
			}

			if failed > 0 {
				printWarning(w, "%d of %d operators failed", failed, len(cascade))
			} else {
				printSuccess(w, "Wrote %d variants", len(cascade))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Uint64Var(&seed, "seed", defaults.Seed, "random seed for stochastic operators")
	f.IntVar(&quality, "quality", defaults.Augment.Quality, "JPEG quality of written variants")
	f.StringSliceVar(&only, "only", nil, "comma-separated operator tags to apply (default all)")
	return cmd
}

// selectCascade returns the operators named by tags in cascade order, or the
// full cascade when tags is empty.
func selectCascade(tags []string) ([]imaging.Transform, error) {
	cascade := imaging.DefaultCascade()
	if len(tags) == 0 {
		return cascade, nil
	}

	want := make(map[imaging.OperatorKind]bool, len(tags))
	for _, tag := range tags {
		k, err := imaging.ParseKind(strings.TrimSpace(tag))
		if err != nil {
			return nil, err
		}
		want[k] = true
	}

	var selected []imaging.Transform
	for _, t := range cascade {
		if want[t.Kind] {
			selected = append(selected, t)
		}
	}
	return selected, nil
}
