package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/detector-dataprep/internal/dataset"
)

// importCommand creates the import command, which turns a flat labelled set
// into a train/val external set.
func (c *CLI) importCommand() *cobra.Command {
	var valRatio float64

	cmd := &cobra.Command{
		Use:   "import <src> <dest>",
		Short: "Convert a flat images/ + labels/ set into a train/val layout",
		Long: `Import pairs every image under <src>/images with <src>/labels/<stem>.txt,
assigns the last pairs in sorted order to validation and writes the result
under <dest>, ready to be used as --external-dir.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			im := &dataset.Importer{Logger: c.Logger}
			split, err := im.Import(args[0], args[1], valRatio)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printSuccess(w, "Imported %d pairs", len(split.Train)+len(split.Val))
			printCount(w, "Train", len(split.Train))
			printCount(w, "Val", len(split.Val))
			printFile(w, args[1])
			return nil
		},
	}

	cmd.Flags().Float64Var(&valRatio, "val-ratio", dataset.DefaultImportRatio, "fraction of pairs used for validation")
	return cmd
}
