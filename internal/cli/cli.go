// Package cli implements the dataprep command-line interface.
//
// # Commands
//
//   - build: collect, augment, split and materialize a detector dataset
//   - import: convert a flat labelled set into a train/val external set
//   - cascade: list the augmentation operators, or apply them to one image
//
// All commands support --verbose (-v) for debug-level logging. Logs go to
// the writer given to New; command summaries go to the command's output.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const appName = "dataprep"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// SetVersion sets the version information displayed by --version. It is
// called by main with values injected via ldflags.
func SetVersion(v, built, commit string) {
	version = v
	buildTime = built
	gitCommit = commit
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI whose logger writes to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Dataprep builds object-detector training sets",
		Long:         `Dataprep assembles a YOLO-style training set from a small hand-annotated seed set and an optional external set, expanding the seed images through a fixed augmentation cascade and splitting the pool reproducibly into train and val.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\n  Build time: %s\n  Git commit: %s\n", appName, version, buildTime, gitCommit))

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cascadeCommand())

	return root
}

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
