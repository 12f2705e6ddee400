// Command vgraph is the CLI front end for the vgraph library:
// serialize/cross-serialize a JSON value graph to executable
// JavaScript source text, bridge the Node IR to/from JSON, and run a
// small streaming demo over the transport package.
//
// Grounded on the teacher's cmd/glyph/main.go subcommand dispatch,
// rebuilt on a cobra.Command tree (matzehuels-stacktower's
// internal/cli style) in place of the teacher's hand-rolled flag
// parsing.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lucidcode/vgraph/internal/config"
	"github.com/lucidcode/vgraph/internal/vlog"
)

var (
	version = "0.1.0"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	var configPath string

	root := &cobra.Command{
		Use:          "vgraph",
		Short:        "vgraph serializes value graphs to executable JavaScript source text",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			ctx := vlog.WithContext(cmd.Context(), vlog.New(os.Stderr, level))

			cfg, err := config.LoadIfExists(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx = config.WithContext(ctx, cfg)

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("vgraph %s (%s)\n", version, commit))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&configPath, "config", "vgraph.toml", "optional TOML config file (features/scope/streaming defaults)")

	root.AddCommand(newSerializeCmd())
	root.AddCommand(newCrossSerializeCmd())
	root.AddCommand(newToJSONCmd())
	root.AddCommand(newFromJSONCmd())
	root.AddCommand(newStreamDemoCmd())
	root.AddCommand(newRegCmd())

	return root
}
