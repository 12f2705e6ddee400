package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucidcode/vgraph/internal/config"
	"github.com/lucidcode/vgraph/internal/vlog"
	"github.com/lucidcode/vgraph/vgraph"
)

// readInput reads path, or stdin when path is "" or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func newSerializeCmd() *cobra.Command {
	var file string
	var disableFeatures []string

	cmd := &cobra.Command{
		Use:   "serialize [file]",
		Short: "Parse a JSON value graph and emit self-contained JavaScript source text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				file = args[0]
			}
			data, err := readInput(file)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			v, err := vgraph.FromPlainJSON(data)
			if err != nil {
				return err
			}

			cfg := config.FromContext(cmd.Context())
			mask, err := cfg.DisabledFeatureMask()
			if err != nil {
				return err
			}
			extra, err := disabledMask(disableFeatures)
			if err != nil {
				return err
			}
			opts := vgraph.Options{DisabledFeatures: mask | extra}

			progress := vlog.NewProgress(vlog.FromContext(cmd.Context()))
			out, err := vgraph.Serialize(v, opts)
			if err != nil {
				return fmt.Errorf("serialize: %w", err)
			}
			progress.Done(fmt.Sprintf("serialized %d bytes", len(out)))
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "input JSON file (stdin if empty)")
	cmd.Flags().StringSliceVar(&disableFeatures, "disable", nil, "feature names to disable (e.g. BigInt,Symbol)")
	return cmd
}

func newCrossSerializeCmd() *cobra.Command {
	var file, scopeID string
	var disableFeatures []string

	cmd := &cobra.Command{
		Use:   "cross-serialize [file]",
		Short: "Parse a JSON value graph and emit cross-referenced JavaScript source text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				file = args[0]
			}
			data, err := readInput(file)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			v, err := vgraph.FromPlainJSON(data)
			if err != nil {
				return err
			}

			cfg := config.FromContext(cmd.Context())
			mask, err := cfg.DisabledFeatureMask()
			if err != nil {
				return err
			}
			extra, err := disabledMask(disableFeatures)
			if err != nil {
				return err
			}
			if scopeID == "" {
				scopeID = cfg.Scope.DefaultID
			}
			opts := vgraph.Options{ScopeID: scopeID, DisabledFeatures: mask | extra}

			progress := vlog.NewProgress(vlog.FromContext(cmd.Context()))
			out, err := vgraph.CrossSerialize(v, opts)
			if err != nil {
				return fmt.Errorf("cross-serialize: %w", err)
			}
			progress.Done(fmt.Sprintf("cross-serialized %d bytes in scope %q", len(out), opts.ScopeID))
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "input JSON file (stdin if empty)")
	cmd.Flags().StringVar(&scopeID, "scope", "", "cross-mode scope id (config's scope.default_id, then random, if empty)")
	cmd.Flags().StringSliceVar(&disableFeatures, "disable", nil, "feature names to disable")
	return cmd
}

func disabledMask(names []string) (vgraph.Feature, error) {
	var mask vgraph.Feature
	for _, name := range names {
		f, ok := vgraph.ParseFeatureName(name)
		if !ok {
			return 0, fmt.Errorf("unknown feature: %q", name)
		}
		mask |= f
	}
	return mask, nil
}
