package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucidcode/vgraph/vgraph"
)

// newRegCmd gives the reference registry (§4.2) the small CLI-facing
// surface the teacher's pool/registry concept always carries in
// cmd/glyph/main.go. Both subcommands operate on the process-global
// DefaultRegistry, so "reg add" then "reg list" only makes sense
// within one invocation's lifetime — it's a demo of the registry
// shape, not a persistence mechanism.
func newRegCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reg",
		Short: "Inspect the process-global reference registry",
	}
	cmd.AddCommand(newRegAddCmd())
	cmd.AddCommand(newRegListCmd())
	return cmd
}

func newRegAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <tag>",
		Short: "Register a placeholder handle under tag and show its serialized Reference form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := args[0]
			handle := vgraph.Object(nil, map[string]*vgraph.Value{}, vgraph.FlagsNone)
			if err := vgraph.CreateReference(tag, handle, vgraph.Options{}); err != nil {
				return err
			}

			out, err := vgraph.Serialize(handle, vgraph.Options{})
			if err != nil {
				return err
			}
			fmt.Printf("registered %q -> %s\n", tag, out)
			return nil
		},
	}
}

func newRegListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tags registered so far this invocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := vgraph.DefaultRegistry.Tags()
			if len(tags) == 0 {
				fmt.Println("(empty)")
				return nil
			}
			for _, tag := range tags {
				fmt.Println(tag)
			}
			return nil
		},
	}
}
