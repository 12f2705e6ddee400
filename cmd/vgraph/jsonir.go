package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/lucidcode/vgraph/vgraph"
)

func newToJSONCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "tojson [file]",
		Short: "Parse a JSON value graph and print its Node IR as JSON",
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

			out, err := vgraph.ToJSON(v, vgraph.Options{})
			if err != nil {
				return fmt.Errorf("tojson: %w", err)
			}

			var pretty any
			if err := json.Unmarshal(out, &pretty); err != nil {
				return err
			}
			indented, err := json.MarshalIndent(pretty, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(indented))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "input JSON file (stdin if empty)")
	return cmd
}

func newFromJSONCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "fromjson [file]",
		Short: "Compile a Node-IR JSON document straight to JavaScript source text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				file = args[0]
			}
			data, err := readInput(file)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			out, err := vgraph.CompileJSON(data, vgraph.Options{})
			if err != nil {
				return fmt.Errorf("fromjson: %w", err)
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "input Node-IR JSON file (stdin if empty)")
	return cmd
}
