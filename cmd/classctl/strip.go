package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Earthcomputer/classfile/pkg/classfile"
)

var (
	stripOutput string
	stripCode   bool
)

func init() {
	cmd := newStripCmd()
	cmd.Flags().StringVarP(&stripOutput, "output", "o", "", "Output path (default: overwrite input)")
	cmd.Flags().BoolVar(&stripCode, "code", false, "Also remove method bodies")
	rootCmd.AddCommand(cmd)
}

func newStripCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strip <class>",
		Short: "Rewrite a class file without debug information",
		Long: `The strip command rewrites a class file with debug attributes removed:
SourceFile, SourceDebugExtension, LineNumberTable, LocalVariableTable and
LocalVariableTypeTable. Everything else is copied byte for byte.

Example:
  classctl strip Main.class -o Main.stripped.class
  classctl strip Main.class --code`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrip(args)
		},
	}
	return cmd
}

func runStrip(args []string) error {
	path := args[0]
	out := stripOutput
	if out == "" {
		out = path
	}

	printVerbose("Opening class file: %s\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read class file: %w", err)
	}

	opts := classfile.OpenOptions{SkipDebug: true, SkipCode: stripCode}
	stripped, err := classfile.Transform(data, opts, classfile.WriteOptions{}, nil)
	if err != nil {
		return fmt.Errorf("failed to rewrite class file: %w", err)
	}

	if err := os.WriteFile(out, stripped, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	printInfo("Wrote %s (%d -> %d bytes)\n", out, len(data), len(stripped))
	return nil
}
