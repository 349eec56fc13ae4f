package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Earthcomputer/classfile/pkg/classfile"
	"github.com/Earthcomputer/classfile/pkg/types"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <class>",
		Short: "Validate a class file and report basic metadata",
		Long: `The info command validates a class file and displays basic metadata
including the class file version, access flags, superclass, interfaces and
member counts.

Example:
  classctl info Main.class
  classctl info Main.class --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

type classSummary struct {
	File       string   `json:"file"`
	Size       int64    `json:"size"`
	Version    string   `json:"version"`
	Access     string   `json:"access"`
	Class      string   `json:"class"`
	Super      string   `json:"super,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`
	PoolCount  int      `json:"pool_count"`
	Fields     int      `json:"fields"`
	Methods    int      `json:"methods"`
	Attributes []string `json:"attributes,omitempty"`
}

// memberCounter tallies top-level events without descending into scopes.
type memberCounter struct {
	types.ForwardingClassVisitor
	fields, methods int
	attrs           []string
}

func (c *memberCounter) VisitField(types.Member) (types.FieldVisitor, error) {
	c.fields++
	return nil, nil
}

func (c *memberCounter) VisitMethod(types.Member) (types.MethodVisitor, error) {
	c.methods++
	return nil, nil
}

func (c *memberCounter) VisitAttribute(attr types.Attribute) error {
	c.attrs = append(c.attrs, attr.AttributeName().String())
	return nil
}

func runInfo(args []string) error {
	path := args[0]

	printVerbose("Opening class file: %s\n", path)

	r, err := classfile.Open(path, classfile.OpenOptions{SkipCode: true})
	if err != nil {
		return fmt.Errorf("failed to open class file: %w", err)
	}
	defer r.Close()

	sum := classSummary{
		File:      path,
		Version:   fmt.Sprintf("%d.%d", r.MajorVersion(), r.MinorVersion()),
		Access:    r.Access().String(),
		PoolCount: r.Pool().Count(),
	}
	if stat, err := os.Stat(path); err == nil {
		sum.Size = stat.Size()
	}

	name, err := r.ClassName()
	if err != nil {
		return fmt.Errorf("failed to resolve class name: %w", err)
	}
	sum.Class = name.String()

	super, err := r.SuperName()
	if err != nil {
		return fmt.Errorf("failed to resolve superclass: %w", err)
	}
	if !super.IsZero() {
		sum.Super = super.String()
	}

	ifaces, err := r.Interfaces()
	if err != nil {
		return fmt.Errorf("failed to resolve interfaces: %w", err)
	}
	for _, i := range ifaces {
		sum.Interfaces = append(sum.Interfaces, i.String())
	}

	var counter memberCounter
	if err := r.Accept(&counter); err != nil {
		return fmt.Errorf("failed to scan class body: %w", err)
	}
	sum.Fields = counter.fields
	sum.Methods = counter.methods
	sum.Attributes = counter.attrs

	if jsonOut {
		return printJSON(sum)
	}

	printInfo("\nClass Information:\n")
	printInfo("  File: %s\n", sum.File)
	printInfo("  Size: %d bytes\n", sum.Size)
	printInfo("  Version: %s\n", sum.Version)
	printInfo("  Access: %s\n", sum.Access)
	printInfo("  Class: %s\n", sum.Class)
	if sum.Super != "" {
		printInfo("  Super: %s\n", sum.Super)
	}
	for _, i := range sum.Interfaces {
		printInfo("  Implements: %s\n", i)
	}
	printInfo("  Constant pool entries: %d\n", sum.PoolCount)
	printInfo("  Fields: %d\n", sum.Fields)
	printInfo("  Methods: %d\n", sum.Methods)
	for _, a := range sum.Attributes {
		printInfo("  Attribute: %s\n", a)
	}
	return nil
}
