package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Earthcomputer/classfile/pkg/classfile"
	"github.com/Earthcomputer/classfile/pkg/types"
)

var (
	dumpCode bool
	dumpPool bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpCode, "code", false, "Disassemble method bodies")
	cmd.Flags().BoolVar(&dumpPool, "pool", false, "Dump the constant pool")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <class>",
		Short: "Human-readable dump of class file contents",
		Long: `The dump command lists every field and method of a class file with its
access flags and descriptor, plus class-level attributes.

Example:
  classctl dump Main.class
  classctl dump Main.class --code
  classctl dump Main.class --pool`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

func runDump(args []string) error {
	path := args[0]

	printVerbose("Opening class file: %s\n", path)

	r, err := classfile.Open(path, classfile.OpenOptions{SkipCode: !dumpCode})
	if err != nil {
		return fmt.Errorf("failed to open class file: %w", err)
	}
	defer r.Close()

	name, err := r.ClassName()
	if err != nil {
		return fmt.Errorf("failed to resolve class name: %w", err)
	}
	printInfo("class %s\n", name)

	if dumpPool {
		if err := dumpConstantPool(r.Pool()); err != nil {
			return fmt.Errorf("failed to dump constant pool: %w", err)
		}
	}

	d := &dumper{}
	if err := r.Accept(d); err != nil {
		return fmt.Errorf("failed to dump class body: %w", err)
	}
	return nil
}

func dumpConstantPool(pool types.ConstantPool) error {
	for i := 1; i < pool.Count(); i++ {
		tag, err := pool.Tag(uint16(i))
		if err != nil {
			// Second slot of a long or double entry.
			continue
		}
		e, err := pool.Entry(uint16(i))
		if err != nil {
			return err
		}
		switch tag {
		case types.TagUtf8:
			printInfo("  #%d = Utf8 %q\n", i, e.Utf8.String())
		case types.TagInteger:
			printInfo("  #%d = Integer %d\n", i, e.Int)
		case types.TagFloat:
			printInfo("  #%d = Float %g\n", i, e.F32)
		case types.TagLong:
			printInfo("  #%d = Long %d\n", i, e.Long)
		case types.TagDouble:
			printInfo("  #%d = Double %g\n", i, e.F64)
		case types.TagMethodHandle:
			printInfo("  #%d = MethodHandle kind=%d #%d\n", i, e.Kind, e.Ref1)
		default:
			printInfo("  #%d = %s #%d #%d\n", i, tag, e.Ref1, e.Ref2)
		}
	}
	return nil
}

type dumper struct {
	types.ForwardingClassVisitor
}

func (d *dumper) VisitField(m types.Member) (types.FieldVisitor, error) {
	printInfo("  field %s %s %s\n", m.Access, m.Name, m.Descriptor)
	return nil, nil
}

func (d *dumper) VisitMethod(m types.Member) (types.MethodVisitor, error) {
	printInfo("  method %s %s%s\n", m.Access, m.Name, m.Descriptor)
	if !dumpCode {
		return nil, nil
	}
	return &methodDumper{}, nil
}

func (d *dumper) VisitAttribute(attr types.Attribute) error {
	printInfo("  attribute %s\n", attr.AttributeName())
	return nil
}

type methodDumper struct {
	types.ForwardingMethodVisitor
}

func (d *methodDumper) VisitCode(code *types.Code) (types.CodeVisitor, error) {
	printInfo("    stack=%d locals=%d\n", code.MaxStack, code.MaxLocals)
	for _, h := range code.Handlers {
		catch := h.CatchType.String()
		if h.CatchType.IsZero() {
			catch = "any"
		}
		printInfo("    try %d..%d catch %s -> %d\n", h.StartPC, h.EndPC, catch, h.HandlerPC)
	}
	return &codeDumper{}, nil
}

type codeDumper struct {
	types.ForwardingCodeVisitor
}

func (d *codeDumper) VisitInsn(ins types.Instruction) error {
	switch {
	case !ins.Member.Owner.IsZero():
		printInfo("    %4d: %s %s.%s%s\n", ins.PC, ins.Op,
			ins.Member.Owner, ins.Member.Name, ins.Member.Descriptor)
	case ins.Const != nil:
		printInfo("    %4d: %s %v\n", ins.PC, ins.Op, ins.Const)
	case !ins.Type.IsZero():
		printInfo("    %4d: %s %s\n", ins.PC, ins.Op, ins.Type)
	default:
		printInfo("    %4d: %s\n", ins.PC, ins.Op)
	}
	return nil
}
