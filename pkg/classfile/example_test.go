package classfile_test

import (
	"fmt"
	"os"

	"github.com/Earthcomputer/classfile/pkg/classfile"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// Example shows reading the header of a class file.
func Example() {
	r, err := classfile.Open("Main.class", classfile.OpenOptions{})
	if err != nil {
		fmt.Printf("Open failed: %v\n", err)
		return
	}
	defer r.Close()

	name, err := r.ClassName()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("%s (major version %d)\n", name, r.MajorVersion())
}

// ExampleOpenBytes demonstrates parsing a class already held in memory.
func ExampleOpenBytes() {
	data, err := os.ReadFile("Main.class")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	r, err := classfile.OpenBytes(data, classfile.OpenOptions{SkipCode: true})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	ifaces, err := r.Interfaces()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, name := range ifaces {
		fmt.Println(name)
	}
}

// ExampleReader_Accept demonstrates the event traversal.
func ExampleReader_Accept() {
	data, err := os.ReadFile("Main.class")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	r, err := classfile.OpenBytes(data, classfile.OpenOptions{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	// List every method by overriding one event on a forwarding visitor.
	var v methodLister
	if err := r.Accept(&v); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

type methodLister struct {
	types.ForwardingClassVisitor
}

func (l *methodLister) VisitMethod(m types.Member) (types.MethodVisitor, error) {
	fmt.Printf("%s%s\n", m.Name, m.Descriptor)
	return nil, nil
}

// ExampleTransform demonstrates a rewrite that strips debug attributes and
// copies everything else byte for byte.
func ExampleTransform() {
	data, err := os.ReadFile("Main.class")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	out, err := classfile.Transform(data,
		classfile.OpenOptions{SkipDebug: true},
		classfile.WriteOptions{}, nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := os.WriteFile("Main.stripped.class", out, 0o644); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

// ExampleNewWriter demonstrates synthesizing a class from scratch.
func ExampleNewWriter() {
	w := classfile.NewWriter(classfile.WriteOptions{})
	err := w.VisitClass(types.ClassInfo{
		MajorVersion: 52,
		Access:       types.AccPublic | types.AccSuper,
		Name:         types.StringOf("example/Empty"),
		SuperName:    types.StringOf("java/lang/Object"),
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := w.VisitEnd(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	data, err := w.Finish()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("%d bytes\n", len(data))
}
