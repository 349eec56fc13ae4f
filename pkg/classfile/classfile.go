package classfile

import (
	"github.com/Earthcomputer/classfile/internal/reader"
	"github.com/Earthcomputer/classfile/internal/writer"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// Handy aliases so most callers only import this package and pkg/types when
// they need the full vocabulary.
type (
	OpenOptions  = types.OpenOptions
	WriteOptions = types.WriteOptions
)

// Reader is a parsed class file. Header fields are available directly;
// Accept drives the full event traversal.
type Reader interface {
	MinorVersion() uint16
	MajorVersion() uint16
	Access() types.AccessFlags

	// ClassName resolves this_class to the internal class name.
	ClassName() (types.JavaString, error)
	// SuperName resolves super_class; the zero value means no superclass.
	SuperName() (types.JavaString, error)
	// Interfaces resolves the direct superinterface names.
	Interfaces() ([]types.JavaString, error)

	// Pool gives direct access to the constant pool.
	Pool() types.ConstantPool

	// ClassAttribute finds a class-level attribute payload by name without
	// entering event mode.
	ClassAttribute(name string) ([]byte, bool, error)

	// Accept drives a full traversal into v in file order.
	Accept(v types.ClassVisitor) error

	// Close releases the file mapping of a Reader opened from a path. It
	// is a no-op for in-memory readers.
	Close() error
}

// Writer consumes class events and serializes them. Drive it as the
// terminal ClassVisitor of a chain, then call Finish.
type Writer interface {
	types.ClassVisitor

	// Pool exposes the write-side constant pool for custom attribute
	// encoders that need to intern values.
	Pool() types.PoolBuilder

	// Finish assembles the class file. It fails if the class-end event was
	// never delivered, if the pool overflowed, or if an event referenced
	// something that could not be resolved to an index.
	Finish() ([]byte, error)
}

// Open opens the class file at path, memory-mapping it where the platform
// allows. The caller must call Close when done.
//
// Example:
//
//	r, err := classfile.Open("Main.class", classfile.OpenOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
func Open(path string, opts OpenOptions) (Reader, error) {
	return reader.Open(path, opts)
}

// OpenBytes parses a class file held in memory. The Reader borrows buf; the
// caller must keep it alive and unmodified while the Reader is in use.
func OpenBytes(buf []byte, opts OpenOptions) (Reader, error) {
	return reader.OpenBytes(buf, opts)
}

// NewWriter creates an empty Writer. Feed it events, either by hand to
// synthesize a class from scratch or from a Reader's Accept, and call
// Finish for the bytes.
func NewWriter(opts WriteOptions) Writer {
	return writer.NewWriter(opts)
}

// Transform reads a class file, pipes its events through the visitor chain
// built by wrap, and serializes the result. wrap receives the terminal
// Writer and returns the head of the chain; a nil wrap copies the class
// unchanged.
//
// Example:
//
//	out, err := classfile.Transform(data, classfile.OpenOptions{}, classfile.WriteOptions{},
//	    func(next types.ClassVisitor) types.ClassVisitor {
//	        return &types.ForwardingClassVisitor{Next: next}
//	    })
func Transform(data []byte, ropts OpenOptions, wopts WriteOptions, wrap func(types.ClassVisitor) types.ClassVisitor) ([]byte, error) {
	r, err := OpenBytes(data, ropts)
	if err != nil {
		return nil, err
	}
	w := NewWriter(wopts)
	var head types.ClassVisitor = w
	if wrap != nil {
		head = wrap(w)
	}
	if err := r.Accept(head); err != nil {
		return nil, err
	}
	return w.Finish()
}
