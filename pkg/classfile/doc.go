/*
Package classfile reads, transforms, and writes JVM class files.

# Quick Start

Inspect a class without decoding its body:

	r, err := classfile.Open("Main.class", classfile.OpenOptions{})
	if err != nil {
	    log.Fatal(err)
	}
	defer r.Close()

	name, _ := r.ClassName()
	fmt.Println(name, r.MajorVersion())

Copy a class byte-for-byte through the event pipeline:

	out, err := classfile.Transform(data, classfile.OpenOptions{}, classfile.WriteOptions{}, nil)

# Events

A Reader streams a class to a types.ClassVisitor in file order: the class
header, each field, each method, class attributes, then the final end event.
A transformer is any visitor that forwards to a downstream sink, usually by
embedding the forwarding visitors in pkg/types and overriding what it wants
to change. Returning a nil sub-visitor skips a scope, which in a pipeline
drops it from the output.

Decoding is lazy throughout. The constant pool resolves entries on access,
method bodies stay opaque byte regions unless a sink opts into instruction
events, and annotation payloads decompose only when delivered.

# Strings

Constant pool strings use the JVM's Modified UTF-8 encoding and are not
always valid text. types.JavaString keeps the raw bytes and decodes on
demand, so a string that does not decode still round-trips exactly.

# Unknown Attributes

Attributes the library has no decoder for travel as types.RawAttribute and
are reproduced unchanged, which works because a Writer fed from a Reader
preserves every source pool index. Decoders and encoders for additional
attribute kinds can be registered per name in the options.
*/
package classfile
