/*
Package types defines the public vocabulary of the classfile module: typed
errors, the JavaString constant-pool string, access flags, the constant pool
interfaces for both read and write sides, attribute payload types, the
instruction model, and the event/visitor contract that readers, writers and
transformers share.

# Visitor pipelines

A read-transform-write chain is assembled by implementing ClassVisitor (and
the per-scope visitors it hands out) and pointing each stage at the next:

	r, _ := classfile.OpenBytes(data, types.OpenOptions{})
	w := classfile.NewWriter(types.WriteOptions{})
	err := r.Accept(&types.ForwardingClassVisitor{Next: w})
	out, err := w.Finish()

The Forwarding* types forward every event by default, so a transformer only
overrides the events it rewrites; unknown attribute kinds introduced by
future format versions flow through untouched.
*/
package types
