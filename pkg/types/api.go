package types

// -----------------------------------------------------------------------------
// Event/visitor contract
// -----------------------------------------------------------------------------
//
// A Reader drives a full class traversal into a ClassVisitor in file order:
// VisitClass first, then per-field events (each bracketed by the returned
// FieldVisitor's lifecycle ending in VisitEnd), then per-method events, then
// class-level attributes, then the final VisitEnd. A sink must not assume
// the traversal completed until VisitEnd is observed.
//
// Returning a nil sub-visitor from VisitField/VisitMethod/VisitAnnotation/
// VisitParameterAnnotation/VisitCode skips that scope: the producer will not decode or deliver its
// interior. In a transformer chain this drops the scope from the output.
//
// Any error returned from a visit method aborts the traversal immediately;
// events already delivered are not retracted.

// ClassInfo is the class-start event payload.
type ClassInfo struct {
	MinorVersion uint16
	MajorVersion uint16
	Access       AccessFlags
	Name         JavaString
	// SuperName is the zero value for classes without a superclass
	// (java/lang/Object and module-info).
	SuperName  JavaString
	Interfaces []JavaString
	// Pool is the source constant pool, or nil when the class is being
	// synthesized rather than read. A writer uses it to preserve pool
	// indices so opaque payloads (raw attributes, undecoded bytecode)
	// remain valid in the output.
	Pool ConstantPool
}

// Member is the field-start or method-start event payload.
type Member struct {
	Access     AccessFlags
	Name       JavaString
	Descriptor JavaString
}

// ClassVisitor receives class-scope events.
type ClassVisitor interface {
	VisitClass(info ClassInfo) error
	VisitField(m Member) (FieldVisitor, error)
	VisitMethod(m Member) (MethodVisitor, error)
	// VisitAnnotation starts one class-level annotation from a
	// Runtime(In)VisibleAnnotations attribute.
	VisitAnnotation(visible bool, descriptor JavaString) (AnnotationVisitor, error)
	VisitAttribute(attr Attribute) error
	VisitEnd() error
}

// FieldVisitor receives the events of one field scope.
type FieldVisitor interface {
	VisitAnnotation(visible bool, descriptor JavaString) (AnnotationVisitor, error)
	VisitAttribute(attr Attribute) error
	VisitEnd() error
}

// MethodVisitor receives the events of one method scope.
type MethodVisitor interface {
	// VisitCode delivers the method's Code attribute. Returning a non-nil
	// CodeVisitor opts into instruction-level traversal; with a nil return
	// the bytecode stays an opaque region. A consumer that re-serializes
	// uses code.Bytecode verbatim when it is non-nil and otherwise
	// reassembles from the instruction events it received.
	VisitCode(code *Code) (CodeVisitor, error)
	VisitAnnotation(visible bool, descriptor JavaString) (AnnotationVisitor, error)
	// VisitAnnotableParameterCount reports the parameter count of one
	// Runtime(In)VisibleParameterAnnotations attribute, before that
	// attribute's annotations are delivered. The count can exceed the
	// index of the last annotated parameter.
	VisitAnnotableParameterCount(visible bool, count uint8) error
	// VisitParameterAnnotation starts one annotation of the method
	// parameter at index param. A nil visitor drops the annotation.
	VisitParameterAnnotation(visible bool, param uint8, descriptor JavaString) (AnnotationVisitor, error)
	VisitAttribute(attr Attribute) error
	VisitEnd() error
}

// CodeVisitor receives instruction-level events for one Code attribute, in
// bytecode order.
type CodeVisitor interface {
	VisitInsn(ins Instruction) error
	VisitEnd() error
}

// AnnotationVisitor receives the element values of one annotation scope.
// Inside an array scope element names are the zero value.
type AnnotationVisitor interface {
	// VisitValue delivers a primitive or string element value. tag is the
	// element tag byte ('B','C','D','F','I','J','S','Z','s').
	VisitValue(name JavaString, tag byte, value Const) error
	VisitEnum(name, typeName, constName JavaString) error
	VisitClass(name, descriptor JavaString) error
	VisitNested(name, descriptor JavaString) (AnnotationVisitor, error)
	VisitArray(name JavaString) (AnnotationVisitor, error)
	VisitEnd() error
}

// -----------------------------------------------------------------------------
// Attribute codec registry
// -----------------------------------------------------------------------------

// AttrDecoder turns a raw attribute payload into a structured Attribute.
// pool resolves any indices the payload embeds.
type AttrDecoder func(name JavaString, data []byte, pool ConstantPool) (Attribute, error)

// AttrEncoder serializes a structured Attribute back to payload bytes,
// interning any constants it references through b.
type AttrEncoder func(attr Attribute, b PoolBuilder) ([]byte, error)

// PoolBuilder is the write-side constant pool: it interns values into
// entries, deduplicates by exact value, and assigns stable indices.
type PoolBuilder interface {
	Utf8(s JavaString) (uint16, error)
	Integer(v int32) (uint16, error)
	Float(v float32) (uint16, error)
	Long(v int64) (uint16, error)
	Double(v float64) (uint16, error)
	Class(name JavaString) (uint16, error)
	String(value JavaString) (uint16, error)
	FieldRef(ref MemberRef) (uint16, error)
	MethodRef(ref MemberRef) (uint16, error)
	InterfaceMethodRef(ref MemberRef) (uint16, error)
	NameAndType(nt NameAndType) (uint16, error)
	MethodHandle(h Handle) (uint16, error)
	MethodType(descriptor JavaString) (uint16, error)
	Dynamic(ref DynamicRef) (uint16, error)
	InvokeDynamic(ref DynamicRef) (uint16, error)
	Module(name JavaString) (uint16, error)
	Package(name JavaString) (uint16, error)
	// Const interns a loadable constant of any kind.
	Const(c Const) (uint16, error)
}

// -----------------------------------------------------------------------------
// Options
// -----------------------------------------------------------------------------

// OpenOptions configures a reader. The zero value is a sensible default.
type OpenOptions struct {
	// SkipCode suppresses Code attribute events entirely.
	SkipCode bool
	// SkipDebug suppresses debug-only attributes: SourceFile,
	// SourceDebugExtension, LineNumberTable, LocalVariableTable and
	// LocalVariableTypeTable.
	SkipDebug bool
	// AllowUnknownVersions accepts class files with a major version newer
	// than the library knows. Structure shared with known versions still
	// decodes; unknown attribute kinds pass through raw as usual.
	AllowUnknownVersions bool
	// MaxAnnotationNesting caps recursion when decoding annotation element
	// values. 0 means the package default.
	MaxAnnotationNesting int
	// AttrDecoders maps attribute names (raw-byte keys, see
	// JavaString.Key) to custom decoders, overriding or extending the
	// built-in set. A nil decoder disables the built-in one so the
	// attribute passes through raw.
	AttrDecoders map[string]AttrDecoder
}

// WriteOptions configures a writer. The zero value is a sensible default.
type WriteOptions struct {
	// AttrEncoders maps attribute names to custom encoders, overriding or
	// extending the built-in set.
	AttrEncoders map[string]AttrEncoder
}
