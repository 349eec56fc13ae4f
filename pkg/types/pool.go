package types

// MemberRef is a resolved field, method, or interface-method reference.
type MemberRef struct {
	Owner      JavaString
	Name       JavaString
	Descriptor JavaString
}

// NameAndType is a resolved NameAndType constant.
type NameAndType struct {
	Name       JavaString
	Descriptor JavaString
}

// Handle is a resolved MethodHandle constant.
type Handle struct {
	Kind       HandleKind
	Owner      JavaString
	Name       JavaString
	Descriptor JavaString
	// IsInterface reports whether the referenced member lives on an
	// interface (the underlying entry was an InterfaceMethodref).
	IsInterface bool
}

// DynamicRef is a resolved Dynamic or InvokeDynamic constant. The bootstrap
// method itself lives in the class's BootstrapMethods attribute and is
// referenced by index.
type DynamicRef struct {
	BootstrapIndex uint16
	Name           JavaString
	Descriptor     JavaString
}

// Const is a loadable constant value: an ldc operand, a ConstantValue
// attribute payload, or a bootstrap method argument.
type Const interface{ isConst() }

type (
	// IntConst is an Integer constant.
	IntConst int32
	// FloatConst is a Float constant.
	FloatConst float32
	// LongConst is a Long constant.
	LongConst int64
	// DoubleConst is a Double constant.
	DoubleConst float64
	// StringConst is a String constant.
	StringConst struct{ Value JavaString }
	// ClassConst is a Class constant holding an internal class name.
	ClassConst struct{ Name JavaString }
	// MethodTypeConst is a MethodType constant holding a method descriptor.
	MethodTypeConst struct{ Descriptor JavaString }
	// HandleConst is a MethodHandle constant.
	HandleConst struct{ Handle Handle }
	// DynamicConst is a Dynamic constant.
	DynamicConst struct{ Ref DynamicRef }
)

func (IntConst) isConst()        {}
func (FloatConst) isConst()      {}
func (LongConst) isConst()       {}
func (DoubleConst) isConst()     {}
func (StringConst) isConst()     {}
func (ClassConst) isConst()      {}
func (MethodTypeConst) isConst() {}
func (HandleConst) isConst()     {}
func (DynamicConst) isConst()    {}

// Wide reports whether the constant occupies two pool slots (long/double),
// which also selects ldc2_w over ldc when loaded.
func ConstWide(c Const) bool {
	switch c.(type) {
	case LongConst, DoubleConst:
		return true
	}
	return false
}

// PoolEntry is the unresolved form of one constant pool slot: the tag plus
// raw operands, with cross-references kept as indices. This is the shape
// used for index-preserving pool copies; resolved lookups go through the
// ConstantPool accessors instead.
type PoolEntry struct {
	Tag  ConstantTag
	Utf8 JavaString // Utf8 payload
	Int  int32      // Integer payload
	Long int64      // Long payload
	F32  float32    // Float payload
	F64  float64    // Double payload
	Kind HandleKind // MethodHandle reference kind
	// Ref1/Ref2 are index operands; their meaning depends on Tag (e.g. a
	// Fieldref's class index and name-and-type index).
	Ref1 uint16
	Ref2 uint16
}

// ConstantPool is the read-side pool: an indexed table with lazy, validated
// lookup. Valid indices start at 1; long/double entries occupy two slots,
// the second of which is unusable. All accessors are fallible: indices are
// validated against the pool length and the entry kind per access.
type ConstantPool interface {
	// Count returns the pool count as written in the file: usable entries
	// plus one for the reserved index 0 plus one per long/double shadow slot.
	Count() int

	// Tag returns the constant kind at index.
	Tag(index uint16) (ConstantTag, error)

	// Entry returns the unresolved entry at index with reference operands
	// kept as indices.
	Entry(index uint16) (PoolEntry, error)

	Utf8(index uint16) (JavaString, error)
	Integer(index uint16) (int32, error)
	Float(index uint16) (float32, error)
	Long(index uint16) (int64, error)
	Double(index uint16) (float64, error)
	// ClassName resolves a Class entry to its internal name.
	ClassName(index uint16) (JavaString, error)
	// String resolves a String entry to its value.
	String(index uint16) (JavaString, error)
	FieldRef(index uint16) (MemberRef, error)
	MethodRef(index uint16) (MemberRef, error)
	InterfaceMethodRef(index uint16) (MemberRef, error)
	// AnyMethodRef accepts either a Methodref or an InterfaceMethodref and
	// reports which one it was.
	AnyMethodRef(index uint16) (ref MemberRef, isInterface bool, err error)
	NameAndType(index uint16) (NameAndType, error)
	MethodHandle(index uint16) (Handle, error)
	MethodType(index uint16) (JavaString, error)
	Dynamic(index uint16) (DynamicRef, error)
	InvokeDynamic(index uint16) (DynamicRef, error)
	ModuleName(index uint16) (JavaString, error)
	PackageName(index uint16) (JavaString, error)

	// Const resolves a loadable constant (an ldc operand or bootstrap
	// method argument) of any loadable kind.
	Const(index uint16) (Const, error)

	// OptionalClassName is ClassName with index 0 meaning absent.
	OptionalClassName(index uint16) (JavaString, error)
	// OptionalUtf8 is Utf8 with index 0 meaning absent.
	OptionalUtf8(index uint16) (JavaString, error)
}
