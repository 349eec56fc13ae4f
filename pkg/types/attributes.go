package types

// Attribute is a decoded or opaque attribute payload. Recognized attribute
// names decode into the concrete types below; everything else travels as a
// RawAttribute so unknown kinds round-trip byte-for-byte.
type Attribute interface {
	// AttributeName returns the attribute's name as stored in the pool.
	AttributeName() JavaString
}

// RawAttribute carries the unmodified payload of an attribute the decoder
// has no structural knowledge of. Data may embed constant pool indices, so
// writing a RawAttribute requires an index-preserved pool.
type RawAttribute struct {
	Name JavaString
	Data []byte
}

func (a *RawAttribute) AttributeName() JavaString { return a.Name }

// ConstantValueAttr is a field's ConstantValue attribute.
type ConstantValueAttr struct {
	Value Const
}

// ExceptionHandler is one entry of a Code attribute's exception table.
// CatchType is the zero value for a catch-all handler.
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType JavaString
}

// Code is a method's Code attribute. Bytecode is the raw instruction region
// borrowed from the source buffer; instruction-level decoding is opt-in via
// MethodVisitor.VisitCode. Attrs holds the nested attributes
// (LineNumberTable, LocalVariableTable, StackMapTable, ...), decoded or raw.
type Code struct {
	MaxStack  uint16
	MaxLocals uint16
	Bytecode  []byte
	Handlers  []ExceptionHandler
	Attrs     []Attribute
}

// ExceptionsAttr lists a method's declared thrown exception class names.
type ExceptionsAttr struct {
	Classes []JavaString
}

// SourceFileAttr names the source file the class was compiled from.
type SourceFileAttr struct {
	Name JavaString
}

// SourceDebugExtensionAttr carries the raw debug extension blob.
type SourceDebugExtensionAttr struct {
	Data JavaString
}

// SignatureAttr is a generic signature on a class, field, or method.
type SignatureAttr struct {
	Signature JavaString
}

// SyntheticAttr marks a compiler-generated member.
type SyntheticAttr struct{}

// DeprecatedAttr marks a deprecated class or member.
type DeprecatedAttr struct{}

// LineNumber maps a bytecode offset to a source line.
type LineNumber struct {
	StartPC uint16
	Line    uint16
}

// LineNumberTableAttr is a Code attribute's line number table.
type LineNumberTableAttr struct {
	Entries []LineNumber
}

// LocalVariable describes one local variable debug entry.
type LocalVariable struct {
	StartPC    uint16
	Length     uint16
	Name       JavaString
	Descriptor JavaString
	Slot       uint16
}

// LocalVariableTableAttr is a Code attribute's local variable table. It also
// models LocalVariableTypeTable, whose layout is identical with signatures
// in place of descriptors; Types distinguishes the two.
type LocalVariableTableAttr struct {
	Types   bool
	Entries []LocalVariable
}

// EnclosingMethodAttr records the immediately enclosing method of a local
// or anonymous class. Method is the zero value when the class is not
// enclosed by a method.
type EnclosingMethodAttr struct {
	Class  JavaString
	Method NameAndType
}

// NestHostAttr names the nest host class.
type NestHostAttr struct {
	Class JavaString
}

// NestMembersAttr lists the classes of this class's nest.
type NestMembersAttr struct {
	Classes []JavaString
}

// PermittedSubclassesAttr lists the permitted direct subclasses of a sealed
// class.
type PermittedSubclassesAttr struct {
	Classes []JavaString
}

// InnerClass is one InnerClasses entry. OuterName and InnerName are zero
// for anonymous and local classes as the format prescribes.
type InnerClass struct {
	Name      JavaString
	OuterName JavaString
	InnerName JavaString
	Access    AccessFlags
}

// InnerClassesAttr records the inner-class relationships this class
// participates in.
type InnerClassesAttr struct {
	Classes []InnerClass
}

// BootstrapMethod is one BootstrapMethods entry: the bootstrap handle and
// its static arguments.
type BootstrapMethod struct {
	Handle Handle
	Args   []Const
}

// BootstrapMethodsAttr is the class's bootstrap method table, referenced by
// index from Dynamic and InvokeDynamic constants.
type BootstrapMethodsAttr struct {
	Methods []BootstrapMethod
}

// MethodParameter is one MethodParameters entry. Name is zero for an
// unnamed parameter.
type MethodParameter struct {
	Name   JavaString
	Access AccessFlags
}

// MethodParametersAttr records formal parameter names and flags.
type MethodParametersAttr struct {
	Parameters []MethodParameter
}

// Annotation is a decoded annotation: a field descriptor naming the
// annotation type plus named element values.
type Annotation struct {
	Descriptor JavaString
	Values     []ElementValuePair
}

// ElementValuePair is one named element of an annotation.
type ElementValuePair struct {
	Name  JavaString
	Value ElementValue
}

// ElementValue is an annotation element value: a primitive or string
// constant, an enum constant, a class literal, a nested annotation, or an
// array of element values.
type ElementValue interface{ isElementValue() }

// ConstElement is a primitive or string element value. Tag is the element
// tag byte ('B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', or 's') and controls
// how Value re-encodes; e.g. a 'Z' boolean is stored as an IntConst.
type ConstElement struct {
	Tag   byte
	Value Const
}

// EnumElement is an enum constant element value.
type EnumElement struct {
	TypeName  JavaString
	ConstName JavaString
}

// ClassElement is a class literal element value holding a return descriptor.
type ClassElement struct {
	Descriptor JavaString
}

// AnnotationElement is a nested annotation element value.
type AnnotationElement struct {
	Annotation Annotation
}

// ArrayElement is an array element value.
type ArrayElement struct {
	Values []ElementValue
}

func (ConstElement) isElementValue()      {}
func (EnumElement) isElementValue()       {}
func (ClassElement) isElementValue()      {}
func (AnnotationElement) isElementValue() {}
func (ArrayElement) isElementValue()      {}

// AnnotationsAttr is a RuntimeVisibleAnnotations or
// RuntimeInvisibleAnnotations attribute.
type AnnotationsAttr struct {
	Visible     bool
	Annotations []Annotation
}

// ParameterAnnotationsAttr is a RuntimeVisibleParameterAnnotations or
// RuntimeInvisibleParameterAnnotations attribute. Parameters holds one
// annotation list per annotable parameter; trailing parameters with no
// annotations still occupy a slot so the count round-trips.
type ParameterAnnotationsAttr struct {
	Visible    bool
	Parameters [][]Annotation
}

// AnnotationDefaultAttr is an annotation method's default element value.
type AnnotationDefaultAttr struct {
	Value ElementValue
}

func (a *ConstantValueAttr) AttributeName() JavaString    { return StringOf("ConstantValue") }
func (a *Code) AttributeName() JavaString                 { return StringOf("Code") }
func (a *ExceptionsAttr) AttributeName() JavaString       { return StringOf("Exceptions") }
func (a *SourceFileAttr) AttributeName() JavaString       { return StringOf("SourceFile") }
func (a *SignatureAttr) AttributeName() JavaString        { return StringOf("Signature") }
func (a *SyntheticAttr) AttributeName() JavaString        { return StringOf("Synthetic") }
func (a *DeprecatedAttr) AttributeName() JavaString       { return StringOf("Deprecated") }
func (a *LineNumberTableAttr) AttributeName() JavaString  { return StringOf("LineNumberTable") }
func (a *EnclosingMethodAttr) AttributeName() JavaString  { return StringOf("EnclosingMethod") }
func (a *NestHostAttr) AttributeName() JavaString         { return StringOf("NestHost") }
func (a *NestMembersAttr) AttributeName() JavaString      { return StringOf("NestMembers") }
func (a *InnerClassesAttr) AttributeName() JavaString     { return StringOf("InnerClasses") }
func (a *BootstrapMethodsAttr) AttributeName() JavaString { return StringOf("BootstrapMethods") }
func (a *MethodParametersAttr) AttributeName() JavaString { return StringOf("MethodParameters") }
func (a *AnnotationDefaultAttr) AttributeName() JavaString {
	return StringOf("AnnotationDefault")
}

func (a *SourceDebugExtensionAttr) AttributeName() JavaString {
	return StringOf("SourceDebugExtension")
}

func (a *PermittedSubclassesAttr) AttributeName() JavaString {
	return StringOf("PermittedSubclasses")
}

func (a *LocalVariableTableAttr) AttributeName() JavaString {
	if a.Types {
		return StringOf("LocalVariableTypeTable")
	}
	return StringOf("LocalVariableTable")
}

func (a *AnnotationsAttr) AttributeName() JavaString {
	if a.Visible {
		return StringOf("RuntimeVisibleAnnotations")
	}
	return StringOf("RuntimeInvisibleAnnotations")
}

func (a *ParameterAnnotationsAttr) AttributeName() JavaString {
	if a.Visible {
		return StringOf("RuntimeVisibleParameterAnnotations")
	}
	return StringOf("RuntimeInvisibleParameterAnnotations")
}
