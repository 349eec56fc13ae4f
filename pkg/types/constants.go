package types

import "strconv"

// ConstantTag identifies the kind of a constant pool entry. The values are
// the tag bytes from the class file format.
type ConstantTag uint8

const (
	TagUtf8               ConstantTag = 1
	TagInteger            ConstantTag = 3
	TagFloat              ConstantTag = 4
	TagLong               ConstantTag = 5
	TagDouble             ConstantTag = 6
	TagClass              ConstantTag = 7
	TagString             ConstantTag = 8
	TagFieldRef           ConstantTag = 9
	TagMethodRef          ConstantTag = 10
	TagInterfaceMethodRef ConstantTag = 11
	TagNameAndType        ConstantTag = 12
	TagMethodHandle       ConstantTag = 15
	TagMethodType         ConstantTag = 16
	TagDynamic            ConstantTag = 17
	TagInvokeDynamic      ConstantTag = 18
	TagModule             ConstantTag = 19
	TagPackage            ConstantTag = 20
)

var tagNames = map[ConstantTag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldRef:           "Fieldref",
	TagMethodRef:          "Methodref",
	TagInterfaceMethodRef: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
	TagMethodHandle:       "MethodHandle",
	TagMethodType:         "MethodType",
	TagDynamic:            "Dynamic",
	TagInvokeDynamic:      "InvokeDynamic",
	TagModule:             "Module",
	TagPackage:            "Package",
}

// Known reports whether t is a constant kind defined by the format.
func (t ConstantTag) Known() bool {
	_, ok := tagNames[t]
	return ok
}

// Wide reports whether entries of this kind occupy two pool slots.
func (t ConstantTag) Wide() bool { return t == TagLong || t == TagDouble }

func (t ConstantTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "UNKNOWN_TAG_" + strconv.Itoa(int(t))
}

// HandleKind is the reference kind of a MethodHandle constant (JVMS table
// 5.4.3.5). Valid kinds are 1 through 9.
type HandleKind uint8

const (
	HandleGetField         HandleKind = 1
	HandleGetStatic        HandleKind = 2
	HandlePutField         HandleKind = 3
	HandlePutStatic        HandleKind = 4
	HandleInvokeVirtual    HandleKind = 5
	HandleInvokeStatic     HandleKind = 6
	HandleInvokeSpecial    HandleKind = 7
	HandleNewInvokeSpecial HandleKind = 8
	HandleInvokeInterface  HandleKind = 9
)

// Valid reports whether k is one of the nine defined reference kinds.
func (k HandleKind) Valid() bool { return k >= HandleGetField && k <= HandleInvokeInterface }

// FieldKind reports whether the handle references a field rather than a method.
func (k HandleKind) FieldKind() bool { return k >= HandleGetField && k <= HandlePutStatic }

var handleKindNames = [...]string{
	HandleGetField:         "getfield",
	HandleGetStatic:        "getstatic",
	HandlePutField:         "putfield",
	HandlePutStatic:        "putstatic",
	HandleInvokeVirtual:    "invokevirtual",
	HandleInvokeStatic:     "invokestatic",
	HandleInvokeSpecial:    "invokespecial",
	HandleNewInvokeSpecial: "newinvokespecial",
	HandleInvokeInterface:  "invokeinterface",
}

func (k HandleKind) String() string {
	if k.Valid() {
		return handleKindNames[k]
	}
	return "UNKNOWN_KIND_" + strconv.Itoa(int(k))
}
