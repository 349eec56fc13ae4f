// Package format holds the fixed numbers of the JVM class file layout:
// magic, version bounds, constant tag payload sizes, attribute names, and
// the opcode operand table. It is independent of the public API so the
// decoders and encoders can share one source of truth.
package format

import "github.com/Earthcomputer/classfile/pkg/types"

const (
	// Magic is the four-byte signature at the start of every class file.
	Magic = 0xCAFEBABE

	// LatestMajorVersion is the newest class file major version this
	// module knows the full attribute set of (Java 25). Newer files are
	// rejected unless the caller opts in.
	LatestMajorVersion = 69

	// MinMajorVersion is the oldest defined major version (JDK 1.0.2).
	MinMajorVersion = 45

	// HeaderSize is the fixed prefix before the constant pool: magic (4),
	// minor version (2), major version (2).
	HeaderSize = 8

	// PoolCountOffset is the offset of the constant_pool_count field.
	PoolCountOffset = 8

	// PoolStart is the offset of the first constant pool entry.
	PoolStart = 10

	// MaxPoolSlots is the largest representable pool count; usable
	// entries are capped one below it since index 0 is reserved.
	MaxPoolSlots = 0xFFFF
)

// Attribute names defined by the format. Names not listed here still
// round-trip as opaque payloads.
const (
	AttrConstantValue                        = "ConstantValue"
	AttrCode                                 = "Code"
	AttrStackMapTable                        = "StackMapTable"
	AttrExceptions                           = "Exceptions"
	AttrInnerClasses                         = "InnerClasses"
	AttrEnclosingMethod                      = "EnclosingMethod"
	AttrSynthetic                            = "Synthetic"
	AttrSignature                            = "Signature"
	AttrSourceFile                           = "SourceFile"
	AttrSourceDebugExtension                 = "SourceDebugExtension"
	AttrLineNumberTable                      = "LineNumberTable"
	AttrLocalVariableTable                   = "LocalVariableTable"
	AttrLocalVariableTypeTable               = "LocalVariableTypeTable"
	AttrDeprecated                           = "Deprecated"
	AttrRuntimeVisibleAnnotations            = "RuntimeVisibleAnnotations"
	AttrRuntimeInvisibleAnnotations          = "RuntimeInvisibleAnnotations"
	AttrRuntimeVisibleParameterAnnotations   = "RuntimeVisibleParameterAnnotations"
	AttrRuntimeInvisibleParameterAnnotations = "RuntimeInvisibleParameterAnnotations"
	AttrRuntimeVisibleTypeAnnotations        = "RuntimeVisibleTypeAnnotations"
	AttrRuntimeInvisibleTypeAnnotations      = "RuntimeInvisibleTypeAnnotations"
	AttrAnnotationDefault                    = "AnnotationDefault"
	AttrBootstrapMethods                     = "BootstrapMethods"
	AttrMethodParameters                     = "MethodParameters"
	AttrModule                               = "Module"
	AttrModulePackages                       = "ModulePackages"
	AttrModuleMainClass                      = "ModuleMainClass"
	AttrNestHost                             = "NestHost"
	AttrNestMembers                          = "NestMembers"
	AttrRecord                               = "Record"
	AttrPermittedSubclasses                  = "PermittedSubclasses"
)

// TagPayloadSize returns the fixed payload size (excluding the tag byte) of
// a constant kind, or -1 for Utf8 whose payload is length-prefixed, and -2
// for unknown tags.
func TagPayloadSize(tag types.ConstantTag) int {
	switch tag {
	case types.TagUtf8:
		return -1
	case types.TagInteger, types.TagFloat:
		return 4
	case types.TagLong, types.TagDouble:
		return 8
	case types.TagClass, types.TagString, types.TagMethodType,
		types.TagModule, types.TagPackage:
		return 2
	case types.TagMethodHandle:
		return 3
	case types.TagFieldRef, types.TagMethodRef, types.TagInterfaceMethodRef,
		types.TagNameAndType, types.TagDynamic, types.TagInvokeDynamic:
		return 4
	default:
		return -2
	}
}
