package writer

import (
	"encoding/binary"

	"github.com/Earthcomputer/classfile/internal/format"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// builtinEncoders maps attribute names to the encoders this package ships,
// mirroring the reader's decoder set.
var builtinEncoders map[string]types.AttrEncoder

func init() {
	builtinEncoders = map[string]types.AttrEncoder{
		format.AttrConstantValue:          encodeConstantValue,
		format.AttrCode:                   encodeCode,
		format.AttrExceptions:             encodeExceptions,
		format.AttrSourceFile:             encodeSourceFile,
		format.AttrSourceDebugExtension:   encodeSourceDebugExtension,
		format.AttrSignature:              encodeSignature,
		format.AttrSynthetic:              encodeMarker,
		format.AttrDeprecated:             encodeMarker,
		format.AttrLineNumberTable:        encodeLineNumberTable,
		format.AttrLocalVariableTable:     encodeLocalVariableTable,
		format.AttrLocalVariableTypeTable: encodeLocalVariableTable,
		format.AttrEnclosingMethod:        encodeEnclosingMethod,
		format.AttrNestHost:               encodeNestHost,
		format.AttrNestMembers:            encodeNestMembers,
		format.AttrPermittedSubclasses:    encodePermittedSubclasses,
		format.AttrInnerClasses:           encodeInnerClasses,
		format.AttrBootstrapMethods:       encodeBootstrapMethods,
		format.AttrMethodParameters:       encodeMethodParameters,
		format.AttrAnnotationDefault:      encodeAnnotationDefault,

		format.AttrRuntimeVisibleAnnotations:   encodeAnnotations,
		format.AttrRuntimeInvisibleAnnotations: encodeAnnotations,

		format.AttrRuntimeVisibleParameterAnnotations:   encodeParameterAnnotations,
		format.AttrRuntimeInvisibleParameterAnnotations: encodeParameterAnnotations,
	}
}

func wrongAttrType(attr types.Attribute) error {
	return types.Errorf(types.ErrKindState, -1,
		"attribute named %v has unexpected type %T", attr.AttributeName(), attr)
}

func appendIndex(dst []byte, idx uint16, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return binary.BigEndian.AppendUint16(dst, idx), nil
}

func encodeConstantValue(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.ConstantValueAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	idx, err := b.Const(a.Value)
	return appendIndex(nil, idx, err)
}

func encodeExceptions(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.ExceptionsAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	return encodeClassList(a.Classes, b)
}

func encodeSourceFile(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.SourceFileAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	idx, err := b.Utf8(a.Name)
	return appendIndex(nil, idx, err)
}

func encodeSourceDebugExtension(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.SourceDebugExtensionAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	return a.Data.Raw(), nil
}

func encodeSignature(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.SignatureAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	idx, err := b.Utf8(a.Signature)
	return appendIndex(nil, idx, err)
}

// encodeMarker handles the zero-length Synthetic and Deprecated attributes.
func encodeMarker(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	switch attr.(type) {
	case *types.SyntheticAttr, *types.DeprecatedAttr:
		return nil, nil
	}
	return nil, wrongAttrType(attr)
}

func encodeLineNumberTable(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.LineNumberTableAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	out := binary.BigEndian.AppendUint16(nil, uint16(len(a.Entries)))
	for _, e := range a.Entries {
		out = binary.BigEndian.AppendUint16(out, e.StartPC)
		out = binary.BigEndian.AppendUint16(out, e.Line)
	}
	return out, nil
}

func encodeLocalVariableTable(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.LocalVariableTableAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	out := binary.BigEndian.AppendUint16(nil, uint16(len(a.Entries)))
	for _, e := range a.Entries {
		out = binary.BigEndian.AppendUint16(out, e.StartPC)
		out = binary.BigEndian.AppendUint16(out, e.Length)
		nameIdx, err := b.Utf8(e.Name)
		if out, err = appendIndex(out, nameIdx, err); err != nil {
			return nil, err
		}
		descIdx, err := b.Utf8(e.Descriptor)
		if out, err = appendIndex(out, descIdx, err); err != nil {
			return nil, err
		}
		out = binary.BigEndian.AppendUint16(out, e.Slot)
	}
	return out, nil
}

func encodeEnclosingMethod(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.EnclosingMethodAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	classIdx, err := b.Class(a.Class)
	out, err := appendIndex(nil, classIdx, err)
	if err != nil {
		return nil, err
	}
	if a.Method.Name.IsZero() {
		return binary.BigEndian.AppendUint16(out, 0), nil
	}
	methodIdx, err := b.NameAndType(a.Method)
	return appendIndex(out, methodIdx, err)
}

func encodeNestHost(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.NestHostAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	idx, err := b.Class(a.Class)
	return appendIndex(nil, idx, err)
}

func encodeClassList(classes []types.JavaString, b types.PoolBuilder) ([]byte, error) {
	out := binary.BigEndian.AppendUint16(nil, uint16(len(classes)))
	for _, name := range classes {
		idx, err := b.Class(name)
		if out, err = appendIndex(out, idx, err); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encodeNestMembers(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.NestMembersAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	return encodeClassList(a.Classes, b)
}

func encodePermittedSubclasses(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.PermittedSubclassesAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	return encodeClassList(a.Classes, b)
}

func encodeInnerClasses(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.InnerClassesAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	out := binary.BigEndian.AppendUint16(nil, uint16(len(a.Classes)))
	for _, e := range a.Classes {
		innerIdx, err := b.Class(e.Name)
		if out, err = appendIndex(out, innerIdx, err); err != nil {
			return nil, err
		}
		var outerIdx uint16
		if !e.OuterName.IsZero() {
			if outerIdx, err = b.Class(e.OuterName); err != nil {
				return nil, err
			}
		}
		out = binary.BigEndian.AppendUint16(out, outerIdx)
		var nameIdx uint16
		if !e.InnerName.IsZero() {
			if nameIdx, err = b.Utf8(e.InnerName); err != nil {
				return nil, err
			}
		}
		out = binary.BigEndian.AppendUint16(out, nameIdx)
		out = binary.BigEndian.AppendUint16(out, uint16(e.Access))
	}
	return out, nil
}

func encodeBootstrapMethods(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.BootstrapMethodsAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	out := binary.BigEndian.AppendUint16(nil, uint16(len(a.Methods)))
	for _, m := range a.Methods {
		handleIdx, err := b.MethodHandle(m.Handle)
		if out, err = appendIndex(out, handleIdx, err); err != nil {
			return nil, err
		}
		out = binary.BigEndian.AppendUint16(out, uint16(len(m.Args)))
		for _, arg := range m.Args {
			argIdx, err := b.Const(arg)
			if out, err = appendIndex(out, argIdx, err); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func encodeMethodParameters(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.MethodParametersAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	out := []byte{byte(len(a.Parameters))}
	for _, p := range a.Parameters {
		var nameIdx uint16
		var err error
		if !p.Name.IsZero() {
			if nameIdx, err = b.Utf8(p.Name); err != nil {
				return nil, err
			}
		}
		out = binary.BigEndian.AppendUint16(out, nameIdx)
		out = binary.BigEndian.AppendUint16(out, uint16(p.Access))
	}
	return out, nil
}

func encodeAnnotationDefault(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.AnnotationDefaultAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	return appendElementValue(nil, a.Value, b)
}

func encodeAnnotations(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.AnnotationsAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	return appendAnnotationList(nil, a.Annotations, b)
}

func encodeParameterAnnotations(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.ParameterAnnotationsAttr)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	if len(a.Parameters) > 0xFF {
		return nil, types.Errorf(types.ErrKindAttribute, -1,
			"%d annotable parameters exceed the count byte", len(a.Parameters))
	}
	out := []byte{uint8(len(a.Parameters))}
	var err error
	for _, anns := range a.Parameters {
		if out, err = appendAnnotationList(out, anns, b); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// encodeCode serializes a Code attribute whose Bytecode region is already
// laid out. The instruction-event path assembles the region first and then
// reuses this encoder.
func encodeCode(attr types.Attribute, b types.PoolBuilder) ([]byte, error) {
	a, ok := attr.(*types.Code)
	if !ok {
		return nil, wrongAttrType(attr)
	}
	if a.Bytecode == nil {
		return nil, types.Errorf(types.ErrKindUnresolved, -1,
			"Code attribute has no bytecode region")
	}
	out := binary.BigEndian.AppendUint16(nil, a.MaxStack)
	out = binary.BigEndian.AppendUint16(out, a.MaxLocals)
	out = binary.BigEndian.AppendUint32(out, uint32(len(a.Bytecode)))
	out = append(out, a.Bytecode...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(a.Handlers)))
	for _, h := range a.Handlers {
		out = binary.BigEndian.AppendUint16(out, h.StartPC)
		out = binary.BigEndian.AppendUint16(out, h.EndPC)
		out = binary.BigEndian.AppendUint16(out, h.HandlerPC)
		var catchIdx uint16
		var err error
		if !h.CatchType.IsZero() {
			if catchIdx, err = b.Class(h.CatchType); err != nil {
				return nil, err
			}
		}
		out = binary.BigEndian.AppendUint16(out, catchIdx)
	}
	out = binary.BigEndian.AppendUint16(out, uint16(len(a.Attrs)))
	for _, nested := range a.Attrs {
		rec, err := encodeAttrRecord(nested, b, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, rec...)
	}
	return out, nil
}

// encodeAttrRecord produces a full attribute record: name index, length,
// payload. custom maps caller-supplied encoders, consulted before the
// built-ins; raw attributes bypass both.
func encodeAttrRecord(attr types.Attribute, b types.PoolBuilder, custom map[string]types.AttrEncoder) ([]byte, error) {
	name := attr.AttributeName()
	key := name.Key()

	var payload []byte
	var err error
	if enc, ok := custom[key]; ok && enc != nil {
		payload, err = enc(attr, b)
	} else if raw, ok := attr.(*types.RawAttribute); ok {
		payload = raw.Data
	} else if enc, ok := builtinEncoders[key]; ok {
		payload, err = enc(attr, b)
	} else {
		err = types.Errorf(types.ErrKindUnresolved, -1, "no encoder for attribute %v", name)
	}
	if err != nil {
		return nil, err
	}

	nameIdx, err := b.Utf8(name)
	if err != nil {
		return nil, err
	}
	out := binary.BigEndian.AppendUint16(nil, nameIdx)
	out = binary.BigEndian.AppendUint32(out, uint32(len(payload)))
	return append(out, payload...), nil
}
