package reader

import (
	"github.com/Earthcomputer/classfile/internal/buf"
	"github.com/Earthcomputer/classfile/internal/format"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// builtinDecoders maps attribute names to the structural decoders this
// package ships. Names absent from the map pass through as RawAttribute.
// Code and the runtime annotation attributes are dispatched by the traversal
// itself and are deliberately not listed.
var builtinDecoders = map[string]types.AttrDecoder{
	format.AttrConstantValue:        decodeConstantValue,
	format.AttrExceptions:           decodeExceptions,
	format.AttrSourceFile:           decodeSourceFile,
	format.AttrSourceDebugExtension: decodeSourceDebugExtension,
	format.AttrSignature:            decodeSignature,
	format.AttrSynthetic:            decodeSynthetic,
	format.AttrDeprecated:           decodeDeprecated,
	format.AttrLineNumberTable:      decodeLineNumberTable,
	format.AttrLocalVariableTable:   decodeLocalVariableTable,
	format.AttrLocalVariableTypeTable: func(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
		return decodeLocalVariables(data, pool, true)
	},
	format.AttrEnclosingMethod:     decodeEnclosingMethod,
	format.AttrNestHost:            decodeNestHost,
	format.AttrNestMembers:         decodeNestMembers,
	format.AttrPermittedSubclasses: decodePermittedSubclasses,
	format.AttrInnerClasses:        decodeInnerClasses,
	format.AttrBootstrapMethods:    decodeBootstrapMethods,
	format.AttrMethodParameters:    decodeMethodParameters,
	format.AttrAnnotationDefault:   decodeAnnotationDefault,
}

// finish rejects attributes whose declared length exceeds their structure.
func finish(c *buf.Cursor, name string) error {
	if c.Remaining() != 0 {
		return types.Errorf(types.ErrKindAttribute, c.Pos(),
			"%s attribute has %d trailing bytes", name, c.Remaining())
	}
	return nil
}

func decodeConstantValue(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	idx, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	v, err := pool.Const(idx)
	if err != nil {
		return nil, err
	}
	if err := finish(c, format.AttrConstantValue); err != nil {
		return nil, err
	}
	return &types.ConstantValueAttr{Value: v}, nil
}

// classList reads a u16 count followed by that many Class indices.
func classList(c *buf.Cursor, pool types.ConstantPool) ([]types.JavaString, error) {
	n, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	names := make([]types.JavaString, n)
	for i := range names {
		idx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		if names[i], err = pool.ClassName(idx); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func decodeExceptions(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	classes, err := classList(c, pool)
	if err != nil {
		return nil, err
	}
	if err := finish(c, format.AttrExceptions); err != nil {
		return nil, err
	}
	return &types.ExceptionsAttr{Classes: classes}, nil
}

func decodeSourceFile(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	idx, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	file, err := pool.Utf8(idx)
	if err != nil {
		return nil, err
	}
	if err := finish(c, format.AttrSourceFile); err != nil {
		return nil, err
	}
	return &types.SourceFileAttr{Name: file}, nil
}

func decodeSourceDebugExtension(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	return &types.SourceDebugExtensionAttr{Data: types.BytesOf(data)}, nil
}

func decodeSignature(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	idx, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	sig, err := pool.Utf8(idx)
	if err != nil {
		return nil, err
	}
	if err := finish(c, format.AttrSignature); err != nil {
		return nil, err
	}
	return &types.SignatureAttr{Signature: sig}, nil
}

func decodeSynthetic(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	if len(data) != 0 {
		return nil, types.Errorf(types.ErrKindAttribute, 0,
			"Synthetic attribute has nonzero length %d", len(data))
	}
	return &types.SyntheticAttr{}, nil
}

func decodeDeprecated(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	if len(data) != 0 {
		return nil, types.Errorf(types.ErrKindAttribute, 0,
			"Deprecated attribute has nonzero length %d", len(data))
	}
	return &types.DeprecatedAttr{}, nil
}

func decodeLineNumberTable(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	n, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	entries := make([]types.LineNumber, n)
	for i := range entries {
		if entries[i].StartPC, err = c.ReadU16(); err != nil {
			return nil, err
		}
		if entries[i].Line, err = c.ReadU16(); err != nil {
			return nil, err
		}
	}
	if err := finish(c, format.AttrLineNumberTable); err != nil {
		return nil, err
	}
	return &types.LineNumberTableAttr{Entries: entries}, nil
}

func decodeLocalVariableTable(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	return decodeLocalVariables(data, pool, false)
}

func decodeLocalVariables(data []byte, pool types.ConstantPool, typeTable bool) (types.Attribute, error) {
	c := buf.New(data)
	n, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	entries := make([]types.LocalVariable, n)
	for i := range entries {
		e := &entries[i]
		if e.StartPC, err = c.ReadU16(); err != nil {
			return nil, err
		}
		if e.Length, err = c.ReadU16(); err != nil {
			return nil, err
		}
		nameIdx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		descIdx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		if e.Slot, err = c.ReadU16(); err != nil {
			return nil, err
		}
		if e.Name, err = pool.Utf8(nameIdx); err != nil {
			return nil, err
		}
		if e.Descriptor, err = pool.Utf8(descIdx); err != nil {
			return nil, err
		}
	}
	attrName := format.AttrLocalVariableTable
	if typeTable {
		attrName = format.AttrLocalVariableTypeTable
	}
	if err := finish(c, attrName); err != nil {
		return nil, err
	}
	return &types.LocalVariableTableAttr{Types: typeTable, Entries: entries}, nil
}

func decodeEnclosingMethod(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	classIdx, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	methodIdx, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	class, err := pool.ClassName(classIdx)
	if err != nil {
		return nil, err
	}
	var method types.NameAndType
	if methodIdx != 0 {
		if method, err = pool.NameAndType(methodIdx); err != nil {
			return nil, err
		}
	}
	if err := finish(c, format.AttrEnclosingMethod); err != nil {
		return nil, err
	}
	return &types.EnclosingMethodAttr{Class: class, Method: method}, nil
}

func decodeNestHost(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	idx, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	class, err := pool.ClassName(idx)
	if err != nil {
		return nil, err
	}
	if err := finish(c, format.AttrNestHost); err != nil {
		return nil, err
	}
	return &types.NestHostAttr{Class: class}, nil
}

func decodeNestMembers(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	classes, err := classList(c, pool)
	if err != nil {
		return nil, err
	}
	if err := finish(c, format.AttrNestMembers); err != nil {
		return nil, err
	}
	return &types.NestMembersAttr{Classes: classes}, nil
}

func decodePermittedSubclasses(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	classes, err := classList(c, pool)
	if err != nil {
		return nil, err
	}
	if err := finish(c, format.AttrPermittedSubclasses); err != nil {
		return nil, err
	}
	return &types.PermittedSubclassesAttr{Classes: classes}, nil
}

func decodeInnerClasses(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	n, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	classes := make([]types.InnerClass, n)
	for i := range classes {
		e := &classes[i]
		innerIdx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		outerIdx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		nameIdx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		flags, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		if e.Name, err = pool.ClassName(innerIdx); err != nil {
			return nil, err
		}
		if e.OuterName, err = pool.OptionalClassName(outerIdx); err != nil {
			return nil, err
		}
		if e.InnerName, err = pool.OptionalUtf8(nameIdx); err != nil {
			return nil, err
		}
		e.Access = types.AccessFlags(flags)
	}
	if err := finish(c, format.AttrInnerClasses); err != nil {
		return nil, err
	}
	return &types.InnerClassesAttr{Classes: classes}, nil
}

func decodeBootstrapMethods(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	n, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	methods := make([]types.BootstrapMethod, n)
	for i := range methods {
		m := &methods[i]
		handleIdx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		if m.Handle, err = pool.MethodHandle(handleIdx); err != nil {
			return nil, err
		}
		argc, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		m.Args = make([]types.Const, argc)
		for j := range m.Args {
			argIdx, err := c.ReadU16()
			if err != nil {
				return nil, err
			}
			if m.Args[j], err = pool.Const(argIdx); err != nil {
				return nil, err
			}
		}
	}
	if err := finish(c, format.AttrBootstrapMethods); err != nil {
		return nil, err
	}
	return &types.BootstrapMethodsAttr{Methods: methods}, nil
}

func decodeMethodParameters(name types.JavaString, data []byte, pool types.ConstantPool) (types.Attribute, error) {
	c := buf.New(data)
	n, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	params := make([]types.MethodParameter, n)
	for i := range params {
		nameIdx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		flags, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		if params[i].Name, err = pool.OptionalUtf8(nameIdx); err != nil {
			return nil, err
		}
		params[i].Access = types.AccessFlags(flags)
	}
	if err := finish(c, format.AttrMethodParameters); err != nil {
		return nil, err
	}
	return &types.MethodParametersAttr{Parameters: params}, nil
}
