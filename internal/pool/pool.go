// Package pool implements the read-side constant pool. A single forward
// scan records where each entry starts; everything else, including operand
// validation, happens lazily on access so that malformed entries the caller
// never touches cost nothing.
package pool

import (
	"github.com/Earthcomputer/classfile/internal/buf"
	"github.com/Earthcomputer/classfile/internal/format"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// Pool indexes the constant pool of a class file buffer. It borrows the
// buffer: JavaString values returned from accessors alias the underlying
// bytes and stay valid as long as the buffer does.
type Pool struct {
	data []byte
	// offs[i] is the offset of entry i's tag byte within data. Slot 0 and
	// the shadow slot after each long or double stay zero.
	offs []int
}

// Scan locates every entry of the constant pool starting at
// format.PoolStart. It validates just enough structure to find each entry;
// operands are checked by the accessors. The returned offset is the first
// byte after the pool.
func Scan(data []byte) (*Pool, int, error) {
	count, err := buf.U16At(data, format.PoolCountOffset)
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, types.Errorf(types.ErrKindFormat, format.PoolCountOffset, "constant pool count is zero")
	}

	c := buf.NewAt(data[format.PoolStart:], format.PoolStart)
	offs := make([]int, count)
	for i := 1; i < int(count); i++ {
		offs[i] = c.AbsPos()
		tag, err := c.ReadU8()
		if err != nil {
			return nil, 0, err
		}
		size := format.TagPayloadSize(types.ConstantTag(tag))
		switch size {
		case -2:
			return nil, 0, types.Errorf(types.ErrKindConstant, offs[i],
				"unknown constant tag %d at pool index %d", tag, i)
		case -1:
			n, err := c.ReadU16()
			if err != nil {
				return nil, 0, err
			}
			if err := c.Skip(int(n)); err != nil {
				return nil, 0, err
			}
		default:
			if err := c.Skip(size); err != nil {
				return nil, 0, err
			}
		}
		if types.ConstantTag(tag).Wide() {
			if i+1 >= int(count) {
				return nil, 0, types.Errorf(types.ErrKindConstant, offs[i],
					"%v constant at pool index %d has no room for its second slot",
					types.ConstantTag(tag), i)
			}
			i++
		}
	}
	return &Pool{data: data, offs: offs}, c.AbsPos(), nil
}

// Count returns the pool count as written in the file.
func (p *Pool) Count() int { return len(p.offs) }

// at validates index and returns the offset of the entry's tag byte.
func (p *Pool) at(index uint16) (int, error) {
	i := int(index)
	if i == 0 || i >= len(p.offs) || p.offs[i] == 0 {
		return 0, types.Errorf(types.ErrKindIndex, -1,
			"invalid constant pool index %d (pool count %d)", index, len(p.offs))
	}
	return p.offs[i], nil
}

// Tag returns the constant kind at index.
func (p *Pool) Tag(index uint16) (types.ConstantTag, error) {
	off, err := p.at(index)
	if err != nil {
		return 0, err
	}
	return types.ConstantTag(p.data[off]), nil
}

// operands returns a cursor over the entry's operand bytes after checking
// the entry has the wanted kind.
func (p *Pool) operands(index uint16, want types.ConstantTag) (*buf.Cursor, error) {
	off, err := p.at(index)
	if err != nil {
		return nil, err
	}
	if tag := types.ConstantTag(p.data[off]); tag != want {
		return nil, types.Errorf(types.ErrKindWrongKind, off,
			"constant pool index %d holds %v, want %v", index, tag, want)
	}
	return buf.NewAt(p.data[off+1:], off+1), nil
}

func (p *Pool) Utf8(index uint16) (types.JavaString, error) {
	c, err := p.operands(index, types.TagUtf8)
	if err != nil {
		return types.JavaString{}, err
	}
	n, err := c.ReadU16()
	if err != nil {
		return types.JavaString{}, err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		return types.JavaString{}, err
	}
	return types.BytesOf(b), nil
}

func (p *Pool) Integer(index uint16) (int32, error) {
	c, err := p.operands(index, types.TagInteger)
	if err != nil {
		return 0, err
	}
	return c.ReadI32()
}

func (p *Pool) Float(index uint16) (float32, error) {
	c, err := p.operands(index, types.TagFloat)
	if err != nil {
		return 0, err
	}
	return c.ReadF32()
}

func (p *Pool) Long(index uint16) (int64, error) {
	c, err := p.operands(index, types.TagLong)
	if err != nil {
		return 0, err
	}
	return c.ReadI64()
}

func (p *Pool) Double(index uint16) (float64, error) {
	c, err := p.operands(index, types.TagDouble)
	if err != nil {
		return 0, err
	}
	return c.ReadF64()
}

// utf8Ref resolves an entry whose single operand is a Utf8 index.
func (p *Pool) utf8Ref(index uint16, want types.ConstantTag) (types.JavaString, error) {
	c, err := p.operands(index, want)
	if err != nil {
		return types.JavaString{}, err
	}
	ref, err := c.ReadU16()
	if err != nil {
		return types.JavaString{}, err
	}
	return p.Utf8(ref)
}

func (p *Pool) ClassName(index uint16) (types.JavaString, error) {
	return p.utf8Ref(index, types.TagClass)
}

func (p *Pool) String(index uint16) (types.JavaString, error) {
	return p.utf8Ref(index, types.TagString)
}

func (p *Pool) MethodType(index uint16) (types.JavaString, error) {
	return p.utf8Ref(index, types.TagMethodType)
}

func (p *Pool) ModuleName(index uint16) (types.JavaString, error) {
	return p.utf8Ref(index, types.TagModule)
}

func (p *Pool) PackageName(index uint16) (types.JavaString, error) {
	return p.utf8Ref(index, types.TagPackage)
}

func (p *Pool) memberRef(index uint16, want types.ConstantTag) (types.MemberRef, error) {
	c, err := p.operands(index, want)
	if err != nil {
		return types.MemberRef{}, err
	}
	classIdx, err := c.ReadU16()
	if err != nil {
		return types.MemberRef{}, err
	}
	natIdx, err := c.ReadU16()
	if err != nil {
		return types.MemberRef{}, err
	}
	owner, err := p.ClassName(classIdx)
	if err != nil {
		return types.MemberRef{}, err
	}
	nat, err := p.NameAndType(natIdx)
	if err != nil {
		return types.MemberRef{}, err
	}
	return types.MemberRef{Owner: owner, Name: nat.Name, Descriptor: nat.Descriptor}, nil
}

func (p *Pool) FieldRef(index uint16) (types.MemberRef, error) {
	return p.memberRef(index, types.TagFieldRef)
}

func (p *Pool) MethodRef(index uint16) (types.MemberRef, error) {
	return p.memberRef(index, types.TagMethodRef)
}

func (p *Pool) InterfaceMethodRef(index uint16) (types.MemberRef, error) {
	return p.memberRef(index, types.TagInterfaceMethodRef)
}

func (p *Pool) AnyMethodRef(index uint16) (types.MemberRef, bool, error) {
	tag, err := p.Tag(index)
	if err != nil {
		return types.MemberRef{}, false, err
	}
	switch tag {
	case types.TagMethodRef:
		ref, err := p.memberRef(index, types.TagMethodRef)
		return ref, false, err
	case types.TagInterfaceMethodRef:
		ref, err := p.memberRef(index, types.TagInterfaceMethodRef)
		return ref, true, err
	}
	off, _ := p.at(index)
	return types.MemberRef{}, false, types.Errorf(types.ErrKindWrongKind, off,
		"constant pool index %d holds %v, want Methodref or InterfaceMethodref", index, tag)
}

func (p *Pool) NameAndType(index uint16) (types.NameAndType, error) {
	c, err := p.operands(index, types.TagNameAndType)
	if err != nil {
		return types.NameAndType{}, err
	}
	nameIdx, err := c.ReadU16()
	if err != nil {
		return types.NameAndType{}, err
	}
	descIdx, err := c.ReadU16()
	if err != nil {
		return types.NameAndType{}, err
	}
	name, err := p.Utf8(nameIdx)
	if err != nil {
		return types.NameAndType{}, err
	}
	desc, err := p.Utf8(descIdx)
	if err != nil {
		return types.NameAndType{}, err
	}
	return types.NameAndType{Name: name, Descriptor: desc}, nil
}

func (p *Pool) MethodHandle(index uint16) (types.Handle, error) {
	c, err := p.operands(index, types.TagMethodHandle)
	if err != nil {
		return types.Handle{}, err
	}
	kindByte, err := c.ReadU8()
	if err != nil {
		return types.Handle{}, err
	}
	refIdx, err := c.ReadU16()
	if err != nil {
		return types.Handle{}, err
	}
	kind := types.HandleKind(kindByte)
	if !kind.Valid() {
		off, _ := p.at(index)
		return types.Handle{}, types.Errorf(types.ErrKindConstant, off,
			"method handle at pool index %d has invalid reference kind %d", index, kindByte)
	}

	var ref types.MemberRef
	var isInterface bool
	switch kind {
	case types.HandleGetField, types.HandleGetStatic, types.HandlePutField, types.HandlePutStatic:
		ref, err = p.FieldRef(refIdx)
	case types.HandleInvokeVirtual, types.HandleNewInvokeSpecial:
		ref, err = p.MethodRef(refIdx)
	case types.HandleInvokeStatic, types.HandleInvokeSpecial:
		// Since major version 52 these may reference interface methods.
		ref, isInterface, err = p.AnyMethodRef(refIdx)
	case types.HandleInvokeInterface:
		ref, err = p.InterfaceMethodRef(refIdx)
		isInterface = true
	}
	if err != nil {
		return types.Handle{}, err
	}
	return types.Handle{
		Kind:        kind,
		Owner:       ref.Owner,
		Name:        ref.Name,
		Descriptor:  ref.Descriptor,
		IsInterface: isInterface,
	}, nil
}

func (p *Pool) dynamicRef(index uint16, want types.ConstantTag) (types.DynamicRef, error) {
	c, err := p.operands(index, want)
	if err != nil {
		return types.DynamicRef{}, err
	}
	bsm, err := c.ReadU16()
	if err != nil {
		return types.DynamicRef{}, err
	}
	natIdx, err := c.ReadU16()
	if err != nil {
		return types.DynamicRef{}, err
	}
	nat, err := p.NameAndType(natIdx)
	if err != nil {
		return types.DynamicRef{}, err
	}
	return types.DynamicRef{BootstrapIndex: bsm, Name: nat.Name, Descriptor: nat.Descriptor}, nil
}

func (p *Pool) Dynamic(index uint16) (types.DynamicRef, error) {
	return p.dynamicRef(index, types.TagDynamic)
}

func (p *Pool) InvokeDynamic(index uint16) (types.DynamicRef, error) {
	return p.dynamicRef(index, types.TagInvokeDynamic)
}

// Const resolves a loadable constant of any kind.
func (p *Pool) Const(index uint16) (types.Const, error) {
	tag, err := p.Tag(index)
	if err != nil {
		return nil, err
	}
	switch tag {
	case types.TagInteger:
		v, err := p.Integer(index)
		return types.IntConst(v), err
	case types.TagFloat:
		v, err := p.Float(index)
		return types.FloatConst(v), err
	case types.TagLong:
		v, err := p.Long(index)
		return types.LongConst(v), err
	case types.TagDouble:
		v, err := p.Double(index)
		return types.DoubleConst(v), err
	case types.TagString:
		v, err := p.String(index)
		return types.StringConst{Value: v}, err
	case types.TagClass:
		v, err := p.ClassName(index)
		return types.ClassConst{Name: v}, err
	case types.TagMethodType:
		v, err := p.MethodType(index)
		return types.MethodTypeConst{Descriptor: v}, err
	case types.TagMethodHandle:
		v, err := p.MethodHandle(index)
		return types.HandleConst{Handle: v}, err
	case types.TagDynamic:
		v, err := p.Dynamic(index)
		return types.DynamicConst{Ref: v}, err
	}
	off, _ := p.at(index)
	return nil, types.Errorf(types.ErrKindWrongKind, off,
		"constant pool index %d holds %v, which is not loadable", index, tag)
}

// OptionalClassName is ClassName with index 0 meaning absent.
func (p *Pool) OptionalClassName(index uint16) (types.JavaString, error) {
	if index == 0 {
		return types.JavaString{}, nil
	}
	return p.ClassName(index)
}

// OptionalUtf8 is Utf8 with index 0 meaning absent.
func (p *Pool) OptionalUtf8(index uint16) (types.JavaString, error) {
	if index == 0 {
		return types.JavaString{}, nil
	}
	return p.Utf8(index)
}

// Entry returns the unresolved form of the entry at index, with reference
// operands kept as pool indices.
func (p *Pool) Entry(index uint16) (types.PoolEntry, error) {
	off, err := p.at(index)
	if err != nil {
		return types.PoolEntry{}, err
	}
	tag := types.ConstantTag(p.data[off])
	c := buf.NewAt(p.data[off+1:], off+1)
	e := types.PoolEntry{Tag: tag}
	switch tag {
	case types.TagUtf8:
		n, err := c.ReadU16()
		if err != nil {
			return types.PoolEntry{}, err
		}
		b, err := c.ReadBytes(int(n))
		if err != nil {
			return types.PoolEntry{}, err
		}
		e.Utf8 = types.BytesOf(b)
	case types.TagInteger:
		e.Int, err = c.ReadI32()
	case types.TagFloat:
		e.F32, err = c.ReadF32()
	case types.TagLong:
		e.Long, err = c.ReadI64()
	case types.TagDouble:
		e.F64, err = c.ReadF64()
	case types.TagClass, types.TagString, types.TagMethodType, types.TagModule, types.TagPackage:
		e.Ref1, err = c.ReadU16()
	case types.TagMethodHandle:
		var kind uint8
		kind, err = c.ReadU8()
		if err == nil {
			e.Kind = types.HandleKind(kind)
			e.Ref1, err = c.ReadU16()
		}
	default:
		// Fieldref, Methodref, InterfaceMethodref, NameAndType, Dynamic,
		// InvokeDynamic all carry two index operands.
		e.Ref1, err = c.ReadU16()
		if err == nil {
			e.Ref2, err = c.ReadU16()
		}
	}
	if err != nil {
		return types.PoolEntry{}, err
	}
	return e, nil
}
