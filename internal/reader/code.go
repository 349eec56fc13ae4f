package reader

import (
	"github.com/Earthcomputer/classfile/internal/buf"
	"github.com/Earthcomputer/classfile/internal/format"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// streamInstructions decodes a bytecode region and delivers one event per
// instruction. Branch and switch targets are absolute offsets within the
// region, matching Instruction.PC values seen elsewhere in the stream.
func streamInstructions(bytecode []byte, pool types.ConstantPool, cv types.CodeVisitor) error {
	c := buf.New(bytecode)
	for c.Remaining() > 0 {
		ins, err := decodeInstruction(c, pool)
		if err != nil {
			return err
		}
		if err := cv.VisitInsn(ins); err != nil {
			return err
		}
	}
	return cv.VisitEnd()
}

func decodeInstruction(c *buf.Cursor, pool types.ConstantPool) (types.Instruction, error) {
	pc := c.Pos()
	opByte, err := c.ReadU8()
	if err != nil {
		return types.Instruction{}, err
	}
	if int(opByte) >= len(format.Shapes) {
		return types.Instruction{}, types.Errorf(types.ErrKindFormat, pc,
			"unknown opcode %d", opByte)
	}
	op := types.Opcode(opByte)
	ins := types.Instruction{PC: pc, Op: op}

	switch format.Shapes[op] {
	case format.ShapeNone:

	case format.ShapeVar:
		v, err := c.ReadU8()
		if err != nil {
			return ins, err
		}
		ins.Var = uint16(v)

	case format.ShapeI8:
		v, err := c.ReadI8()
		if err != nil {
			return ins, err
		}
		ins.Value = int32(v)

	case format.ShapeI16:
		v, err := c.ReadI16()
		if err != nil {
			return ins, err
		}
		ins.Value = int32(v)

	case format.ShapeIinc:
		v, err := c.ReadU8()
		if err != nil {
			return ins, err
		}
		delta, err := c.ReadI8()
		if err != nil {
			return ins, err
		}
		ins.Var = uint16(v)
		ins.Value = int32(delta)

	case format.ShapeLdc:
		idx, err := c.ReadU8()
		if err != nil {
			return ins, err
		}
		if ins.Const, err = loadableAt(pool, uint16(idx), false, pc); err != nil {
			return ins, err
		}

	case format.ShapeConst16:
		idx, err := c.ReadU16()
		if err != nil {
			return ins, err
		}
		if ins.Const, err = loadableAt(pool, idx, op == types.OpLdc2W, pc); err != nil {
			return ins, err
		}

	case format.ShapeField:
		idx, err := c.ReadU16()
		if err != nil {
			return ins, err
		}
		if ins.Member, err = pool.FieldRef(idx); err != nil {
			return ins, err
		}

	case format.ShapeMethod:
		idx, err := c.ReadU16()
		if err != nil {
			return ins, err
		}
		if op == types.OpInvokeVirtual {
			ins.Member, err = pool.MethodRef(idx)
		} else {
			// invokespecial and invokestatic may reference interface
			// methods since major version 52.
			ins.Member, ins.IsInterface, err = pool.AnyMethodRef(idx)
		}
		if err != nil {
			return ins, err
		}

	case format.ShapeIfaceMethod:
		idx, err := c.ReadU16()
		if err != nil {
			return ins, err
		}
		if ins.Member, err = pool.InterfaceMethodRef(idx); err != nil {
			return ins, err
		}
		ins.IsInterface = true
		if ins.Count, err = c.ReadU8(); err != nil {
			return ins, err
		}
		if err := c.Skip(1); err != nil {
			return ins, err
		}

	case format.ShapeIndy:
		idx, err := c.ReadU16()
		if err != nil {
			return ins, err
		}
		if ins.Dynamic, err = pool.InvokeDynamic(idx); err != nil {
			return ins, err
		}
		if err := c.Skip(2); err != nil {
			return ins, err
		}

	case format.ShapeType:
		idx, err := c.ReadU16()
		if err != nil {
			return ins, err
		}
		if ins.Type, err = pool.ClassName(idx); err != nil {
			return ins, err
		}

	case format.ShapeNewArray:
		atype, err := c.ReadU8()
		if err != nil {
			return ins, err
		}
		if atype < types.ArrayTypeBoolean || atype > types.ArrayTypeLong {
			return ins, types.Errorf(types.ErrKindFormat, pc,
				"newarray has invalid array type %d", atype)
		}
		ins.ArrayType = atype

	case format.ShapeMultiANewArray:
		idx, err := c.ReadU16()
		if err != nil {
			return ins, err
		}
		if ins.Type, err = pool.ClassName(idx); err != nil {
			return ins, err
		}
		if ins.Dims, err = c.ReadU8(); err != nil {
			return ins, err
		}

	case format.ShapeBranch16:
		off, err := c.ReadI16()
		if err != nil {
			return ins, err
		}
		ins.Target = pc + int(off)

	case format.ShapeBranch32:
		off, err := c.ReadI32()
		if err != nil {
			return ins, err
		}
		ins.Target = pc + int(off)

	case format.ShapeTableSwitch:
		if err := skipPadding(c); err != nil {
			return ins, err
		}
		def, err := c.ReadI32()
		if err != nil {
			return ins, err
		}
		low, err := c.ReadI32()
		if err != nil {
			return ins, err
		}
		high, err := c.ReadI32()
		if err != nil {
			return ins, err
		}
		if low > high {
			return ins, types.Errorf(types.ErrKindFormat, pc,
				"tableswitch has low %d > high %d", low, high)
		}
		targets := make([]int, int(high)-int(low)+1)
		for i := range targets {
			off, err := c.ReadI32()
			if err != nil {
				return ins, err
			}
			targets[i] = pc + int(off)
		}
		ins.Switch = &types.SwitchTable{
			Default: pc + int(def),
			Low:     low,
			High:    high,
			Targets: targets,
		}

	case format.ShapeLookupSwitch:
		if err := skipPadding(c); err != nil {
			return ins, err
		}
		def, err := c.ReadI32()
		if err != nil {
			return ins, err
		}
		npairs, err := c.ReadI32()
		if err != nil {
			return ins, err
		}
		if npairs < 0 {
			return ins, types.Errorf(types.ErrKindFormat, pc,
				"lookupswitch has negative pair count %d", npairs)
		}
		keys := make([]int32, npairs)
		targets := make([]int, npairs)
		for i := range keys {
			if keys[i], err = c.ReadI32(); err != nil {
				return ins, err
			}
			off, err := c.ReadI32()
			if err != nil {
				return ins, err
			}
			targets[i] = pc + int(off)
		}
		ins.Switch = &types.SwitchTable{Default: pc + int(def), Keys: keys, Targets: targets}

	case format.ShapeWide:
		wideOp, err := c.ReadU8()
		if err != nil {
			return ins, err
		}
		if !format.WideAllowed(types.Opcode(wideOp)) {
			return ins, types.Errorf(types.ErrKindFormat, pc,
				"wide prefix before %v", types.Opcode(wideOp))
		}
		ins.Op = types.Opcode(wideOp)
		ins.Wide = true
		if ins.Var, err = c.ReadU16(); err != nil {
			return ins, err
		}
		if ins.Op == types.OpIInc {
			delta, err := c.ReadI16()
			if err != nil {
				return ins, err
			}
			ins.Value = int32(delta)
		}
	}
	return ins, nil
}

// skipPadding consumes the 0-3 alignment bytes after a switch opcode so the
// operands that follow start on a 4-byte boundary of the code region.
func skipPadding(c *buf.Cursor) error {
	return c.Skip((4 - c.Pos()%4) % 4)
}

// loadableAt resolves an ldc-family operand and checks its width matches the
// opcode.
func loadableAt(pool types.ConstantPool, index uint16, wide bool, pc int) (types.Const, error) {
	v, err := pool.Const(index)
	if err != nil {
		return nil, err
	}
	if types.ConstWide(v) != wide {
		return nil, types.Errorf(types.ErrKindFormat, pc,
			"constant width does not match load opcode")
	}
	return v, nil
}
