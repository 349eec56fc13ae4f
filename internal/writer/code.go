package writer

import (
	"encoding/binary"
	"math"

	"github.com/Earthcomputer/classfile/internal/format"
	"github.com/Earthcomputer/classfile/pkg/types"
)

// codeAssembler rebuilds a bytecode region from instruction events. Source
// PCs carried by the events are remapped to the new layout, including branch
// targets, the exception table, and the PC-bearing debug tables.
type codeAssembler struct {
	b    *Builder
	code *types.Code
	done func(*types.Code) error
	ins  []types.Instruction
}

func newCodeAssembler(b *Builder, template *types.Code, done func(*types.Code) error) *codeAssembler {
	return &codeAssembler{b: b, code: template, done: done}
}

func (a *codeAssembler) VisitInsn(ins types.Instruction) error {
	a.ins = append(a.ins, ins)
	return nil
}

func (a *codeAssembler) VisitEnd() error {
	bytecode, pcMap, err := assemble(a.ins, a.b)
	if err != nil {
		return err
	}
	out := &types.Code{
		MaxStack:  a.code.MaxStack,
		MaxLocals: a.code.MaxLocals,
		Bytecode:  bytecode,
	}
	out.Handlers = make([]types.ExceptionHandler, len(a.code.Handlers))
	for i, h := range a.code.Handlers {
		start, err := mapPC16(pcMap, int(h.StartPC))
		if err != nil {
			return err
		}
		end, err := mapPC16(pcMap, int(h.EndPC))
		if err != nil {
			return err
		}
		handler, err := mapPC16(pcMap, int(h.HandlerPC))
		if err != nil {
			return err
		}
		out.Handlers[i] = types.ExceptionHandler{
			StartPC: start, EndPC: end, HandlerPC: handler, CatchType: h.CatchType,
		}
	}
	for _, attr := range a.code.Attrs {
		mapped, keep, err := remapCodeAttr(attr, pcMap)
		if err != nil {
			return err
		}
		if keep {
			out.Attrs = append(out.Attrs, mapped)
		}
	}
	return a.done(out)
}

// remapCodeAttr rewrites source PCs inside a nested Code attribute. Raw
// payloads that embed PCs the assembler cannot see (stack map frames, type
// annotations) are dropped rather than emitted stale.
func remapCodeAttr(attr types.Attribute, pcMap map[int]int) (types.Attribute, bool, error) {
	switch a := attr.(type) {
	case *types.LineNumberTableAttr:
		out := &types.LineNumberTableAttr{Entries: make([]types.LineNumber, len(a.Entries))}
		for i, e := range a.Entries {
			pc, err := mapPC16(pcMap, int(e.StartPC))
			if err != nil {
				return nil, false, err
			}
			out.Entries[i] = types.LineNumber{StartPC: pc, Line: e.Line}
		}
		return out, true, nil
	case *types.LocalVariableTableAttr:
		out := &types.LocalVariableTableAttr{Types: a.Types, Entries: make([]types.LocalVariable, len(a.Entries))}
		for i, e := range a.Entries {
			start, err := mapPC16(pcMap, int(e.StartPC))
			if err != nil {
				return nil, false, err
			}
			end, err := mapPC16(pcMap, int(e.StartPC)+int(e.Length))
			if err != nil {
				return nil, false, err
			}
			out.Entries[i] = types.LocalVariable{
				StartPC: start, Length: end - start,
				Name: e.Name, Descriptor: e.Descriptor, Slot: e.Slot,
			}
		}
		return out, true, nil
	case *types.RawAttribute:
		switch a.Name.Key() {
		case format.AttrStackMapTable,
			format.AttrRuntimeVisibleTypeAnnotations,
			format.AttrRuntimeInvisibleTypeAnnotations:
			return nil, false, nil
		}
	}
	return attr, true, nil
}

func mapPC16(pcMap map[int]int, old int) (uint16, error) {
	pc, ok := pcMap[old]
	if !ok {
		return 0, types.Errorf(types.ErrKindUnresolved, -1,
			"offset %d does not fall on an instruction boundary", old)
	}
	if pc > 0xFFFF {
		return 0, types.Errorf(types.ErrKindOverflow, -1,
			"remapped offset %d exceeds the 16-bit table limit", pc)
	}
	return uint16(pc), nil
}

// layout holds the per-instruction results of the sizing pass.
type layout struct {
	newPC int
	// index is the interned pool operand, if the instruction has one.
	index uint16
	// wide and wideLoad mark the chosen encodings.
	wide     bool
	wideLoad bool
}

// assemble lays out and encodes the instruction sequence. It returns the
// region and the map from source PCs to new PCs, which includes the mapping
// of the source end offset to the new region length.
func assemble(ins []types.Instruction, b *Builder) ([]byte, map[int]int, error) {
	lay := make([]layout, len(ins))
	pcMap := make(map[int]int, len(ins)+1)

	// Sizing pass: intern pool operands, pick wide encodings, and assign
	// new PCs. Widths never depend on branch distances, so one pass
	// settles the layout.
	newPC := 0
	oldEnd := 0
	for i := range ins {
		in := &ins[i]
		l := &lay[i]
		l.newPC = newPC
		pcMap[in.PC] = newPC

		var err error
		switch format.Shapes[in.Op] {
		case format.ShapeLdc, format.ShapeConst16:
			if l.index, err = b.Const(in.Const); err != nil {
				return nil, nil, err
			}
			isWide := types.ConstWide(in.Const)
			l.wideLoad = isWide || in.Op == types.OpLdcW || in.Op == types.OpLdc2W || l.index > 0xFF
		case format.ShapeField:
			l.index, err = b.FieldRef(in.Member)
		case format.ShapeMethod:
			if in.IsInterface && in.Op != types.OpInvokeVirtual {
				l.index, err = b.InterfaceMethodRef(in.Member)
			} else {
				l.index, err = b.MethodRef(in.Member)
			}
		case format.ShapeIfaceMethod:
			l.index, err = b.InterfaceMethodRef(in.Member)
		case format.ShapeIndy:
			l.index, err = b.InvokeDynamic(in.Dynamic)
		case format.ShapeType, format.ShapeMultiANewArray:
			l.index, err = b.Class(in.Type)
		case format.ShapeVar:
			l.wide = in.Wide || in.Var > 0xFF
		case format.ShapeIinc:
			l.wide = in.Wide || in.Var > 0xFF || in.Value < math.MinInt8 || in.Value > math.MaxInt8
		}
		if err != nil {
			return nil, nil, err
		}

		width, oldWidth := insWidths(in, l, newPC)
		newPC += width
		oldEnd = in.PC + oldWidth
	}
	pcMap[oldEnd] = newPC

	// Encoding pass.
	out := make([]byte, 0, newPC)
	for i := range ins {
		var err error
		if out, err = appendInsn(out, &ins[i], &lay[i], pcMap); err != nil {
			return nil, nil, err
		}
	}
	return out, pcMap, nil
}

// insWidths returns the encoded width at the new PC and the width the
// instruction had in the source region, which fixes the source end offset.
func insWidths(in *types.Instruction, l *layout, newPC int) (width, oldWidth int) {
	switch format.Shapes[in.Op] {
	case format.ShapeNone:
		return 1, 1
	case format.ShapeI8, format.ShapeNewArray:
		return 2, 2
	case format.ShapeI16, format.ShapeBranch16, format.ShapeField,
		format.ShapeMethod, format.ShapeType:
		return 3, 3
	case format.ShapeMultiANewArray:
		return 4, 4
	case format.ShapeBranch32, format.ShapeIfaceMethod, format.ShapeIndy:
		return 5, 5
	case format.ShapeVar:
		width = 2
		if l.wide {
			width = 4
		}
		oldWidth = 2
		if in.Wide {
			oldWidth = 4
		}
		return width, oldWidth
	case format.ShapeIinc:
		width = 3
		if l.wide {
			width = 6
		}
		oldWidth = 3
		if in.Wide {
			oldWidth = 6
		}
		return width, oldWidth
	case format.ShapeLdc, format.ShapeConst16:
		width = 2
		if l.wideLoad {
			width = 3
		}
		oldWidth = 2
		if in.Op != types.OpLdc {
			oldWidth = 3
		}
		return width, oldWidth
	case format.ShapeTableSwitch:
		n := len(in.Switch.Targets)
		return 1 + pad4(newPC+1) + 12 + 4*n, 1 + pad4(in.PC+1) + 12 + 4*n
	case format.ShapeLookupSwitch:
		n := len(in.Switch.Targets)
		return 1 + pad4(newPC+1) + 8 + 8*n, 1 + pad4(in.PC+1) + 8 + 8*n
	}
	return 1, 1
}

func pad4(off int) int { return (4 - off%4) % 4 }

func appendInsn(dst []byte, in *types.Instruction, l *layout, pcMap map[int]int) ([]byte, error) {
	switch format.Shapes[in.Op] {
	case format.ShapeNone:
		return append(dst, byte(in.Op)), nil

	case format.ShapeVar:
		if l.wide {
			dst = append(dst, byte(types.OpWide), byte(in.Op))
			return binary.BigEndian.AppendUint16(dst, in.Var), nil
		}
		return append(dst, byte(in.Op), byte(in.Var)), nil

	case format.ShapeI8:
		return append(dst, byte(in.Op), byte(int8(in.Value))), nil

	case format.ShapeI16:
		dst = append(dst, byte(in.Op))
		return binary.BigEndian.AppendUint16(dst, uint16(int16(in.Value))), nil

	case format.ShapeIinc:
		if l.wide {
			dst = append(dst, byte(types.OpWide), byte(in.Op))
			dst = binary.BigEndian.AppendUint16(dst, in.Var)
			return binary.BigEndian.AppendUint16(dst, uint16(int16(in.Value))), nil
		}
		return append(dst, byte(in.Op), byte(in.Var), byte(int8(in.Value))), nil

	case format.ShapeLdc, format.ShapeConst16:
		if !l.wideLoad {
			return append(dst, byte(types.OpLdc), byte(l.index)), nil
		}
		op := types.OpLdcW
		if types.ConstWide(in.Const) {
			op = types.OpLdc2W
		}
		dst = append(dst, byte(op))
		return binary.BigEndian.AppendUint16(dst, l.index), nil

	case format.ShapeField, format.ShapeMethod, format.ShapeType:
		dst = append(dst, byte(in.Op))
		return binary.BigEndian.AppendUint16(dst, l.index), nil

	case format.ShapeIfaceMethod:
		dst = append(dst, byte(in.Op))
		dst = binary.BigEndian.AppendUint16(dst, l.index)
		return append(dst, in.Count, 0), nil

	case format.ShapeIndy:
		dst = append(dst, byte(in.Op))
		dst = binary.BigEndian.AppendUint16(dst, l.index)
		return append(dst, 0, 0), nil

	case format.ShapeNewArray:
		return append(dst, byte(in.Op), in.ArrayType), nil

	case format.ShapeMultiANewArray:
		dst = append(dst, byte(in.Op))
		dst = binary.BigEndian.AppendUint16(dst, l.index)
		return append(dst, in.Dims), nil

	case format.ShapeBranch16:
		target, err := mapTarget(pcMap, in.Target)
		if err != nil {
			return nil, err
		}
		off := target - l.newPC
		if off < math.MinInt16 || off > math.MaxInt16 {
			return nil, types.Errorf(types.ErrKindOverflow, -1,
				"branch offset %d does not fit in 16 bits", off)
		}
		dst = append(dst, byte(in.Op))
		return binary.BigEndian.AppendUint16(dst, uint16(int16(off))), nil

	case format.ShapeBranch32:
		target, err := mapTarget(pcMap, in.Target)
		if err != nil {
			return nil, err
		}
		dst = append(dst, byte(in.Op))
		return binary.BigEndian.AppendUint32(dst, uint32(int32(target-l.newPC))), nil

	case format.ShapeTableSwitch:
		dst = append(dst, byte(in.Op))
		for p := 0; p < pad4(l.newPC+1); p++ {
			dst = append(dst, 0)
		}
		def, err := mapTarget(pcMap, in.Switch.Default)
		if err != nil {
			return nil, err
		}
		dst = binary.BigEndian.AppendUint32(dst, uint32(int32(def-l.newPC)))
		dst = binary.BigEndian.AppendUint32(dst, uint32(in.Switch.Low))
		dst = binary.BigEndian.AppendUint32(dst, uint32(in.Switch.High))
		for _, t := range in.Switch.Targets {
			target, err := mapTarget(pcMap, t)
			if err != nil {
				return nil, err
			}
			dst = binary.BigEndian.AppendUint32(dst, uint32(int32(target-l.newPC)))
		}
		return dst, nil

	case format.ShapeLookupSwitch:
		dst = append(dst, byte(in.Op))
		for p := 0; p < pad4(l.newPC+1); p++ {
			dst = append(dst, 0)
		}
		def, err := mapTarget(pcMap, in.Switch.Default)
		if err != nil {
			return nil, err
		}
		dst = binary.BigEndian.AppendUint32(dst, uint32(int32(def-l.newPC)))
		dst = binary.BigEndian.AppendUint32(dst, uint32(int32(len(in.Switch.Keys))))
		for i, key := range in.Switch.Keys {
			target, err := mapTarget(pcMap, in.Switch.Targets[i])
			if err != nil {
				return nil, err
			}
			dst = binary.BigEndian.AppendUint32(dst, uint32(key))
			dst = binary.BigEndian.AppendUint32(dst, uint32(int32(target-l.newPC)))
		}
		return dst, nil
	}
	return nil, types.Errorf(types.ErrKindState, -1, "cannot encode opcode %v", in.Op)
}

func mapTarget(pcMap map[int]int, old int) (int, error) {
	pc, ok := pcMap[old]
	if !ok {
		return 0, types.Errorf(types.ErrKindUnresolved, -1,
			"branch target %d does not fall on an instruction boundary", old)
	}
	return pc, nil
}
