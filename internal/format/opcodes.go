package format

import "github.com/Earthcomputer/classfile/pkg/types"

// OpShape classifies how an opcode's operand bytes are laid out. The
// instruction decoder and the assembler both key off this table so the
// two cannot drift apart.
type OpShape uint8

const (
	// ShapeNone has no operand bytes.
	ShapeNone OpShape = iota

	// ShapeVar is a one-byte local variable index, widened to two bytes
	// under the wide prefix.
	ShapeVar

	// ShapeI8 is a one-byte signed immediate (bipush).
	ShapeI8

	// ShapeI16 is a two-byte signed immediate (sipush).
	ShapeI16

	// ShapeLdc is a one-byte constant pool index.
	ShapeLdc

	// ShapeConst16 is a two-byte constant pool index of a loadable
	// constant (ldc_w, ldc2_w).
	ShapeConst16

	// ShapeField is a two-byte Fieldref pool index.
	ShapeField

	// ShapeMethod is a two-byte Methodref or InterfaceMethodref pool
	// index (invokevirtual, invokespecial, invokestatic).
	ShapeMethod

	// ShapeIfaceMethod is invokeinterface: a two-byte pool index, a
	// count byte, and a zero byte.
	ShapeIfaceMethod

	// ShapeIndy is invokedynamic: a two-byte pool index and two zero
	// bytes.
	ShapeIndy

	// ShapeType is a two-byte Class pool index (new, anewarray,
	// checkcast, instanceof).
	ShapeType

	// ShapeNewArray is a one-byte primitive array type code.
	ShapeNewArray

	// ShapeMultiANewArray is a two-byte Class pool index and a
	// dimension count byte.
	ShapeMultiANewArray

	// ShapeBranch16 is a two-byte signed branch offset.
	ShapeBranch16

	// ShapeBranch32 is a four-byte signed branch offset (goto_w, jsr_w).
	ShapeBranch32

	// ShapeIinc is a one-byte local index and a one-byte signed delta,
	// both widened under the wide prefix.
	ShapeIinc

	// ShapeTableSwitch and ShapeLookupSwitch are the padded variable
	// length switch forms.
	ShapeTableSwitch
	ShapeLookupSwitch

	// ShapeWide is the wide prefix itself.
	ShapeWide
)

// Shapes maps every defined opcode to its operand layout. Opcodes
// 203..255 are not defined by the format and have no entry.
var Shapes [202]OpShape

func init() {
	set := func(shape OpShape, ops ...types.Opcode) {
		for _, op := range ops {
			Shapes[op] = shape
		}
	}
	setRange := func(shape OpShape, lo, hi types.Opcode) {
		for op := lo; op <= hi; op++ {
			Shapes[op] = shape
		}
	}

	set(ShapeI8, types.OpBIPush)
	set(ShapeI16, types.OpSIPush)
	set(ShapeLdc, types.OpLdc)
	set(ShapeConst16, types.OpLdcW, types.OpLdc2W)
	setRange(ShapeVar, types.OpILoad, types.OpALoad)
	setRange(ShapeVar, types.OpIStore, types.OpAStore)
	set(ShapeVar, types.OpRet)
	set(ShapeIinc, types.OpIInc)
	setRange(ShapeBranch16, types.OpIfEq, types.OpJsr)
	set(ShapeBranch16, types.OpIfNull, types.OpIfNonNull)
	set(ShapeBranch32, types.OpGotoW, types.OpJsrW)
	set(ShapeTableSwitch, types.OpTableSwitch)
	set(ShapeLookupSwitch, types.OpLookupSwitch)
	setRange(ShapeField, types.OpGetStatic, types.OpPutField)
	setRange(ShapeMethod, types.OpInvokeVirtual, types.OpInvokeStatic)
	set(ShapeIfaceMethod, types.OpInvokeInterface)
	set(ShapeIndy, types.OpInvokeDynamic)
	set(ShapeType, types.OpNew, types.OpANewArray, types.OpCheckCast, types.OpInstanceOf)
	set(ShapeNewArray, types.OpNewArray)
	set(ShapeWide, types.OpWide)
	set(ShapeMultiANewArray, types.OpMultiANewArray)
}

// WideAllowed reports whether op may follow the wide prefix.
func WideAllowed(op types.Opcode) bool {
	if op == types.OpIInc {
		return true
	}
	if int(op) >= len(Shapes) {
		return false
	}
	return Shapes[op] == ShapeVar
}
