package types

// SwitchTable is the operand of a tableswitch or lookupswitch instruction.
// Targets are absolute bytecode offsets within the source code region.
// For tableswitch, Keys is nil and Targets[i] handles Low+i; for
// lookupswitch, Keys and Targets pair up.
type SwitchTable struct {
	Default int
	Low     int32
	High    int32
	Keys    []int32
	Targets []int
}

// Instruction is one decoded bytecode instruction. Operand fields are
// populated according to Op; unused fields are the zero value. Pool-index
// operands are resolved to symbolic values, so a consumer can re-encode the
// instruction against a different pool.
type Instruction struct {
	// PC is the instruction's offset in the source code region. Branch
	// targets elsewhere in the stream refer to these offsets.
	PC int
	Op Opcode
	// Wide marks an instruction that was prefixed with the wide opcode
	// (loads, stores, ret and iinc with 16-bit operands).
	Wide bool

	// Value is the operand of bipush/sipush and the increment of iinc.
	Value int32
	// Var is the local variable index of loads, stores, ret and iinc.
	Var uint16
	// Target is the branch target of ifXX/goto/jsr/goto_w/jsr_w.
	Target int
	// Const is the operand of ldc, ldc_w and ldc2_w.
	Const Const
	// Member is the operand of field and method instructions.
	Member MemberRef
	// IsInterface marks a method operand resolved from an
	// InterfaceMethodref (always true for invokeinterface).
	IsInterface bool
	// Count is the count operand of invokeinterface.
	Count uint8
	// Type is the class or array descriptor operand of new, anewarray,
	// checkcast, instanceof and multianewarray.
	Type JavaString
	// Dims is the dimension count of multianewarray.
	Dims uint8
	// ArrayType is the atype operand of newarray.
	ArrayType uint8
	// Switch is the operand of tableswitch and lookupswitch.
	Switch *SwitchTable
	// Dynamic is the operand of invokedynamic.
	Dynamic DynamicRef
}
