package types

import "strconv"

// Opcode is a JVM bytecode opcode.
type Opcode uint8

const (
	OpNop             Opcode = 0
	OpAConstNull      Opcode = 1
	OpIConstM1        Opcode = 2
	OpIConst0         Opcode = 3
	OpIConst1         Opcode = 4
	OpIConst2         Opcode = 5
	OpIConst3         Opcode = 6
	OpIConst4         Opcode = 7
	OpIConst5         Opcode = 8
	OpLConst0         Opcode = 9
	OpLConst1         Opcode = 10
	OpFConst0         Opcode = 11
	OpFConst1         Opcode = 12
	OpFConst2         Opcode = 13
	OpDConst0         Opcode = 14
	OpDConst1         Opcode = 15
	OpBIPush          Opcode = 16
	OpSIPush          Opcode = 17
	OpLdc             Opcode = 18
	OpLdcW            Opcode = 19
	OpLdc2W           Opcode = 20
	OpILoad           Opcode = 21
	OpLLoad           Opcode = 22
	OpFLoad           Opcode = 23
	OpDLoad           Opcode = 24
	OpALoad           Opcode = 25
	OpILoad0          Opcode = 26
	OpILoad1          Opcode = 27
	OpILoad2          Opcode = 28
	OpILoad3          Opcode = 29
	OpLLoad0          Opcode = 30
	OpLLoad1          Opcode = 31
	OpLLoad2          Opcode = 32
	OpLLoad3          Opcode = 33
	OpFLoad0          Opcode = 34
	OpFLoad1          Opcode = 35
	OpFLoad2          Opcode = 36
	OpFLoad3          Opcode = 37
	OpDLoad0          Opcode = 38
	OpDLoad1          Opcode = 39
	OpDLoad2          Opcode = 40
	OpDLoad3          Opcode = 41
	OpALoad0          Opcode = 42
	OpALoad1          Opcode = 43
	OpALoad2          Opcode = 44
	OpALoad3          Opcode = 45
	OpIALoad          Opcode = 46
	OpLALoad          Opcode = 47
	OpFALoad          Opcode = 48
	OpDALoad          Opcode = 49
	OpAALoad          Opcode = 50
	OpBALoad          Opcode = 51
	OpCALoad          Opcode = 52
	OpSALoad          Opcode = 53
	OpIStore          Opcode = 54
	OpLStore          Opcode = 55
	OpFStore          Opcode = 56
	OpDStore          Opcode = 57
	OpAStore          Opcode = 58
	OpIStore0         Opcode = 59
	OpIStore1         Opcode = 60
	OpIStore2         Opcode = 61
	OpIStore3         Opcode = 62
	OpLStore0         Opcode = 63
	OpLStore1         Opcode = 64
	OpLStore2         Opcode = 65
	OpLStore3         Opcode = 66
	OpFStore0         Opcode = 67
	OpFStore1         Opcode = 68
	OpFStore2         Opcode = 69
	OpFStore3         Opcode = 70
	OpDStore0         Opcode = 71
	OpDStore1         Opcode = 72
	OpDStore2         Opcode = 73
	OpDStore3         Opcode = 74
	OpAStore0         Opcode = 75
	OpAStore1         Opcode = 76
	OpAStore2         Opcode = 77
	OpAStore3         Opcode = 78
	OpIAStore         Opcode = 79
	OpLAStore         Opcode = 80
	OpFAStore         Opcode = 81
	OpDAStore         Opcode = 82
	OpAAStore         Opcode = 83
	OpBAStore         Opcode = 84
	OpCAStore         Opcode = 85
	OpSAStore         Opcode = 86
	OpPop             Opcode = 87
	OpPop2            Opcode = 88
	OpDup             Opcode = 89
	OpDupX1           Opcode = 90
	OpDupX2           Opcode = 91
	OpDup2            Opcode = 92
	OpDup2X1          Opcode = 93
	OpDup2X2          Opcode = 94
	OpSwap            Opcode = 95
	OpIAdd            Opcode = 96
	OpLAdd            Opcode = 97
	OpFAdd            Opcode = 98
	OpDAdd            Opcode = 99
	OpISub            Opcode = 100
	OpLSub            Opcode = 101
	OpFSub            Opcode = 102
	OpDSub            Opcode = 103
	OpIMul            Opcode = 104
	OpLMul            Opcode = 105
	OpFMul            Opcode = 106
	OpDMul            Opcode = 107
	OpIDiv            Opcode = 108
	OpLDiv            Opcode = 109
	OpFDiv            Opcode = 110
	OpDDiv            Opcode = 111
	OpIRem            Opcode = 112
	OpLRem            Opcode = 113
	OpFRem            Opcode = 114
	OpDRem            Opcode = 115
	OpINeg            Opcode = 116
	OpLNeg            Opcode = 117
	OpFNeg            Opcode = 118
	OpDNeg            Opcode = 119
	OpIShl            Opcode = 120
	OpLShl            Opcode = 121
	OpIShr            Opcode = 122
	OpLShr            Opcode = 123
	OpIUShr           Opcode = 124
	OpLUShr           Opcode = 125
	OpIAnd            Opcode = 126
	OpLAnd            Opcode = 127
	OpIOr             Opcode = 128
	OpLOr             Opcode = 129
	OpIXor            Opcode = 130
	OpLXor            Opcode = 131
	OpIInc            Opcode = 132
	OpI2L             Opcode = 133
	OpI2F             Opcode = 134
	OpI2D             Opcode = 135
	OpL2I             Opcode = 136
	OpL2F             Opcode = 137
	OpL2D             Opcode = 138
	OpF2I             Opcode = 139
	OpF2L             Opcode = 140
	OpF2D             Opcode = 141
	OpD2I             Opcode = 142
	OpD2L             Opcode = 143
	OpD2F             Opcode = 144
	OpI2B             Opcode = 145
	OpI2C             Opcode = 146
	OpI2S             Opcode = 147
	OpLCmp            Opcode = 148
	OpFCmpL           Opcode = 149
	OpFCmpG           Opcode = 150
	OpDCmpL           Opcode = 151
	OpDCmpG           Opcode = 152
	OpIfEq            Opcode = 153
	OpIfNe            Opcode = 154
	OpIfLt            Opcode = 155
	OpIfGe            Opcode = 156
	OpIfGt            Opcode = 157
	OpIfLe            Opcode = 158
	OpIfICmpEq        Opcode = 159
	OpIfICmpNe        Opcode = 160
	OpIfICmpLt        Opcode = 161
	OpIfICmpGe        Opcode = 162
	OpIfICmpGt        Opcode = 163
	OpIfICmpLe        Opcode = 164
	OpIfACmpEq        Opcode = 165
	OpIfACmpNe        Opcode = 166
	OpGoto            Opcode = 167
	OpJsr             Opcode = 168
	OpRet             Opcode = 169
	OpTableSwitch     Opcode = 170
	OpLookupSwitch    Opcode = 171
	OpIReturn         Opcode = 172
	OpLReturn         Opcode = 173
	OpFReturn         Opcode = 174
	OpDReturn         Opcode = 175
	OpAReturn         Opcode = 176
	OpReturn          Opcode = 177
	OpGetStatic       Opcode = 178
	OpGetField        Opcode = 179
	OpPutStatic       Opcode = 180
	OpPutField        Opcode = 181
	OpInvokeVirtual   Opcode = 182
	OpInvokeSpecial   Opcode = 183
	OpInvokeStatic    Opcode = 184
	OpInvokeInterface Opcode = 185
	OpInvokeDynamic   Opcode = 186
	OpNew             Opcode = 187
	OpNewArray        Opcode = 188
	OpANewArray       Opcode = 189
	OpArrayLength     Opcode = 190
	OpAThrow          Opcode = 191
	OpCheckCast       Opcode = 192
	OpInstanceOf      Opcode = 193
	OpMonitorEnter    Opcode = 194
	OpMonitorExit     Opcode = 195
	OpWide            Opcode = 196
	OpMultiANewArray  Opcode = 197
	OpIfNull          Opcode = 198
	OpIfNonNull       Opcode = 199
	OpGotoW           Opcode = 200
	OpJsrW            Opcode = 201
)

var opcodeNames = [202]string{
	"nop", "aconst_null", "iconst_m1", "iconst_0", "iconst_1", "iconst_2",
	"iconst_3", "iconst_4", "iconst_5", "lconst_0", "lconst_1", "fconst_0",
	"fconst_1", "fconst_2", "dconst_0", "dconst_1", "bipush", "sipush",
	"ldc", "ldc_w", "ldc2_w", "iload", "lload", "fload", "dload", "aload",
	"iload_0", "iload_1", "iload_2", "iload_3", "lload_0", "lload_1",
	"lload_2", "lload_3", "fload_0", "fload_1", "fload_2", "fload_3",
	"dload_0", "dload_1", "dload_2", "dload_3", "aload_0", "aload_1",
	"aload_2", "aload_3", "iaload", "laload", "faload", "daload", "aaload",
	"baload", "caload", "saload", "istore", "lstore", "fstore", "dstore",
	"astore", "istore_0", "istore_1", "istore_2", "istore_3", "lstore_0",
	"lstore_1", "lstore_2", "lstore_3", "fstore_0", "fstore_1", "fstore_2",
	"fstore_3", "dstore_0", "dstore_1", "dstore_2", "dstore_3", "astore_0",
	"astore_1", "astore_2", "astore_3", "iastore", "lastore", "fastore",
	"dastore", "aastore", "bastore", "castore", "sastore", "pop", "pop2",
	"dup", "dup_x1", "dup_x2", "dup2", "dup2_x1", "dup2_x2", "swap",
	"iadd", "ladd", "fadd", "dadd", "isub", "lsub", "fsub", "dsub",
	"imul", "lmul", "fmul", "dmul", "idiv", "ldiv", "fdiv", "ddiv",
	"irem", "lrem", "frem", "drem", "ineg", "lneg", "fneg", "dneg",
	"ishl", "lshl", "ishr", "lshr", "iushr", "lushr", "iand", "land",
	"ior", "lor", "ixor", "lxor", "iinc", "i2l", "i2f", "i2d", "l2i",
	"l2f", "l2d", "f2i", "f2l", "f2d", "d2i", "d2l", "d2f", "i2b", "i2c",
	"i2s", "lcmp", "fcmpl", "fcmpg", "dcmpl", "dcmpg", "ifeq", "ifne",
	"iflt", "ifge", "ifgt", "ifle", "if_icmpeq", "if_icmpne", "if_icmplt",
	"if_icmpge", "if_icmpgt", "if_icmple", "if_acmpeq", "if_acmpne",
	"goto", "jsr", "ret", "tableswitch", "lookupswitch", "ireturn",
	"lreturn", "freturn", "dreturn", "areturn", "return", "getstatic",
	"getfield", "putstatic", "putfield", "invokevirtual", "invokespecial",
	"invokestatic", "invokeinterface", "invokedynamic", "new", "newarray",
	"anewarray", "arraylength", "athrow", "checkcast", "instanceof",
	"monitorenter", "monitorexit", "wide", "multianewarray", "ifnull",
	"ifnonnull", "goto_w", "jsr_w",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "opcode_" + strconv.Itoa(int(op))
}

// ArrayType values are the atype operand of newarray.
const (
	ArrayTypeBoolean = 4
	ArrayTypeChar    = 5
	ArrayTypeFloat   = 6
	ArrayTypeDouble  = 7
	ArrayTypeByte    = 8
	ArrayTypeShort   = 9
	ArrayTypeInt     = 10
	ArrayTypeLong    = 11
)
