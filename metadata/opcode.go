package metadata

// FlowControl classifies how an instruction affects control flow.
type FlowControl int

const (
	FlowNext FlowControl = iota
	FlowBranch
	FlowCondBranch
	FlowCall
	FlowReturn
	FlowThrow
	FlowBreak
	FlowMeta
)

// OperandKind describes what an instruction's Operand field holds.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandTarget
	OperandSwitchTargets
	OperandVariable
	OperandParameter
	OperandField
	OperandMethod
	OperandType
	OperandToken
	OperandI4
	OperandI8
	OperandR8
	OperandString
)

// OpCode identifies one IL instruction kind. OpCodes are compared by
// pointer identity; the canonical instances live in the table below.
type OpCode struct {
	Name    string
	Flow    FlowControl
	Operand OperandKind
}

func (op *OpCode) String() string { return op.Name }

// IsBranch reports whether the instruction transfers control to an
// explicit target operand.
func (op *OpCode) IsBranch() bool {
	return op.Flow == FlowBranch || op.Flow == FlowCondBranch
}

// EndsFlow reports whether execution never falls through to the next
// instruction.
func (op *OpCode) EndsFlow() bool {
	return op.Flow == FlowBranch || op.Flow == FlowReturn || op.Flow == FlowThrow
}

var (
	OpNop        = &OpCode{Name: "nop", Flow: FlowNext, Operand: OperandNone}
	OpDup        = &OpCode{Name: "dup", Flow: FlowNext, Operand: OperandNone}
	OpPop        = &OpCode{Name: "pop", Flow: FlowNext, Operand: OperandNone}
	OpLdcI4      = &OpCode{Name: "ldc.i4", Flow: FlowNext, Operand: OperandI4}
	OpLdcI8      = &OpCode{Name: "ldc.i8", Flow: FlowNext, Operand: OperandI8}
	OpLdcR8      = &OpCode{Name: "ldc.r8", Flow: FlowNext, Operand: OperandR8}
	OpLdstr      = &OpCode{Name: "ldstr", Flow: FlowNext, Operand: OperandString}
	OpLdnull     = &OpCode{Name: "ldnull", Flow: FlowNext, Operand: OperandNone}
	OpLdloc      = &OpCode{Name: "ldloc", Flow: FlowNext, Operand: OperandVariable}
	OpStloc      = &OpCode{Name: "stloc", Flow: FlowNext, Operand: OperandVariable}
	OpLdarg      = &OpCode{Name: "ldarg", Flow: FlowNext, Operand: OperandParameter}
	OpStarg      = &OpCode{Name: "starg", Flow: FlowNext, Operand: OperandParameter}
	OpLdfld      = &OpCode{Name: "ldfld", Flow: FlowNext, Operand: OperandField}
	OpStfld      = &OpCode{Name: "stfld", Flow: FlowNext, Operand: OperandField}
	OpLdsfld     = &OpCode{Name: "ldsfld", Flow: FlowNext, Operand: OperandField}
	OpStsfld     = &OpCode{Name: "stsfld", Flow: FlowNext, Operand: OperandField}
	OpLdtoken    = &OpCode{Name: "ldtoken", Flow: FlowNext, Operand: OperandToken}
	OpLdlen      = &OpCode{Name: "ldlen", Flow: FlowNext, Operand: OperandNone}
	OpLdelem     = &OpCode{Name: "ldelem", Flow: FlowNext, Operand: OperandType}
	OpStelem     = &OpCode{Name: "stelem", Flow: FlowNext, Operand: OperandType}
	OpAdd        = &OpCode{Name: "add", Flow: FlowNext, Operand: OperandNone}
	OpSub        = &OpCode{Name: "sub", Flow: FlowNext, Operand: OperandNone}
	OpMul        = &OpCode{Name: "mul", Flow: FlowNext, Operand: OperandNone}
	OpDiv        = &OpCode{Name: "div", Flow: FlowNext, Operand: OperandNone}
	OpRem        = &OpCode{Name: "rem", Flow: FlowNext, Operand: OperandNone}
	OpAnd        = &OpCode{Name: "and", Flow: FlowNext, Operand: OperandNone}
	OpOr         = &OpCode{Name: "or", Flow: FlowNext, Operand: OperandNone}
	OpXor        = &OpCode{Name: "xor", Flow: FlowNext, Operand: OperandNone}
	OpShl        = &OpCode{Name: "shl", Flow: FlowNext, Operand: OperandNone}
	OpShr        = &OpCode{Name: "shr", Flow: FlowNext, Operand: OperandNone}
	OpNeg        = &OpCode{Name: "neg", Flow: FlowNext, Operand: OperandNone}
	OpNot        = &OpCode{Name: "not", Flow: FlowNext, Operand: OperandNone}
	OpBox        = &OpCode{Name: "box", Flow: FlowNext, Operand: OperandType}
	OpUnboxAny   = &OpCode{Name: "unbox.any", Flow: FlowNext, Operand: OperandType}
	OpCastclass  = &OpCode{Name: "castclass", Flow: FlowNext, Operand: OperandType}
	OpIsinst     = &OpCode{Name: "isinst", Flow: FlowNext, Operand: OperandType}
	OpNewobj     = &OpCode{Name: "newobj", Flow: FlowCall, Operand: OperandMethod}
	OpNewarr     = &OpCode{Name: "newarr", Flow: FlowCall, Operand: OperandType}
	OpCall       = &OpCode{Name: "call", Flow: FlowCall, Operand: OperandMethod}
	OpCallvirt   = &OpCode{Name: "callvirt", Flow: FlowCall, Operand: OperandMethod}
	OpBr         = &OpCode{Name: "br", Flow: FlowBranch, Operand: OperandTarget}
	OpBrtrue     = &OpCode{Name: "brtrue", Flow: FlowCondBranch, Operand: OperandTarget}
	OpBrfalse    = &OpCode{Name: "brfalse", Flow: FlowCondBranch, Operand: OperandTarget}
	OpBeq        = &OpCode{Name: "beq", Flow: FlowCondBranch, Operand: OperandTarget}
	OpBlt        = &OpCode{Name: "blt", Flow: FlowCondBranch, Operand: OperandTarget}
	OpBgt        = &OpCode{Name: "bgt", Flow: FlowCondBranch, Operand: OperandTarget}
	OpBle        = &OpCode{Name: "ble", Flow: FlowCondBranch, Operand: OperandTarget}
	OpBge        = &OpCode{Name: "bge", Flow: FlowCondBranch, Operand: OperandTarget}
	OpSwitch     = &OpCode{Name: "switch", Flow: FlowCondBranch, Operand: OperandSwitchTargets}
	OpLeave      = &OpCode{Name: "leave", Flow: FlowBranch, Operand: OperandTarget}
	OpEndfinally = &OpCode{Name: "endfinally", Flow: FlowReturn, Operand: OperandNone}
	OpEndfilter  = &OpCode{Name: "endfilter", Flow: FlowReturn, Operand: OperandNone}
	OpRet        = &OpCode{Name: "ret", Flow: FlowReturn, Operand: OperandNone}
	OpThrow      = &OpCode{Name: "throw", Flow: FlowThrow, Operand: OperandNone}
	OpRethrow    = &OpCode{Name: "rethrow", Flow: FlowThrow, Operand: OperandNone}
)

// AllOpCodes lists the canonical opcode instances, indexable by name via
// OpCodeByName.
var AllOpCodes = []*OpCode{
	OpNop, OpDup, OpPop,
	OpLdcI4, OpLdcI8, OpLdcR8, OpLdstr, OpLdnull,
	OpLdloc, OpStloc, OpLdarg, OpStarg,
	OpLdfld, OpStfld, OpLdsfld, OpStsfld, OpLdtoken, OpLdlen, OpLdelem, OpStelem,
	OpAdd, OpSub, OpMul, OpDiv, OpRem, OpAnd, OpOr, OpXor, OpShl, OpShr, OpNeg, OpNot,
	OpBox, OpUnboxAny, OpCastclass, OpIsinst,
	OpNewobj, OpNewarr, OpCall, OpCallvirt,
	OpBr, OpBrtrue, OpBrfalse, OpBeq, OpBlt, OpBgt, OpBle, OpBge, OpSwitch,
	OpLeave, OpEndfinally, OpEndfilter, OpRet, OpThrow, OpRethrow,
}

var opCodesByName = func() map[string]*OpCode {
	m := make(map[string]*OpCode, len(AllOpCodes))
	for _, op := range AllOpCodes {
		m[op.Name] = op
	}
	return m
}()

// OpCodeByName resolves the canonical opcode instance for a mnemonic.
func OpCodeByName(name string) (*OpCode, bool) {
	op, ok := opCodesByName[name]
	return op, ok
}
