package metadata

import (
	"fmt"
	"strings"
)

// Instruction is one decoded IL instruction as handed over by the
// metadata reader: an offset into the method body, a canonical opcode,
// and an operand whose dynamic type is determined by OpCode.Operand.
//
// Operand holds:
//   - OperandTarget:        uint32 (branch target offset)
//   - OperandSwitchTargets: []uint32
//   - OperandVariable:      *VariableDef
//   - OperandParameter:     *ParamDef
//   - OperandField:         *FieldRef
//   - OperandMethod:        *MethodRef
//   - OperandType:          *TypeRef
//   - OperandToken:         Member or *TypeRef
//   - OperandI4:            int32
//   - OperandI8:            int64
//   - OperandR8:            float64
//   - OperandString:        string
type Instruction struct {
	Offset  uint32
	OpCode  *OpCode
	Operand any
}

func (i Instruction) String() string {
	if i.OpCode.Operand == OperandNone {
		return fmt.Sprintf("IL_%04x: %s", i.Offset, i.OpCode.Name)
	}
	return fmt.Sprintf("IL_%04x: %s %s", i.Offset, i.OpCode.Name, FormatOperand(i.Operand))
}

// FormatOperand renders an instruction operand the way a flat listing
// prints it.
func FormatOperand(operand any) string {
	switch op := operand.(type) {
	case nil:
		return ""
	case uint32:
		return fmt.Sprintf("IL_%04x", op)
	case []uint32:
		parts := make([]string, len(op))
		for i, target := range op {
			parts[i] = fmt.Sprintf("IL_%04x", target)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case string:
		return fmt.Sprintf("%q", op)
	case *VariableDef:
		return op.Name
	case *ParamDef:
		return op.Name
	case fmt.Stringer:
		return op.String()
	default:
		return fmt.Sprint(op)
	}
}

// VariableDef is a local-variable slot declared by a method body.
type VariableDef struct {
	Name   string
	Index  int
	Type   *TypeRef
	Pinned bool
}

func (v *VariableDef) String() string { return v.Name }

// ParamDef is one declared parameter of a method.
type ParamDef struct {
	Name  string
	Index int
	Type  *TypeRef
}

func (p *ParamDef) String() string { return p.Name }

// Body is a method body as produced by the metadata reader: the flat
// instruction stream, its total code size, the exception-handler table
// and the declared locals.
type Body struct {
	Instructions []Instruction
	CodeSize     uint32
	Handlers     []ExceptionHandler
	Locals       []*VariableDef
}

// InstructionEnd returns the exclusive end offset of the instruction at
// index i: the next instruction's offset, or CodeSize for the last one.
func (b *Body) InstructionEnd(i int) uint32 {
	if i+1 < len(b.Instructions) {
		return b.Instructions[i+1].Offset
	}
	return b.CodeSize
}
