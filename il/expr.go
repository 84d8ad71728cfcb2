package il

import (
	"fmt"
	"iter"
	"strings"
	"sync/atomic"

	"github.com/cottand/decomp/metadata"
)

// Code tags an ILExpression with the decompiled-IL operation it
// performs. The set starts out mirroring the input opcodes and grows
// pseudo-operations introduced by structuring passes.
type Code int

const (
	Nop Code = iota
	Pop
	Dup
	LdcI4
	LdcI8
	LdcR8
	Ldstr
	Ldnull
	Ldloc
	Stloc
	Ldarg
	Starg
	Ldfld
	Stfld
	Ldsfld
	Stsfld
	Ldtoken
	Ldlen
	Ldelem
	Stelem
	Add
	Sub
	Mul
	Div
	Rem
	And
	Or
	Xor
	Shl
	Shr
	Neg
	Not
	Box
	UnboxAny
	Castclass
	Isinst
	Newobj
	Newarr
	Call
	CallVirt
	Br
	Brtrue
	Brfalse
	Beq
	Blt
	Bgt
	Ble
	Bge
	Switch
	Leave
	Endfinally
	Endfilter
	Ret
	Throw
	Rethrow

	// pseudo-operations introduced during structuring
	LoopOrSwitchBreak
	LoopContinue
)

var codeNames = map[Code]string{
	Nop: "nop", Pop: "pop", Dup: "dup",
	LdcI4: "ldc.i4", LdcI8: "ldc.i8", LdcR8: "ldc.r8", Ldstr: "ldstr", Ldnull: "ldnull",
	Ldloc: "ldloc", Stloc: "stloc", Ldarg: "ldarg", Starg: "starg",
	Ldfld: "ldfld", Stfld: "stfld", Ldsfld: "ldsfld", Stsfld: "stsfld",
	Ldtoken: "ldtoken", Ldlen: "ldlen", Ldelem: "ldelem", Stelem: "stelem",
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Rem: "rem",
	And: "and", Or: "or", Xor: "xor", Shl: "shl", Shr: "shr", Neg: "neg", Not: "not",
	Box: "box", UnboxAny: "unbox.any", Castclass: "castclass", Isinst: "isinst",
	Newobj: "newobj", Newarr: "newarr", Call: "call", CallVirt: "callvirt",
	Br: "br", Brtrue: "brtrue", Brfalse: "brfalse",
	Beq: "beq", Blt: "blt", Bgt: "bgt", Ble: "ble", Bge: "bge", Switch: "switch",
	Leave: "leave", Endfinally: "endfinally", Endfilter: "endfilter",
	Ret: "ret", Throw: "throw", Rethrow: "rethrow",
	LoopOrSwitchBreak: "break", LoopContinue: "continue",
}

var codesByName = func() map[string]Code {
	m := make(map[string]Code, len(codeNames))
	for code, name := range codeNames {
		m[name] = code
	}
	return m
}()

// CodeByName resolves an input opcode mnemonic to its Code, false for
// operations the IL model does not track.
func CodeByName(name string) (Code, bool) {
	c, ok := codesByName[name]
	return c, ok
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// IsBranch reports whether the expression code targets labels.
func (c Code) IsBranch() bool {
	switch c {
	case Br, Brtrue, Brfalse, Beq, Blt, Bgt, Ble, Bge, Switch, Leave:
		return true
	default:
		return false
	}
}

// ExpressionPrefix is one prefix opcode attached to an expression
// (volatile., unaligned., constrained. and friends).
type ExpressionPrefix struct {
	Name    string
	Operand any
}

// ILExpression is one decompiled-IL operation. Operand is never itself
// an expression: nested expressions always go in Arguments. For branch
// codes Operand is an *ILLabel (or []*ILLabel for Switch); those are
// non-owning references resolved by label identity.
type ILExpression struct {
	nodeSpans
	Code      Code
	Operand   any
	Arguments []*ILExpression
	Prefixes  []ExpressionPrefix
	// ExpectedType is the type required by the consumer of this
	// expression; InferredType is the type derived from its operands.
	// Either may be nil when unknown. This is surface-syntax level
	// inference only.
	ExpectedType *metadata.TypeRef
	InferredType *metadata.TypeRef
}

func NewILExpression(code Code, operand any, args ...*ILExpression) *ILExpression {
	return &ILExpression{Code: code, Operand: operand, Arguments: args}
}

func (e *ILExpression) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, arg := range e.Arguments {
			if arg == nil {
				continue
			}
			if !yield(arg) {
				return
			}
		}
	}
}

func (e *ILExpression) safeToExtendEnd() bool { return true }

func (e *ILExpression) String() string {
	sb := &strings.Builder{}
	e.write(sb)
	return sb.String()
}

func (e *ILExpression) write(sb *strings.Builder) {
	sb.WriteString(e.Code.String())
	if e.Operand != nil {
		sb.WriteByte(':')
		switch op := e.Operand.(type) {
		case *ILLabel:
			sb.WriteString(op.Name)
		case []*ILLabel:
			for i, l := range op {
				if i > 0 {
					sb.WriteByte(',')
				}
				sb.WriteString(l.Name)
			}
		case fmt.Stringer:
			sb.WriteString(op.String())
		default:
			fmt.Fprint(sb, op)
		}
	}
	if len(e.Arguments) > 0 {
		sb.WriteByte('(')
		for i, arg := range e.Arguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			arg.write(sb)
		}
		sb.WriteByte(')')
	}
}

var variableIds atomic.Uint64

// ILVariable is a variable of the decompiled method: either recovered
// from an original local slot or parameter, or introduced by the
// decompiler.
type ILVariable struct {
	Name string
	// Generated marks variables introduced by the decompiler rather
	// than recovered from metadata. Generated variables may be renamed
	// by later passes unless PreserveName is also set.
	Generated    bool
	PreserveName bool
	Type         *metadata.TypeRef
	// Original links back to the local slot this variable came from,
	// nil for parameters and generated variables.
	Original *metadata.VariableDef
	// Param links back to the parameter this variable represents.
	Param *metadata.ParamDef

	id uint64
}

// Id is a lazily-created identity token, usable where pointer-style
// comparison of variables is needed across serialization boundaries.
func (v *ILVariable) Id() uint64 {
	if v.id == 0 {
		v.id = variableIds.Add(1)
	}
	return v.id
}

func (v *ILVariable) IsPinned() bool {
	return v.Original != nil && v.Original.Pinned
}

func (v *ILVariable) IsParameter() bool {
	return v.Param != nil
}

func (v *ILVariable) String() string { return v.Name }
