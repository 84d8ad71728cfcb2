package decompiler

import (
	"fmt"

	"github.com/cottand/decomp/decerr"
	"github.com/cottand/decomp/il"
	"github.com/cottand/decomp/metadata"
	"github.com/cottand/decomp/util"
)

// DecompileMethod lowers a method body into basic blocks collected in
// one root ILBlock. Every basic block starts with a label; branch
// operands reference target labels by identity. Nop cleanup runs after
// lowering unless disabled, relocating the nops' spans so binary
// coverage is preserved.
func (c *Context) DecompileMethod(body *metadata.Body) (*il.ILBlock, error) {
	b := &methodBuilder{
		body:   body,
		labels: map[uint32]*il.ILLabel{},
		locals: map[*metadata.VariableDef]*il.ILVariable{},
		params: map[*metadata.ParamDef]*il.ILVariable{},
	}
	root, err := b.build(c)
	if err != nil {
		return nil, err
	}
	if !c.Settings.KeepNops {
		il.RemoveNops(root)
	}
	logger.Debug("lowered method body",
		"method", c.methodName(), "blocks", len(root.Body))
	return root, nil
}

type methodBuilder struct {
	body   *metadata.Body
	labels map[uint32]*il.ILLabel
	locals map[*metadata.VariableDef]*il.ILVariable
	params map[*metadata.ParamDef]*il.ILVariable
}

func (b *methodBuilder) build(c *Context) (*il.ILBlock, error) {
	starts := b.blockStarts()
	root := il.NewILBlock()
	var current *il.ILBasicBlock
	for i := range b.body.Instructions {
		if c.ctx.Err() != nil {
			return nil, decerr.New(decerr.NewCancelled{MethodName: c.methodName()})
		}
		instr := b.body.Instructions[i]
		if current == nil || starts.Contains(instr.Offset) {
			current = &il.ILBasicBlock{Body: []il.Node{b.labelAt(instr.Offset)}}
			root.Body = append(root.Body, current)
		}
		expr, err := b.lower(c, i)
		if err != nil {
			return nil, err
		}
		current.Body = append(current.Body, expr)
	}
	return root, nil
}

// blockStarts collects the leaders: the entry point, every branch
// target, and every offset following an instruction that transfers or
// ends control flow.
func (b *methodBuilder) blockStarts() util.MSet[uint32] {
	starts := util.NewEmptySet[uint32]()
	if len(b.body.Instructions) > 0 {
		starts.Add(b.body.Instructions[0].Offset)
	}
	for i, instr := range b.body.Instructions {
		if instr.OpCode.IsBranch() {
			switch op := instr.Operand.(type) {
			case uint32:
				starts.Add(op)
			case []uint32:
				starts.Add(op...)
			}
		}
		if instr.OpCode.IsBranch() || instr.OpCode.EndsFlow() {
			if i+1 < len(b.body.Instructions) {
				starts.Add(b.body.Instructions[i+1].Offset)
			}
		}
	}
	return starts
}

func (b *methodBuilder) labelAt(offset uint32) *il.ILLabel {
	if label, ok := b.labels[offset]; ok {
		return label
	}
	label := &il.ILLabel{Name: fmt.Sprintf("IL_%04x", offset)}
	b.labels[offset] = label
	return label
}

func (b *methodBuilder) lower(c *Context, i int) (*il.ILExpression, error) {
	instr := b.body.Instructions[i]
	code, ok := il.CodeByName(instr.OpCode.Name)
	if !ok {
		return nil, decerr.New(decerr.NewBadOperand{
			MethodName:  c.methodName(),
			Instruction: instr,
		})
	}
	operand, err := b.lowerOperand(c, instr)
	if err != nil {
		return nil, err
	}
	expr := il.NewILExpression(code, operand)
	expr.AddSpans(il.NewBinSpan(instr.Offset, b.body.InstructionEnd(i)-instr.Offset))
	return expr, nil
}

func (b *methodBuilder) lowerOperand(c *Context, instr metadata.Instruction) (any, error) {
	bad := func() error {
		return decerr.New(decerr.NewBadOperand{
			MethodName:  c.methodName(),
			Instruction: instr,
		})
	}
	switch instr.OpCode.Operand {
	case metadata.OperandNone:
		if instr.Operand != nil {
			return nil, bad()
		}
		return nil, nil
	case metadata.OperandTarget:
		target, ok := instr.Operand.(uint32)
		if !ok {
			return nil, bad()
		}
		return b.labelAt(target), nil
	case metadata.OperandSwitchTargets:
		targets, ok := instr.Operand.([]uint32)
		if !ok {
			return nil, bad()
		}
		labels := make([]*il.ILLabel, len(targets))
		for i, t := range targets {
			labels[i] = b.labelAt(t)
		}
		return labels, nil
	case metadata.OperandVariable:
		v, ok := instr.Operand.(*metadata.VariableDef)
		if !ok {
			return nil, bad()
		}
		return b.localVar(v), nil
	case metadata.OperandParameter:
		p, ok := instr.Operand.(*metadata.ParamDef)
		if !ok {
			return nil, bad()
		}
		return b.paramVar(p), nil
	default:
		if instr.Operand == nil {
			return nil, bad()
		}
		return instr.Operand, nil
	}
}

// localVar returns the ILVariable for a local slot, one per slot across
// the whole method.
func (b *methodBuilder) localVar(v *metadata.VariableDef) *il.ILVariable {
	if existing, ok := b.locals[v]; ok {
		return existing
	}
	name := v.Name
	generated := false
	if name == "" {
		name = fmt.Sprintf("V_%d", v.Index)
		generated = true
	}
	ilv := &il.ILVariable{Name: name, Generated: generated, Type: v.Type, Original: v}
	b.locals[v] = ilv
	return ilv
}

func (b *methodBuilder) paramVar(p *metadata.ParamDef) *il.ILVariable {
	if existing, ok := b.params[p]; ok {
		return existing
	}
	ilv := &il.ILVariable{Name: p.Name, Type: p.Type, Param: p}
	b.params[p] = ilv
	return ilv
}
