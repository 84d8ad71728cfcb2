package disasm

import (
	"context"
	"fmt"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/decomp/decerr"
	"github.com/cottand/decomp/il"
	"github.com/cottand/decomp/internal/log"
	"github.com/cottand/decomp/metadata"
	"github.com/cottand/decomp/util"
)

var logger = log.DefaultLogger.With("section", "disasm")

// Options selects how a method body is rendered.
type Options struct {
	// StructureControlFlow recovers try/handler regions and natural
	// loops. When false, or when the handler table turns out to be
	// malformed, the listing is flat.
	StructureControlFlow bool
}

// StatementSpan correlates one emitted statement with the binary range
// it came from, for breakpoint/debug-symbol correlation.
type StatementSpan struct {
	ILSpan      il.BinSpan
	Line        int
	StartColumn int
	EndColumn   int
}

// Result is what the rendering layer consumes alongside the text that
// was written to the Output.
type Result struct {
	// Statements maps each instruction's start offset to its emitted
	// location. Frozen: safe to share across readers.
	Statements *immutable.SortedMap[uint32, StatementSpan]
	// Structured is false when the method fell back to flat emission.
	Structured bool
	// Errors holds the recoverable problems hit along the way;
	// a structuring failure lands here, not in Disassemble's error.
	Errors *decerr.Errors
}

// Disassembler renders one method body. Structuring is best-effort: a
// malformed exception-handler table degrades that method to a flat
// listing and never aborts the run. The only hard error is
// cancellation.
type Disassembler struct {
	MethodName string
}

func (d *Disassembler) Disassemble(ctx context.Context, body *metadata.Body, out Output, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	run := &disasmRun{
		body:       body,
		out:        out,
		targets:    branchTargets(body),
		stmts:      immutable.NewSortedMapBuilder[uint32, StatementSpan](nil),
		methodName: d.MethodName,
		lastBlank:  true,
	}
	res := &Result{}

	if opts.StructureControlFlow {
		root, err := BuildStructure(body)
		if err != nil {
			logger.Warn("method cannot be structured, falling back to flat listing",
				"method", d.MethodName, "err", err)
			res.Errors = res.Errors.With(decerr.New(decerr.NewBadExceptionHandler{
				MethodName: d.MethodName,
				Cause:      err,
			}))
		} else {
			idx := 0
			if err := run.writeStructureBody(ctx, root, &idx); err != nil {
				return nil, err
			}
			res.Structured = true
		}
	}
	if !res.Structured {
		if err := run.writeFlat(ctx); err != nil {
			return nil, err
		}
	}
	res.Statements = run.stmts.Map()
	return res, nil
}

// branchTargets collects every offset named by a single- or multi-target
// branch operand. Only used for the blank-separator heuristic.
func branchTargets(body *metadata.Body) util.MSet[uint32] {
	targets := util.NewEmptySet[uint32]()
	for _, instr := range body.Instructions {
		if !instr.OpCode.IsBranch() {
			continue
		}
		switch op := instr.Operand.(type) {
		case uint32:
			targets.Add(op)
		case []uint32:
			targets.Add(op...)
		}
	}
	return targets
}

type disasmRun struct {
	body       *metadata.Body
	out        Output
	targets    util.MSet[uint32]
	stmts      *immutable.SortedMapBuilder[uint32, StatementSpan]
	methodName string
	// lastBlank suppresses doubled separator lines
	lastBlank bool
}

func (r *disasmRun) writeStructureBody(ctx context.Context, s *Structure, idx *int) error {
	childIdx := 0
	for *idx < len(r.body.Instructions) {
		if ctx.Err() != nil {
			return decerr.New(decerr.NewCancelled{MethodName: r.methodName})
		}
		instr := r.body.Instructions[*idx]
		if instr.Offset >= s.End {
			break
		}
		if childIdx < len(s.Children) && instr.Offset >= s.Children[childIdx].Start {
			child := s.Children[childIdx]
			childIdx++
			if err := r.writeStructured(ctx, child, idx); err != nil {
				return err
			}
			continue
		}
		r.writeInstruction(*idx)
		*idx++
	}
	return nil
}

func (r *disasmRun) writeStructured(ctx context.Context, s *Structure, idx *int) error {
	r.openStructure(s)
	r.out.Indent()
	err := r.writeStructureBody(ctx, s, idx)
	r.out.Unindent()
	if err != nil {
		return err
	}
	r.closeStructure(s)
	return nil
}

func (r *disasmRun) openStructure(s *Structure) {
	switch s.Kind {
	case StructTry:
		writeLine(r.out, ".try {")
	case StructFilter:
		writeLine(r.out, "filter {")
	case StructLoop:
		if s.HasLoopEntryPoint {
			writeLine(r.out, fmt.Sprintf("// loop start (head: IL_%04x)", s.LoopEntryPoint))
		} else {
			writeLine(r.out, "// loop start")
		}
	case StructHandler:
		switch s.Handler.Kind {
		case metadata.HandlerCatch:
			if s.Handler.CatchType != nil {
				writeLine(r.out, "catch "+s.Handler.CatchType.FullName()+" {")
			} else {
				writeLine(r.out, "catch {")
			}
		case metadata.HandlerFilter:
			// the handler half of a filter clause
			writeLine(r.out, "handler {")
		case metadata.HandlerFinally:
			writeLine(r.out, "finally {")
		case metadata.HandlerFault:
			writeLine(r.out, "fault {")
		}
	}
	r.lastBlank = true
}

func (r *disasmRun) closeStructure(s *Structure) {
	if s.Kind == StructLoop {
		writeLine(r.out, "// loop end")
	} else {
		writeLine(r.out, "}")
	}
	r.lastBlank = false
}

func (r *disasmRun) writeFlat(ctx context.Context) error {
	for i := range r.body.Instructions {
		if ctx.Err() != nil {
			return decerr.New(decerr.NewCancelled{MethodName: r.methodName})
		}
		r.writeInstruction(i)
	}
	return nil
}

func (r *disasmRun) writeInstruction(i int) {
	instr := r.body.Instructions[i]
	if r.targets.Contains(instr.Offset) {
		r.separator()
	}

	line, startCol := r.out.Line(), r.out.Column()
	r.out.Write(instr.String())
	r.stmts.Set(instr.Offset, StatementSpan{
		ILSpan:      il.BinSpan{Start: instr.Offset, End: r.body.InstructionEnd(i)},
		Line:        line,
		StartColumn: startCol,
		EndColumn:   r.out.Column(),
	})
	r.out.NewLine()
	r.lastBlank = false

	switch instr.OpCode.Flow {
	case metadata.FlowBranch, metadata.FlowCondBranch, metadata.FlowReturn, metadata.FlowThrow:
		r.separator()
	}
}

// separator emits the readability blank line, collapsing runs.
func (r *disasmRun) separator() {
	if r.lastBlank {
		return
	}
	r.out.NewLine()
	r.lastBlank = true
}
