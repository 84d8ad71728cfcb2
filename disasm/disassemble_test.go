package disasm

import (
	"context"
	"strings"
	"testing"

	"github.com/cottand/decomp/decerr"
	"github.com/cottand/decomp/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instructions of size 1 at consecutive offsets
func bodyOf(handlers []metadata.ExceptionHandler, instrs ...metadata.Instruction) *metadata.Body {
	return &metadata.Body{
		Instructions: instrs,
		CodeSize:     uint32(len(instrs)),
		Handlers:     handlers,
	}
}

func at(offset uint32, op *metadata.OpCode, operand any) metadata.Instruction {
	return metadata.Instruction{Offset: offset, OpCode: op, Operand: operand}
}

func listingLines(out *BufferOutput) []string {
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func countInstructionLines(out *BufferOutput) int {
	count := 0
	for _, line := range listingLines(out) {
		if strings.HasPrefix(strings.TrimSpace(line), "IL_") {
			count++
		}
	}
	return count
}

func TestDisassembleStructuredTryCatchFinally(t *testing.T) {
	body := bodyOf(
		[]metadata.ExceptionHandler{
			{
				Kind:     metadata.HandlerCatch,
				TryStart: 1, TryEnd: 4,
				HandlerStart: 4, HandlerEnd: 6,
				CatchType: metadata.NewType("System", "Exception"),
			},
			{
				Kind:     metadata.HandlerFinally,
				TryStart: 1, TryEnd: 6,
				HandlerStart: 6, HandlerEnd: 8,
			},
		},
		at(0, metadata.OpNop, nil),
		at(1, metadata.OpLdcI4, int32(1)),
		at(2, metadata.OpPop, nil),
		at(3, metadata.OpLeave, uint32(9)),
		at(4, metadata.OpPop, nil),
		at(5, metadata.OpLeave, uint32(9)),
		at(6, metadata.OpNop, nil),
		at(7, metadata.OpEndfinally, nil),
		at(8, metadata.OpNop, nil),
		at(9, metadata.OpRet, nil),
	)

	out := NewBufferOutput()
	d := &Disassembler{MethodName: "M"}
	res, err := d.Disassemble(context.Background(), body, out, Options{StructureControlFlow: true})

	require.NoError(t, err)
	assert.True(t, res.Structured)
	assert.False(t, res.Errors.HasError())

	text := out.String()
	assert.Contains(t, text, ".try {")
	assert.Contains(t, text, "catch System.Exception {")
	assert.Contains(t, text, "finally {")

	// every instruction appears in exactly one position in the walk
	assert.Equal(t, len(body.Instructions), countInstructionLines(out))
	require.NotNil(t, res.Statements)
	assert.Equal(t, len(body.Instructions), res.Statements.Len())
	for i := range body.Instructions {
		stmt, ok := res.Statements.Get(body.Instructions[i].Offset)
		require.True(t, ok, "offset %d missing from statement map", i)
		assert.Equal(t, body.Instructions[i].Offset, stmt.ILSpan.Start)
		assert.Equal(t, body.InstructionEnd(i), stmt.ILSpan.End)
		assert.Greater(t, stmt.EndColumn, stmt.StartColumn)
	}
}

func TestDisassembleFindsLoops(t *testing.T) {
	body := bodyOf(nil,
		at(0, metadata.OpLdcI4, int32(0)),
		at(1, metadata.OpNop, nil),
		at(2, metadata.OpBr, uint32(1)),
		at(3, metadata.OpRet, nil),
	)

	out := NewBufferOutput()
	d := &Disassembler{MethodName: "M"}
	res, err := d.Disassemble(context.Background(), body, out, Options{StructureControlFlow: true})

	require.NoError(t, err)
	assert.True(t, res.Structured)
	assert.Contains(t, out.String(), "// loop start (head: IL_0001)")
	assert.Contains(t, out.String(), "// loop end")
	assert.Equal(t, len(body.Instructions), countInstructionLines(out))
}

func TestDisassembleMalformedHandlerTableFallsBack(t *testing.T) {
	testCases := []struct {
		name     string
		handlers []metadata.ExceptionHandler
	}{
		{
			name: "partial overlap",
			handlers: []metadata.ExceptionHandler{
				{Kind: metadata.HandlerCatch, TryStart: 0, TryEnd: 3, HandlerStart: 2, HandlerEnd: 5},
			},
		},
		{
			name: "inverted range",
			handlers: []metadata.ExceptionHandler{
				{Kind: metadata.HandlerCatch, TryStart: 3, TryEnd: 1, HandlerStart: 3, HandlerEnd: 5},
			},
		},
		{
			name: "range past code size",
			handlers: []metadata.ExceptionHandler{
				{Kind: metadata.HandlerCatch, TryStart: 0, TryEnd: 2, HandlerStart: 2, HandlerEnd: 99},
			},
		},
		{
			name: "overlapping protected ranges",
			handlers: []metadata.ExceptionHandler{
				{Kind: metadata.HandlerCatch, TryStart: 0, TryEnd: 3, HandlerStart: 3, HandlerEnd: 4},
				{Kind: metadata.HandlerCatch, TryStart: 1, TryEnd: 4, HandlerStart: 4, HandlerEnd: 5},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := bodyOf(tc.handlers,
				at(0, metadata.OpNop, nil),
				at(1, metadata.OpNop, nil),
				at(2, metadata.OpNop, nil),
				at(3, metadata.OpNop, nil),
				at(4, metadata.OpNop, nil),
				at(5, metadata.OpRet, nil),
			)

			out := NewBufferOutput()
			d := &Disassembler{MethodName: "M"}
			res, err := d.Disassemble(context.Background(), body, out, Options{StructureControlFlow: true})

			require.NoError(t, err, "malformed tables degrade, they do not abort")
			assert.False(t, res.Structured)
			assert.True(t, res.Errors.HasError())
			assert.Equal(t, decerr.BadExceptionHandler, res.Errors.Errors()[0].Code())

			// the flat listing still covers every instruction
			assert.Equal(t, len(body.Instructions), countInstructionLines(out))
			assert.Equal(t, len(body.Instructions), res.Statements.Len())
		})
	}
}

func TestDisassembleFlatSpansExtendToNextInstruction(t *testing.T) {
	body := &metadata.Body{
		Instructions: []metadata.Instruction{
			at(0, metadata.OpLdcI4, int32(7)),
			at(5, metadata.OpNop, nil),
			at(6, metadata.OpRet, nil),
		},
		CodeSize: 10,
	}

	out := NewBufferOutput()
	d := &Disassembler{MethodName: "M"}
	res, err := d.Disassemble(context.Background(), body, out, Options{})

	require.NoError(t, err)
	first, ok := res.Statements.Get(0)
	require.True(t, ok)
	assert.Equal(t, uint32(5), first.ILSpan.End)
	last, ok := res.Statements.Get(6)
	require.True(t, ok)
	assert.Equal(t, uint32(10), last.ILSpan.End, "last instruction extends to total code size")
}

func TestDisassembleSeparatorBeforeBranchTarget(t *testing.T) {
	body := bodyOf(nil,
		at(0, metadata.OpBr, uint32(2)),
		at(1, metadata.OpNop, nil),
		at(2, metadata.OpRet, nil),
	)

	out := NewBufferOutput()
	d := &Disassembler{MethodName: "M"}
	_, err := d.Disassemble(context.Background(), body, out, Options{})

	require.NoError(t, err)
	lines := listingLines(out)
	// blank line after the unconditional branch and before its target
	var retIdx int
	for i, line := range lines {
		if strings.HasPrefix(line, "IL_0002") {
			retIdx = i
		}
	}
	require.Greater(t, retIdx, 0)
	assert.Equal(t, "", lines[retIdx-1])
}

func TestDisassembleCancellation(t *testing.T) {
	body := bodyOf(nil,
		at(0, metadata.OpNop, nil),
		at(1, metadata.OpRet, nil),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &Disassembler{MethodName: "M"}
	_, err := d.Disassemble(ctx, body, NewBufferOutput(), Options{StructureControlFlow: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}
