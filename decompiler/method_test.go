package decompiler

import (
	"context"
	"testing"

	"github.com/cottand/decomp/astexpr"
	"github.com/cottand/decomp/decerr"
	"github.com/cottand/decomp/il"
	"github.com/cottand/decomp/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodyOf(instrs ...metadata.Instruction) *metadata.Body {
	return &metadata.Body{
		Instructions: instrs,
		CodeSize:     uint32(len(instrs)),
	}
}

func at(offset uint32, op *metadata.OpCode, operand any) metadata.Instruction {
	return metadata.Instruction{Offset: offset, OpCode: op, Operand: operand}
}

func testMethod() *metadata.MethodRef {
	return &metadata.MethodRef{Name: "M", Declaring: metadata.NewType("Demo", "C")}
}

func TestDecompileMethodBasicBlocks(t *testing.T) {
	body := bodyOf(
		at(0, metadata.OpLdcI4, int32(1)),
		at(1, metadata.OpBrtrue, uint32(4)),
		at(2, metadata.OpLdcI4, int32(0)),
		at(3, metadata.OpRet, nil),
		at(4, metadata.OpLdcI4, int32(7)),
		at(5, metadata.OpRet, nil),
	)

	c := NewContext(context.Background(), Settings{KeepNops: true}).ForMethod(testMethod())
	root, err := c.DecompileMethod(body)
	require.NoError(t, err)

	// leaders: entry, fall-through after the branch, branch target
	require.Len(t, root.Body, 3)
	for _, stmt := range root.Body {
		bb, isBB := stmt.(*il.ILBasicBlock)
		require.True(t, isBB)
		_, hasLabel := bb.EntryLabel()
		assert.True(t, hasLabel)
	}

	// the branch operand is the target block's entry label, by identity
	first := root.Body[0].(*il.ILBasicBlock)
	branch := first.Body[2].(*il.ILExpression)
	assert.Equal(t, il.Brtrue, branch.Code)
	target := root.Body[2].(*il.ILBasicBlock)
	targetLabel, _ := target.EntryLabel()
	assert.Same(t, targetLabel, branch.Operand)
	assert.Equal(t, "IL_0004", targetLabel.Name)
}

func TestDecompileMethodRemovesNops(t *testing.T) {
	body := bodyOf(
		at(0, metadata.OpNop, nil),
		at(1, metadata.OpLdcI4, int32(1)),
		at(2, metadata.OpNop, nil),
		at(3, metadata.OpRet, nil),
	)

	c := NewContext(context.Background(), Settings{}).ForMethod(testMethod())
	root, err := c.DecompileMethod(body)
	require.NoError(t, err)

	for expr := range il.SelfAndChildrenRecursive[*il.ILExpression](root) {
		assert.NotEqual(t, il.Nop, expr.Code)
	}

	// the nops' spans were relocated, not lost: coverage is still the
	// whole body
	compacted := il.OrderAndCompact(il.AllSpans(root))
	require.Len(t, compacted, 1)
	assert.Equal(t, il.BinSpan{Start: 0, End: body.CodeSize}, compacted[0])
}

func TestDecompileMethodKeepNops(t *testing.T) {
	body := bodyOf(
		at(0, metadata.OpNop, nil),
		at(1, metadata.OpRet, nil),
	)

	c := NewContext(context.Background(), Settings{KeepNops: true}).ForMethod(testMethod())
	root, err := c.DecompileMethod(body)
	require.NoError(t, err)

	nops := 0
	for expr := range il.SelfAndChildrenRecursive[*il.ILExpression](root) {
		if expr.Code == il.Nop {
			nops++
		}
	}
	assert.Equal(t, 1, nops)
}

func TestDecompileMethodSharesVariables(t *testing.T) {
	local := &metadata.VariableDef{Name: "x", Index: 0}
	body := bodyOf(
		at(0, metadata.OpLdcI4, int32(1)),
		at(1, metadata.OpStloc, local),
		at(2, metadata.OpLdloc, local),
		at(3, metadata.OpRet, nil),
	)

	c := NewContext(context.Background(), Settings{KeepNops: true}).ForMethod(testMethod())
	root, err := c.DecompileMethod(body)
	require.NoError(t, err)

	var vars []*il.ILVariable
	for expr := range il.SelfAndChildrenRecursive[*il.ILExpression](root) {
		if v, isVar := expr.Operand.(*il.ILVariable); isVar {
			vars = append(vars, v)
		}
	}
	require.Len(t, vars, 2)
	assert.Same(t, vars[0], vars[1], "one ILVariable per local slot")
	assert.False(t, vars[0].Generated)
	assert.Equal(t, "x", vars[0].Name)
}

func TestDecompileMethodNamesUnnamedLocals(t *testing.T) {
	local := &metadata.VariableDef{Index: 3}
	body := bodyOf(
		at(0, metadata.OpLdloc, local),
		at(1, metadata.OpRet, nil),
	)

	c := NewContext(context.Background(), Settings{KeepNops: true}).ForMethod(testMethod())
	root, err := c.DecompileMethod(body)
	require.NoError(t, err)

	load := root.Body[0].(*il.ILBasicBlock).Body[1].(*il.ILExpression)
	v := load.Operand.(*il.ILVariable)
	assert.Equal(t, "V_3", v.Name)
	assert.True(t, v.Generated)
}

func TestDecompileMethodBadOperand(t *testing.T) {
	body := bodyOf(
		at(0, metadata.OpBr, "not-an-offset"),
		at(1, metadata.OpRet, nil),
	)

	c := NewContext(context.Background(), Settings{}).ForMethod(testMethod())
	_, err := c.DecompileMethod(body)
	require.Error(t, err)
	decompErr, isDecompErr := err.(decerr.DecompError)
	require.True(t, isDecompErr)
	assert.Equal(t, decerr.BadOperand, decompErr.Code())
	assert.Contains(t, decompErr.Method(), "M")
}

func TestDecompileMethodCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewContext(ctx, Settings{}).ForMethod(testMethod())
	_, err := c.DecompileMethod(bodyOf(at(0, metadata.OpRet, nil)))
	require.Error(t, err)
	decompErr, isDecompErr := err.(decerr.DecompError)
	require.True(t, isDecompErr)
	assert.Equal(t, decerr.Cancelled, decompErr.Code())
}

func builderCall(factory string, args ...astexpr.Expr) *astexpr.Invocation {
	builderType := metadata.NewType("System.Linq.Expressions", "Expression")
	return &astexpr.Invocation{
		Target: &astexpr.MemberAccess{
			Target: &astexpr.TypeRefExpr{Type: builderType},
			Member: factory,
		},
		Args: args,
	}
}

func TestContextExpandsExpressionTrees(t *testing.T) {
	emptyParams := &astexpr.ArrayCreate{
		Element: metadata.NewType("System.Linq.Expressions", "Expression"),
		Init:    []astexpr.Expr{},
	}
	tree := builderCall("Lambda",
		builderCall("Constant", &astexpr.Primitive{Value: int32(1)}),
		emptyParams,
	)

	c := NewContext(context.Background(), Settings{}).ForMethod(testMethod())
	expanded, ok := c.TryExpandExpressionTree(tree)
	require.True(t, ok)
	_, isLambda := expanded.(*astexpr.Lambda)
	assert.True(t, isLambda)

	kept := NewContext(context.Background(), Settings{KeepBuilderCalls: true})
	_, ok = kept.TryExpandExpressionTree(tree)
	assert.False(t, ok)
}
