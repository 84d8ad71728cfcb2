package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody(t *testing.T) {
	src := `{
		"codeSize": 12,
		"locals": [{"name": "x", "index": 0, "type": {"namespace": "System", "name": "Int32"}}],
		"handlers": [{
			"kind": "catch",
			"tryStart": 0, "tryEnd": 6,
			"handlerStart": 6, "handlerEnd": 10,
			"catchType": {"namespace": "System", "name": "Exception"}
		}],
		"instructions": [
			{"offset": 0, "opcode": "ldc.i4", "operand": 41},
			{"offset": 2, "opcode": "stloc", "operand": 0},
			{"offset": 3, "opcode": "ldloc", "operand": 0},
			{"offset": 4, "opcode": "br", "operand": 10},
			{"offset": 6, "opcode": "pop"},
			{"offset": 7, "opcode": "leave", "operand": 10},
			{"offset": 10, "opcode": "ret"}
		]
	}`

	body, err := DecodeBody(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, uint32(12), body.CodeSize)
	require.Len(t, body.Instructions, 7)
	require.Len(t, body.Handlers, 1)
	assert.Equal(t, HandlerCatch, body.Handlers[0].Kind)
	assert.Equal(t, "System.Exception", body.Handlers[0].CatchType.FullName())

	assert.Same(t, OpLdcI4, body.Instructions[0].OpCode)
	assert.Equal(t, int32(41), body.Instructions[0].Operand)
	assert.Equal(t, uint32(10), body.Instructions[3].Operand)

	// both local references resolve to the same declared slot
	require.Len(t, body.Locals, 1)
	assert.Same(t, body.Locals[0], body.Instructions[1].Operand)
	assert.Same(t, body.Locals[0], body.Instructions[2].Operand)
	assert.Equal(t, "System.Int32", body.Locals[0].Type.FullName())
}

func TestDecodeBodyIdentityStableTypes(t *testing.T) {
	src := `{
		"instructions": [
			{"offset": 0, "opcode": "box", "operand": {"namespace": "System", "name": "Int32"}},
			{"offset": 1, "opcode": "unbox.any", "operand": {"namespace": "System", "name": "Int32"}},
			{"offset": 2, "opcode": "ret"}
		]
	}`

	body, err := DecodeBody(strings.NewReader(src))
	require.NoError(t, err)
	assert.Same(t, body.Instructions[0].Operand, body.Instructions[1].Operand)
	// omitted codeSize defaults from the last offset
	assert.Equal(t, uint32(3), body.CodeSize)
}

func TestDecodeBodyRejectsBadInput(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"unknown opcode", `{"instructions": [{"offset": 0, "opcode": "frobnicate"}]}`},
		{"unknown handler kind", `{"handlers": [{"kind": "resume"}], "instructions": []}`},
		{"operand on operand-free opcode", `{"instructions": [{"offset": 0, "opcode": "ret", "operand": 1}]}`},
		{"missing operand", `{"instructions": [{"offset": 0, "opcode": "br"}]}`},
		{"operand of the wrong shape", `{"instructions": [{"offset": 0, "opcode": "br", "operand": "IL_0004"}]}`},
		{"undeclared local", `{"instructions": [{"offset": 0, "opcode": "ldloc", "operand": 3}]}`},
		{"unknown field", `{"bogus": true, "instructions": []}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeBody(strings.NewReader(tc.src))
			assert.Error(t, err)
		})
	}
}

func TestDecodeBodyTokenOperands(t *testing.T) {
	src := `{
		"instructions": [
			{"offset": 0, "opcode": "ldtoken", "operand": {"type": {"namespace": "System", "name": "Int32"}}},
			{"offset": 1, "opcode": "ldtoken", "operand": {"method": {"declaring": {"namespace": "Demo", "name": "C"}, "name": "M", "static": true}}},
			{"offset": 2, "opcode": "ldtoken", "operand": {"field": {"declaring": {"namespace": "Demo", "name": "C"}, "name": "F"}}},
			{"offset": 3, "opcode": "ret"}
		]
	}`

	body, err := DecodeBody(strings.NewReader(src))
	require.NoError(t, err)

	_, isType := body.Instructions[0].Operand.(*TypeRef)
	assert.True(t, isType)
	method, isMethod := body.Instructions[1].Operand.(*MethodRef)
	require.True(t, isMethod)
	assert.True(t, method.Static)
	field, isField := body.Instructions[2].Operand.(*FieldRef)
	require.True(t, isField)
	assert.Equal(t, "Demo.C", field.Declaring.FullName())
}
