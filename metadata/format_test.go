package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTypeName(t *testing.T) {
	intT := NewType("System", "Int32")
	listT := &TypeRef{
		Namespace:   "System.Collections.Generic",
		Name:        "List",
		GenericArgs: []*TypeRef{intT},
	}

	testCases := []struct {
		name     string
		input    *TypeRef
		expected string
	}{
		{
			name:     "plain type",
			input:    intT,
			expected: "System.Int32",
		},
		{
			name:     "generic instantiation",
			input:    listT,
			expected: "System.Collections.Generic.List<System.Int32>",
		},
		{
			name:     "array of generic",
			input:    ArrayOf(listT),
			expected: "System.Collections.Generic.List<System.Int32>[]",
		},
		{
			name:     "pointer",
			input:    &TypeRef{Name: "Int32*", Kind: KindPointer, Element: intT},
			expected: "System.Int32*",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sb := &strings.Builder{}
			FormatTypeName(sb, tc.input)
			assert.Equal(t, tc.expected, sb.String())
		})
	}
}

func TestFormatTypeNameResetsScratchBuilder(t *testing.T) {
	sb := &strings.Builder{}
	sb.WriteString("leftover from previous call")
	FormatTypeName(sb, NewType("System", "String"))
	assert.Equal(t, "System.String", sb.String())
}

func TestFormatTypeNameDepthCap(t *testing.T) {
	// a generic nesting deeper than the cap renders as the placeholder
	// instead of recursing unboundedly
	deep := NewType("", "T")
	for i := 0; i < 200; i++ {
		deep = &TypeRef{Name: "Outer", GenericArgs: []*TypeRef{deep}}
	}

	sb := &strings.Builder{}
	FormatTypeName(sb, deep)
	assert.Contains(t, sb.String(), UnrepresentableType)
	assert.NotContains(t, sb.String(), "T", "nesting past the cap must not be expanded")

	// a self-referential signature terminates too
	selfRef := &TypeRef{Name: "Rec"}
	selfRef.GenericArgs = []*TypeRef{selfRef}
	sb2 := &strings.Builder{}
	FormatTypeName(sb2, selfRef)
	assert.Contains(t, sb2.String(), UnrepresentableType)
}
