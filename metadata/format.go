package metadata

import "strings"

// maxTypeDepth bounds recursion when formatting type names, so that
// pathological generic nesting (including self-referential signatures)
// renders as UnrepresentableType instead of recursing without bound.
const maxTypeDepth = 50

// UnrepresentableType is emitted in place of a type whose nesting
// exceeds maxTypeDepth.
const UnrepresentableType = "?"

// FormatTypeName writes a printable name for t into sb. The builder is
// caller-supplied scratch; it is reset before formatting so it can be
// reused across calls.
func FormatTypeName(sb *strings.Builder, t *TypeRef) {
	sb.Reset()
	formatTypeName(sb, t, 0)
}

// AppendTypeName is FormatTypeName without the reset, for callers
// composing a larger string.
func AppendTypeName(sb *strings.Builder, t *TypeRef) {
	formatTypeName(sb, t, 0)
}

func formatTypeName(sb *strings.Builder, t *TypeRef, depth int) {
	if t == nil {
		sb.WriteString("<nil>")
		return
	}
	if depth >= maxTypeDepth {
		sb.WriteString(UnrepresentableType)
		return
	}
	switch t.Kind {
	case KindArray:
		formatTypeName(sb, t.Element, depth+1)
		sb.WriteString("[]")
	case KindPointer:
		formatTypeName(sb, t.Element, depth+1)
		sb.WriteByte('*')
	case KindByRef:
		formatTypeName(sb, t.Element, depth+1)
		sb.WriteByte('&')
	default:
		sb.WriteString(t.FullName())
		if len(t.GenericArgs) > 0 {
			sb.WriteByte('<')
			for i, arg := range t.GenericArgs {
				if i > 0 {
					sb.WriteString(", ")
				}
				formatTypeName(sb, arg, depth+1)
			}
			sb.WriteByte('>')
		}
	}
}
