package astexpr

import "github.com/cottand/decomp/metadata"

// LdTokenAnnotation marks an expression that originated from a raw
// metadata-token load. Exactly one of Member and Type is set. The
// handle-resolution matchers read it back when undoing reflection
// round-trips such as GetMethodFromHandle.
type LdTokenAnnotation struct {
	Member metadata.Member
	Type   *metadata.TypeRef
}

// ParamListAnnotation carries the lambda parameter declarations
// recovered from the hoisted parameter variables of a builder-call
// site. When present on a Lambda factory invocation it takes priority
// over the builder's parameter-array argument.
type ParamListAnnotation struct {
	Params []LambdaParam
}

// ExpressionTreeLambdaAnnotation marks a lambda that was recovered from
// builder calls, so downstream rendering knows the value is an
// expression tree rather than a delegate.
type ExpressionTreeLambdaAnnotation struct{}

// UserOperatorAnnotation records the user-defined operator overload a
// binary or unary node dispatches to.
type UserOperatorAnnotation struct {
	Method *metadata.MethodRef
}

// CheckedAnnotation pins the overflow-checking context of an arithmetic
// or conversion node. Recorded explicitly because the recovered
// expression no longer sits inside its original checked region.
type CheckedAnnotation struct {
	Checked bool
}

// MemberAnnotation records the resolved member behind an access or call
// produced by the converter.
type MemberAnnotation struct {
	Member metadata.Member
}
