package astexpr

import (
	"context"

	"github.com/cottand/decomp/internal/log"
	"github.com/cottand/decomp/metadata"
	"github.com/cottand/decomp/util"
)

var logger = log.DefaultLogger.With("section", "exprtree")

const builderTypeName = "System.Linq.Expressions.Expression"

// maxConvertDepth bounds recursion over hostile inputs. Well-formed
// builder trees stay far below it.
const maxConvertDepth = 50

// Converter rewrites reflective expression-tree builder calls back into
// the native expressions they describe. Conversion fails soft: a
// (nil, false) return means the caller keeps the original builder
// calls, and no partially converted tree ever escapes.
type Converter struct {
	// Ctx, when set, is checked during conversion so cancellation
	// unwinds promptly instead of finishing the current tree.
	Ctx context.Context

	// ResolveArrayLength returns the platform array Length property, or
	// nil when the current module holds no reference to it. Consulted
	// lazily, at most once per converter.
	ResolveArrayLength func() *metadata.PropertyRef

	arrayLength     *metadata.PropertyRef
	arrayLengthDone bool

	// activeLambdas tracks the parameter declarations of enclosing
	// lambdas so parameter references in nested bodies resolve.
	activeLambdas util.Stack[[]LambdaParam]

	depth int
}

// matchBuilderCall recognises a static call on the builder facade type
// and returns its factory name and arguments.
func matchBuilderCall(e Expr) (string, []Expr, bool) {
	inv, isInv := e.(*Invocation)
	if !isInv {
		return "", nil, false
	}
	ma, isMa := inv.Target.(*MemberAccess)
	if !isMa {
		return "", nil, false
	}
	tr, isTr := ma.Target.(*TypeRefExpr)
	if !isTr || tr.Type.FullName() != builderTypeName {
		return "", nil, false
	}
	return ma.Member, inv.Args, true
}

// CouldBeExpressionTree reports whether e looks like the root of a
// compiler-generated expression tree: a two-argument Lambda factory
// call. Cheap pre-test so callers avoid converter setup for ordinary
// invocations.
func CouldBeExpressionTree(e Expr) bool {
	name, args, ok := matchBuilderCall(e)
	return ok && name == "Lambda" && len(args) == 2
}

// TryConvert converts the builder-call tree rooted at e into native
// syntax. The result carries an ExpressionTreeLambdaAnnotation so
// rendering knows the lambda denotes a tree, not a delegate.
func (c *Converter) TryConvert(e Expr) (Expr, bool) {
	if !CouldBeExpressionTree(e) {
		return nil, false
	}
	converted, ok := c.convert(e)
	if !ok {
		logger.Debug("expression tree not convertible, keeping builder calls")
		return nil, false
	}
	converted.AddAnnotation(ExpressionTreeLambdaAnnotation{})
	return converted, true
}

func (c *Converter) convert(e Expr) (Expr, bool) {
	if c.Ctx != nil && c.Ctx.Err() != nil {
		return nil, false
	}
	if c.depth >= maxConvertDepth {
		return nil, false
	}
	c.depth++
	defer func() { c.depth-- }()

	name, args, ok := matchBuilderCall(e)
	if !ok {
		return c.convertNonBuilder(e)
	}
	switch name {
	case "Add":
		return c.convertArith(BinAdd, false, args)
	case "AddChecked":
		return c.convertArith(BinAdd, true, args)
	case "And":
		return c.convertBinary(BinBitAnd, args)
	case "AndAlso":
		return c.convertBinary(BinLogicalAnd, args)
	case "ArrayIndex":
		return c.convertArrayIndex(args)
	case "ArrayLength":
		return c.convertArrayLength(args)
	case "Call":
		return c.convertCall(args)
	case "Coalesce":
		return c.convertBinary(BinNullCoalesce, args)
	case "Condition":
		return c.convertCondition(args)
	case "Constant":
		return c.convertConstant(args)
	case "Convert":
		return c.convertCast(false, args)
	case "ConvertChecked":
		return c.convertCast(true, args)
	case "Divide":
		return c.convertArith(BinDiv, false, args)
	case "Equal":
		return c.convertBinary(BinEq, args)
	case "ExclusiveOr":
		return c.convertBinary(BinBitXor, args)
	case "Field":
		return c.convertField(args)
	case "GreaterThan":
		return c.convertBinary(BinGt, args)
	case "GreaterThanOrEqual":
		return c.convertBinary(BinGe, args)
	case "Invoke":
		return c.convertInvoke(args)
	case "Lambda":
		return c.convertLambda(e, args)
	case "LeftShift":
		return c.convertBinary(BinShiftLeft, args)
	case "LessThan":
		return c.convertBinary(BinLt, args)
	case "LessThanOrEqual":
		return c.convertBinary(BinLe, args)
	case "ListInit":
		return c.convertListInit(args)
	case "MemberInit":
		return c.convertMemberInit(args)
	case "Modulo":
		return c.convertArith(BinMod, false, args)
	case "Multiply":
		return c.convertArith(BinMul, false, args)
	case "MultiplyChecked":
		return c.convertArith(BinMul, true, args)
	case "Negate":
		return c.convertNegate(false, args)
	case "NegateChecked":
		return c.convertNegate(true, args)
	case "New":
		return c.convertNew(args)
	case "NewArrayBounds":
		return c.convertNewArrayBounds(args)
	case "NewArrayInit":
		return c.convertNewArrayInit(args)
	case "Not":
		return c.convertUnary(UnLogicalNot, args)
	case "NotEqual":
		return c.convertBinary(BinNeq, args)
	case "OnesComplement":
		return c.convertUnary(UnBitNot, args)
	case "Or":
		return c.convertBinary(BinBitOr, args)
	case "OrElse":
		return c.convertBinary(BinLogicalOr, args)
	case "Property":
		return c.convertProperty(args)
	case "Quote":
		return c.convertQuote(args)
	case "RightShift":
		return c.convertBinary(BinShiftRight, args)
	case "Subtract":
		return c.convertArith(BinSub, false, args)
	case "SubtractChecked":
		return c.convertArith(BinSub, true, args)
	case "TypeAs":
		return c.convertTypeAs(args)
	case "TypeIs":
		return c.convertTypeIs(args)
	case "Assign", "AddAssign", "AddAssignChecked", "AndAssign", "DivideAssign",
		"ExclusiveOrAssign", "LeftShiftAssign", "ModuloAssign", "MultiplyAssign",
		"MultiplyAssignChecked", "OrAssign", "PostDecrementAssign",
		"PostIncrementAssign", "PowerAssign", "PreDecrementAssign",
		"PreIncrementAssign", "RightShiftAssign", "SubtractAssign",
		"SubtractAssignChecked":
		// assignments inside a tree have no faithful native rendering
		logger.Debug("assignment builder call not supported", "factory", name)
		return nil, false
	default:
		logger.Debug("unrecognised builder call", "factory", name)
		return nil, false
	}
}

// convertNonBuilder handles the leaves a builder tree is allowed to
// contain besides factory calls: references to enclosing lambda
// parameters. Everything else declines the whole conversion.
func (c *Converter) convertNonBuilder(e Expr) (Expr, bool) {
	ident, isIdent := e.(*Identifier)
	if !isIdent {
		return nil, false
	}
	for _, params := range c.activeLambdas.TopFirst() {
		for _, p := range params {
			if p.Name == ident.Name {
				return &Identifier{Name: ident.Name}, true
			}
		}
	}
	return nil, false
}

func (c *Converter) convertEach(args []Expr) ([]Expr, bool) {
	converted := make([]Expr, len(args))
	for i, a := range args {
		v, ok := c.convert(a)
		if !ok {
			return nil, false
		}
		converted[i] = v
	}
	return converted, true
}

// expandArray unpacks a single array-literal argument into its
// elements. Builder sites pass variadic expression lists as one array,
// which reaches us as a native array literal (or null for none).
func expandArray(args []Expr) []Expr {
	if len(args) != 1 {
		return args
	}
	switch v := args[0].(type) {
	case *ArrayCreate:
		if v.Init != nil {
			return v.Init
		}
	case *Primitive:
		if v.Value == nil {
			return nil
		}
	}
	return args
}

func isNullLiteral(e Expr) bool {
	prim, isPrim := e.(*Primitive)
	return isPrim && prim.Value == nil
}

func isEmptyArray(e Expr) bool {
	switch v := e.(type) {
	case *Primitive:
		return v.Value == nil
	case *ArrayCreate:
		if v.Init != nil {
			return len(v.Init) == 0
		}
		if len(v.Bounds) == 1 {
			if n, isPrim := v.Bounds[0].(*Primitive); isPrim {
				switch size := n.Value.(type) {
				case int:
					return size == 0
				case int32:
					return size == 0
				case int64:
					return size == 0
				}
			}
		}
	}
	return false
}

// matchHandleCall recognises the reflection round-trip
// declaring.method(token[, declaringTypeHandle]), optionally wrapped in
// a downcast, and returns the token expression.
func matchHandleCall(e Expr, declaring, method string) (Expr, bool) {
	if cast, isCast := e.(*Cast); isCast {
		e = cast.Arg
	}
	inv, isInv := e.(*Invocation)
	if !isInv || len(inv.Args) < 1 || len(inv.Args) > 2 {
		return nil, false
	}
	ma, isMa := inv.Target.(*MemberAccess)
	if !isMa || ma.Member != method {
		return nil, false
	}
	tr, isTr := ma.Target.(*TypeRefExpr)
	if !isTr || tr.Type.FullName() != declaring {
		return nil, false
	}
	return inv.Args[0], true
}

func matchMethodHandle(e Expr) (*metadata.MethodRef, bool) {
	token, ok := matchHandleCall(e, "System.Reflection.MethodBase", "GetMethodFromHandle")
	if !ok {
		return nil, false
	}
	ann, ok := Annotation[LdTokenAnnotation](token)
	if !ok {
		return nil, false
	}
	method, isMethod := ann.Member.(*metadata.MethodRef)
	return method, isMethod
}

func matchFieldHandle(e Expr) (*metadata.FieldRef, bool) {
	token, ok := matchHandleCall(e, "System.Reflection.FieldInfo", "GetFieldFromHandle")
	if !ok {
		return nil, false
	}
	ann, ok := Annotation[LdTokenAnnotation](token)
	if !ok {
		return nil, false
	}
	field, isField := ann.Member.(*metadata.FieldRef)
	return field, isField
}

func matchTypeOf(e Expr) (*metadata.TypeRef, bool) {
	token, ok := matchHandleCall(e, "System.Type", "GetTypeFromHandle")
	if !ok {
		return nil, false
	}
	ann, ok := Annotation[LdTokenAnnotation](token)
	if !ok || ann.Type == nil {
		return nil, false
	}
	return ann.Type, true
}

func matchMemberHandle(e Expr) (metadata.Member, bool) {
	if m, ok := matchMethodHandle(e); ok {
		return m, true
	}
	if f, ok := matchFieldHandle(e); ok {
		return f, true
	}
	return nil, false
}

// memberDisplayName maps accessor methods back to the member they
// accede, so get_X reads as X.
func memberDisplayName(m metadata.Member) string {
	if method, isMethod := m.(*metadata.MethodRef); isMethod && method.IsGetter() {
		return method.Name[len("get_"):]
	}
	return m.MemberName()
}

func (c *Converter) convertBinary(op BinaryOp, args []Expr) (*Binary, bool) {
	if len(args) < 2 {
		return nil, false
	}
	left, ok := c.convert(args[0])
	if !ok {
		return nil, false
	}
	right, ok := c.convert(args[1])
	if !ok {
		return nil, false
	}
	bin := &Binary{Op: op, Left: left, Right: right}
	for _, extra := range args[2:] {
		// extra arguments are the nullable-lifting flag and a
		// user-defined operator overload, in either order
		if prim, isPrim := extra.(*Primitive); isPrim {
			if _, isBool := prim.Value.(bool); isBool {
				continue
			}
		}
		if isNullLiteral(extra) {
			continue
		}
		if method, isMethod := matchMethodHandle(extra); isMethod {
			bin.AddAnnotation(UserOperatorAnnotation{Method: method})
			continue
		}
		return nil, false
	}
	return bin, true
}

// convertArith records the overflow context explicitly because the
// recovered expression no longer sits inside its original checked
// region.
func (c *Converter) convertArith(op BinaryOp, checked bool, args []Expr) (Expr, bool) {
	bin, ok := c.convertBinary(op, args)
	if !ok {
		return nil, false
	}
	bin.AddAnnotation(CheckedAnnotation{Checked: checked})
	return bin, true
}

func (c *Converter) convertUnary(op UnaryOp, args []Expr) (*Unary, bool) {
	if len(args) < 1 || len(args) > 2 {
		return nil, false
	}
	operand, ok := c.convert(args[0])
	if !ok {
		return nil, false
	}
	u := &Unary{Op: op, Operand: operand}
	if len(args) == 2 {
		method, isMethod := matchMethodHandle(args[1])
		if !isMethod {
			return nil, false
		}
		u.AddAnnotation(UserOperatorAnnotation{Method: method})
	}
	return u, true
}

func (c *Converter) convertNegate(checked bool, args []Expr) (Expr, bool) {
	u, ok := c.convertUnary(UnMinus, args)
	if !ok {
		return nil, false
	}
	u.AddAnnotation(CheckedAnnotation{Checked: checked})
	return u, true
}

func (c *Converter) convertCondition(args []Expr) (Expr, bool) {
	if len(args) != 3 {
		return nil, false
	}
	cond, ok := c.convert(args[0])
	if !ok {
		return nil, false
	}
	then, ok := c.convert(args[1])
	if !ok {
		return nil, false
	}
	els, ok := c.convert(args[2])
	if !ok {
		return nil, false
	}
	return &Conditional{Cond: cond, Then: then, Else: els}, true
}

// convertConstant passes the captured value through untouched. The
// value argument is already native (a literal or a closure access); the
// optional type argument only matters for a null literal, where it is
// the sole carrier of the intended type.
func (c *Converter) convertConstant(args []Expr) (Expr, bool) {
	if len(args) < 1 || len(args) > 2 {
		return nil, false
	}
	value := args[0]
	if _, _, isBuilder := matchBuilderCall(value); isBuilder {
		return nil, false
	}
	if len(args) == 2 {
		typ, ok := matchTypeOf(args[1])
		if !ok {
			return nil, false
		}
		if isNullLiteral(value) {
			return &Cast{Type: typ, Arg: value}, true
		}
	}
	return value, true
}

func (c *Converter) convertCast(checked bool, args []Expr) (Expr, bool) {
	if len(args) < 2 || len(args) > 3 {
		return nil, false
	}
	arg, ok := c.convert(args[0])
	if !ok {
		return nil, false
	}
	typ, ok := matchTypeOf(args[1])
	if !ok {
		return nil, false
	}
	cast := &Cast{Type: typ, Arg: arg}
	cast.AddAnnotation(CheckedAnnotation{Checked: checked})
	if len(args) == 3 {
		method, isMethod := matchMethodHandle(args[2])
		if !isMethod {
			return nil, false
		}
		cast.AddAnnotation(UserOperatorAnnotation{Method: method})
	}
	return cast, true
}

func (c *Converter) convertTypeAs(args []Expr) (Expr, bool) {
	if len(args) != 2 {
		return nil, false
	}
	arg, ok := c.convert(args[0])
	if !ok {
		return nil, false
	}
	typ, ok := matchTypeOf(args[1])
	if !ok {
		return nil, false
	}
	return &AsExpr{Arg: arg, Type: typ}, true
}

func (c *Converter) convertTypeIs(args []Expr) (Expr, bool) {
	if len(args) != 2 {
		return nil, false
	}
	arg, ok := c.convert(args[0])
	if !ok {
		return nil, false
	}
	typ, ok := matchTypeOf(args[1])
	if !ok {
		return nil, false
	}
	return &IsExpr{Arg: arg, Type: typ}, true
}

func (c *Converter) convertQuote(args []Expr) (Expr, bool) {
	if len(args) != 1 {
		return nil, false
	}
	return c.convert(args[0])
}

func (c *Converter) convertCall(args []Expr) (Expr, bool) {
	var target Expr
	var method *metadata.MethodRef
	var rest []Expr
	switch {
	case len(args) >= 1 && matches(matchMethodHandle, args[0]):
		method, _ = matchMethodHandle(args[0])
		rest = args[1:]
	case len(args) >= 2 && matches(matchMethodHandle, args[1]):
		method, _ = matchMethodHandle(args[1])
		if !isNullLiteral(args[0]) {
			t, ok := c.convert(args[0])
			if !ok {
				return nil, false
			}
			target = t
		}
		rest = args[2:]
	default:
		return nil, false
	}
	callArgs, ok := c.convertEach(expandArray(rest))
	if !ok {
		return nil, false
	}
	if target == nil {
		target = &TypeRefExpr{Type: method.Declaring}
	}
	if method.IsGetter() {
		// indexer access compiled to its get accessor
		idx := &Indexer{Target: target, Args: callArgs}
		idx.AddAnnotation(MemberAnnotation{Member: method})
		return idx, true
	}
	inv := &Invocation{
		Target: &MemberAccess{Target: target, Member: method.Name},
		Args:   callArgs,
	}
	inv.AddAnnotation(MemberAnnotation{Member: method})
	return inv, true
}

func matches[T any](match func(Expr) (T, bool), e Expr) bool {
	_, ok := match(e)
	return ok
}

func (c *Converter) convertInvoke(args []Expr) (Expr, bool) {
	if len(args) < 1 {
		return nil, false
	}
	target, ok := c.convert(args[0])
	if !ok {
		return nil, false
	}
	callArgs, ok := c.convertEach(expandArray(args[1:]))
	if !ok {
		return nil, false
	}
	return &Invocation{Target: target, Args: callArgs}, true
}

func (c *Converter) convertField(args []Expr) (Expr, bool) {
	if len(args) != 2 {
		return nil, false
	}
	field, ok := matchFieldHandle(args[1])
	if !ok {
		return nil, false
	}
	var target Expr
	if isNullLiteral(args[0]) {
		target = &TypeRefExpr{Type: field.Declaring}
	} else {
		t, ok := c.convert(args[0])
		if !ok {
			return nil, false
		}
		target = t
	}
	ma := &MemberAccess{Target: target, Member: field.Name}
	ma.AddAnnotation(MemberAnnotation{Member: field})
	return ma, true
}

func (c *Converter) convertProperty(args []Expr) (Expr, bool) {
	if len(args) < 2 {
		return nil, false
	}
	getter, ok := matchMethodHandle(args[1])
	if !ok || !getter.IsGetter() {
		return nil, false
	}
	var target Expr
	if isNullLiteral(args[0]) {
		target = &TypeRefExpr{Type: getter.Declaring}
	} else {
		t, ok := c.convert(args[0])
		if !ok {
			return nil, false
		}
		target = t
	}
	name := getter.Name[len("get_"):]
	if len(args) > 2 {
		idxArgs, ok := c.convertEach(expandArray(args[2:]))
		if !ok {
			return nil, false
		}
		idx := &Indexer{Target: target, Args: idxArgs}
		idx.AddAnnotation(MemberAnnotation{Member: getter})
		return idx, true
	}
	ma := &MemberAccess{Target: target, Member: name}
	ma.AddAnnotation(MemberAnnotation{Member: getter})
	return ma, true
}

func (c *Converter) convertArrayIndex(args []Expr) (Expr, bool) {
	if len(args) < 2 {
		return nil, false
	}
	target, ok := c.convert(args[0])
	if !ok {
		return nil, false
	}
	idxArgs, ok := c.convertEach(expandArray(args[1:]))
	if !ok {
		return nil, false
	}
	return &Indexer{Target: target, Args: idxArgs}, true
}

func (c *Converter) convertArrayLength(args []Expr) (Expr, bool) {
	if len(args) != 1 {
		return nil, false
	}
	target, ok := c.convert(args[0])
	if !ok {
		return nil, false
	}
	ma := &MemberAccess{Target: target, Member: "Length"}
	if member := c.lazyArrayLength(); member != nil {
		ma.AddAnnotation(MemberAnnotation{Member: member})
	}
	return ma, true
}

func (c *Converter) lazyArrayLength() *metadata.PropertyRef {
	if !c.arrayLengthDone {
		c.arrayLengthDone = true
		if c.ResolveArrayLength != nil {
			c.arrayLength = c.ResolveArrayLength()
		}
	}
	return c.arrayLength
}

func (c *Converter) convertLambda(e Expr, args []Expr) (Expr, bool) {
	if len(args) != 2 {
		return nil, false
	}
	var params []LambdaParam
	if ann, ok := Annotation[ParamListAnnotation](e); ok {
		params = ann.Params
	} else if !isEmptyArray(args[1]) {
		// without recovered declarations only a parameterless lambda
		// can be rebuilt faithfully
		return nil, false
	}
	c.activeLambdas.Push(params)
	body, ok := c.convert(args[0])
	c.activeLambdas.Pop()
	if !ok {
		return nil, false
	}
	return &Lambda{Params: params, Body: body}, true
}

func (c *Converter) convertNew(args []Expr) (Expr, bool) {
	if len(args) == 0 || len(args) > 3 {
		return nil, false
	}
	if typ, ok := matchTypeOf(args[0]); ok {
		if len(args) != 1 {
			return nil, false
		}
		return &ObjectCreate{Type: typ, Args: []Expr{}}, true
	}
	ctor, ok := matchMethodHandle(args[0])
	if !ok || !ctor.IsConstructor() {
		return nil, false
	}
	ctorArgs := []Expr{}
	if len(args) >= 2 {
		converted, ok := c.convertEach(expandArray(args[1:2]))
		if !ok {
			return nil, false
		}
		ctorArgs = converted
	}
	var names []string
	if len(args) == 3 {
		for _, m := range expandArray(args[2:3]) {
			if member, isMember := matchMemberHandle(m); isMember {
				names = append(names, memberDisplayName(member))
				continue
			}
			if prim, isPrim := m.(*Primitive); isPrim {
				if s, isStr := prim.Value.(string); isStr {
					names = append(names, s)
					continue
				}
			}
			return nil, false
		}
		if len(names) != len(ctorArgs) {
			return nil, false
		}
	}
	if ctor.Declaring.IsAnonymous() {
		return c.anonymousCreate(ctor, ctorArgs, names)
	}
	if names != nil {
		// an explicit member list on a nominal type reads as an object
		// initializer
		entries := make([]Expr, len(names))
		for i, name := range names {
			entries[i] = &Named{Name: name, Value: ctorArgs[i]}
		}
		return &ObjectCreate{Type: ctor.Declaring, Initializer: entries}, true
	}
	return &ObjectCreate{Type: ctor.Declaring, Args: ctorArgs}, true
}

// anonymousCreate renders anonymous-type construction. When every
// argument already reads as the property it initialises the names stay
// implicit; otherwise each entry is named, using the member list when
// present and the constructor's own parameters when not (skipping any
// leading synthetic ones).
func (c *Converter) anonymousCreate(ctor *metadata.MethodRef, args []Expr, names []string) (Expr, bool) {
	positional := names != nil && len(names) == len(args)
	for i := 0; positional && i < len(args); i++ {
		positional = exprReadsAsName(args[i], names[i])
	}
	if positional {
		return &AnonymousCreate{Entries: args}, true
	}
	params := ctor.Params
	if skip := len(params) - len(args); skip >= 0 {
		params = params[skip:]
	} else if names == nil {
		return nil, false
	}
	entries := make([]Expr, len(args))
	for i, arg := range args {
		var name string
		switch {
		case names != nil:
			name = names[i]
		case i < len(params):
			name = params[i].Name
		default:
			return nil, false
		}
		entries[i] = &Named{Name: name, Value: arg}
	}
	return &AnonymousCreate{Entries: entries}, true
}

func exprReadsAsName(e Expr, name string) bool {
	switch v := e.(type) {
	case *Identifier:
		return v.Name == name
	case *MemberAccess:
		return v.Member == name
	}
	return false
}

func (c *Converter) convertNewArrayInit(args []Expr) (Expr, bool) {
	if len(args) < 1 {
		return nil, false
	}
	element, ok := matchTypeOf(args[0])
	if !ok {
		return nil, false
	}
	elems, ok := c.convertEach(expandArray(args[1:]))
	if !ok {
		return nil, false
	}
	if elems == nil {
		elems = []Expr{}
	}
	return &ArrayCreate{Element: element, Init: elems}, true
}

func (c *Converter) convertNewArrayBounds(args []Expr) (Expr, bool) {
	if len(args) < 2 {
		return nil, false
	}
	element, ok := matchTypeOf(args[0])
	if !ok {
		return nil, false
	}
	bounds, ok := c.convertEach(expandArray(args[1:]))
	if !ok || len(bounds) == 0 {
		return nil, false
	}
	return &ArrayCreate{Element: element, Bounds: bounds}, true
}

func (c *Converter) convertListInit(args []Expr) (Expr, bool) {
	if len(args) < 2 {
		return nil, false
	}
	created, ok := c.convert(args[0])
	if !ok {
		return nil, false
	}
	obj, isObj := created.(*ObjectCreate)
	if !isObj {
		return nil, false
	}
	entries, ok := c.convertElementInits(expandArray(args[1:]))
	if !ok {
		return nil, false
	}
	obj.Initializer = entries
	return obj, true
}

// convertElementInits turns ElementInit factory calls (or bare element
// expressions) into collection-initializer entries. Multi-argument adds
// group their arguments in an InitBlock.
func (c *Converter) convertElementInits(inits []Expr) ([]Expr, bool) {
	entries := make([]Expr, 0, len(inits))
	for _, init := range inits {
		name, iargs, isBuilder := matchBuilderCall(init)
		if isBuilder && name == "ElementInit" {
			if len(iargs) < 1 {
				return nil, false
			}
			if _, ok := matchMethodHandle(iargs[0]); !ok {
				return nil, false
			}
			vals, ok := c.convertEach(expandArray(iargs[1:]))
			if !ok {
				return nil, false
			}
			if len(vals) == 1 {
				entries = append(entries, vals[0])
			} else {
				entries = append(entries, &InitBlock{Elements: vals})
			}
			continue
		}
		v, ok := c.convert(init)
		if !ok {
			return nil, false
		}
		entries = append(entries, v)
	}
	return entries, true
}

func (c *Converter) convertMemberInit(args []Expr) (Expr, bool) {
	if len(args) < 2 {
		return nil, false
	}
	created, ok := c.convert(args[0])
	if !ok {
		return nil, false
	}
	obj, isObj := created.(*ObjectCreate)
	if !isObj {
		return nil, false
	}
	entries, ok := c.convertBindings(expandArray(args[1:]))
	if !ok {
		return nil, false
	}
	obj.Initializer = entries
	return obj, true
}

// convertBindings turns member bindings into object-initializer
// entries: Bind assigns a value, MemberBind nests another object
// initializer, ListBind nests a collection initializer.
func (c *Converter) convertBindings(bindings []Expr) ([]Expr, bool) {
	entries := make([]Expr, 0, len(bindings))
	for _, b := range bindings {
		name, bargs, isBuilder := matchBuilderCall(b)
		if !isBuilder || len(bargs) < 1 {
			return nil, false
		}
		member, ok := matchMemberHandle(bargs[0])
		if !ok {
			return nil, false
		}
		switch name {
		case "Bind":
			if len(bargs) != 2 {
				return nil, false
			}
			v, ok := c.convert(bargs[1])
			if !ok {
				return nil, false
			}
			entries = append(entries, &Named{Name: memberDisplayName(member), Value: v})
		case "MemberBind":
			nested, ok := c.convertBindings(expandArray(bargs[1:]))
			if !ok {
				return nil, false
			}
			entries = append(entries, &Named{
				Name:  memberDisplayName(member),
				Value: &InitBlock{Elements: nested},
			})
		case "ListBind":
			nested, ok := c.convertElementInits(expandArray(bargs[1:]))
			if !ok {
				return nil, false
			}
			entries = append(entries, &Named{
				Name:  memberDisplayName(member),
				Value: &InitBlock{Elements: nested},
			})
		default:
			return nil, false
		}
	}
	return entries, true
}
