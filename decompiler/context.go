package decompiler

import (
	"context"

	"github.com/cottand/decomp/astexpr"
	"github.com/cottand/decomp/internal/log"
	"github.com/cottand/decomp/metadata"
)

var logger = log.DefaultLogger.With("section", "decompiler")

// Settings selects which passes a run performs. The zero value enables
// everything.
type Settings struct {
	// KeepNops disables the nop-removal cleanup pass.
	KeepNops bool
	// KeepBuilderCalls disables expression-tree recovery: lambdas built
	// through reflective factory calls stay as those calls.
	KeepBuilderCalls bool
	// ResolveArrayLength supplies the platform array Length property so
	// recovered array-length accesses can be annotated with it. Nil is
	// valid; the annotation is then omitted.
	ResolveArrayLength func() *metadata.PropertyRef
}

// Context carries the state of one decompile run: the settings, the
// member being worked on and the per-run caches. Not safe for
// concurrent use; decompile runs are independent, so parallelism is one
// Context per goroutine.
type Context struct {
	Settings      Settings
	CurrentType   *metadata.TypeRef
	CurrentMethod *metadata.MethodRef

	ctx       context.Context
	converter *astexpr.Converter
}

// NewContext starts a run. Per-run caches (the converter's lazy
// array-length member among them) begin empty.
func NewContext(ctx context.Context, settings Settings) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		Settings: settings,
		ctx:      ctx,
		converter: &astexpr.Converter{
			Ctx:                ctx,
			ResolveArrayLength: settings.ResolveArrayLength,
		},
	}
}

// ForMethod positions the context on the method about to be processed.
func (c *Context) ForMethod(m *metadata.MethodRef) *Context {
	c.CurrentMethod = m
	if m != nil {
		c.CurrentType = m.Declaring
	}
	return c
}

func (c *Context) methodName() string {
	if c.CurrentMethod == nil {
		return "<unknown>"
	}
	return c.CurrentMethod.String()
}

// TryExpandExpressionTree rewrites a reflective builder-call tree into
// the native lambda it constructs. A (nil, false) return means the
// caller keeps the original expression untouched.
func (c *Context) TryExpandExpressionTree(e astexpr.Expr) (astexpr.Expr, bool) {
	if c.Settings.KeepBuilderCalls {
		return nil, false
	}
	return c.converter.TryConvert(e)
}
