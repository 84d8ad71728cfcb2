package il

import (
	"iter"

	"github.com/cottand/decomp/metadata"
	"github.com/cottand/decomp/util"
)

// ILLabel is a named jump target. Branch expressions reference labels
// by identity; the set of label pointers reachable from a method body
// is its implicit label registry.
type ILLabel struct {
	nodeSpans
	Name string
}

func (l *ILLabel) safeToExtendEnd() bool { return true }
func (l *ILLabel) String() string        { return l.Name + ":" }

// ILBlock is an ordered statement sequence. EntryGoto, when present, is
// a pseudo-statement logically preceding Body. The closing brace has
// its own span list.
type ILBlock struct {
	nodeEndSpans
	EntryGoto *ILExpression
	Body      []Node
}

func NewILBlock(body ...Node) *ILBlock {
	return &ILBlock{Body: body}
}

func (b *ILBlock) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if b.EntryGoto != nil {
			if !yield(b.EntryGoto) {
				return
			}
		}
		for _, stmt := range b.Body {
			if stmt == nil {
				continue
			}
			if !yield(stmt) {
				return
			}
		}
	}
}

func (b *ILBlock) safeToExtendEnd() bool { return true }
func (b *ILBlock) bodyRef() *[]Node      { return &b.Body }

// ILBasicBlock is a block that begins with a label and ends with an
// unconditional control transfer. The invariant is established by the
// structuring pass, not enforced here.
type ILBasicBlock struct {
	nodeSpans
	Body []Node
}

func (b *ILBasicBlock) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, stmt := range b.Body {
			if stmt == nil {
				continue
			}
			if !yield(stmt) {
				return
			}
		}
	}
}

func (b *ILBasicBlock) safeToExtendEnd() bool { return true }
func (b *ILBasicBlock) bodyRef() *[]Node      { return &b.Body }

// EntryLabel returns the basic block's leading label when the invariant
// holds.
func (b *ILBasicBlock) EntryLabel() (*ILLabel, bool) {
	if len(b.Body) == 0 {
		return nil, false
	}
	label, ok := b.Body[0].(*ILLabel)
	return label, ok
}

// ILCatchBlock is one catch clause of an ILTryCatchBlock.
type ILCatchBlock struct {
	ILBlock
	// ExceptionType is nil for catch-all clauses and for fault/filter
	// handlers.
	ExceptionType *metadata.TypeRef
	// ExceptionVariable is the variable the caught exception is bound
	// to, nil when the handler discards it.
	ExceptionVariable *ILVariable
	// StoreSpans records the instruction(s) that stored the exception
	// into ExceptionVariable; kept separate from the block spans so the
	// store location survives even though no statement represents it.
	StoreSpans []BinSpan
}

func (c *ILCatchBlock) auxSpans() []BinSpan { return c.StoreSpans }

// ILFilterBlock is the filter expression region of a filter clause. It
// owns a reference to its paired handler block: the one case of a node
// carrying a sibling-like second subtree.
type ILFilterBlock struct {
	ILCatchBlock
	HandlerBlock *ILCatchBlock
}

func (f *ILFilterBlock) Children() iter.Seq[Node] {
	base := f.ILCatchBlock.Children()
	if f.HandlerBlock == nil {
		return base
	}
	return util.ConcatIter(base, util.SingleIter[Node](f.HandlerBlock))
}

// ILTryCatchBlock is a protected region with its handlers. Per the
// handler-table semantics, catch clauses and fault/finally/filter are
// mutually exclusive per clause, but one try region may carry several
// catch clauses plus a finally.
type ILTryCatchBlock struct {
	nodeSpans
	Try     *ILBlock
	Catches []*ILCatchBlock
	Finally *ILBlock
	Fault   *ILBlock
	Filter  *ILFilterBlock
}

func (t *ILTryCatchBlock) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if t.Try != nil && !yield(t.Try) {
			return
		}
		for _, c := range t.Catches {
			if !yield(c) {
				return
			}
		}
		if t.Filter != nil && !yield(t.Filter) {
			return
		}
		if t.Fault != nil && !yield(t.Fault) {
			return
		}
		if t.Finally != nil && !yield(t.Finally) {
			return
		}
	}
}

// ILWhileLoop is a structured loop. A nil Condition means an infinite
// loop.
type ILWhileLoop struct {
	nodeSpans
	Condition *ILExpression
	BodyBlock *ILBlock
}

func (w *ILWhileLoop) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if w.Condition != nil && !yield(w.Condition) {
			return
		}
		if w.BodyBlock != nil && !yield(w.BodyBlock) {
			return
		}
	}
}

// ILCondition is a structured conditional: TrueBlock is the taken path,
// FalseBlock the fall-through (may be nil).
type ILCondition struct {
	nodeSpans
	Condition  *ILExpression
	TrueBlock  *ILBlock
	FalseBlock *ILBlock
}

func (c *ILCondition) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if c.Condition != nil && !yield(c.Condition) {
			return
		}
		if c.TrueBlock != nil && !yield(c.TrueBlock) {
			return
		}
		if c.FalseBlock != nil && !yield(c.FalseBlock) {
			return
		}
	}
}

// ILSwitchCase is one case of an ILSwitch. A nil Values list marks the
// default case.
type ILSwitchCase struct {
	ILBlock
	Values []int64
}

// ILSwitch is a structured switch over integer values. The closing
// brace has its own span list.
type ILSwitch struct {
	nodeEndSpans
	Condition *ILExpression
	Cases     []*ILSwitchCase
}

func (s *ILSwitch) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if s.Condition != nil && !yield(s.Condition) {
			return
		}
		for _, c := range s.Cases {
			if !yield(c) {
				return
			}
		}
	}
}

// ILFixedStatement pins its initializers' targets for the duration of
// BodyBlock.
type ILFixedStatement struct {
	nodeSpans
	Initializers []*ILExpression
	BodyBlock    *ILBlock
}

func (f *ILFixedStatement) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, init := range f.Initializers {
			if init == nil {
				continue
			}
			if !yield(init) {
				return
			}
		}
		if f.BodyBlock != nil && !yield(f.BodyBlock) {
			return
		}
	}
}
