package il

import (
	"iter"
)

// Node is the closed interface over all decompiled-IL tree variants.
// Only types in this package implement it (via the unexported marker),
// so a type switch over the variants listed in this package is
// exhaustive.
//
// Every node owns an ordered list of BinSpans for its opening location.
// EndSpans holds the closing-syntax location (closing braces); unless a
// variant declares a distinct closing region, EndSpans aliases Spans.
type Node interface {
	Spans() []BinSpan
	AddSpans(spans ...BinSpan)
	EndSpans() []BinSpan
	AddEndSpans(spans ...BinSpan)
	// HasDistinctEndSpans reports whether EndSpans is a separate list
	// rather than an alias of Spans.
	HasDistinctEndSpans() bool
	// Children enumerates immediate children in syntactic order.
	Children() iter.Seq[Node]

	// safeToExtendEnd reports whether the node has a natural "after"
	// position that redistribution may append spans to. True for
	// blocks, labels and expressions.
	safeToExtendEnd() bool
	// auxSpans exposes span lists the node holds outside Spans and
	// EndSpans (a catch clause's store-to-variable spans), so that
	// redistribution relocates them too.
	auxSpans() []BinSpan
	ilNode()
}

// nodeSpans carries the common span bookkeeping. EndSpans aliases Spans.
type nodeSpans struct {
	spans []BinSpan
}

func (n *nodeSpans) Spans() []BinSpan             { return n.spans }
func (n *nodeSpans) AddSpans(spans ...BinSpan)    { n.spans = append(n.spans, spans...) }
func (n *nodeSpans) EndSpans() []BinSpan          { return n.spans }
func (n *nodeSpans) AddEndSpans(spans ...BinSpan) { n.spans = append(n.spans, spans...) }
func (n *nodeSpans) HasDistinctEndSpans() bool    { return false }
func (n *nodeSpans) Children() iter.Seq[Node]     { return func(yield func(Node) bool) {} }
func (n *nodeSpans) safeToExtendEnd() bool        { return false }
func (n *nodeSpans) auxSpans() []BinSpan          { return nil }
func (n *nodeSpans) ilNode()                      {}

// nodeEndSpans is nodeSpans plus a distinct closing-region span list.
type nodeEndSpans struct {
	nodeSpans
	endSpans []BinSpan
}

func (n *nodeEndSpans) EndSpans() []BinSpan          { return n.endSpans }
func (n *nodeEndSpans) AddEndSpans(spans ...BinSpan) { n.endSpans = append(n.endSpans, spans...) }
func (n *nodeEndSpans) HasDistinctEndSpans() bool    { return true }

// SelfAndChildrenRecursive enumerates root and all transitive children
// in pre-order, yielding only nodes of type T.
func SelfAndChildrenRecursive[T Node](root Node) iter.Seq[T] {
	return func(yield func(T) bool) {
		walkSelfAndChildren(root, yield)
	}
}

func walkSelfAndChildren[T Node](n Node, yield func(T) bool) bool {
	if typed, ok := n.(T); ok {
		if !yield(typed) {
			return false
		}
	}
	for child := range n.Children() {
		if !walkSelfAndChildren(child, yield) {
			return false
		}
	}
	return true
}

// AllSpans collects the spans of n and all its children, including
// distinct end-span lists and auxiliary span lists exactly once.
// Multiplicities are preserved; no ordering or compaction is applied.
func AllSpans(n Node) []BinSpan {
	var all []BinSpan
	for node := range SelfAndChildrenRecursive[Node](n) {
		all = append(all, node.Spans()...)
		if node.HasDistinctEndSpans() {
			all = append(all, node.EndSpans()...)
		}
		all = append(all, node.auxSpans()...)
	}
	return all
}
