package il

import "slices"

// Span redistribution: when a transformation pass deletes a node from a
// block's body, the node's binary-span annotations must not be lost.
// They are relocated to a surviving neighbour (or the block itself) so
// that total span coverage across the tree is preserved. Lists are not
// kept sorted here; OrderAndCompact runs once before debug-info
// emission.

// BodyOwner is a node whose statement list may be edited in place by
// transformation passes: plain blocks and basic blocks (and the
// variants embedding them).
type BodyOwner interface {
	Node
	bodyRef() *[]Node
}

// RemovePrevFirst deletes the statement at index and relocates its
// spans, preferring the previous sibling's end-span list when that
// sibling is safe to extend, then the next sibling's start-spans, then
// the block's own end-spans (when a previous sibling exists at all),
// then the block's start-spans.
func RemovePrevFirst(block BodyOwner, index int) {
	body := block.bodyRef()
	spans := AllSpans((*body)[index])
	prev, next := siblings(*body, index, index+1)
	switch {
	case prev != nil && prev.safeToExtendEnd():
		prev.AddEndSpans(spans...)
	case next != nil:
		next.AddSpans(spans...)
	case prev != nil:
		block.AddEndSpans(spans...)
	default:
		block.AddSpans(spans...)
	}
	*body = slices.Delete(*body, index, index+1)
}

// RemoveNextFirst is the symmetric policy: next sibling's start-spans
// first, then the previous sibling's end-spans if safe, then the
// block's end-spans, then the block's start-spans.
func RemoveNextFirst(block BodyOwner, index int) {
	body := block.bodyRef()
	spans := AllSpans((*body)[index])
	prev, next := siblings(*body, index, index+1)
	switch {
	case next != nil:
		next.AddSpans(spans...)
	case prev != nil && prev.safeToExtendEnd():
		prev.AddEndSpans(spans...)
	case prev != nil:
		block.AddEndSpans(spans...)
	default:
		block.AddSpans(spans...)
	}
	*body = slices.Delete(*body, index, index+1)
}

// DeleteRange deletes the statements in [from, to) at once. It looks
// for a natural attachment point among the surviving siblings: an
// adjacent expression, then an adjacent label, then anything adjacent,
// falling back to the next-first rule. Every deleted node's own spans
// (self plus children) are appended individually to the same
// destination, preserving multiplicities.
func DeleteRange(block BodyOwner, from, to int) {
	if from >= to {
		return
	}
	body := block.bodyRef()
	prev, next := siblings(*body, from, to)

	var addTo func(spans ...BinSpan)
	switch {
	case isExpression(next):
		addTo = next.AddSpans
	case isExpression(prev):
		addTo = prev.AddEndSpans
	case isLabel(next):
		addTo = next.AddSpans
	case isLabel(prev):
		addTo = prev.AddEndSpans
	case next != nil:
		addTo = next.AddSpans
	case prev != nil && prev.safeToExtendEnd():
		addTo = prev.AddEndSpans
	case prev != nil:
		addTo = block.AddEndSpans
	default:
		addTo = block.AddSpans
	}

	for _, removed := range (*body)[from:to] {
		addTo(AllSpans(removed)...)
	}
	*body = slices.Delete(*body, from, to)
}

func siblings(body []Node, from, to int) (prev, next Node) {
	if from > 0 {
		prev = body[from-1]
	}
	if to < len(body) {
		next = body[to]
	}
	return prev, next
}

func isExpression(n Node) bool {
	_, ok := n.(*ILExpression)
	return ok
}

func isLabel(n Node) bool {
	_, ok := n.(*ILLabel)
	return ok
}
