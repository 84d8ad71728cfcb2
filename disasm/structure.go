package disasm

import (
	"github.com/cottand/decomp/metadata"
	"github.com/pkg/errors"
	"slices"
)

// StructureKind is the nesting level a Structure represents.
type StructureKind int

const (
	// StructRoot spans the whole method body.
	StructRoot StructureKind = iota
	// StructLoop is a natural loop formed by a backward branch.
	StructLoop
	// StructTry is the protected range of an exception handler.
	StructTry
	// StructHandler is a catch/finally/fault handler range, or the
	// handler range paired with a filter.
	StructHandler
	// StructFilter is the filter expression range of a filter clause.
	StructFilter
)

// Structure is one level of recovered nesting over the flat instruction
// stream: the method body, a natural loop, a protected region or a
// handler/filter region. Children are strictly nested within their
// parent and do not overlap each other.
type Structure struct {
	Kind StructureKind
	// half-open offset range [Start, End)
	Start uint32
	End   uint32
	// Handler is the table entry this structure came from; nil for
	// StructRoot and StructLoop.
	Handler  *metadata.ExceptionHandler
	Children []*Structure

	// LoopEntryPoint records the back-edge target that formed a loop,
	// for diagnostic annotation only.
	LoopEntryPoint    uint32
	HasLoopEntryPoint bool
}

func (s *Structure) covers(n *Structure) bool {
	return s.Start <= n.Start && n.End <= s.End
}

func (s *Structure) overlapsPartially(n *Structure) bool {
	return n.Start < s.End && s.Start < n.End && !s.covers(n) && !n.covers(s)
}

// addNested inserts n at the deepest level that fully contains it.
// Existing children fully inside n are re-parented under it. Partial
// overlap means the handler table is malformed.
func (s *Structure) addNested(n *Structure) error {
	if !s.covers(n) {
		return errors.Errorf("range [%04x,%04x) escapes enclosing [%04x,%04x)", n.Start, n.End, s.Start, s.End)
	}
	for _, child := range s.Children {
		if child.Start == n.Start && child.End == n.End && child.Kind == n.Kind {
			// already present (several back edges can form the same loop)
			return nil
		}
		if child.covers(n) {
			return child.addNested(n)
		}
		if child.overlapsPartially(n) {
			return errors.Errorf("range [%04x,%04x) partially overlaps [%04x,%04x)", n.Start, n.End, child.Start, child.End)
		}
	}
	// adopt children that n encloses
	remaining := s.Children[:0]
	for _, child := range s.Children {
		if n.covers(child) {
			n.Children = append(n.Children, child)
		} else {
			remaining = append(remaining, child)
		}
	}
	s.Children = append(remaining, n)
	s.sortChildren()
	n.sortChildren()
	return nil
}

func (s *Structure) sortChildren() {
	slices.SortFunc(s.Children, func(a, b *Structure) int {
		if a.Start != b.Start {
			return int(a.Start) - int(b.Start)
		}
		// larger range first so the outer region opens first
		return int(b.End) - int(a.End)
	})
}

// BuildStructure partitions a method body into nested structures: one
// Try child per protected range, Handler/Filter children per handler
// range, and Loop children for backward branches. An error means the
// handler table is malformed (partial overlap or out-of-range entries);
// callers are expected to fall back to flat emission.
func BuildStructure(body *metadata.Body) (*Structure, error) {
	root := &Structure{Kind: StructRoot, Start: 0, End: body.CodeSize}
	for i := range body.Handlers {
		h := &body.Handlers[i]
		if err := validateHandler(h, body.CodeSize); err != nil {
			return nil, err
		}
		try := &Structure{Kind: StructTry, Start: h.TryStart, End: h.TryEnd, Handler: h}
		if err := root.addNested(try); err != nil {
			return nil, errors.Wrap(err, "protected range")
		}
		if h.Kind == metadata.HandlerFilter {
			filter := &Structure{Kind: StructFilter, Start: h.FilterStart, End: h.HandlerStart, Handler: h}
			if err := root.addNested(filter); err != nil {
				return nil, errors.Wrap(err, "filter range")
			}
		}
		handler := &Structure{Kind: StructHandler, Start: h.HandlerStart, End: h.HandlerEnd, Handler: h}
		if err := root.addNested(handler); err != nil {
			return nil, errors.Wrap(err, "handler range")
		}
	}
	root.findLoops(body)
	return root, nil
}

func validateHandler(h *metadata.ExceptionHandler, codeSize uint32) error {
	ranges := [][2]uint32{
		{h.TryStart, h.TryEnd},
		{h.HandlerStart, h.HandlerEnd},
	}
	if h.Kind == metadata.HandlerFilter {
		ranges = append(ranges, [2]uint32{h.FilterStart, h.HandlerStart})
	}
	for _, r := range ranges {
		if r[0] >= r[1] || r[1] > codeSize {
			return errors.Errorf("handler entry has invalid range [%04x,%04x), code size %04x", r[0], r[1], codeSize)
		}
	}
	return nil
}

// findLoops adds a Loop child for each backward branch. Loop candidates
// that would partially overlap an existing structure are skipped: loops
// are a readability recovery, not part of the handler-table contract.
func (s *Structure) findLoops(body *metadata.Body) {
	for i, instr := range body.Instructions {
		if !instr.OpCode.IsBranch() || instr.OpCode.Operand != metadata.OperandTarget {
			continue
		}
		target, ok := instr.Operand.(uint32)
		if !ok || target > instr.Offset {
			continue
		}
		loop := &Structure{
			Kind:              StructLoop,
			Start:             target,
			End:               body.InstructionEnd(i),
			LoopEntryPoint:    target,
			HasLoopEntryPoint: true,
		}
		// best effort
		_ = s.addNested(loop)
	}
}
