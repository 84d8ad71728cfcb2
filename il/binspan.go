package il

import (
	"fmt"
	"slices"
	"sort"

	"github.com/xtgo/set"
)

// BinSpan is a half-open [Start, End) range into the original binary
// instruction stream. Sets of BinSpans attached to IL nodes drive
// source-map generation.
type BinSpan struct {
	Start uint32
	End   uint32
}

// NewBinSpan builds a span from an offset and a length.
func NewBinSpan(offset, length uint32) BinSpan {
	return BinSpan{Start: offset, End: offset + length}
}

func (s BinSpan) Length() uint32 { return s.End - s.Start }

func (s BinSpan) Contains(offset uint32) bool {
	return s.Start <= offset && offset < s.End
}

func (s BinSpan) String() string {
	return fmt.Sprintf("[%04x,%04x)", s.Start, s.End)
}

// binSpans orders spans by start offset, then by end offset.
type binSpans []BinSpan

func (s binSpans) Len() int      { return len(s) }
func (s binSpans) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s binSpans) Less(i, j int) bool {
	if s[i].Start != s[j].Start {
		return s[i].Start < s[j].Start
	}
	return s[i].End < s[j].End
}

// OrderAndCompact sorts spans by offset and merges touching or
// overlapping ranges. Span lists are not kept sorted during
// transformation passes; this is applied once, immediately before
// emitting debug info. The result is a fresh slice; the input is not
// modified. Applying it twice yields the same result as applying it
// once.
func OrderAndCompact(spans []BinSpan) []BinSpan {
	if len(spans) == 0 {
		return nil
	}
	sorted := binSpans(slices.Clone(spans))
	sort.Sort(sorted)
	sorted = sorted[:set.Uniq(sorted)]

	compacted := sorted[:1]
	for _, span := range sorted[1:] {
		last := &compacted[len(compacted)-1]
		if span.Start <= last.End {
			if span.End > last.End {
				last.End = span.End
			}
			continue
		}
		compacted = append(compacted, span)
	}
	return compacted
}
