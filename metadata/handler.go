package metadata

import "fmt"

// HandlerKind is the kind of one exception-handler clause.
type HandlerKind int

const (
	HandlerCatch HandlerKind = iota
	HandlerFilter
	HandlerFinally
	HandlerFault
)

func (k HandlerKind) String() string {
	switch k {
	case HandlerCatch:
		return "catch"
	case HandlerFilter:
		return "filter"
	case HandlerFinally:
		return "finally"
	case HandlerFault:
		return "fault"
	default:
		return fmt.Sprintf("handler(%d)", int(k))
	}
}

// ExceptionHandler is one clause of a method's exception-handler table.
// All ranges are half-open offset intervals into the instruction stream.
// FilterStart is only meaningful when Kind is HandlerFilter; the filter
// region then spans [FilterStart, HandlerStart).
type ExceptionHandler struct {
	TryStart     uint32
	TryEnd       uint32
	HandlerStart uint32
	HandlerEnd   uint32
	FilterStart  uint32
	Kind         HandlerKind
	// CatchType is the caught exception type, nil for catch-all and for
	// non-catch clauses.
	CatchType *TypeRef
}

func (h ExceptionHandler) String() string {
	return fmt.Sprintf("%s try=[%04x,%04x) handler=[%04x,%04x)",
		h.Kind, h.TryStart, h.TryEnd, h.HandlerStart, h.HandlerEnd)
}
