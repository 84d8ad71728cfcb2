package decerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cottand/decomp/metadata"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	BadExceptionHandler
	Cancelled
	DepthLimit
	BadOperand
)

// DecompError is an error with a stable code, attributable to the
// method it occurred in. Pattern mismatches in the expression-tree
// converter are deliberately NOT DecompErrors: declining to match is a
// normal result, not an error.
type DecompError interface {
	Error() string
	Code() ErrCode
	Method() string

	withStack([]byte) DecompError
	getStack() []byte
}

func FormatWithCode(e DecompError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E DecompError](err E) DecompError {
	return err.withStack(debug.Stack())
}

type Unclassified struct {
	From       error
	MethodName string
	stack      []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) Method() string   { return e.MethodName }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) DecompError {
	e.stack = stack
	return e
}

// NewBadExceptionHandler reports a handler table that could not be
// partitioned into a valid nesting. Recovery is per-method: the
// affected method falls back to flat emission.
type NewBadExceptionHandler struct {
	MethodName string
	Cause      error
	stack      []byte
}

func (e NewBadExceptionHandler) Error() string {
	return fmt.Sprintf("exception handler table of '%s' cannot be structured: %v", e.MethodName, e.Cause)
}
func (e NewBadExceptionHandler) Code() ErrCode    { return BadExceptionHandler }
func (e NewBadExceptionHandler) Method() string   { return e.MethodName }
func (e NewBadExceptionHandler) getStack() []byte { return e.stack }
func (e NewBadExceptionHandler) withStack(stack []byte) DecompError {
	e.stack = stack
	return e
}

// NewCancelled reports cooperative cancellation observed mid-method.
type NewCancelled struct {
	MethodName string
	stack      []byte
}

func (e NewCancelled) Error() string {
	return fmt.Sprintf("decompilation of '%s' was cancelled", e.MethodName)
}
func (e NewCancelled) Code() ErrCode    { return Cancelled }
func (e NewCancelled) Method() string   { return e.MethodName }
func (e NewCancelled) getStack() []byte { return e.stack }
func (e NewCancelled) withStack(stack []byte) DecompError {
	e.stack = stack
	return e
}

// NewDepthLimit reports that a recursion bound was hit and the
// operation was abandoned with a placeholder result.
type NewDepthLimit struct {
	MethodName string
	What       string
	stack      []byte
}

func (e NewDepthLimit) Error() string {
	return fmt.Sprintf("recursion limit reached while processing %s of '%s'", e.What, e.MethodName)
}
func (e NewDepthLimit) Code() ErrCode    { return DepthLimit }
func (e NewDepthLimit) Method() string   { return e.MethodName }
func (e NewDepthLimit) getStack() []byte { return e.stack }
func (e NewDepthLimit) withStack(stack []byte) DecompError {
	e.stack = stack
	return e
}

// NewBadOperand reports an instruction whose operand does not match its
// opcode's operand kind.
type NewBadOperand struct {
	MethodName  string
	Instruction metadata.Instruction
	stack       []byte
}

func (e NewBadOperand) Error() string {
	return fmt.Sprintf("instruction at IL_%04x of '%s' has an unexpected %T operand",
		e.Instruction.Offset, e.MethodName, e.Instruction.Operand)
}
func (e NewBadOperand) Code() ErrCode    { return BadOperand }
func (e NewBadOperand) Method() string   { return e.MethodName }
func (e NewBadOperand) getStack() []byte { return e.stack }
func (e NewBadOperand) withStack(stack []byte) DecompError {
	e.stack = stack
	return e
}
