package disasm

import "strings"

// Output receives the rendered listing. Implementations track the
// current line and column so the disassembler can correlate emitted
// text with binary offsets. Write is only ever called with text that
// contains no newlines.
type Output interface {
	Write(text string)
	NewLine()
	Indent()
	Unindent()
	Line() int
	Column() int
}

const indentWidth = 4

// BufferOutput is the in-memory Output used by tests and the CLI.
type BufferOutput struct {
	sb          strings.Builder
	indent      int
	line        int
	col         int
	needsIndent bool
}

var _ Output = (*BufferOutput)(nil)

func NewBufferOutput() *BufferOutput {
	return &BufferOutput{line: 1, needsIndent: true}
}

func (o *BufferOutput) Write(text string) {
	if o.needsIndent {
		o.sb.WriteString(strings.Repeat(" ", o.indent*indentWidth))
		o.col += o.indent * indentWidth
		o.needsIndent = false
	}
	o.sb.WriteString(text)
	o.col += len(text)
}

func (o *BufferOutput) NewLine() {
	o.sb.WriteByte('\n')
	o.line++
	o.col = 0
	o.needsIndent = true
}

func (o *BufferOutput) Indent()   { o.indent++ }
func (o *BufferOutput) Unindent() { o.indent-- }

func (o *BufferOutput) Line() int { return o.line }

// Column accounts for indentation not yet flushed to the buffer, so a
// caller sampling it before the first Write of a line sees where the
// text will actually start.
func (o *BufferOutput) Column() int {
	if o.needsIndent {
		return o.indent * indentWidth
	}
	return o.col
}

func (o *BufferOutput) String() string { return o.sb.String() }

func writeLine(out Output, text string) {
	out.Write(text)
	out.NewLine()
}
