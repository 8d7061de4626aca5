package output

import (
	"fmt"
	"io"
)

// ANSI SGR color codes for status lines.
const (
	colorRed    = "31"
	colorGreen  = "32"
	colorYellow = "33"
)

// Printer writes human-facing status lines, coloring them when enabled.
// Structured results go through PrintTable, PrintJSON, or PrintYAML instead.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter returns a Printer writing to out. With color disabled all
// messages are written plain, which keeps piped output clean.
func NewPrinter(out io.Writer, color bool) *Printer {
	return &Printer{out: out, color: color}
}

// ColorEnabled reports whether status lines are colored.
func (p *Printer) ColorEnabled() bool {
	return p.color
}

// Println writes a plain line without coloring.
func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

// Success writes msg as a green status line.
func (p *Printer) Success(msg string) {
	p.status(colorGreen, msg)
}

// Warning writes msg as a yellow status line.
func (p *Printer) Warning(msg string) {
	p.status(colorYellow, msg)
}

// Error writes msg as a red status line.
func (p *Printer) Error(msg string) {
	p.status(colorRed, msg)
}

func (p *Printer) status(code, msg string) {
	if !p.color {
		_, _ = fmt.Fprintln(p.out, msg)
		return
	}
	_, _ = fmt.Fprintf(p.out, "\033[%sm%s\033[0m\n", code, msg)
}
