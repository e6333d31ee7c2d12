package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/kr/text"
	"github.com/mattn/go-isatty"
)

// ansi color codes used when the printer's output is a terminal.
const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorDim    = "\x1b[2m"
	colorReset  = "\x1b[0m"
)

// Printer renders a Batch to an io.Writer, colorizing when that writer is
// a terminal (detected with isatty, matching the common compiler-CLI
// idiom of only colorizing direct terminal output, never a redirected
// file or pipe).
type Printer struct {
	w      io.Writer
	color  bool
}

// NewPrinter builds a Printer for w. If w is *os.File and refers to a
// terminal, ANSI color is enabled.
func NewPrinter(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{w: w, color: color}
}

func (p *Printer) colorize(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + colorReset
}

// Print renders every diagnostic in the batch, one per paragraph, with
// nested trail frames indented beneath the headline message.
func (p *Printer) Print(batch Batch) {
	for _, d := range batch {
		p.printOne(d)
	}
}

func (p *Printer) printOne(d *Diagnostic) {
	label := string(d.Kind)
	switch d.Kind {
	case Error:
		label = p.colorize(colorRed, "error")
	case Warning:
		label = p.colorize(colorYellow, "warning")
	}

	loc := d.Location.String()
	if loc != "" {
		fmt.Fprintf(p.w, "%s[%s]: %s\n  at %s\n", label, d.Category, d.Message, loc)
	} else {
		fmt.Fprintf(p.w, "%s[%s]: %s\n", label, d.Category, d.Message)
	}

	if d.Source != "" {
		fmt.Fprintf(p.w, "  %s\n", p.colorize(colorDim, d.Source))
	}

	if len(d.Trail) > 0 {
		body := ""
		for _, frame := range d.Trail {
			body += frame + "\n"
		}
		io.WriteString(p.w, text.Indent(body, "    "))
	}
}
