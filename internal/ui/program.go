package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Printer provides methods for printing UI components to a writer.
// This is the primary way single-shot commands output styled content.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Param) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintWire prints a wire traffic box (for verbose mode)
func (p *Printer) PrintWire(w *WireOutput) {
	if w == nil || w.Len() == 0 {
		return
	}
	p.Newline()
	p.Println(w.SetWidth(p.width).Render())
}

// PrintList prints one bulleted line per item under a muted title.
func (p *Printer) PrintList(title string, items []string) {
	p.Println(TroubleshootingTitleStyle.Render("  " + title))
	if len(items) == 0 {
		p.Println(StepPendingStyle.Render("    (none)"))
		return
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("    • ")
		b.WriteString(ResultValueStyle.Render(item))
		b.WriteString("\n")
	}
	_, _ = fmt.Fprint(p.out, b.String())
}
