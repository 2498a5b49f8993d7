package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Direction markers used in the wire traffic box
const (
	WireSent     = "→"
	WireReceived = "←"
)

// WireOutput is a box of raw messages exchanged with the host. It is shown in
// verbose mode so the exact JSON on the socket is visible.
type WireOutput struct {
	Title    string   // e.g., "Wire traffic"
	Lines    []string // One line per message
	Width    int      // Terminal width
	MaxLines int      // Maximum lines to display (0 = unlimited)
}

// NewWireOutput creates an empty wire traffic box
func NewWireOutput() *WireOutput {
	return &WireOutput{
		Title: "Wire traffic",
		Width: GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (w *WireOutput) SetWidth(width int) *WireOutput {
	w.Width = width
	return w
}

// SetMaxLines limits the number of lines displayed
func (w *WireOutput) SetMaxLines(max int) *WireOutput {
	w.MaxLines = max
	return w
}

// Sent records an outgoing message.
func (w *WireOutput) Sent(msg string) {
	w.Lines = append(w.Lines, WireSent+" "+msg)
}

// Received records an incoming message.
func (w *WireOutput) Received(msg string) {
	w.Lines = append(w.Lines, WireReceived+" "+msg)
}

// Len returns the number of recorded messages.
func (w *WireOutput) Len() int {
	return len(w.Lines)
}

// Render returns the styled wire traffic box as a string
func (w *WireOutput) Render() string {
	width := w.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := w.Lines
	if w.MaxLines > 0 && len(lines) > w.MaxLines {
		lines = append(lines[:w.MaxLines:w.MaxLines], fmt.Sprintf("... (%d more)", len(w.Lines)-w.MaxLines))
	}

	titleStyled := WireTitleStyle.Render(w.Title)
	contentStyled := WireContentStyle.Render(strings.Join(lines, "\n"))
	inner := lipgloss.JoinVertical(lipgloss.Left, titleStyled, "", contentStyled)

	boxWidth := width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(boxWidth).
		Padding(0, 1).
		MarginLeft(2).
		Render(inner)
}

// String implements fmt.Stringer
func (w *WireOutput) String() string {
	return w.Render()
}
