package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus is the state of one step line.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

// finished reports whether the step counts towards completion.
func (s StepStatus) finished() bool {
	return s == StepComplete || s == StepSkipped
}

func (s StepStatus) look() (marker string, style lipgloss.Style) {
	switch s {
	case StepComplete:
		return StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		return StepMarkerRunning, StepRunningStyle
	case StepFailed:
		return FailureMarker, ErrorTitleStyle
	case StepSkipped:
		return StepMarkerSkipped, StepPendingStyle
	default:
		return StepMarkerPending, StepPendingStyle
	}
}

// StepUpdate is what an operation reports about one step.
type StepUpdate struct {
	Status StepStatus
	Note   string // free text, e.g. "3 sent" or a round trip time
	Reason string // outcome reason the host gives, e.g. "target_not_found"
}

// Running marks a step as started.
func Running() StepUpdate { return StepUpdate{Status: StepRunning} }

// Done marks a step as complete with an optional note.
func Done(note string) StepUpdate { return StepUpdate{Status: StepComplete, Note: note} }

// Skipped marks a step as not run.
func Skipped() StepUpdate { return StepUpdate{Status: StepSkipped} }

// Failed marks a step as failed with err as its note.
func Failed(err error) StepUpdate { return StepUpdate{Status: StepFailed, Note: err.Error()} }

// StepCallback reports an update for the 1-based step n. Operations run by a
// Runner call it; out of range steps are ignored.
type StepCallback func(n int, u StepUpdate)

// Step is one named line of a Progress.
type Step struct {
	Name string
	StepUpdate
}

// Progress tracks the steps of one operation. Names are usually command
// stages or command types.
type Progress struct {
	steps     []Step
	nameWidth int
	bar       progress.Model
}

// NewProgress creates a pending step for each name. width bounds the bar.
func NewProgress(names []string, width int) *Progress {
	p := &Progress{steps: make([]Step, len(names))}
	for i, name := range names {
		p.steps[i].Name = name
		if w := lipgloss.Width(name); w > p.nameWidth {
			p.nameWidth = w
		}
	}

	barWidth := min(max(width-30, 20), 50)
	p.bar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
	return p
}

// Update applies u to step n and reports whether n was in range.
func (p *Progress) Update(n int, u StepUpdate) bool {
	if n < 1 || n > len(p.steps) {
		return false
	}
	p.steps[n-1].StepUpdate = u
	return true
}

// Step returns step n.
func (p *Progress) Step(n int) (Step, bool) {
	if n < 1 || n > len(p.steps) {
		return Step{}, false
	}
	return p.steps[n-1], true
}

// Fraction is the share of steps complete or skipped.
func (p *Progress) Fraction() float64 {
	if len(p.steps) == 0 {
		return 1
	}
	return float64(p.finished()) / float64(len(p.steps))
}

func (p *Progress) finished() int {
	n := 0
	for _, s := range p.steps {
		if s.Status.finished() {
			n++
		}
	}
	return n
}

// Line renders step n, e.g. "  [2/5] set_property   ✓  (3 sent)  bad_field".
func (p *Progress) Line(n int) string {
	s, ok := p.Step(n)
	if !ok {
		return ""
	}
	marker, style := s.Status.look()

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", n, len(p.steps))
	b.WriteString(style.Render(s.Name))
	b.WriteString(strings.Repeat(" ", p.nameWidth-lipgloss.Width(s.Name)+3))
	b.WriteString(style.Render(marker))
	if s.Note != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + s.Note + ")"))
	}
	if s.Reason != "" {
		b.WriteString("  ")
		b.WriteString(StepReasonStyle.Render(s.Reason))
	}
	return b.String()
}

// Bar renders the completion bar with the finished step count.
func (p *Progress) Bar() string {
	return ProgressLabelStyle.Render(fmt.Sprintf("%s  %d/%d steps", p.bar.ViewAs(p.Fraction()), p.finished(), len(p.steps)))
}
