package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a multi-step command execution
type RunnerConfig struct {
	Title           string    // Command title (e.g., "Demo sequence")
	Command         string    // Full command (e.g., "scenebridge-ctl demo")
	Params          []Param   // Parameters to display in header
	StepNames       []string  // Names for each step; their count sets the total
	Troubleshooting []string  // Tips shown when the operation fails
	Verbose         bool      // Whether to show wire traffic
	Output          io.Writer // Output writer (default: os.Stdout)
}

// Runner orchestrates the UI for a multi-step command execution.
// It manages the header, progress and result flow and provides
// callbacks for reporting progress.
type Runner struct {
	config    RunnerConfig
	header    *Header
	progress  *Progress
	output    io.Writer
	wire      *WireOutput
	startTime time.Time
	width     int
}

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := GetTerminalWidth()

	header := NewHeader(config.Title, config.Command, config.Params)
	header.SetWidth(width)

	var progress *Progress
	if len(config.StepNames) > 0 {
		progress = NewProgress(config.StepNames, width)
	}

	wire := NewWireOutput()
	wire.SetWidth(width)

	return &Runner{
		config:   config,
		header:   header,
		progress: progress,
		output:   config.Output,
		wire:     wire,
		width:    width,
	}
}

// Operation is the function signature for the work a Runner displays.
// The operation receives a StepCallback to report progress.
type Operation func(ctx context.Context, onStep StepCallback) ([]Param, error)

// Wire returns the traffic box the operation can record messages into.
func (r *Runner) Wire() *WireOutput {
	return r.wire
}

// Run executes the operation with UI updates.
// It displays the header, tracks progress, and shows the result.
func (r *Runner) Run(ctx context.Context, operation Operation) error {
	r.startTime = time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := operation(ctx, r.createStepCallback())
	duration := time.Since(r.startTime)

	_, _ = fmt.Fprintln(r.output)
	if err != nil {
		if r.progress != nil && r.progress.Fraction() < 1 {
			_, _ = fmt.Fprintln(r.output, r.progress.Bar())
			_, _ = fmt.Fprintln(r.output)
		}
		result := NewFailureResult(r.config.Title+" failed", err, r.config.Troubleshooting)
		result.SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
	} else {
		details = append(details, Param{Key: "Duration", Value: duration.Round(time.Millisecond).String()})
		result := NewSuccessResult(r.config.Title+" complete", details...)
		result.SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
	}

	if r.config.Verbose && r.wire.Len() > 0 {
		_, _ = fmt.Fprintln(r.output)
		_, _ = fmt.Fprintln(r.output, r.wire.Render())
	}

	return err
}

// createStepCallback creates the step callback function
func (r *Runner) createStepCallback() StepCallback {
	return func(n int, u StepUpdate) {
		if r.progress == nil || !r.progress.Update(n, u) {
			return
		}

		switch u.Status {
		case StepComplete, StepFailed, StepSkipped:
			_, _ = fmt.Fprintln(r.output, r.progress.Line(n))
		case StepRunning:
			// Overwritten when the step completes
			_, _ = fmt.Fprint(r.output, r.progress.Line(n)+"\r")
		}
	}
}
