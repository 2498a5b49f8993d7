// Package ui provides terminal UI components for the scenebridge commands.
//
// This package uses Bubble Tea and Lipgloss to render terminal output. Most
// components follow a "run once and exit" pattern: they render output
// compellingly but don't require user interaction.
//
// # Components
//
//   - Header: Command banner showing operation name and parameters
//   - Progress: Step lines with notes and host reason codes, plus a completion bar
//   - Result: Success/failure boxes with styled information
//   - WireOutput: Raw JSON messages for verbose mode
//   - Monitor: Interactive Bubble Tea view of a running host
//
// The Runner orchestrates header, progress and result for multi-step
// controller commands such as the demo sequence and capture replay:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Demo sequence",
//	    Command:   "scenebridge-ctl demo",
//	    StepNames: []string{"Rotate camera", "Focus on Cube"},
//	})
//
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
//	    onStep(1, ui.Running())
//	    // ... send the command ...
//	    onStep(1, ui.Done("sent"))
//	    return nil, nil
//	})
//
// # Logging Integration
//
// Logging is controlled via the SCENEBRIDGE_LOG_LEVEL environment variable.
// When unset or empty, zap logging is silent, allowing the curated UI output
// to be displayed cleanly.
package ui
