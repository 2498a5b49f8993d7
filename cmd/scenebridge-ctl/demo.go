package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/scenebridge/internal/client"
	"github.com/muurk/scenebridge/internal/command"
	"github.com/muurk/scenebridge/internal/ui"
)

var (
	demoPause time.Duration
	demoGLB   string
)

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().DurationVar(&demoPause, "pause", 500*time.Millisecond, "Delay between steps")
	demoCmd.Flags().StringVar(&demoGLB, "glb", "examples/trash_can.glb", "GLB file to import (path on the host); empty skips the import")
}

// stepSkipped is the note a demo step returns when it did nothing.
const stepSkipped = "skipped"

// demoStep is one stage of the demonstration sequence.
type demoStep struct {
	name string
	run  func(ctx context.Context, c *client.Client) (string, error)
}

func demoSteps(wire *ui.WireOutput) []demoStep {
	return []demoStep{
		{"Create primitives", func(ctx context.Context, c *client.Client) (string, error) {
			if err := c.CreateCube(ctx, 0, 0, 0); err != nil {
				return "", err
			}
			return "cube at origin, sphere at 3,0,0", c.CreateSphere(ctx, 3, 0, 0)
		}},
		{"Position camera", func(ctx context.Context, c *client.Client) (string, error) {
			if err := c.SetCameraPosition(ctx, 5, -5, 3); err != nil {
				return "", err
			}
			return "", c.RotateCamera(ctx, 1.1, 0, 0.785)
		}},
		{"Focus objects", func(ctx context.Context, c *client.Client) (string, error) {
			for i, name := range []string{"Cube", "Sphere", "Cube"} {
				if i > 0 {
					if err := pause(ctx); err != nil {
						return "", err
					}
				}
				if err := c.FocusOn(ctx, name); err != nil {
					return "", err
				}
			}
			return "Cube, Sphere, Cube", nil
		}},
		{"Adjust light", func(ctx context.Context, c *client.Client) (string, error) {
			if err := c.SetLightIntensity(ctx, "Light", 5); err != nil {
				return "", err
			}
			return "energy 5", c.SetLightColor(ctx, "Light", 1, 0.9, 0.8)
		}},
		{"Scale objects", func(ctx context.Context, c *client.Client) (string, error) {
			if err := c.SetObjectScale(ctx, "Cube", 1.5); err != nil {
				return "", err
			}
			return "", c.SetObjectScale(ctx, "Sphere", 0.8)
		}},
		{"Rotate objects", func(ctx context.Context, c *client.Client) (string, error) {
			if err := c.SetObjectRotation(ctx, "Cube", 0, 0, 0.5); err != nil {
				return "", err
			}
			return "", c.SetObjectRotation(ctx, "Sphere", 0.3, 0, 0)
		}},
		{"Import GLB", func(ctx context.Context, c *client.Client) (string, error) {
			if demoGLB == "" {
				return stepSkipped, nil
			}
			return demoGLB, c.ImportGLB(ctx, demoGLB)
		}},
		{"List objects", func(ctx context.Context, c *client.Client) (string, error) {
			reply, err := query(ctx, c, command.ListObjects(), command.ReplyObjects, wire)
			if err != nil {
				return "", err
			}
			return strings.Join(reply.Objects, ", "), nil
		}},
	}
}

// pause waits demoPause or until ctx is done.
func pause(ctx context.Context) error {
	return sleepCtx(ctx, demoPause)
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the demonstration sequence against a host",
	Long: `Create a cube and a sphere, move the camera around them, adjust the
light, scale and rotate both objects, import a GLB file and list the scene.

The default scene must contain objects named Camera and Light.`,
	Example: `  # Run with the defaults
  scenebridge-ctl demo

  # Faster, without the import
  scenebridge-ctl demo --pause 100ms --glb ""`,
	RunE: runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	c, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	steps := demoSteps(nil)
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.name
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Demo sequence",
		Command: "scenebridge-ctl demo",
		Params: []ui.Param{
			{Key: "Host", Value: c.URL()},
			{Key: "Pause", Value: demoPause.String()},
		},
		StepNames:       names,
		Troubleshooting: connectTips,
		Verbose:         verbose,
	})
	steps = demoSteps(runner.Wire())

	return runner.Run(cmd.Context(), func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
		// The last step lists the scene, so its note names the objects.
		var objects string
		for i, s := range steps {
			n := i + 1
			onStep(n, ui.Running())

			stepCtx, cancel := context.WithTimeout(ctx, timeout+3*demoPause)
			note, err := s.run(stepCtx, c)
			cancel()
			if err != nil {
				onStep(n, ui.Failed(err))
				return nil, fmt.Errorf("step %d (%s): %w", n, s.name, err)
			}
			if note == stepSkipped {
				onStep(n, ui.Skipped())
			} else {
				onStep(n, ui.Done(note))
			}
			objects = note

			if n < len(steps) {
				if err := pause(ctx); err != nil {
					return nil, err
				}
			}
		}

		return []ui.Param{
			{Key: "Steps", Value: strconv.Itoa(len(steps))},
			{Key: "Objects", Value: objects},
		}, nil
	})
}
