package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/scenebridge/internal/client"
	"github.com/muurk/scenebridge/internal/command"
	"github.com/muurk/scenebridge/internal/ui"
)

var setIndex int

func init() {
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(cameraCmd)
	rootCmd.AddCommand(objectCmd)
	rootCmd.AddCommand(lightCmd)

	setCmd.Flags().IntVar(&setIndex, "index", command.WholeValue, "Vector slot to replace (-1 replaces the whole value)")

	cameraCmd.AddCommand(cameraPositionCmd, cameraRotateCmd, cameraZoomCmd)
	objectCmd.AddCommand(objectScaleCmd, objectRotateCmd, objectMoveCmd)
	lightCmd.AddCommand(lightIntensityCmd, lightColorCmd, lightMoveCmd)
}

// setCmd sends a raw set_property envelope
var setCmd = &cobra.Command{
	Use:   "set <target> <data_path> <value>",
	Short: "Set a property on an object",
	Long: `Send a set_property command.

The data path addresses a property of the object ("location") or of its data
block ("data.energy"). The value is a JSON number, a list of numbers or a
string; bare words are sent as strings.`,
	Example: `  # Move the cube
  scenebridge-ctl set Cube location "[1, 2, 0]"

  # Change only the z coordinate
  scenebridge-ctl set Cube location 3 --index 2

  # Switch the light type
  scenebridge-ctl set Light data.type SPOT`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, path, value := args[0], args[1], command.ValueFromArg(args[2])
		details := []ui.Param{
			{Key: "Target", Value: target},
			{Key: "Path", Value: path},
			{Key: "Value", Value: value.String()},
		}
		if setIndex != command.WholeValue {
			details = append(details, ui.Param{Key: "Index", Value: strconv.Itoa(setIndex)})
		}
		return sendOp(cmd, "set_property sent", details, func(ctx context.Context, c *client.Client) error {
			return c.SetProperty(ctx, target, path, value, setIndex)
		})
	},
}

var focusCmd = &cobra.Command{
	Use:   "focus <target>",
	Short: "Point the camera at an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendOp(cmd, "focus_on sent", []ui.Param{{Key: "Target", Value: args[0]}}, func(ctx context.Context, c *client.Client) error {
			return c.FocusOn(ctx, args[0])
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create <cube|sphere> [x y z]",
	Short: "Add a primitive to the scene",
	Example: `  scenebridge-ctl create cube
  scenebridge-ctl create sphere 3 0 0`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 && len(args) != 4 {
			return fmt.Errorf("accepts a primitive and an optional x y z location, received %d arg(s)", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := []float64{0, 0, 0}
		if len(args) == 4 {
			var err error
			if loc, err = parseFloats(args[1:]); err != nil {
				return err
			}
		}

		details := []ui.Param{{Key: "Type", Value: args[0]}, {Key: "Location", Value: formatFloats(loc...)}}
		return sendOp(cmd, "create_object sent", details, func(ctx context.Context, c *client.Client) error {
			switch args[0] {
			case "cube":
				return c.CreateCube(ctx, loc[0], loc[1], loc[2])
			case "sphere":
				return c.CreateSphere(ctx, loc[0], loc[1], loc[2])
			default:
				return fmt.Errorf("unknown primitive %q (want cube or sphere)", args[0])
			}
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.glb>",
	Short: "Import a binary glTF file on the host",
	Long: `Send an import_glb command. The path is resolved on the host, not on the
machine running this command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendOp(cmd, "import_glb sent", []ui.Param{{Key: "File", Value: args[0]}}, func(ctx context.Context, c *client.Client) error {
			return c.ImportGLB(ctx, args[0])
		})
	},
}

// --- camera ---

var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Move, rotate or zoom the camera",
}

var cameraPositionCmd = &cobra.Command{
	Use:   "position <x> <y> <z>",
	Short: "Set the camera location",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseFloats(args)
		if err != nil {
			return err
		}
		return sendOp(cmd, "Camera moved", []ui.Param{{Key: "Location", Value: formatFloats(v...)}}, func(ctx context.Context, c *client.Client) error {
			return c.SetCameraPosition(ctx, v[0], v[1], v[2])
		})
	},
}

var cameraRotateCmd = &cobra.Command{
	Use:   "rotate <x> <y> <z>",
	Short: "Set the non-zero camera rotation axes (radians)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseFloats(args)
		if err != nil {
			return err
		}
		return sendOp(cmd, "Camera rotated", []ui.Param{{Key: "Rotation", Value: formatFloats(v...)}}, func(ctx context.Context, c *client.Client) error {
			return c.RotateCamera(ctx, v[0], v[1], v[2])
		})
	},
}

var cameraZoomCmd = &cobra.Command{
	Use:   "zoom <distance>",
	Short: "Set the camera height",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseFloats(args)
		if err != nil {
			return err
		}
		return sendOp(cmd, "Camera zoomed", []ui.Param{{Key: "Distance", Value: formatFloats(v...)}}, func(ctx context.Context, c *client.Client) error {
			return c.SetCameraZoom(ctx, v[0])
		})
	},
}

// --- object ---

var objectCmd = &cobra.Command{
	Use:   "object",
	Short: "Scale, rotate or move an object",
}

var objectScaleCmd = &cobra.Command{
	Use:   "scale <name> <factor>",
	Short: "Scale an object uniformly",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseFloats(args[1:])
		if err != nil {
			return err
		}
		return sendOp(cmd, "Object scaled", []ui.Param{{Key: "Object", Value: args[0]}, {Key: "Scale", Value: formatFloats(v...)}}, func(ctx context.Context, c *client.Client) error {
			return c.SetObjectScale(ctx, args[0], v[0])
		})
	},
}

var objectRotateCmd = &cobra.Command{
	Use:   "rotate <name> <x> <y> <z>",
	Short: "Set an object's rotation (radians); all zero sends nothing",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseFloats(args[1:])
		if err != nil {
			return err
		}
		return sendOp(cmd, "Object rotated", []ui.Param{{Key: "Object", Value: args[0]}, {Key: "Rotation", Value: formatFloats(v...)}}, func(ctx context.Context, c *client.Client) error {
			return c.SetObjectRotation(ctx, args[0], v[0], v[1], v[2])
		})
	},
}

var objectMoveCmd = &cobra.Command{
	Use:   "move <name> <x> <y> <z>",
	Short: "Set an object's location",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseFloats(args[1:])
		if err != nil {
			return err
		}
		return sendOp(cmd, "Object moved", []ui.Param{{Key: "Object", Value: args[0]}, {Key: "Location", Value: formatFloats(v...)}}, func(ctx context.Context, c *client.Client) error {
			return c.SetObjectPosition(ctx, args[0], v[0], v[1], v[2])
		})
	},
}

// --- light ---

var lightCmd = &cobra.Command{
	Use:   "light",
	Short: "Change a light's energy, colour or location",
}

var lightIntensityCmd = &cobra.Command{
	Use:   "intensity <name> <energy>",
	Short: "Set a light's energy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseFloats(args[1:])
		if err != nil {
			return err
		}
		return sendOp(cmd, "Light intensity set", []ui.Param{{Key: "Light", Value: args[0]}, {Key: "Energy", Value: formatFloats(v...)}}, func(ctx context.Context, c *client.Client) error {
			return c.SetLightIntensity(ctx, args[0], v[0])
		})
	},
}

var lightColorCmd = &cobra.Command{
	Use:   "color <name> <r> <g> <b>",
	Short: "Set a light's colour (0..1 per channel)",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseFloats(args[1:])
		if err != nil {
			return err
		}
		return sendOp(cmd, "Light colour set", []ui.Param{{Key: "Light", Value: args[0]}, {Key: "Colour", Value: formatFloats(v...)}}, func(ctx context.Context, c *client.Client) error {
			return c.SetLightColor(ctx, args[0], v[0], v[1], v[2])
		})
	},
}

var lightMoveCmd = &cobra.Command{
	Use:   "move <name> <x> <y> <z>",
	Short: "Set a light's location",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseFloats(args[1:])
		if err != nil {
			return err
		}
		return sendOp(cmd, "Light moved", []ui.Param{{Key: "Light", Value: args[0]}, {Key: "Location", Value: formatFloats(v...)}}, func(ctx context.Context, c *client.Client) error {
			return c.SetLightPosition(ctx, args[0], v[0], v[1], v[2])
		})
	},
}
