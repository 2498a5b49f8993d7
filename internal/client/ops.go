package client

import (
	"context"

	"github.com/muurk/scenebridge/internal/command"
	"github.com/muurk/scenebridge/internal/scene"
)

// SetProperty assigns value to target's dataPath. index is
// command.WholeValue or one vector slot.
func (c *Client) SetProperty(ctx context.Context, target, dataPath string, value scene.Value, index int) error {
	return c.Send(ctx, command.SetProperty(target, dataPath, value, index))
}

// Camera

// RotateCamera sets each non-zero rotation axis of the camera with its own
// indexed assignment. Zero axes are left untouched.
func (c *Client) RotateCamera(ctx context.Context, x, y, z float64) error {
	for i, angle := range [3]float64{x, y, z} {
		if angle == 0 {
			continue
		}
		if err := c.SetProperty(ctx, c.camera, "rotation_euler", scene.Number(angle), i); err != nil {
			return err
		}
	}
	return nil
}

// FocusOn points the camera at target.
func (c *Client) FocusOn(ctx context.Context, target string) error {
	return c.Send(ctx, command.FocusOn(target))
}

// SetCameraPosition moves the camera.
func (c *Client) SetCameraPosition(ctx context.Context, x, y, z float64) error {
	return c.SetProperty(ctx, c.camera, "location", scene.Vector(x, y, z), command.WholeValue)
}

// SetCameraZoom sets the camera height, the Z slot of its location.
func (c *Client) SetCameraZoom(ctx context.Context, distance float64) error {
	return c.SetProperty(ctx, c.camera, "location", scene.Number(distance), 2)
}

// Objects

// ListObjects asks for the scene contents. The host answers with an
// objects reply; read it with ReadReply.
func (c *Client) ListObjects(ctx context.Context) error {
	return c.Send(ctx, command.ListObjects())
}

// CreateCube adds a cube at (x, y, z).
func (c *Client) CreateCube(ctx context.Context, x, y, z float64) error {
	return c.Send(ctx, command.CreateObject(scene.PrimitiveCube, scene.Vec3{x, y, z}))
}

// CreateSphere adds a sphere at (x, y, z).
func (c *Client) CreateSphere(ctx context.Context, x, y, z float64) error {
	return c.Send(ctx, command.CreateObject(scene.PrimitiveSphere, scene.Vec3{x, y, z}))
}

// ImportGLB asks the host to import a binary glTF file from its own disk.
func (c *Client) ImportGLB(ctx context.Context, filename string) error {
	return c.Send(ctx, command.ImportGLB(filename))
}

// SetObjectScale scales an object uniformly.
func (c *Client) SetObjectScale(ctx context.Context, name string, scale float64) error {
	return c.SetProperty(ctx, name, "scale", scene.Vector(scale, scale, scale), command.WholeValue)
}

// SetObjectRotation replaces an object's rotation. An all-zero rotation
// sends nothing.
func (c *Client) SetObjectRotation(ctx context.Context, name string, x, y, z float64) error {
	if x == 0 && y == 0 && z == 0 {
		return nil
	}
	return c.SetProperty(ctx, name, "rotation_euler", scene.Vector(x, y, z), command.WholeValue)
}

// SetObjectPosition moves an object.
func (c *Client) SetObjectPosition(ctx context.Context, name string, x, y, z float64) error {
	return c.SetProperty(ctx, name, "location", scene.Vector(x, y, z), command.WholeValue)
}

// Lights

// SetLightIntensity sets the energy of a light's data block.
func (c *Client) SetLightIntensity(ctx context.Context, name string, energy float64) error {
	return c.SetProperty(ctx, name, scene.DataPrefix+"energy", scene.Number(energy), command.WholeValue)
}

// SetLightColor sets the color of a light's data block.
func (c *Client) SetLightColor(ctx context.Context, name string, r, g, b float64) error {
	return c.SetProperty(ctx, name, scene.DataPrefix+"color", scene.Vector(r, g, b), command.WholeValue)
}

// SetLightPosition moves a light.
func (c *Client) SetLightPosition(ctx context.Context, name string, x, y, z float64) error {
	return c.SetProperty(ctx, name, "location", scene.Vector(x, y, z), command.WholeValue)
}

// Ping asks the host for a pong.
func (c *Client) Ping(ctx context.Context) error {
	return c.Send(ctx, command.Ping())
}
