package dispatch

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/scenebridge/internal/command"
	"github.com/muurk/scenebridge/internal/logging"
	"github.com/muurk/scenebridge/internal/scene"
)

// Outbox receives replies for the controller.
type Outbox interface {
	Push(msg string)
}

type handler func(d *Dispatcher, env command.Envelope) Outcome

// Dispatcher routes command envelopes to the scene collaborator.
type Dispatcher struct {
	scene      scene.Scene
	outbox     Outbox
	cameraName string
	handlers   map[command.Type]handler
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCamera sets the object focus_on rotates. Defaults to "Camera".
func WithCamera(name string) Option {
	return func(d *Dispatcher) {
		d.cameraName = name
	}
}

// New creates a dispatcher over sc that writes replies to outbox.
func New(sc scene.Scene, outbox Outbox, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		scene:      sc,
		outbox:     outbox,
		cameraName: scene.DefaultCameraName,
		handlers: map[command.Type]handler{
			command.TypeSetProperty:  (*Dispatcher).setProperty,
			command.TypeCreateObject: (*Dispatcher).createObject,
			command.TypeImportGLB:    (*Dispatcher).importGLB,
			command.TypeFocusOn:      (*Dispatcher).focusOn,
			command.TypeListObjects:  (*Dispatcher).listObjects,
			command.TypePing:         (*Dispatcher).ping,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch parses one message and runs its handler. Malformed JSON, unknown
// types and handler failures come back as a failed Outcome; every outcome is
// logged.
func (d *Dispatcher) Dispatch(msg string) Outcome {
	out := d.dispatch(msg)
	logging.LogCommand(string(out.Type), out.OK, string(out.Reason), out.Detail)
	return out
}

func (d *Dispatcher) dispatch(msg string) (out Outcome) {
	env, err := command.ParseString(msg)
	switch {
	case errors.Is(err, command.ErrBadField):
		return failed(env.Type, ReasonBadField, err)
	case err != nil:
		logging.Debug("Dropping malformed message", zap.Int("length", len(msg)))
		return failed("", ReasonMalformed, err)
	}

	h, ok := d.handlers[env.Type]
	if !ok {
		return failed(env.Type, ReasonUnknownType, fmt.Errorf("unknown message type %q", env.Type))
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Command handler panicked",
				zap.String("type", string(env.Type)),
				zap.Any("panic", r),
			)
			out = failed(env.Type, ReasonInternal, fmt.Errorf("handler panic: %v", r))
		}
	}()

	return h(d, env)
}

func (d *Dispatcher) setProperty(env command.Envelope) Outcome {
	t := command.TypeSetProperty

	obj, err := d.scene.Object(env.Target)
	if err != nil {
		return failed(t, reasonFor(err), err)
	}
	path, err := scene.ResolvePath(env.DataPath)
	if err != nil {
		return failed(t, reasonFor(err), err)
	}
	owner, err := obj.Owner(path.Owner)
	if err != nil {
		return failed(t, reasonFor(err), err)
	}
	if env.Value.Kind == scene.KindInvalid {
		return failed(t, ReasonTypeMismatch, fmt.Errorf("%w: missing or unsupported value", scene.ErrTypeMismatch))
	}
	if err := scene.SetIndexed(owner, path.Property, env.Value, env.Index); err != nil {
		return failed(t, reasonFor(err), err)
	}

	if env.Index == command.WholeValue {
		return succeeded(t, "%s.%s = %s", env.Target, path, env.Value)
	}
	return succeeded(t, "%s.%s[%d] = %s", env.Target, path, env.Index, env.Value)
}

func (d *Dispatcher) createObject(env command.Envelope) Outcome {
	t := command.TypeCreateObject

	kind, err := scene.ParsePrimitive(env.ObjectType)
	if err != nil {
		return failed(t, reasonFor(err), err)
	}
	loc, err := env.LocationVec()
	if err != nil {
		return failed(t, reasonFor(err), err)
	}
	name, err := d.scene.AddPrimitive(kind, loc)
	if err != nil {
		return failed(t, reasonFor(err), err)
	}
	return succeeded(t, "created %s %q at %s", kind, name, loc)
}

func (d *Dispatcher) importGLB(env command.Envelope) Outcome {
	t := command.TypeImportGLB

	name, err := d.scene.Import(env.Filename)
	if err != nil {
		return failed(t, reasonFor(err), err)
	}
	return succeeded(t, "imported %s as %q", env.Filename, name)
}

func (d *Dispatcher) focusOn(env command.Envelope) Outcome {
	t := command.TypeFocusOn

	target, err := d.scene.Object(env.Target)
	if err != nil {
		return failed(t, reasonFor(err), err)
	}
	camera, err := d.scene.Object(d.cameraName)
	if err != nil {
		if errors.Is(err, scene.ErrObjectNotFound) {
			return failed(t, ReasonNoCamera, err)
		}
		return failed(t, reasonFor(err), err)
	}

	rotation, err := scene.LookAt(camera.Location(), target.Location())
	if err != nil {
		return failed(t, reasonFor(err), err)
	}
	owner, err := camera.Owner(scene.OwnerObject)
	if err != nil {
		return failed(t, reasonFor(err), err)
	}
	if err := owner.Set("rotation_euler", rotation.Value()); err != nil {
		return failed(t, reasonFor(err), err)
	}
	return succeeded(t, "%s focused on %s", d.cameraName, env.Target)
}

func (d *Dispatcher) listObjects(command.Envelope) Outcome {
	names := d.scene.Objects()
	d.outbox.Push(command.ObjectList(names).Encode())
	return succeeded(command.TypeListObjects, "%d objects", len(names))
}

func (d *Dispatcher) ping(command.Envelope) Outcome {
	d.outbox.Push(command.Pong().Encode())
	return succeeded(command.TypePing, "pong queued")
}
