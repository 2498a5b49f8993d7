package scene

import (
	"fmt"
	"math"
	"strings"
)

// DefaultCameraName is the object focus operations rotate.
const DefaultCameraName = "Camera"

// DataPrefix is the path prefix that addresses an object's data sub-resource.
const DataPrefix = "data."

// Scene is the host-side collaborator driven by the command dispatcher.
type Scene interface {
	// Object looks up an object by name. It returns ErrObjectNotFound when
	// no object has that name.
	Object(name string) (Object, error)

	// Objects returns the object names in creation order.
	Objects() []string

	// AddPrimitive creates a primitive at location and returns its name.
	AddPrimitive(kind Primitive, location Vec3) (string, error)

	// Import loads a binary glTF file and returns the new object's name.
	Import(path string) (string, error)
}

// Object is a handle to one scene object.
type Object interface {
	Name() string
	Kind() ObjectKind
	Location() Vec3

	// Owner returns the object itself or its data sub-resource.
	Owner(kind OwnerKind) (PropertyOwner, error)
}

// PropertyOwner exposes typed properties by name.
type PropertyOwner interface {
	Get(prop string) (Value, error)
	Set(prop string, v Value) error
}

// ObjectKind is the type of a scene object.
type ObjectKind string

const (
	KindMesh   ObjectKind = "MESH"
	KindCamera ObjectKind = "CAMERA"
	KindLight  ObjectKind = "LIGHT"
	KindEmpty  ObjectKind = "EMPTY"
)

// Primitive is a mesh that create_object can add.
type Primitive string

const (
	PrimitiveCube   Primitive = "cube"
	PrimitiveSphere Primitive = "sphere"
)

// ParsePrimitive validates a primitive name.
func ParsePrimitive(s string) (Primitive, error) {
	switch Primitive(strings.ToLower(s)) {
	case PrimitiveCube:
		return PrimitiveCube, nil
	case PrimitiveSphere:
		return PrimitiveSphere, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPrimitive, s)
	}
}

// OwnerKind selects which owner a data path addresses.
type OwnerKind int

const (
	OwnerObject OwnerKind = iota
	OwnerData
)

func (k OwnerKind) String() string {
	if k == OwnerData {
		return "data"
	}
	return "object"
}

// Path is a resolved data path.
type Path struct {
	Owner    OwnerKind
	Property string
}

func (p Path) String() string {
	if p.Owner == OwnerData {
		return DataPrefix + p.Property
	}
	return p.Property
}

// ResolvePath maps a dotted path to its owner. "location" addresses the
// object, "data.energy" addresses the object's data. Deeper nesting is not
// addressable.
func ResolvePath(path string) (Path, error) {
	p := Path{Owner: OwnerObject, Property: path}
	if strings.HasPrefix(path, DataPrefix) {
		p = Path{Owner: OwnerData, Property: strings.TrimPrefix(path, DataPrefix)}
	}
	if p.Property == "" || strings.Contains(p.Property, ".") {
		return Path{}, fmt.Errorf("%w: %q", ErrBadPath, path)
	}
	return p, nil
}

// SetIndexed assigns v to prop. index -1 replaces the whole value; index k
// reads the vector, replaces slot k and writes the whole vector back, so the
// other slots are preserved.
func SetIndexed(owner PropertyOwner, prop string, v Value, index int) error {
	if index == -1 {
		return owner.Set(prop, v)
	}

	current, err := owner.Get(prop)
	if err != nil {
		return err
	}
	if current.Kind != KindVector {
		return fmt.Errorf("%w: %s is %s", ErrNotIndexable, prop, current.Kind)
	}
	if index < 0 || index >= len(current.Vector) {
		return fmt.Errorf("%w: index %d for %s of length %d", ErrIndexOutOfRange, index, prop, len(current.Vector))
	}
	if v.Kind != KindNumber {
		return fmt.Errorf("%w: slot %d of %s needs a number, got %s", ErrTypeMismatch, index, prop, v.Kind)
	}

	updated := Vector(current.Vector...)
	updated.Vector[index] = v.Number
	return owner.Set(prop, updated)
}

// LookAt returns the Euler XYZ rotation that points a camera at rest (looking
// down -Z with +Y up) from position from towards position to, without roll.
func LookAt(from, to Vec3) (Vec3, error) {
	d := to.Sub(from)
	horizontal := math.Hypot(d[0], d[1])
	if horizontal == 0 && d[2] == 0 {
		return Vec3{}, ErrDegenerateDirection
	}

	pitch := math.Atan2(horizontal, -d[2])
	yaw := 0.0
	if horizontal > 0 {
		yaw = math.Atan2(-d[0], d[1])
	}
	return Vec3{pitch, 0, yaw}, nil
}
