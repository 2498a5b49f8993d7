package scene

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// accessor is a typed getter/setter pair for one named property.
type accessor struct {
	kind Kind
	size int // vector length, 0 for scalars
	get  func() Value
	set  func(Value)
}

func vec3Accessor(target *Vec3) accessor {
	return accessor{
		kind: KindVector,
		size: 3,
		get:  func() Value { return target.Value() },
		set:  func(v Value) { copy(target[:], v.Vector) },
	}
}

func numberAccessor(target *float64) accessor {
	return accessor{
		kind: KindNumber,
		get:  func() Value { return Number(*target) },
		set:  func(v Value) { *target = v.Number },
	}
}

func enumAccessor(target *string) accessor {
	return accessor{
		kind: KindString,
		get:  func() Value { return String(*target) },
		set:  func(v Value) { *target = strings.ToUpper(v.Text) },
	}
}

// owner is a property table bound to one object or data block.
type owner struct {
	mu      *sync.RWMutex
	label   string
	props   map[string]accessor
	allowed map[string][]string
}

func (o *owner) Get(prop string) (Value, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	a, ok := o.props[prop]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s.%s", ErrUnknownProperty, o.label, prop)
	}
	return a.get(), nil
}

func (o *owner) Set(prop string, v Value) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	a, ok := o.props[prop]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownProperty, o.label, prop)
	}
	if v.Kind != a.kind {
		return fmt.Errorf("%w: %s.%s is %s, got %s", ErrTypeMismatch, o.label, prop, a.kind, v.Kind)
	}
	if a.kind == KindVector && len(v.Vector) != a.size {
		return fmt.Errorf("%w: %s.%s needs %d components, got %d", ErrTypeMismatch, o.label, prop, a.size, len(v.Vector))
	}
	if allowed := o.allowed[prop]; len(allowed) > 0 && !containsFold(allowed, v.Text) {
		return fmt.Errorf("%w: %s.%s must be one of %s", ErrTypeMismatch, o.label, prop, strings.Join(allowed, ", "))
	}
	a.set(v)
	return nil
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// LightData is the data block of a light object.
type LightData struct {
	Type   string
	Energy float64
	Color  Vec3
}

// CameraData is the data block of a camera object.
type CameraData struct {
	Lens float64
}

var lightTypes = []string{"POINT", "SUN", "SPOT", "AREA"}

// memObject is one object stored by Memory.
type memObject struct {
	name     string
	kind     ObjectKind
	location Vec3
	rotation Vec3
	scale    Vec3
	light    *LightData
	camera   *CameraData
	source   string // imported file, if any

	self *owner
	data *owner
}

type objectHandle struct {
	scene *Memory
	obj   *memObject
}

func (h objectHandle) Name() string     { return h.obj.name }
func (h objectHandle) Kind() ObjectKind { return h.obj.kind }

func (h objectHandle) Location() Vec3 {
	h.scene.mu.RLock()
	defer h.scene.mu.RUnlock()
	return h.obj.location
}

func (h objectHandle) Owner(kind OwnerKind) (PropertyOwner, error) {
	if kind == OwnerObject {
		return h.obj.self, nil
	}
	if h.obj.data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoData, h.obj.name)
	}
	return h.obj.data, nil
}

// ObjectState is a copy of one object's properties.
type ObjectState struct {
	Name     string
	Kind     ObjectKind
	Location Vec3
	Rotation Vec3
	Scale    Vec3
	Light    *LightData
	Camera   *CameraData
	Source   string
}

// Memory is an in-memory Scene. The host loop mutates it; other goroutines
// may read it through Snapshot.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]*memObject
	order   []string
}

// NewMemory creates an empty scene.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]*memObject)}
}

// DefaultScene creates the scene a fresh host starts with: a camera looking at
// the origin, a sun light and a cube.
func DefaultScene() *Memory {
	m := NewMemory()
	m.AddCamera(DefaultCameraName, Vec3{5, -5, 3}, Vec3{1.1, 0, 0.785})
	m.AddLight("Light", "SUN", Vec3{2, 2, 5}, 3)
	_, _ = m.AddPrimitive(PrimitiveCube, Vec3{})
	return m
}

// Object implements Scene.
func (m *Memory) Object(name string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, name)
	}
	return objectHandle{scene: m, obj: obj}, nil
}

// Objects implements Scene.
func (m *Memory) Objects() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// AddPrimitive implements Scene.
func (m *Memory) AddPrimitive(kind Primitive, location Vec3) (string, error) {
	base := ""
	switch kind {
	case PrimitiveCube:
		base = "Cube"
	case PrimitiveSphere:
		base = "Sphere"
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPrimitive, kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	obj := m.newObject(base, KindMesh, location)
	obj.data = m.newOwner(obj.name+".data", nil, nil)
	return obj.name, nil
}

// AddCamera adds a camera object.
func (m *Memory) AddCamera(name string, location, rotation Vec3) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj := m.newObject(name, KindCamera, location)
	obj.rotation = rotation
	obj.camera = &CameraData{Lens: 50}
	obj.data = m.newOwner(obj.name+".data", map[string]accessor{
		"lens": numberAccessor(&obj.camera.Lens),
	}, nil)
	return obj.name
}

// AddLight adds a light object.
func (m *Memory) AddLight(name, lightType string, location Vec3, energy float64) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj := m.newObject(name, KindLight, location)
	obj.light = &LightData{Type: strings.ToUpper(lightType), Energy: energy, Color: Vec3{1, 1, 1}}
	obj.data = m.newOwner(obj.name+".data", map[string]accessor{
		"energy": numberAccessor(&obj.light.Energy),
		"color":  vec3Accessor(&obj.light.Color),
		"type":   enumAccessor(&obj.light.Type),
	}, map[string][]string{"type": lightTypes})
	return obj.name
}

// addEmpty adds an object without a data block.
func (m *Memory) addEmpty(name, source string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj := m.newObject(name, KindEmpty, Vec3{})
	obj.source = source
	return obj.name
}

// newObject registers an object under a unique name. Callers hold m.mu.
func (m *Memory) newObject(base string, kind ObjectKind, location Vec3) *memObject {
	name := m.uniqueName(base)
	obj := &memObject{
		name:     name,
		kind:     kind,
		location: location,
		scale:    Vec3{1, 1, 1},
	}
	obj.self = m.newOwner(name, map[string]accessor{
		"location":       vec3Accessor(&obj.location),
		"rotation_euler": vec3Accessor(&obj.rotation),
		"scale":          vec3Accessor(&obj.scale),
	}, nil)

	m.objects[name] = obj
	m.order = append(m.order, name)
	return obj
}

func (m *Memory) newOwner(label string, props map[string]accessor, allowed map[string][]string) *owner {
	if props == nil {
		props = map[string]accessor{}
	}
	return &owner{mu: &m.mu, label: label, props: props, allowed: allowed}
}

// uniqueName follows the Name, Name.001, Name.002 convention.
func (m *Memory) uniqueName(base string) string {
	if _, taken := m.objects[base]; !taken {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s.%03d", base, i)
		if _, taken := m.objects[name]; !taken {
			return name
		}
	}
}

// Snapshot returns copies of every object sorted by name.
func (m *Memory) Snapshot() []ObjectState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ObjectState, 0, len(m.objects))
	for _, obj := range m.objects {
		state := ObjectState{
			Name:     obj.name,
			Kind:     obj.kind,
			Location: obj.location,
			Rotation: obj.rotation,
			Scale:    obj.scale,
			Source:   obj.source,
		}
		if obj.light != nil {
			light := *obj.light
			state.Light = &light
		}
		if obj.camera != nil {
			camera := *obj.camera
			state.Camera = &camera
		}
		out = append(out, state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
