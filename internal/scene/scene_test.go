package scene

import (
	"errors"
	"math"
	"testing"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		path    string
		want    Path
		wantErr bool
	}{
		{"location", Path{Owner: OwnerObject, Property: "location"}, false},
		{"rotation_euler", Path{Owner: OwnerObject, Property: "rotation_euler"}, false},
		{"data.energy", Path{Owner: OwnerData, Property: "energy"}, false},
		{"data.", Path{}, true},
		{"", Path{}, true},
		{"data.shadow.soft", Path{}, true},
		{"modifiers.bevel", Path{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ResolvePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolvePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrBadPath) {
					t.Errorf("error = %v, want ErrBadPath", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ResolvePath(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
			if got.String() != tt.path {
				t.Errorf("String() = %q, want %q", got.String(), tt.path)
			}
		})
	}
}

func TestSetIndexedWholeValue(t *testing.T) {
	m := DefaultScene()
	obj, err := m.Object("Cube")
	if err != nil {
		t.Fatalf("Object() error = %v", err)
	}
	owner, _ := obj.Owner(OwnerObject)

	if err := SetIndexed(owner, "location", Vector(1, 2, 3), -1); err != nil {
		t.Fatalf("SetIndexed() error = %v", err)
	}
	got, _ := owner.Get("location")
	if !got.Equal(Vector(1, 2, 3)) {
		t.Errorf("location = %s, want [1, 2, 3]", got)
	}
}

func TestSetIndexedSingleSlot(t *testing.T) {
	for k := 0; k < 3; k++ {
		m := DefaultScene()
		obj, _ := m.Object("Cube")
		owner, _ := obj.Owner(OwnerObject)
		_ = owner.Set("location", Vector(1, 2, 3))

		if err := SetIndexed(owner, "location", Number(9), k); err != nil {
			t.Fatalf("SetIndexed(index=%d) error = %v", k, err)
		}

		want := Vector(1, 2, 3)
		want.Vector[k] = 9
		got, _ := owner.Get("location")
		if !got.Equal(want) {
			t.Errorf("index %d: location = %s, want %s", k, got, want)
		}
	}
}

func TestSetIndexedErrors(t *testing.T) {
	m := DefaultScene()
	cube, _ := m.Object("Cube")
	obj, _ := cube.Owner(OwnerObject)
	light, _ := m.Object("Light")
	data, _ := light.Owner(OwnerData)

	tests := []struct {
		name    string
		owner   PropertyOwner
		prop    string
		value   Value
		index   int
		wantErr error
	}{
		{"index too large", obj, "location", Number(1), 3, ErrIndexOutOfRange},
		{"negative index", obj, "location", Number(1), -2, ErrIndexOutOfRange},
		{"scalar property", data, "energy", Number(1), 0, ErrNotIndexable},
		{"vector slot with string", obj, "scale", String("big"), 1, ErrTypeMismatch},
		{"unknown property", obj, "colour", Number(1), 0, ErrUnknownProperty},
		{"whole vector wrong length", obj, "scale", Vector(1, 2), -1, ErrTypeMismatch},
		{"number into vector", obj, "scale", Number(2), -1, ErrTypeMismatch},
		{"bad enum", data, "type", String("LASER"), -1, ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SetIndexed(tt.owner, tt.prop, tt.value, tt.index)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetIndexed() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLightDataProperties(t *testing.T) {
	m := DefaultScene()
	light, _ := m.Object("Light")
	data, err := light.Owner(OwnerData)
	if err != nil {
		t.Fatalf("Owner(OwnerData) error = %v", err)
	}

	if err := data.Set("energy", Number(5)); err != nil {
		t.Fatalf("Set(energy) error = %v", err)
	}
	if err := SetIndexed(data, "color", Number(0.8), 2); err != nil {
		t.Fatalf("SetIndexed(color) error = %v", err)
	}
	if err := data.Set("type", String("point")); err != nil {
		t.Fatalf("Set(type) error = %v", err)
	}

	for _, state := range m.Snapshot() {
		if state.Name != "Light" {
			continue
		}
		if state.Light.Energy != 5 {
			t.Errorf("energy = %v, want 5", state.Light.Energy)
		}
		if state.Light.Color != (Vec3{1, 1, 0.8}) {
			t.Errorf("color = %v, want (1, 1, 0.8)", state.Light.Color)
		}
		if state.Light.Type != "POINT" {
			t.Errorf("type = %q, want POINT", state.Light.Type)
		}
		return
	}
	t.Fatal("Light missing from snapshot")
}

func TestOwnerWithoutData(t *testing.T) {
	m := NewMemory()
	name := m.addEmpty("Anchor", "")
	obj, _ := m.Object(name)

	if _, err := obj.Owner(OwnerData); !errors.Is(err, ErrNoData) {
		t.Errorf("Owner(OwnerData) error = %v, want ErrNoData", err)
	}
}

func TestObjectNotFound(t *testing.T) {
	m := DefaultScene()
	if _, err := m.Object("Ghost"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Object() error = %v, want ErrObjectNotFound", err)
	}
}

func TestAddPrimitiveNaming(t *testing.T) {
	m := NewMemory()
	names := []string{}
	for i := 0; i < 3; i++ {
		name, err := m.AddPrimitive(PrimitiveCube, Vec3{float64(i), 0, 0})
		if err != nil {
			t.Fatalf("AddPrimitive() error = %v", err)
		}
		names = append(names, name)
	}
	sphere, _ := m.AddPrimitive(PrimitiveSphere, Vec3{})

	want := []string{"Cube", "Cube.001", "Cube.002"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, names[i], want[i])
		}
	}
	if sphere != "Sphere" {
		t.Errorf("sphere name = %q, want Sphere", sphere)
	}

	if _, err := m.AddPrimitive(Primitive("torus"), Vec3{}); !errors.Is(err, ErrUnknownPrimitive) {
		t.Errorf("AddPrimitive(torus) error = %v, want ErrUnknownPrimitive", err)
	}

	objects := m.Objects()
	if len(objects) != 4 || objects[3] != "Sphere" {
		t.Errorf("Objects() = %v, want creation order ending in Sphere", objects)
	}
}

func TestParsePrimitive(t *testing.T) {
	if p, err := ParsePrimitive("CUBE"); err != nil || p != PrimitiveCube {
		t.Errorf("ParsePrimitive(CUBE) = %q, %v", p, err)
	}
	if _, err := ParsePrimitive("cone"); !errors.Is(err, ErrUnknownPrimitive) {
		t.Errorf("ParsePrimitive(cone) error = %v, want ErrUnknownPrimitive", err)
	}
}

func TestLookAt(t *testing.T) {
	const eps = 1e-9

	tests := []struct {
		name string
		from Vec3
		to   Vec3
		want Vec3
	}{
		{"straight down", Vec3{0, 0, 5}, Vec3{0, 0, 0}, Vec3{0, 0, 0}},
		{"towards +Y", Vec3{0, 0, 0}, Vec3{0, 3, 0}, Vec3{math.Pi / 2, 0, 0}},
		{"towards +X", Vec3{0, 0, 0}, Vec3{2, 0, 0}, Vec3{math.Pi / 2, 0, -math.Pi / 2}},
		{"straight up", Vec3{0, 0, 0}, Vec3{0, 0, 1}, Vec3{math.Pi, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LookAt(tt.from, tt.to)
			if err != nil {
				t.Fatalf("LookAt() error = %v", err)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > eps {
					t.Fatalf("LookAt() = %v, want %v", got, tt.want)
				}
			}
		})
	}

	if _, err := LookAt(Vec3{1, 1, 1}, Vec3{1, 1, 1}); !errors.Is(err, ErrDegenerateDirection) {
		t.Errorf("LookAt(same point) error = %v, want ErrDegenerateDirection", err)
	}
}

// TestLookAtDirection checks that the rotation maps the camera's -Z axis onto
// the direction of the target.
func TestLookAtDirection(t *testing.T) {
	from := Vec3{5, -5, 3}
	rot, err := LookAt(from, Vec3{})
	if err != nil {
		t.Fatalf("LookAt() error = %v", err)
	}

	// R = Rz(yaw) * Rx(pitch) applied to (0, 0, -1)
	sx, cx := math.Sincos(rot[0])
	sz, cz := math.Sincos(rot[2])
	dir := Vec3{-sx * sz, sx * cz, -cx}

	want := Vec3{}.Sub(from)
	norm := math.Sqrt(want[0]*want[0] + want[1]*want[1] + want[2]*want[2])
	for i := range dir {
		if math.Abs(dir[i]-want[i]/norm) > 1e-9 {
			t.Fatalf("view direction = %v, want %v", dir, want)
		}
	}
}
