package command

import (
	"github.com/muurk/scenebridge/internal/scene"
)

// Type is the capability an envelope invokes.
type Type string

const (
	TypeSetProperty  Type = "set_property"
	TypeCreateObject Type = "create_object"
	TypeImportGLB    Type = "import_glb"
	TypeFocusOn      Type = "focus_on"
	TypeListObjects  Type = "list_objects"
	TypePing         Type = "ping"
)

// Reply types sent back to the controller
const (
	ReplyPong    = "pong"
	ReplyObjects = "objects"
)

// WholeValue is the index that assigns the entire property value.
const WholeValue = -1

// Types lists every capability in dispatch-table order.
var Types = []Type{
	TypeSetProperty,
	TypeCreateObject,
	TypeImportGLB,
	TypeFocusOn,
	TypeListObjects,
	TypePing,
}

// Known reports whether t is one of the fixed capabilities.
func (t Type) Known() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Envelope is one parsed command. Fields not used by Type are zero.
type Envelope struct {
	Type     Type
	Target   string
	DataPath string
	Value    scene.Value
	Index    int

	// create_object
	ObjectType  string
	Location    []float64
	HasLocation bool

	// import_glb
	Filename string
}

// LocationVec returns the create_object location, defaulting to the origin.
func (e Envelope) LocationVec() (scene.Vec3, error) {
	if !e.HasLocation {
		return scene.Vec3{}, nil
	}
	return scene.Vec3FromValue(scene.Vector(e.Location...))
}

// Reply is a message the host sends back over the socket. Objects is only
// carried by objects replies.
type Reply struct {
	Type    string   `json:"type"`
	OK      bool     `json:"ok"`
	Objects []string `json:"objects"`
}
