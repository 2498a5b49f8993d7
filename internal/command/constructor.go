package command

import (
	"encoding/json"
	"fmt"

	"github.com/muurk/scenebridge/internal/scene"
)

// MarshalJSON encodes the envelope with only the fields its type uses.
func (e Envelope) MarshalJSON() ([]byte, error) {
	w := wireEnvelope{Type: string(e.Type)}

	switch e.Type {
	case TypeSetProperty:
		value, err := marshalValue(e.Value)
		if err != nil {
			return nil, err
		}
		idx := float64(e.Index)
		w.Target, w.DataPath, w.Value, w.Index = e.Target, e.DataPath, value, &idx
	case TypeCreateObject:
		w.ObjectType = e.ObjectType
		w.Location = e.Location
		if w.Location == nil {
			w.Location = []float64{0, 0, 0}
		}
	case TypeImportGLB:
		w.Filename = e.Filename
	case TypeFocusOn:
		w.Target = e.Target
	}

	return json.Marshal(w)
}

func marshalValue(v scene.Value) (json.RawMessage, error) {
	switch v.Kind {
	case scene.KindNumber:
		return json.Marshal(v.Number)
	case scene.KindString:
		return json.Marshal(v.Text)
	case scene.KindVector:
		if v.Vector == nil {
			return json.RawMessage("[]"), nil
		}
		return json.Marshal(v.Vector)
	default:
		return nil, fmt.Errorf("cannot encode value of kind %s", v.Kind)
	}
}

// SetProperty builds a set_property envelope. index is WholeValue or a slot.
func SetProperty(target, dataPath string, value scene.Value, index int) Envelope {
	return Envelope{
		Type:     TypeSetProperty,
		Target:   target,
		DataPath: dataPath,
		Value:    value,
		Index:    index,
	}
}

// CreateObject builds a create_object envelope.
func CreateObject(kind scene.Primitive, location scene.Vec3) Envelope {
	return Envelope{
		Type:        TypeCreateObject,
		ObjectType:  string(kind),
		Location:    []float64{location[0], location[1], location[2]},
		HasLocation: true,
	}
}

// ImportGLB builds an import_glb envelope.
func ImportGLB(filename string) Envelope {
	return Envelope{Type: TypeImportGLB, Filename: filename}
}

// FocusOn builds a focus_on envelope.
func FocusOn(target string) Envelope {
	return Envelope{Type: TypeFocusOn, Target: target}
}

// ListObjects builds a list_objects envelope.
func ListObjects() Envelope {
	return Envelope{Type: TypeListObjects}
}

// Ping builds a ping envelope.
func Ping() Envelope {
	return Envelope{Type: TypePing}
}

// Pong returns the reply to a ping.
func Pong() Reply {
	return Reply{Type: ReplyPong, OK: true}
}

// ObjectList returns the reply to list_objects.
func ObjectList(names []string) Reply {
	return Reply{Type: ReplyObjects, OK: true, Objects: names}
}

// MarshalJSON always writes the objects array of an objects reply, even when
// the scene is empty, and never writes it for other replies.
func (r Reply) MarshalJSON() ([]byte, error) {
	if r.Type != ReplyObjects {
		return json.Marshal(struct {
			Type string `json:"type"`
			OK   bool   `json:"ok"`
		}{r.Type, r.OK})
	}

	objects := r.Objects
	if objects == nil {
		objects = []string{}
	}
	return json.Marshal(struct {
		Type    string   `json:"type"`
		OK      bool     `json:"ok"`
		Objects []string `json:"objects"`
	}{r.Type, r.OK, objects})
}

// Encode marshals a reply to the text sent on the wire.
func (r Reply) Encode() string {
	data, err := json.Marshal(r)
	if err != nil {
		// Reply holds only strings and bools
		panic(err)
	}
	return string(data)
}
