package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/muurk/scenebridge/internal/scene"
)

var (
	// ErrMalformed means the message is not a JSON object with a string type.
	ErrMalformed = errors.New("malformed command envelope")

	// ErrBadField means a field the command type reads has the wrong JSON type.
	ErrBadField = errors.New("invalid envelope field")
)

// wireEnvelope is the JSON shape written by MarshalJSON.
type wireEnvelope struct {
	Type       string          `json:"type"`
	Target     string          `json:"target,omitempty"`
	DataPath   string          `json:"data_path,omitempty"`
	Value      json.RawMessage `json:"value,omitempty"`
	Index      *float64        `json:"index,omitempty"`
	ObjectType string          `json:"object_type,omitempty"`
	Location   []float64       `json:"location,omitempty"`
	Filename   string          `json:"filename,omitempty"`
}

// fields holds the raw members of one envelope object.
type fields map[string]json.RawMessage

// decode unmarshals the named member into dst. A missing or null member
// leaves dst untouched and reports false.
func (f fields) decode(name string, dst any) (bool, error) {
	raw, ok := f[name]
	if !ok || isNull(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w %q: %v", ErrBadField, name, err)
	}
	return true, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Parse decodes one text message into an Envelope.
//
// Only the type member is checked up front; other members are decoded for
// the types that read them and ignored otherwise. A member of the wrong JSON
// type yields ErrBadField together with an Envelope whose Type is set, so the
// caller can fail that command rather than drop the message.
//
// An absent index defaults to WholeValue. A value that is neither a number,
// a string nor a list of numbers parses to a value of KindInvalid; the
// handler that needs it reports the failure.
func Parse(data []byte) (Envelope, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if f == nil {
		return Envelope{}, fmt.Errorf("%w: not a JSON object", ErrMalformed)
	}

	var typ string
	if _, err := f.decode("type", &typ); err != nil {
		return Envelope{}, fmt.Errorf("%w: type is not a string", ErrMalformed)
	}

	env := Envelope{Type: Type(typ), Index: WholeValue}
	var err error
	switch env.Type {
	case TypeSetProperty:
		err = f.setProperty(&env)
	case TypeCreateObject:
		if _, err = f.decode("object_type", &env.ObjectType); err == nil {
			env.HasLocation, err = f.decode("location", &env.Location)
		}
	case TypeImportGLB:
		_, err = f.decode("filename", &env.Filename)
	case TypeFocusOn:
		_, err = f.decode("target", &env.Target)
	}
	if err != nil {
		return Envelope{Type: env.Type, Index: WholeValue}, err
	}
	return env, nil
}

func (f fields) setProperty(env *Envelope) error {
	if _, err := f.decode("target", &env.Target); err != nil {
		return err
	}
	if _, err := f.decode("data_path", &env.DataPath); err != nil {
		return err
	}
	env.Value = parseValue(f["value"])

	var idx float64
	ok, err := f.decode("index", &idx)
	if err != nil || !ok {
		return err
	}
	if idx != math.Trunc(idx) || math.Abs(idx) > math.MaxInt32 {
		return fmt.Errorf("%w \"index\": %v is not an integer", ErrBadField, idx)
	}
	env.Index = int(idx)
	return nil
}

// ParseString is Parse for a text frame payload.
func ParseString(msg string) (Envelope, error) {
	return Parse([]byte(msg))
}

func parseValue(raw json.RawMessage) scene.Value {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return scene.Value{}
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil && raw[0] != 'n' {
		return scene.Number(number)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil && raw[0] == '"' {
		return scene.String(text)
	}

	var vector []float64
	if err := json.Unmarshal(raw, &vector); err == nil && raw[0] == '[' {
		return scene.Vector(vector...)
	}

	return scene.Value{}
}

// ValueFromArg interprets a command-line argument as a property value: a
// JSON number, a quoted JSON string or a list of numbers. Anything else is
// taken as bare text.
func ValueFromArg(arg string) scene.Value {
	v := parseValue(json.RawMessage(arg))
	if v.Kind == scene.KindInvalid {
		return scene.String(arg)
	}
	return v
}

// ParseReply decodes a message sent by the host.
func ParseReply(data []byte) (Reply, error) {
	var r Reply
	if err := json.Unmarshal(data, &r); err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return r, nil
}
