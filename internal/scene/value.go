package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the type of a property value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNumber
	KindString
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindVector:
		return "vector"
	default:
		return "invalid"
	}
}

// Value is a property value: a number, a string, or an ordered list of numbers.
type Value struct {
	Kind   Kind
	Number float64
	Text   string
	Vector []float64
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Number: f}
}

// String returns a string value.
func String(s string) Value {
	return Value{Kind: KindString, Text: s}
}

// Vector returns a vector value. The components are copied.
func Vector(components ...float64) Value {
	return Value{Kind: KindVector, Vector: append([]float64(nil), components...)}
}

// Equal reports whether two values have the same kind and contents.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Number == o.Number
	case KindString:
		return v.Text == o.Text
	case KindVector:
		if len(v.Vector) != len(o.Vector) {
			return false
		}
		for i := range v.Vector {
			if v.Vector[i] != o.Vector[i] {
				return false
			}
		}
		return true
	}
	return true
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.Text)
	case KindVector:
		parts := make([]string, len(v.Vector))
		for i, c := range v.Vector {
			parts[i] = strconv.FormatFloat(c, 'g', -1, 64)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "<invalid>"
	}
}

// Vec3 is a fixed-size three component vector (location, rotation, scale, color).
type Vec3 [3]float64

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Value converts the vector to a property value.
func (v Vec3) Value() Value {
	return Vector(v[0], v[1], v[2])
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}

// Vec3FromValue converts a three component vector value.
func Vec3FromValue(v Value) (Vec3, error) {
	if v.Kind != KindVector || len(v.Vector) != 3 {
		return Vec3{}, fmt.Errorf("%w: want 3-component vector, got %s %s", ErrTypeMismatch, v.Kind, v)
	}
	return Vec3{v.Vector[0], v.Vector[1], v.Vector[2]}, nil
}
