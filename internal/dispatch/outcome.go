package dispatch

import (
	"errors"
	"fmt"

	"github.com/muurk/scenebridge/internal/command"
	"github.com/muurk/scenebridge/internal/scene"
)

// Reason classifies why a command did not apply.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonMalformed        Reason = "malformed_json"
	ReasonUnknownType      Reason = "unknown_type"
	ReasonBadField         Reason = "bad_field"
	ReasonTargetNotFound   Reason = "target_not_found"
	ReasonNoData           Reason = "no_data"
	ReasonBadPath          Reason = "bad_path"
	ReasonUnknownProperty  Reason = "unknown_property"
	ReasonTypeMismatch     Reason = "type_mismatch"
	ReasonIndexOutOfRange  Reason = "index_out_of_range"
	ReasonUnknownPrimitive Reason = "unknown_object_type"
	ReasonFileNotFound     Reason = "file_not_found"
	ReasonInvalidAsset     Reason = "invalid_asset"
	ReasonNoCamera         Reason = "no_camera"
	ReasonDegenerate       Reason = "degenerate_direction"
	ReasonInternal         Reason = "internal"
)

// Outcome is the result of dispatching one message.
type Outcome struct {
	Type   command.Type
	OK     bool
	Reason Reason
	Detail string
}

func (o Outcome) String() string {
	if o.OK {
		return fmt.Sprintf("%s ok: %s", o.Type, o.Detail)
	}
	return fmt.Sprintf("%s failed (%s): %s", o.Type, o.Reason, o.Detail)
}

func succeeded(t command.Type, format string, args ...any) Outcome {
	return Outcome{Type: t, OK: true, Detail: fmt.Sprintf(format, args...)}
}

func failed(t command.Type, reason Reason, err error) Outcome {
	return Outcome{Type: t, Reason: reason, Detail: err.Error()}
}

// reasonFor maps collaborator errors onto reason codes.
func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, scene.ErrObjectNotFound):
		return ReasonTargetNotFound
	case errors.Is(err, scene.ErrNoData):
		return ReasonNoData
	case errors.Is(err, scene.ErrBadPath):
		return ReasonBadPath
	case errors.Is(err, scene.ErrUnknownProperty):
		return ReasonUnknownProperty
	case errors.Is(err, scene.ErrTypeMismatch), errors.Is(err, scene.ErrNotIndexable):
		return ReasonTypeMismatch
	case errors.Is(err, scene.ErrIndexOutOfRange):
		return ReasonIndexOutOfRange
	case errors.Is(err, scene.ErrUnknownPrimitive):
		return ReasonUnknownPrimitive
	case errors.Is(err, scene.ErrFileNotFound):
		return ReasonFileNotFound
	case errors.Is(err, scene.ErrInvalidAsset):
		return ReasonInvalidAsset
	case errors.Is(err, scene.ErrDegenerateDirection):
		return ReasonDegenerate
	default:
		return ReasonInternal
	}
}
