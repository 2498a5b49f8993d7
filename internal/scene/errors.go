package scene

import "errors"

var (
	// ErrObjectNotFound means no object has the requested name.
	ErrObjectNotFound = errors.New("object not found")

	// ErrNoData means the object has no data sub-resource.
	ErrNoData = errors.New("object has no data")

	// ErrBadPath means a data path could not be resolved to an owner and property.
	ErrBadPath = errors.New("invalid data path")

	// ErrUnknownProperty means the owner has no property with that name.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrTypeMismatch means the value does not fit the property type.
	ErrTypeMismatch = errors.New("value type mismatch")

	// ErrNotIndexable means an index was given for a property that is not a vector.
	ErrNotIndexable = errors.New("property is not a vector")

	// ErrIndexOutOfRange means the vector index is outside 0..n-1.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnknownPrimitive means the primitive kind is not cube or sphere.
	ErrUnknownPrimitive = errors.New("unknown object type")

	// ErrFileNotFound means the asset to import does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidAsset means the asset is not a binary glTF file.
	ErrInvalidAsset = errors.New("not a binary glTF asset")

	// ErrDegenerateDirection means the camera and target share a position.
	ErrDegenerateDirection = errors.New("camera and target positions coincide")
)
