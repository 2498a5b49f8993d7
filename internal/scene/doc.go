// Package scene defines the scene-editing collaborator that the command
// dispatcher drives, plus an in-memory implementation.
//
// The dispatcher never touches scene state directly. It looks objects up by
// name, resolves a data path to an owner with ResolvePath, and assigns values
// through SetIndexed:
//
//	obj, err := sc.Object("Light")
//	path, err := scene.ResolvePath("data.color")
//	owner, err := obj.Owner(path.Owner)
//	err = scene.SetIndexed(owner, path.Property, scene.Number(0.5), 1)
//
// # Data Paths
//
// A path addresses either the object ("location", "rotation_euler", "scale")
// or, with the "data." prefix, its data block ("data.energy", "data.color",
// "data.type" for lights, "data.lens" for cameras). Only one level of nesting
// exists.
//
// # Properties
//
// Memory binds each property to a typed getter/setter pair at object
// creation. Set rejects values of the wrong kind or vector length, so a
// property never holds a value its reader cannot interpret.
package scene
