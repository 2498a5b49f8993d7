// Package dispatch routes command envelopes to the scene.
//
// The capability table is closed: set_property, create_object, import_glb,
// focus_on, list_objects and ping. Each message produces exactly one Outcome.
// A failing or panicking handler affects only its own message; the caller
// keeps draining the queue.
//
// Only ping and list_objects produce replies. Mutating commands are fire and
// forget: their outcome is logged on the host and never sent back.
package dispatch
