// Package command defines the JSON envelopes carried over the socket.
//
// Every message is a JSON object with a "type" field naming one of the fixed
// capabilities, plus the fields that capability uses:
//
//	{"type":"set_property","target":"Camera","data_path":"location","value":[5,-5,3],"index":-1}
//	{"type":"set_property","target":"Light","data_path":"data.energy","value":5}
//	{"type":"create_object","object_type":"cube","location":[0,0,0]}
//	{"type":"import_glb","filename":"examples/trash_can.glb"}
//	{"type":"focus_on","target":"Cube"}
//	{"type":"list_objects"}
//	{"type":"ping"}
//
// The host answers ping with {"type":"pong","ok":true} and list_objects with
// {"type":"objects","ok":true,"objects":[...]}. Nothing else is acknowledged.
package command
