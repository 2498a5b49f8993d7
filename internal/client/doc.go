// Package client is the controller-side facade for a scenebridge host.
//
// Each operation builds one command envelope and writes it as a single text
// frame over a gorilla/websocket connection. Operations are fire and forget:
// a nil error means the frame was written, not that the host applied it.
// Only Ping and ListObjects produce a reply, which ReadReply returns.
//
//	c := client.New("ws://127.0.0.1:8765")
//	defer c.Close()
//
//	_ = c.CreateSphere(ctx, 3, 0, 0)
//	_ = c.FocusOn(ctx, "Sphere")
//	_ = c.SetLightIntensity(ctx, "Light", 5)
//
// Property paths that start with "data." address the object's data block,
// for example a light's energy. An index of -1 assigns the whole value; an
// index 0..n-1 replaces one slot of a vector property.
package client
