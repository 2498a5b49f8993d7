// Package server implements the single-client WebSocket listener.
//
// The server owns one background goroutine that runs a small state machine:
//
//	LISTENING --accept--> HANDSHAKING --101 sent--> OPEN
//	    ^                      |                      |
//	    |                handshake fails     closed signal, I/O error
//	    |                      v                      v
//	    +--------------------------------------- CLOSED
//
// Accept is only called from LISTENING. A second client that connects while a
// session is open sits in the kernel backlog and is not serviced until the
// first one closes. There is no fan-out.
//
// # Handshake
//
// The HTTP upgrade is read off the raw socket with protocol.ReadUpgradeRequest
// and answered with the fixed 101 response carrying Sec-WebSocket-Accept. A
// missing Sec-WebSocket-Key aborts the attempt and only that socket is closed.
//
// # Messages
//
// Every decoded text frame is pushed to the Sink without backpressure. Binary,
// ping and pong frames are ignored. Send writes one unmasked text frame to the
// open client; the connection handle is guarded by a mutex so Send and session
// teardown never race.
//
// # Capture
//
// When Config.CaptureDir is set, every inbound and outbound text message is
// appended as one JSON line to capture-<timestamp>.jsonl. ReadCapture reads
// such a file back, which scenebridge-ctl replay uses.
//
// # Shutdown
//
// Stop closes the listener and the client socket, then waits a bounded time
// for the goroutine to exit. Messages in flight may be lost.
package server
